package repository

import (
	"database/sql"
	"fmt"
	"time"

	"solofocus/internal/database"
	"solofocus/internal/models"
)

// FocusSessionRepository handles database operations for focus sessions.
// The focus_sessions table is append-only from the application's point of
// view: rows are inserted open, closed exactly once, and never deleted.
type FocusSessionRepository struct {
	db *database.DB
}

// NewFocusSessionRepository creates a new focus session repository
func NewFocusSessionRepository(db *database.DB) *FocusSessionRepository {
	return &FocusSessionRepository{db: db}
}

const focusSessionColumns = "id, user_id, session_type, start_time, end_time, duration_minutes"

func scanFocusSession(row rowScanner) (*models.FocusSession, error) {
	session := &models.FocusSession{}
	var endTime sql.NullTime
	var duration sql.NullInt64

	err := row.Scan(
		&session.ID,
		&session.UserID,
		&session.SessionType,
		&session.StartTime,
		&endTime,
		&duration,
	)
	if err != nil {
		return nil, err
	}

	if endTime.Valid {
		session.EndTime = &endTime.Time
	}
	if duration.Valid {
		d := int(duration.Int64)
		session.DurationMinutes = &d
	}
	return session, nil
}

// CreateSession inserts a new open focus session
func (r *FocusSessionRepository) CreateSession(userID int64, sessionType models.SessionType, startTime time.Time) (*models.FocusSession, error) {
	query := `
		INSERT INTO focus_sessions (user_id, session_type, start_time)
		VALUES (?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query, userID, string(sessionType), startTime)
	if err != nil {
		return nil, fmt.Errorf("failed to create focus session: %w", err)
	}

	return &models.FocusSession{
		ID:          id,
		UserID:      userID,
		SessionType: sessionType,
		StartTime:   startTime,
	}, nil
}

// GetSessionByID retrieves a focus session by ID
func (r *FocusSessionRepository) GetSessionByID(sessionID int64) (*models.FocusSession, error) {
	query := "SELECT " + focusSessionColumns + " FROM focus_sessions WHERE id = ?"
	session, err := scanFocusSession(r.db.QueryRow(query, sessionID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get focus session: %w", err)
	}
	return session, nil
}

// CompleteSession closes an open session by recording its end time and duration
func (r *FocusSessionRepository) CompleteSession(sessionID int64, endTime time.Time, durationMinutes int) error {
	query := `
		UPDATE focus_sessions
		SET end_time = ?, duration_minutes = ?
		WHERE id = ?
	`
	if _, err := r.db.Exec(query, endTime, durationMinutes, sessionID); err != nil {
		return fmt.Errorf("failed to complete focus session: %w", err)
	}
	return nil
}

// GetUserSessions retrieves all sessions for a user, newest first
func (r *FocusSessionRepository) GetUserSessions(userID int64) ([]models.FocusSession, error) {
	query := "SELECT " + focusSessionColumns + ` FROM focus_sessions
		WHERE user_id = ?
		ORDER BY start_time DESC`
	return r.querySessions(query, userID)
}

// GetUserSessionsSince retrieves a user's sessions starting at or after the
// given time, newest first
func (r *FocusSessionRepository) GetUserSessionsSince(userID int64, since time.Time) ([]models.FocusSession, error) {
	query := "SELECT " + focusSessionColumns + ` FROM focus_sessions
		WHERE user_id = ? AND start_time >= ?
		ORDER BY start_time DESC`
	return r.querySessions(query, userID, since)
}

// GetUserSessionsBetween retrieves a user's sessions within [start, end], newest first
func (r *FocusSessionRepository) GetUserSessionsBetween(userID int64, start, end time.Time) ([]models.FocusSession, error) {
	query := "SELECT " + focusSessionColumns + ` FROM focus_sessions
		WHERE user_id = ? AND start_time >= ? AND start_time <= ?
		ORDER BY start_time DESC`
	return r.querySessions(query, userID, start, end)
}

func (r *FocusSessionRepository) querySessions(query string, args ...interface{}) ([]models.FocusSession, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query focus sessions: %w", err)
	}
	defer rows.Close()

	var sessions []models.FocusSession
	for rows.Next() {
		session, err := scanFocusSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan focus session: %w", err)
		}
		sessions = append(sessions, *session)
	}
	return sessions, rows.Err()
}
