package service

import (
	"errors"
	"time"

	"solofocus/internal/models"
	"solofocus/internal/utils"
)

var (
	ErrFocusSessionNotFound  = errors.New("focus session not found")
	ErrFocusSessionCompleted = errors.New("focus session already completed")
	ErrNotSessionOwner       = errors.New("focus session belongs to another user")
)

// FocusSessionStore persists focus sessions
type FocusSessionStore interface {
	CreateSession(userID int64, sessionType models.SessionType, startTime time.Time) (*models.FocusSession, error)
	GetSessionByID(id int64) (*models.FocusSession, error)
	CompleteSession(sessionID int64, endTime time.Time, durationMinutes int) error
	GetUserSessions(userID int64) ([]models.FocusSession, error)
	GetUserSessionsBetween(userID int64, start, end time.Time) ([]models.FocusSession, error)
}

// FocusSessionService handles the focus session lifecycle: sessions are
// created open when a timer starts and closed exactly once when it ends.
// Closing a session triggers a synchronous recomputation of the owner's
// statistics summary.
type FocusSessionService struct {
	sessionRepo FocusSessionStore
	stats       *StatisticsService
	now         func() time.Time
}

// NewFocusSessionService creates a new focus session service
func NewFocusSessionService(sessionRepo FocusSessionStore, stats *StatisticsService) *FocusSessionService {
	return &FocusSessionService{
		sessionRepo: sessionRepo,
		stats:       stats,
		now:         time.Now,
	}
}

// StartSession creates a new open focus session. The start time is assigned
// server-side, so sessions can never be created with a future date.
func (s *FocusSessionService) StartSession(userID int64, rawType string) (*models.FocusSession, error) {
	sessionType, err := models.ParseSessionType(rawType)
	if err != nil {
		return nil, utils.ValidationError{Field: "sessionType", Message: err.Error()}
	}
	return s.sessionRepo.CreateSession(userID, sessionType, s.now())
}

// EndSession closes an open focus session with the elapsed duration and
// refreshes the owner's statistics. A zero duration is accepted (the session
// exists but never counts toward statistics); negative durations are
// rejected. Already-completed sessions cannot be closed again.
func (s *FocusSessionService) EndSession(userID, sessionID int64, durationMinutes int) (*models.FocusSession, error) {
	if durationMinutes < 0 {
		return nil, utils.ValidationError{Field: "durationMinutes", Message: "duration must not be negative"}
	}

	session, err := s.sessionRepo.GetSessionByID(sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrFocusSessionNotFound
	}
	if session.UserID != userID {
		return nil, ErrNotSessionOwner
	}
	if session.Completed() {
		return nil, ErrFocusSessionCompleted
	}

	endTime := s.now()
	if err := s.sessionRepo.CompleteSession(sessionID, endTime, durationMinutes); err != nil {
		return nil, err
	}
	session.EndTime = &endTime
	session.DurationMinutes = &durationMinutes

	if err := s.stats.UpdateUserStatistics(userID); err != nil {
		return nil, err
	}
	return session, nil
}

// Session retrieves a single focus session owned by the user
func (s *FocusSessionService) Session(userID, sessionID int64) (*models.FocusSession, error) {
	session, err := s.sessionRepo.GetSessionByID(sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrFocusSessionNotFound
	}
	if session.UserID != userID {
		return nil, ErrNotSessionOwner
	}
	return session, nil
}

// UserSessions retrieves all of a user's focus sessions, newest first
func (s *FocusSessionService) UserSessions(userID int64) ([]models.FocusSession, error) {
	return s.sessionRepo.GetUserSessions(userID)
}

// SessionsInRange retrieves a user's focus sessions within [start, end], newest first
func (s *FocusSessionService) SessionsInRange(userID int64, start, end time.Time) ([]models.FocusSession, error) {
	return s.sessionRepo.GetUserSessionsBetween(userID, start, end)
}
