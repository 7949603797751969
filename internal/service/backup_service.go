package service

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"solofocus/internal/database"
)

// BackupData represents the complete database backup structure
type BackupData struct {
	Version       string               `json:"version"`
	ExportedAt    time.Time            `json:"exported_at"`
	DatabaseType  string               `json:"database_type"`
	Users         []UserBackup         `json:"users"`
	FocusSessions []FocusSessionBackup `json:"focus_sessions"`
}

// UserBackup represents a user record for backup
type UserBackup struct {
	ID              int64      `json:"id"`
	Username        string     `json:"username"`
	Email           string     `json:"email"`
	PasswordHash    string     `json:"password_hash"`
	OAuthProvider   string     `json:"oauth_provider"`
	OAuthSubject    string     `json:"oauth_subject"`
	CreatedAt       time.Time  `json:"created_at"`
	TotalFocusHours float64    `json:"total_focus_hours"`
	LastSessionTime *time.Time `json:"last_session_time"`
	CurrentStreak   int        `json:"current_streak"`
	MaxStreak       int        `json:"max_streak"`
}

// FocusSessionBackup represents a focus session record for backup
type FocusSessionBackup struct {
	ID              int64      `json:"id"`
	UserID          int64      `json:"user_id"`
	SessionType     string     `json:"session_type"`
	StartTime       time.Time  `json:"start_time"`
	EndTime         *time.Time `json:"end_time"`
	DurationMinutes *int       `json:"duration_minutes"`
}

// BackupService handles database backup and restore operations
type BackupService struct {
	db *database.DB
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB) *BackupService {
	return &BackupService{db: db}
}

// Export creates a complete backup of the database to a file
func (s *BackupService) Export(outputPath string) error {
	log.Println("Starting database export...")

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := s.ExportToWriter(file); err != nil {
		return err
	}

	log.Printf("Database exported successfully to %s", outputPath)
	return nil
}

// ExportToWriter writes a complete backup of the database as indented JSON
func (s *BackupService) ExportToWriter(w io.Writer) error {
	backup := &BackupData{
		Version:      "1.0",
		ExportedAt:   time.Now(),
		DatabaseType: "universal",
	}

	if err := s.exportUsers(backup); err != nil {
		return fmt.Errorf("failed to export users: %w", err)
	}
	if err := s.exportFocusSessions(backup); err != nil {
		return fmt.Errorf("failed to export focus sessions: %w", err)
	}

	log.Printf("Exported: %d users, %d focus sessions", len(backup.Users), len(backup.FocusSessions))

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(backup)
}

// Import restores a backup file into the database
func (s *BackupService) Import(inputPath string) error {
	log.Printf("Starting database import from %s...", inputPath)

	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	return s.ImportFromReader(file)
}

// ImportFromReader restores a backup from a reader. The whole restore runs
// in one transaction so a malformed backup never leaves partial data behind.
func (s *BackupService) ImportFromReader(reader io.Reader) error {
	var backup BackupData
	decoder := json.NewDecoder(reader)
	if err := decoder.Decode(&backup); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}

	log.Printf("Backup version: %s, exported at: %s", backup.Version, backup.ExportedAt)

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Import in order of dependencies
	if err := s.importUsers(tx, backup.Users); err != nil {
		return fmt.Errorf("failed to import users: %w", err)
	}
	if err := s.importFocusSessions(tx, backup.FocusSessions); err != nil {
		return fmt.Errorf("failed to import focus sessions: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit import: %w", err)
	}

	log.Println("Database import completed successfully")
	return nil
}

func (s *BackupService) exportUsers(backup *BackupData) error {
	query := "SELECT id, username, email, password_hash, COALESCE(oauth_provider, ''), COALESCE(oauth_subject, ''), created_at, total_focus_hours, last_session_time, current_streak, max_streak FROM users ORDER BY id"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var u UserBackup
		var lastSession sql.NullTime
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.OAuthProvider, &u.OAuthSubject, &u.CreatedAt, &u.TotalFocusHours, &lastSession, &u.CurrentStreak, &u.MaxStreak); err != nil {
			return err
		}
		if lastSession.Valid {
			u.LastSessionTime = &lastSession.Time
		}
		backup.Users = append(backup.Users, u)
	}
	return rows.Err()
}

func (s *BackupService) exportFocusSessions(backup *BackupData) error {
	query := "SELECT id, user_id, session_type, start_time, end_time, duration_minutes FROM focus_sessions ORDER BY id"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var fs FocusSessionBackup
		var endTime sql.NullTime
		var duration sql.NullInt64
		if err := rows.Scan(&fs.ID, &fs.UserID, &fs.SessionType, &fs.StartTime, &endTime, &duration); err != nil {
			return err
		}
		if endTime.Valid {
			fs.EndTime = &endTime.Time
		}
		if duration.Valid {
			d := int(duration.Int64)
			fs.DurationMinutes = &d
		}
		backup.FocusSessions = append(backup.FocusSessions, fs)
	}
	return rows.Err()
}

func (s *BackupService) importUsers(tx *database.Tx, users []UserBackup) error {
	log.Printf("Importing %d users...", len(users))
	for _, u := range users {
		query := "INSERT INTO users (id, username, email, password_hash, oauth_provider, oauth_subject, created_at, total_focus_hours, last_session_time, current_streak, max_streak) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
		_, err := tx.Exec(query, u.ID, u.Username, u.Email, u.PasswordHash, nullIfEmpty(u.OAuthProvider), nullIfEmpty(u.OAuthSubject), u.CreatedAt, u.TotalFocusHours, u.LastSessionTime, u.CurrentStreak, u.MaxStreak)
		if err != nil {
			return fmt.Errorf("failed to import user %d: %w", u.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importFocusSessions(tx *database.Tx, sessions []FocusSessionBackup) error {
	log.Printf("Importing %d focus sessions...", len(sessions))
	for _, fs := range sessions {
		query := "INSERT INTO focus_sessions (id, user_id, session_type, start_time, end_time, duration_minutes) VALUES (?, ?, ?, ?, ?, ?)"
		_, err := tx.Exec(query, fs.ID, fs.UserID, fs.SessionType, fs.StartTime, fs.EndTime, fs.DurationMinutes)
		if err != nil {
			return fmt.Errorf("failed to import focus session %d: %w", fs.ID, err)
		}
	}
	return nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
