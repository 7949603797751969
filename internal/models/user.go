package models

import "time"

// User represents an account in the system. The statistics fields
// (TotalFocusHours, LastSessionTime, CurrentStreak, MaxStreak) are a
// denormalized summary recomputed in full by the statistics service;
// the focus_sessions table remains the source of truth.
type User struct {
	ID            int64
	Username      string
	Email         string
	PasswordHash  string
	OAuthProvider string
	OAuthSubject  string
	CreatedAt     time.Time

	TotalFocusHours float64
	LastSessionTime *time.Time
	CurrentStreak   int
	MaxStreak       int
}

// Session represents an authenticated browser session
type Session struct {
	ID        string
	UserID    int64
	ExpiresAt time.Time
	CreatedAt time.Time
}

// IsExpired checks if the session has expired
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// UserStats is the summary snapshot served to the dashboard
type UserStats struct {
	TotalFocusHours float64    `json:"totalFocusHours"`
	LastSessionTime *time.Time `json:"lastSessionTime,omitempty"`
	CurrentStreak   int        `json:"currentStreak"`
	MaxStreak       int        `json:"maxStreak"`
}
