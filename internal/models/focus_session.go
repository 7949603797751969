package models

import (
	"fmt"
	"time"
)

// SessionType is the closed set of focus session kinds. New kinds must be
// added here and handled in CountsTowardStats so that inclusion in the
// statistics is a deliberate decision, not a string mismatch.
type SessionType string

const (
	// SessionTypePomodoro is a timed focus session that counts toward statistics
	SessionTypePomodoro SessionType = "pomodoro"
	// SessionTypeFree is an untimed session that is recorded but never aggregated
	SessionTypeFree SessionType = "free"
)

// ParseSessionType validates a raw session type tag from the API boundary
func ParseSessionType(raw string) (SessionType, error) {
	switch SessionType(raw) {
	case SessionTypePomodoro:
		return SessionTypePomodoro, nil
	case SessionTypeFree:
		return SessionTypeFree, nil
	default:
		return "", fmt.Errorf("unknown session type %q", raw)
	}
}

// CountsTowardStats reports whether sessions of this type contribute to
// streaks and time aggregates
func (t SessionType) CountsTowardStats() bool {
	switch t {
	case SessionTypePomodoro:
		return true
	case SessionTypeFree:
		return false
	default:
		return false
	}
}

// FocusSession represents a single focus session. It is created in an open
// state (no end time or duration) and transitions exactly once to closed
// when the timer ends; it is never mutated afterwards.
type FocusSession struct {
	ID              int64
	UserID          int64
	SessionType     SessionType
	StartTime       time.Time
	EndTime         *time.Time
	DurationMinutes *int
}

// Completed reports whether the session has been closed
func (s *FocusSession) Completed() bool {
	return s.EndTime != nil
}

// Qualifies reports whether the session counts toward statistics: a
// completed pomodoro session with a positive duration. Sessions failing
// this check exist in the store but are statistically invisible.
func (s *FocusSession) Qualifies() bool {
	return s.SessionType.CountsTowardStats() &&
		s.DurationMinutes != nil &&
		*s.DurationMinutes > 0
}
