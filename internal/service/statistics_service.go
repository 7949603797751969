package service

import (
	"time"

	"solofocus/internal/models"
)

const dateLayout = "2006-01-02"

// FocusSessionSource provides the session history statistics are derived from
type FocusSessionSource interface {
	GetUserSessions(userID int64) ([]models.FocusSession, error)
	GetUserSessionsSince(userID int64, since time.Time) ([]models.FocusSession, error)
}

// UserStatsStore reads users and persists the denormalized summary fields
type UserStatsStore interface {
	GetUserByID(id int64) (*models.User, error)
	UpdateStatistics(userID int64, totalFocusHours float64, lastSessionTime *time.Time, currentStreak, maxStreak int) error
}

// Bucket is a single time slot in a chart series: a calendar day or month
// key mapped to the total focused minutes recorded in it
type Bucket struct {
	Key     string `json:"key"`
	Minutes int    `json:"minutes"`
}

// StatisticsService derives streaks and time-bucketed aggregates from a
// user's focus session history. The per-user summary (total hours, streaks,
// last session time) is recomputed in full and written back to the user row;
// the bucketed views are computed on demand and never persisted.
type StatisticsService struct {
	sessions FocusSessionSource
	users    UserStatsStore
	now      func() time.Time
}

// NewStatisticsService creates a new statistics service
func NewStatisticsService(sessions FocusSessionSource, users UserStatsStore) *StatisticsService {
	return &StatisticsService{
		sessions: sessions,
		users:    users,
		now:      time.Now,
	}
}

// UpdateUserStatistics recomputes the user's summary from their full session
// history and persists it. The recomputation is idempotent: calling it twice
// with unchanged session data writes identical values. MaxStreak never
// decreases, even when the current streak later drops.
func (s *StatisticsService) UpdateUserStatistics(userID int64) error {
	user, err := s.users.GetUserByID(userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	sessions, err := s.sessions.GetUserSessions(userID)
	if err != nil {
		return err
	}

	var totalMinutes int
	var lastSessionTime *time.Time
	for i := range sessions {
		session := &sessions[i]
		if !session.Qualifies() {
			continue
		}
		totalMinutes += *session.DurationMinutes
		if lastSessionTime == nil || session.StartTime.After(*lastSessionTime) {
			t := session.StartTime
			lastSessionTime = &t
		}
	}

	streak := calculateStreak(sessions, dateOf(s.now()))

	maxStreak := user.MaxStreak
	if streak > maxStreak {
		maxStreak = streak
	}

	return s.users.UpdateStatistics(userID, float64(totalMinutes)/60.0, lastSessionTime, streak, maxStreak)
}

// DashboardStatistics returns the persisted summary for a user
func (s *StatisticsService) DashboardStatistics(userID int64) (*models.UserStats, error) {
	user, err := s.users.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	return &models.UserStats{
		TotalFocusHours: user.TotalFocusHours,
		LastSessionTime: user.LastSessionTime,
		CurrentStreak:   user.CurrentStreak,
		MaxStreak:       user.MaxStreak,
	}, nil
}

// WeeklyStatistics returns focused minutes per day for the last 7 days
// including today, oldest day first
func (s *StatisticsService) WeeklyStatistics(userID int64) ([]Bucket, error) {
	return s.dailyBuckets(userID, 7)
}

// MonthlyStatistics returns focused minutes per day for the last 30 days
// including today, oldest day first
func (s *StatisticsService) MonthlyStatistics(userID int64) ([]Bucket, error) {
	return s.dailyBuckets(userID, 30)
}

// ContributionData returns focused minutes per day for the last 365 days
// including today, oldest day first. Every day is present, so gaps render
// as zero cells in a contribution heatmap rather than missing ones.
func (s *StatisticsService) ContributionData(userID int64) ([]Bucket, error) {
	return s.dailyBuckets(userID, 365)
}

// YearlyStatistics returns focused minutes per calendar month for the 12
// months ending this month, oldest month first. The session window is the
// last 365 days, so the oldest month may be partially covered.
func (s *StatisticsService) YearlyStatistics(userID int64) ([]Bucket, error) {
	now := s.now()

	keys := make([]string, 0, 12)
	totals := make(map[string]int, 12)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	for i := 11; i >= 0; i-- {
		key := monthStart.AddDate(0, -i, 0).Format("2006-01")
		keys = append(keys, key)
		totals[key] = 0
	}

	sessions, err := s.sessions.GetUserSessionsSince(userID, now.AddDate(0, 0, -365))
	if err != nil {
		return nil, err
	}
	addToBuckets(totals, sessions, "2006-01")

	return orderedBuckets(keys, totals), nil
}

// dailyBuckets aggregates qualifying session minutes into one bucket per
// calendar day for the last days days including today
func (s *StatisticsService) dailyBuckets(userID int64, days int) ([]Bucket, error) {
	now := s.now()

	keys := make([]string, 0, days)
	totals := make(map[string]int, days)
	for i := days - 1; i >= 0; i-- {
		key := now.AddDate(0, 0, -i).Format(dateLayout)
		keys = append(keys, key)
		totals[key] = 0
	}

	windowStart := startOfDay(now.AddDate(0, 0, -(days - 1)))
	sessions, err := s.sessions.GetUserSessionsSince(userID, windowStart)
	if err != nil {
		return nil, err
	}
	addToBuckets(totals, sessions, dateLayout)

	return orderedBuckets(keys, totals), nil
}

// addToBuckets adds each qualifying session's minutes to its bucket. Keys
// outside the pre-seeded window are ignored rather than created; the fetch
// filter should already exclude them.
func addToBuckets(totals map[string]int, sessions []models.FocusSession, layout string) {
	for i := range sessions {
		session := &sessions[i]
		if !session.Qualifies() {
			continue
		}
		key := session.StartTime.Format(layout)
		if _, ok := totals[key]; ok {
			totals[key] += *session.DurationMinutes
		}
	}
}

func orderedBuckets(keys []string, totals map[string]int) []Bucket {
	buckets := make([]Bucket, 0, len(keys))
	for _, key := range keys {
		buckets = append(buckets, Bucket{Key: key, Minutes: totals[key]})
	}
	return buckets
}

// calculateStreak returns the number of consecutive calendar days ending at
// today or yesterday on which at least one qualifying session was recorded.
// Multiple sessions on one day count once. A gap of more than one whole day
// between today and the most recent session day breaks the streak.
//
// Dates after today are kept in the set like any other date, matching how
// the summary has always behaved; the session service never creates them
// (start times are server-assigned), so they can only appear in imported data.
func calculateStreak(sessions []models.FocusSession, today time.Time) int {
	sessionDates := make(map[time.Time]struct{})
	for i := range sessions {
		if !sessions[i].Qualifies() {
			continue
		}
		sessionDates[dateOf(sessions[i].StartTime)] = struct{}{}
	}
	if len(sessionDates) == 0 {
		return 0
	}

	var mostRecent time.Time
	for date := range sessionDates {
		if date.After(mostRecent) {
			mostRecent = date
		}
	}

	if daysBetween(mostRecent, today) > 1 {
		return 0
	}

	streak := 0
	for check := mostRecent; ; check = check.AddDate(0, 0, -1) {
		if _, ok := sessionDates[check]; !ok {
			break
		}
		streak++
	}
	return streak
}

// dateOf reduces a timestamp to its calendar date, normalized to UTC
// midnight so that map lookups and day arithmetic are exact
func dateOf(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// daysBetween returns the whole days from a to b for UTC-midnight dates
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}

// startOfDay returns midnight of t's calendar day in t's location
func startOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
