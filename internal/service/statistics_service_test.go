package service

import (
	"math"
	"testing"
	"time"

	"solofocus/internal/models"
)

// fixedToday is the reference "today" used by all statistics tests
var fixedToday = time.Date(2025, time.June, 15, 14, 30, 0, 0, time.UTC)

type fakeSessionSource struct {
	sessions []models.FocusSession
}

func (f *fakeSessionSource) GetUserSessions(userID int64) ([]models.FocusSession, error) {
	return f.sessions, nil
}

func (f *fakeSessionSource) GetUserSessionsSince(userID int64, since time.Time) ([]models.FocusSession, error) {
	var out []models.FocusSession
	for _, s := range f.sessions {
		if !s.StartTime.Before(since) {
			out = append(out, s)
		}
	}
	return out, nil
}

type statsUpdate struct {
	totalFocusHours float64
	lastSessionTime *time.Time
	currentStreak   int
	maxStreak       int
}

type fakeUserStore struct {
	user    *models.User
	updates []statsUpdate
}

func (f *fakeUserStore) GetUserByID(id int64) (*models.User, error) {
	return f.user, nil
}

func (f *fakeUserStore) UpdateStatistics(userID int64, totalFocusHours float64, lastSessionTime *time.Time, currentStreak, maxStreak int) error {
	f.updates = append(f.updates, statsUpdate{totalFocusHours, lastSessionTime, currentStreak, maxStreak})
	f.user.TotalFocusHours = totalFocusHours
	f.user.LastSessionTime = lastSessionTime
	f.user.CurrentStreak = currentStreak
	f.user.MaxStreak = maxStreak
	return nil
}

func newTestService(user *models.User, sessions ...models.FocusSession) (*StatisticsService, *fakeUserStore) {
	users := &fakeUserStore{user: user}
	svc := NewStatisticsService(&fakeSessionSource{sessions: sessions}, users)
	svc.now = func() time.Time { return fixedToday }
	return svc, users
}

// pomodoro builds a completed pomodoro session started daysAgo days before
// fixedToday, lasting minutes minutes
func pomodoro(daysAgo, minutes int) models.FocusSession {
	start := fixedToday.AddDate(0, 0, -daysAgo)
	end := start.Add(time.Duration(minutes) * time.Minute)
	return models.FocusSession{
		UserID:          1,
		SessionType:     models.SessionTypePomodoro,
		StartTime:       start,
		EndTime:         &end,
		DurationMinutes: &minutes,
	}
}

func freeSession(daysAgo, minutes int) models.FocusSession {
	s := pomodoro(daysAgo, minutes)
	s.SessionType = models.SessionTypeFree
	return s
}

func openPomodoro(daysAgo int) models.FocusSession {
	start := fixedToday.AddDate(0, 0, -daysAgo)
	return models.FocusSession{
		UserID:      1,
		SessionType: models.SessionTypePomodoro,
		StartTime:   start,
	}
}

func TestCalculateStreak(t *testing.T) {
	today := dateOf(fixedToday)

	tests := []struct {
		name     string
		sessions []models.FocusSession
		want     int
	}{
		{
			name:     "no sessions",
			sessions: nil,
			want:     0,
		},
		{
			name:     "single session today",
			sessions: []models.FocusSession{pomodoro(0, 25)},
			want:     1,
		},
		{
			name:     "single session yesterday keeps streak alive",
			sessions: []models.FocusSession{pomodoro(1, 25)},
			want:     1,
		},
		{
			name:     "three consecutive days ending today",
			sessions: []models.FocusSession{pomodoro(0, 25), pomodoro(1, 25), pomodoro(2, 25)},
			want:     3,
		},
		{
			name:     "most recent session three days ago breaks streak",
			sessions: []models.FocusSession{pomodoro(3, 25), pomodoro(4, 25)},
			want:     0,
		},
		{
			name:     "gap in the middle stops the count",
			sessions: []models.FocusSession{pomodoro(0, 25), pomodoro(1, 25), pomodoro(3, 25)},
			want:     2,
		},
		{
			name:     "multiple sessions on one day count once",
			sessions: []models.FocusSession{pomodoro(0, 25), pomodoro(0, 50), pomodoro(0, 5)},
			want:     1,
		},
		{
			name:     "free sessions are ignored",
			sessions: []models.FocusSession{freeSession(0, 60)},
			want:     0,
		},
		{
			name:     "open sessions are ignored",
			sessions: []models.FocusSession{openPomodoro(0)},
			want:     0,
		},
		{
			name:     "zero duration sessions are ignored",
			sessions: []models.FocusSession{pomodoro(0, 0)},
			want:     0,
		},
		{
			name: "free session does not bridge a gap",
			sessions: []models.FocusSession{
				pomodoro(0, 25), freeSession(1, 25), pomodoro(2, 25),
			},
			want: 1,
		},
		{
			// Imported data can carry future start dates; they join the date
			// set like any other date and anchor the backwards walk.
			name:     "future-dated session anchors the streak",
			sessions: []models.FocusSession{pomodoro(-1, 25), pomodoro(0, 25)},
			want:     2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calculateStreak(tt.sessions, today)
			if got != tt.want {
				t.Errorf("calculateStreak() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestUpdateUserStatistics(t *testing.T) {
	t.Run("two sessions today and one yesterday", func(t *testing.T) {
		svc, users := newTestService(&models.User{ID: 1},
			pomodoro(0, 25),
			pomodoro(0, 30),
			pomodoro(1, 15),
		)

		if err := svc.UpdateUserStatistics(1); err != nil {
			t.Fatalf("UpdateUserStatistics() error = %v", err)
		}

		if len(users.updates) != 1 {
			t.Fatalf("expected 1 update, got %d", len(users.updates))
		}
		update := users.updates[0]

		wantHours := 70.0 / 60.0
		if math.Abs(update.totalFocusHours-wantHours) > 1e-9 {
			t.Errorf("totalFocusHours = %v, want %v", update.totalFocusHours, wantHours)
		}
		if update.currentStreak != 2 {
			t.Errorf("currentStreak = %d, want 2", update.currentStreak)
		}
		if update.maxStreak != 2 {
			t.Errorf("maxStreak = %d, want 2", update.maxStreak)
		}
		if update.lastSessionTime == nil || !update.lastSessionTime.Equal(fixedToday) {
			t.Errorf("lastSessionTime = %v, want %v", update.lastSessionTime, fixedToday)
		}
	})

	t.Run("empty history writes zeroes", func(t *testing.T) {
		svc, users := newTestService(&models.User{ID: 1})

		if err := svc.UpdateUserStatistics(1); err != nil {
			t.Fatalf("UpdateUserStatistics() error = %v", err)
		}

		update := users.updates[0]
		if update.totalFocusHours != 0 {
			t.Errorf("totalFocusHours = %v, want 0", update.totalFocusHours)
		}
		if update.currentStreak != 0 || update.maxStreak != 0 {
			t.Errorf("streaks = %d/%d, want 0/0", update.currentStreak, update.maxStreak)
		}
		if update.lastSessionTime != nil {
			t.Errorf("lastSessionTime = %v, want nil", update.lastSessionTime)
		}
	})

	t.Run("non-qualifying sessions are invisible", func(t *testing.T) {
		svc, users := newTestService(&models.User{ID: 1},
			freeSession(0, 120),
			openPomodoro(0),
			pomodoro(0, 0),
		)

		if err := svc.UpdateUserStatistics(1); err != nil {
			t.Fatalf("UpdateUserStatistics() error = %v", err)
		}

		update := users.updates[0]
		if update.totalFocusHours != 0 || update.currentStreak != 0 {
			t.Errorf("update = %+v, want all zero", update)
		}
	})

	t.Run("max streak never decreases", func(t *testing.T) {
		svc, users := newTestService(&models.User{ID: 1, MaxStreak: 5}, pomodoro(0, 25))

		if err := svc.UpdateUserStatistics(1); err != nil {
			t.Fatalf("UpdateUserStatistics() error = %v", err)
		}

		update := users.updates[0]
		if update.currentStreak != 1 {
			t.Errorf("currentStreak = %d, want 1", update.currentStreak)
		}
		if update.maxStreak != 5 {
			t.Errorf("maxStreak = %d, want 5 (must not decrease)", update.maxStreak)
		}
	})

	t.Run("max streak rises with current streak", func(t *testing.T) {
		svc, users := newTestService(&models.User{ID: 1, MaxStreak: 1},
			pomodoro(0, 25), pomodoro(1, 25), pomodoro(2, 25),
		)

		if err := svc.UpdateUserStatistics(1); err != nil {
			t.Fatalf("UpdateUserStatistics() error = %v", err)
		}

		update := users.updates[0]
		if update.maxStreak != 3 {
			t.Errorf("maxStreak = %d, want 3", update.maxStreak)
		}
		if update.maxStreak < update.currentStreak {
			t.Errorf("maxStreak %d < currentStreak %d", update.maxStreak, update.currentStreak)
		}
	})

	t.Run("idempotent with unchanged sessions", func(t *testing.T) {
		svc, users := newTestService(&models.User{ID: 1},
			pomodoro(0, 25), pomodoro(1, 15),
		)

		if err := svc.UpdateUserStatistics(1); err != nil {
			t.Fatalf("first update error = %v", err)
		}
		if err := svc.UpdateUserStatistics(1); err != nil {
			t.Fatalf("second update error = %v", err)
		}

		if len(users.updates) != 2 {
			t.Fatalf("expected 2 updates, got %d", len(users.updates))
		}
		first, second := users.updates[0], users.updates[1]
		if first.totalFocusHours != second.totalFocusHours ||
			first.currentStreak != second.currentStreak ||
			first.maxStreak != second.maxStreak {
			t.Errorf("updates differ: %+v vs %+v", first, second)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		users := &fakeUserStore{}
		svc := NewStatisticsService(&fakeSessionSource{}, users)
		svc.now = func() time.Time { return fixedToday }

		if err := svc.UpdateUserStatistics(42); err != ErrUserNotFound {
			t.Errorf("error = %v, want ErrUserNotFound", err)
		}
		if len(users.updates) != 0 {
			t.Errorf("expected no update for unknown user")
		}
	})
}

func TestDailyBucketWindows(t *testing.T) {
	tests := []struct {
		name    string
		compute func(*StatisticsService) ([]Bucket, error)
		days    int
	}{
		{
			name:    "weekly",
			compute: func(s *StatisticsService) ([]Bucket, error) { return s.WeeklyStatistics(1) },
			days:    7,
		},
		{
			name:    "monthly",
			compute: func(s *StatisticsService) ([]Bucket, error) { return s.MonthlyStatistics(1) },
			days:    30,
		},
		{
			name:    "contribution",
			compute: func(s *StatisticsService) ([]Bucket, error) { return s.ContributionData(1) },
			days:    365,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(&models.User{ID: 1})
			buckets, err := tt.compute(svc)
			if err != nil {
				t.Fatalf("error = %v", err)
			}

			if len(buckets) != tt.days {
				t.Fatalf("got %d buckets, want %d", len(buckets), tt.days)
			}
			// Oldest first, every day present, all zero
			for i, b := range buckets {
				wantKey := fixedToday.AddDate(0, 0, -(tt.days - 1 - i)).Format("2006-01-02")
				if b.Key != wantKey {
					t.Fatalf("bucket %d key = %q, want %q", i, b.Key, wantKey)
				}
				if b.Minutes != 0 {
					t.Errorf("bucket %q minutes = %d, want 0", b.Key, b.Minutes)
				}
			}
		})
	}
}

func TestWeeklyStatisticsAggregation(t *testing.T) {
	svc, _ := newTestService(&models.User{ID: 1},
		pomodoro(0, 25),
		pomodoro(0, 30),
		pomodoro(1, 15),
		freeSession(1, 90),  // never aggregated
		pomodoro(6, 10),     // oldest day in the window
		pomodoro(7, 45),     // outside the window
	)

	buckets, err := svc.WeeklyStatistics(1)
	if err != nil {
		t.Fatalf("WeeklyStatistics() error = %v", err)
	}
	if len(buckets) != 7 {
		t.Fatalf("got %d buckets, want 7", len(buckets))
	}

	byKey := make(map[string]int, len(buckets))
	for _, b := range buckets {
		byKey[b.Key] = b.Minutes
	}

	day := func(daysAgo int) string {
		return fixedToday.AddDate(0, 0, -daysAgo).Format("2006-01-02")
	}

	if got := byKey[day(0)]; got != 55 {
		t.Errorf("today = %d minutes, want 55", got)
	}
	if got := byKey[day(1)]; got != 15 {
		t.Errorf("yesterday = %d minutes, want 15", got)
	}
	if got := byKey[day(6)]; got != 10 {
		t.Errorf("oldest window day = %d minutes, want 10", got)
	}
	if got := byKey[day(2)]; got != 0 {
		t.Errorf("empty day = %d minutes, want 0", got)
	}
	if _, ok := byKey[day(7)]; ok {
		t.Errorf("window should not contain a bucket for 7 days ago")
	}
}

func TestYearlyStatistics(t *testing.T) {
	svc, _ := newTestService(&models.User{ID: 1},
		pomodoro(0, 25),   // June 2025
		pomodoro(20, 35),  // May 2025
		pomodoro(21, 5),   // May 2025
	)

	buckets, err := svc.YearlyStatistics(1)
	if err != nil {
		t.Fatalf("YearlyStatistics() error = %v", err)
	}
	if len(buckets) != 12 {
		t.Fatalf("got %d buckets, want 12", len(buckets))
	}

	if buckets[0].Key != "2024-07" {
		t.Errorf("first bucket = %q, want 2024-07", buckets[0].Key)
	}
	if buckets[11].Key != "2025-06" {
		t.Errorf("last bucket = %q, want 2025-06", buckets[11].Key)
	}
	if buckets[11].Minutes != 25 {
		t.Errorf("current month = %d minutes, want 25", buckets[11].Minutes)
	}
	if buckets[10].Key != "2025-05" || buckets[10].Minutes != 40 {
		t.Errorf("previous month = %q/%d, want 2025-05/40", buckets[10].Key, buckets[10].Minutes)
	}
	if buckets[0].Minutes != 0 {
		t.Errorf("oldest month = %d minutes, want 0", buckets[0].Minutes)
	}
}

func TestDashboardStatistics(t *testing.T) {
	last := fixedToday.Add(-2 * time.Hour)
	svc, _ := newTestService(&models.User{
		ID:              1,
		TotalFocusHours: 12.5,
		LastSessionTime: &last,
		CurrentStreak:   3,
		MaxStreak:       9,
	})

	stats, err := svc.DashboardStatistics(1)
	if err != nil {
		t.Fatalf("DashboardStatistics() error = %v", err)
	}

	if stats.TotalFocusHours != 12.5 {
		t.Errorf("TotalFocusHours = %v, want 12.5", stats.TotalFocusHours)
	}
	if stats.CurrentStreak != 3 || stats.MaxStreak != 9 {
		t.Errorf("streaks = %d/%d, want 3/9", stats.CurrentStreak, stats.MaxStreak)
	}
	if stats.LastSessionTime == nil || !stats.LastSessionTime.Equal(last) {
		t.Errorf("LastSessionTime = %v, want %v", stats.LastSessionTime, last)
	}
}
