package handlers

import (
	"log"
	"net/http"

	"solofocus/internal/models"
	"solofocus/internal/service"
)

// DashboardHandler serves the statistics views backing the dashboard
type DashboardHandler struct {
	statsService *service.StatisticsService
	emailService *service.EmailService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(statsService *service.StatisticsService, emailService *service.EmailService) *DashboardHandler {
	return &DashboardHandler{
		statsService: statsService,
		emailService: emailService,
	}
}

// GetStats refreshes the user's summary from their session history and
// returns it. A failed refresh still serves a response: the dashboard
// falls back to an all-zero snapshot rather than erroring.
func (h *DashboardHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	if err := h.statsService.UpdateUserStatistics(user.ID); err != nil {
		log.Printf("Failed to refresh statistics for user %d: %v", user.ID, err)
		respondJSON(w, http.StatusOK, &models.UserStats{})
		return
	}

	stats, err := h.statsService.DashboardStatistics(user.ID)
	if err != nil {
		log.Printf("Failed to load statistics for user %d: %v", user.ID, err)
		respondJSON(w, http.StatusOK, &models.UserStats{})
		return
	}

	respondJSON(w, http.StatusOK, stats)
}

// GetWeekly returns focused minutes per day for the last 7 days
func (h *DashboardHandler) GetWeekly(w http.ResponseWriter, r *http.Request) {
	h.respondBuckets(w, r, h.statsService.WeeklyStatistics)
}

// GetMonthly returns focused minutes per day for the last 30 days
func (h *DashboardHandler) GetMonthly(w http.ResponseWriter, r *http.Request) {
	h.respondBuckets(w, r, h.statsService.MonthlyStatistics)
}

// GetYearly returns focused minutes per month for the last 12 months
func (h *DashboardHandler) GetYearly(w http.ResponseWriter, r *http.Request) {
	h.respondBuckets(w, r, h.statsService.YearlyStatistics)
}

// GetContribution returns focused minutes per day for the last 365 days
func (h *DashboardHandler) GetContribution(w http.ResponseWriter, r *http.Request) {
	h.respondBuckets(w, r, h.statsService.ContributionData)
}

func (h *DashboardHandler) respondBuckets(w http.ResponseWriter, r *http.Request, compute func(int64) ([]service.Bucket, error)) {
	user := GetUserFromContext(r.Context())

	buckets, err := compute(user.ID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to compute statistics", err)
		return
	}

	respondJSON(w, http.StatusOK, buckets)
}

// SendEmailSummary emails the user their weekly focus summary
func (h *DashboardHandler) SendEmailSummary(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	if !h.emailService.IsEnabled() {
		respondWithError(w, http.StatusServiceUnavailable, "Email is not configured", nil)
		return
	}

	week, err := h.statsService.WeeklyStatistics(user.ID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to compute statistics", err)
		return
	}

	if err := h.emailService.SendWeeklySummary(r.Context(), user, week); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to send email", err)
		return
	}

	respondJSON(w, http.StatusAccepted, map[string]string{"status": "sent"})
}
