package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"solofocus/internal/models"
	"solofocus/internal/service"
)

// TimerHandler handles focus session timer HTTP requests
type TimerHandler struct {
	sessionService *service.FocusSessionService
}

// NewTimerHandler creates a new timer handler
func NewTimerHandler(sessionService *service.FocusSessionService) *TimerHandler {
	return &TimerHandler{sessionService: sessionService}
}

type focusSessionView struct {
	ID              int64      `json:"id"`
	SessionType     string     `json:"sessionType"`
	StartTime       time.Time  `json:"startTime"`
	EndTime         *time.Time `json:"endTime,omitempty"`
	DurationMinutes *int       `json:"durationMinutes,omitempty"`
}

func viewOfFocusSession(s *models.FocusSession) focusSessionView {
	return focusSessionView{
		ID:              s.ID,
		SessionType:     string(s.SessionType),
		StartTime:       s.StartTime,
		EndTime:         s.EndTime,
		DurationMinutes: s.DurationMinutes,
	}
}

func viewsOfFocusSessions(sessions []models.FocusSession) []focusSessionView {
	views := make([]focusSessionView, 0, len(sessions))
	for i := range sessions {
		views = append(views, viewOfFocusSession(&sessions[i]))
	}
	return views
}

// StartSession starts a new focus session timer
func (h *TimerHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var req struct {
		SessionType string `json:"sessionType"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	session, err := h.sessionService.StartSession(user.ID, req.SessionType)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, viewOfFocusSession(session))
}

// EndSession completes a running focus session
func (h *TimerHandler) EndSession(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	sessionID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid session ID", nil)
		return
	}

	var req struct {
		DurationMinutes int `json:"durationMinutes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	session, err := h.sessionService.EndSession(user.ID, sessionID, req.DurationMinutes)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, viewOfFocusSession(session))
}

// GetSession returns a single focus session
func (h *TimerHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	sessionID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid session ID", nil)
		return
	}

	session, err := h.sessionService.Session(user.ID, sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, viewOfFocusSession(session))
}

// ListSessions returns the user's focus sessions, newest first. An optional
// from/to pair (RFC 3339) restricts the range.
func (h *TimerHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	fromParam := r.URL.Query().Get("from")
	toParam := r.URL.Query().Get("to")

	var sessions []models.FocusSession
	var err error
	if fromParam != "" || toParam != "" {
		from, perr := time.Parse(time.RFC3339, fromParam)
		if perr != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid 'from' timestamp", nil)
			return
		}
		to, perr := time.Parse(time.RFC3339, toParam)
		if perr != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid 'to' timestamp", nil)
			return
		}
		sessions, err = h.sessionService.SessionsInRange(user.ID, from, to)
	} else {
		sessions, err = h.sessionService.UserSessions(user.ID)
	}
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, viewsOfFocusSessions(sessions))
}
