package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"solofocus/internal/service"
	"solofocus/internal/utils"
)

// respondJSON writes a JSON response with the given status code
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Failed to encode JSON response: %v", err)
	}
}

// respondWithError writes a JSON error response, logging the underlying
// error when one is given
func respondWithError(w http.ResponseWriter, status int, userMsg string, err error) {
	if err != nil {
		log.Printf("%s: %v", userMsg, err)
	}
	respondJSON(w, status, map[string]string{"error": userMsg})
}

// respondServiceError maps known service errors to HTTP statuses and
// falls back to a logged 500 for everything else
func respondServiceError(w http.ResponseWriter, err error) {
	var verr utils.ValidationError
	switch {
	case errors.As(err, &verr):
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": verr.Message, "field": verr.Field})
	case errors.Is(err, service.ErrUsernameTaken),
		errors.Is(err, service.ErrEmailTaken):
		respondJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials):
		respondJSON(w, http.StatusUnauthorized, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrFocusSessionNotFound),
		errors.Is(err, service.ErrUserNotFound):
		respondJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrNotSessionOwner):
		respondJSON(w, http.StatusForbidden, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrFocusSessionCompleted):
		respondJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		respondWithError(w, http.StatusInternalServerError, "Internal server error", err)
	}
}
