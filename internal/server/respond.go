package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/desertthunder/spotctl/internal/models"
	"github.com/desertthunder/spotctl/internal/shared"
)

const msgUpstream = "Spotify API error. Check device."

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeText(w http.ResponseWriter, status int, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(text))
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), models.Envelope{Success: false, Message: messageFor(err)})
}

// statusFor classifies err for the control API.
func statusFor(err error) int {
	switch {
	case errors.Is(err, shared.ErrUpstream):
		return http.StatusInternalServerError
	case errors.Is(err, shared.ErrMissingUserID),
		errors.Is(err, shared.ErrInvalidInput),
		errors.Is(err, shared.ErrInvalidAction):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrNotAuthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// messageFor is the client-facing text for err. Upstream and internal details are never exposed.
func messageFor(err error) string {
	switch {
	case errors.Is(err, shared.ErrUpstream):
		return msgUpstream
	case errors.Is(err, shared.ErrMissingUserID):
		return "User ID is missing"
	case errors.Is(err, shared.ErrInvalidAction):
		return "Invalid action"
	case errors.Is(err, shared.ErrInvalidInput):
		return err.Error()
	case errors.Is(err, shared.ErrNotAuthorized):
		return "User not authorized"
	default:
		return "Internal server error"
	}
}
