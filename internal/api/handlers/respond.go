package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/wonny/cohesion/internal/contracts"
	"github.com/wonny/cohesion/pkg/logger"
)

// Helper functions

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// respondServiceError maps validation errors to 400, missing states to 404
// and everything else to 500
func respondServiceError(w http.ResponseWriter, log *logger.Logger, err error, what string) {
	var ve *contracts.ValidationError
	switch {
	case errors.As(err, &ve):
		respondError(w, http.StatusBadRequest, ve.Error())
	case errors.Is(err, contracts.ErrSystemStateNotFound):
		respondError(w, http.StatusNotFound, "System state not found")
	default:
		log.WithError(err).Error("Failed to " + what)
		respondError(w, http.StatusInternalServerError, "Failed to "+what)
	}
}

// scopeParams reads the required team and side query parameters
func scopeParams(r *http.Request) (string, contracts.Side, error) {
	q := r.URL.Query()
	team := q.Get("team")
	if team == "" {
		return "", "", &contracts.ValidationError{Field: "team", Message: "team is required"}
	}
	side, err := contracts.ParseSide(q.Get("side"))
	if err != nil {
		return "", "", err
	}
	return team, side, nil
}

// dateParam parses an optional YYYY-MM-DD parameter, defaulting to today
func dateParam(r *http.Request, name string) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return contracts.DateOnly(time.Now()), nil
	}
	d, err := time.Parse(contracts.DateLayout, raw)
	if err != nil {
		return time.Time{}, &contracts.ValidationError{Field: name, Message: "invalid date format (expected YYYY-MM-DD)"}
	}
	return d, nil
}
