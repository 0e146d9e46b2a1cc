package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/moviegraph/moviegraph/internal/models"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors to HTTP statuses. Upstream failures surface
// as 502 so clients can distinguish them from our own faults.
func writeError(w http.ResponseWriter, logger *logrus.Logger, err error) {
	var status int
	var msg string
	switch {
	case errors.Is(err, models.ErrNotFound):
		status, msg = http.StatusNotFound, "not found"
	case errors.Is(err, models.ErrValidation):
		status, msg = http.StatusBadRequest, "invalid request"
	case errors.Is(err, models.ErrDataFormat), errors.Is(err, models.ErrExternalService):
		status, msg = http.StatusBadGateway, "upstream failure"
	default:
		status, msg = http.StatusInternalServerError, "internal error"
	}

	if status >= http.StatusInternalServerError {
		logger.WithError(err).Error("Request failed")
	} else {
		logger.WithError(err).Debug("Request rejected")
	}
	writeJSON(w, status, map[string]string{"error": msg})
}
