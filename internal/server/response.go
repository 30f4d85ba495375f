package server

import (
	"encoding/json"
	"net/http"

	"stockdeck/internal/errors"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps service errors onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	var verr *errors.ValidationError
	switch {
	case errors.As(err, &verr):
		status = http.StatusBadRequest
	case errors.Is(err, errors.ErrSymbolNotFound),
		errors.Is(err, errors.ErrWatchlistNotFound),
		errors.Is(err, errors.ErrAlertNotFound),
		errors.Is(err, errors.ErrDataNotFound):
		status = http.StatusNotFound
	case errors.Is(err, errors.ErrProviderUnavailable):
		status = http.StatusServiceUnavailable
	case errors.Is(err, errors.ErrRateLimited):
		status = http.StatusTooManyRequests
	case errors.Is(err, errors.ErrUnsupported):
		status = http.StatusNotImplemented
	}

	writeJSON(w, status, errorResponse{Error: err.Error()})
}
