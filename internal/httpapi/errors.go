package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"sitecompare/internal/features"
	"sitecompare/internal/sites"
	"sitecompare/internal/sitetype"
	"sitecompare/pkg/types"
)

// HTTPError allows services to provide an HTTP status code for an error.
type HTTPError interface {
	error
	StatusCode() int
}

// statusFor maps well-known domain errors to HTTP status codes.
func statusFor(err error) int {
	var he HTTPError
	switch {
	case sites.IsAtCapacity(err):
		return http.StatusTooManyRequests
	case sites.IsSiteNotFound(err), features.IsNotFound(err):
		return http.StatusNotFound
	case sitetype.IsUnknownType(err):
		return http.StatusBadRequest
	case errors.Is(err, sites.ErrClosed), errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &he):
		return he.StatusCode()
	}
	return http.StatusInternalServerError
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg, Code: status})
}

// writeJSON writes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logEvent(LevelError, nil).Err(err).Msg("encode response")
	}
}
