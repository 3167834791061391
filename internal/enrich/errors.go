package enrich

import (
	"context"
	"errors"
	"strconv"
)

// notAuthenticatedError signals missing or rejected credentials. It is a
// configuration problem and is never retried.
type notAuthenticatedError struct{ msg string }

func (e notAuthenticatedError) Error() string { return "not authenticated: " + e.msg }

// ErrNotAuthenticated constructs a notAuthenticatedError.
func ErrNotAuthenticated(msg string) error { return notAuthenticatedError{msg: msg} }

// IsNotAuthenticated reports whether err indicates a credentials problem.
func IsNotAuthenticated(err error) bool {
	var e notAuthenticatedError
	return errors.As(err, &e)
}

// noDataError signals an enrichment query that returned no features.
type noDataError struct{}

func (noDataError) Error() string { return "no data found" }

// ErrNoData is returned when the service answers without a feature.
var ErrNoData error = noDataError{}

// IsNoData reports whether err indicates an empty enrichment result.
func IsNoData(err error) bool {
	var e noDataError
	return errors.As(err, &e)
}

// serviceError is any other failure reported by the enrichment service.
type serviceError struct {
	status int // HTTP status, 0 when the error came in a 200 payload
	code   int // service error code, 0 when absent
	msg    string
}

func (e serviceError) Error() string {
	s := "enrichment service error"
	if e.status != 0 {
		s += " (http " + strconv.Itoa(e.status) + ")"
	}
	if e.code != 0 {
		s += " [" + strconv.Itoa(e.code) + "]"
	}
	if e.msg != "" {
		s += ": " + e.msg
	}
	return s
}

func (e serviceError) retryable() bool {
	return e.status >= 500 || e.status == 429 || e.code >= 500 || e.code == 429
}

// IsServiceError reports whether err was reported by the enrichment service.
func IsServiceError(err error) bool {
	var e serviceError
	return errors.As(err, &e)
}

// Error kinds rendered into a site's error payload.
const (
	KindNotAuthenticated = "not_authenticated"
	KindNoData           = "no_data"
	KindService          = "service"
	KindCanceled         = "canceled"
)

// Kind classifies err for display.
func Kind(err error) string {
	switch {
	case IsNotAuthenticated(err):
		return KindNotAuthenticated
	case IsNoData(err):
		return KindNoData
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	default:
		return KindService
	}
}
