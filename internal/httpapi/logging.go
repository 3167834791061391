package httpapi

import (
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// zlog is the structured logger used by the HTTP layer. Nop until SetLogger.
var zlog = zerolog.Nop()

// SetLogger installs a structured logger used by the HTTP layer.
func SetLogger(l zerolog.Logger) { zlog = l }

// LogLevel controls per-request logging behavior.
type LogLevel int

const (
	LevelOff LogLevel = iota
	LevelError
	LevelInfo
	LevelDebug
)

func parseLevel(s string) LogLevel {
	switch s {
	case "off", "":
		return LevelOff
	case "error":
		return LevelError
	case "info":
		return LevelInfo
	case "debug":
		return LevelDebug
	default:
		return LevelInfo
	}
}

// global default, read once
var defaultLogLevel = parseLevel(os.Getenv("SITECOMPARE_HTTP_LOG"))

// SetDefaultLogLevel overrides the request log level used without per-request
// overrides.
func SetDefaultLogLevel(s string) { defaultLogLevel = parseLevel(s) }

func requestLogLevel(r *http.Request) LogLevel {
	// Per-request overrides
	if v := r.URL.Query().Get("log"); v != "" {
		if v == "1" {
			return LevelDebug
		}
		return parseLevel(v)
	}
	if v := r.Header.Get("X-Log-Level"); v != "" {
		return parseLevel(v)
	}
	return defaultLogLevel
}

// logEvent returns a zerolog event for lvl tagged with the request id, or a
// disabled event.
func logEvent(lvl LogLevel, r *http.Request) *zerolog.Event {
	var e *zerolog.Event
	switch lvl {
	case LevelError:
		e = zlog.Error()
	case LevelDebug:
		e = zlog.Debug()
	default:
		e = zlog.Info()
	}
	if r != nil {
		if rid := middleware.GetReqID(r.Context()); rid != "" {
			e = e.Str("request_id", rid)
		}
	}
	return e
}

// logOutcome logs the end of a mutating request at the request's log level.
func logOutcome(r *http.Request, op string, status int, start time.Time, err error) {
	lvl := requestLogLevel(r)
	if lvl == LevelOff || (lvl == LevelError && err == nil) {
		return
	}
	at := LevelInfo
	if err != nil {
		at = LevelError
	}
	e := logEvent(at, r).Str("op", op).Int("status", status).Dur("dur", time.Since(start))
	if err != nil {
		e = e.Err(err)
	}
	if lvl >= LevelDebug {
		e = e.Str("path", r.URL.Path).Str("query", r.URL.RawQuery)
	}
	e.Msg(op + " end")
}
