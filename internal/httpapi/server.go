package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"sitecompare/internal/observable"
	"sitecompare/internal/sites"
	"sitecompare/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Types() []types.SiteTypeInfo
	Features(ctx context.Context, siteType string) ([]types.FeatureItem, error)
	FeatureTarget(ctx context.Context, oid int64) (types.GoToTarget, error)
	Sites() []types.SiteView
	Site(id string) (types.SiteView, error)
	AddSite(ctx context.Context, req types.AddSiteRequest) (types.SiteView, error)
	RemoveSite(id string) error
	Status() types.StatusResponse
	Params() types.ParamsResponse
	ShareURL(base string) string
	Ready() bool
	Watch(name string, fn observable.Handler) (cancel func())
	ServeEvents(w http.ResponseWriter, r *http.Request)
	ServeWS(w http.ResponseWriter, r *http.Request)
}

func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	// Compression for JSON endpoints; event streams are not compressible types
	r.Use(middleware.Compress(5, "application/json"))
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
			MaxAge:         300,
		}))
	}
	r.Use(MetricsMiddleware)

	r.Get("/types", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, types.TypesResponse{Types: svc.Types()})
	})

	r.Get("/features", func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.Features(r.Context(), r.URL.Query().Get("type"))
		if err != nil {
			writeJSONError(w, statusFor(err), err.Error())
			return
		}
		if items == nil {
			items = []types.FeatureItem{}
		}
		writeJSON(w, http.StatusOK, types.FeaturesResponse{Features: items})
	})

	r.Get("/features/{oid}", func(w http.ResponseWriter, r *http.Request) {
		oid, err := strconv.ParseInt(chi.URLParam(r, "oid"), 10, 64)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid feature id")
			return
		}
		target, err := svc.FeatureTarget(r.Context(), oid)
		if err != nil {
			writeJSONError(w, statusFor(err), err.Error())
			return
		}
		writeJSON(w, http.StatusOK, target)
	})

	r.Route("/sites", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, types.SitesResponse{Sites: svc.Sites()})
		})
		r.Post("/", func(w http.ResponseWriter, r *http.Request) {
			addSite(svc, w, r)
		})
		r.Get("/{id}", func(w http.ResponseWriter, r *http.Request) {
			view, err := svc.Site(chi.URLParam(r, "id"))
			if err != nil {
				writeJSONError(w, statusFor(err), err.Error())
				return
			}
			writeJSON(w, http.StatusOK, view)
		})
		r.Delete("/{id}", func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			err := svc.RemoveSite(chi.URLParam(r, "id"))
			if err != nil {
				status := statusFor(err)
				writeJSONError(w, status, err.Error())
				logOutcome(r, "remove", status, start, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
			logOutcome(r, "remove", http.StatusNoContent, start, nil)
		})
	})

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Status())
	})

	r.Get("/params", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Params())
	})

	r.Get("/share", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, types.ShareResponse{URL: svc.ShareURL(r.URL.Query().Get("base"))})
	})

	r.Get("/events", svc.ServeEvents)
	r.Get("/ws", svc.ServeWS)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("loading"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)

	return r
}

func addSite(svc Service, w http.ResponseWriter, r *http.Request) {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req types.AddSiteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		// oversized bodies also land here; report them as plain bad requests
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.FeatureID <= 0 {
		writeJSONError(w, http.StatusBadRequest, "feature_id is required")
		return
	}

	start := time.Now()
	lvl := requestLogLevel(r)
	if lvl >= LevelInfo {
		logEvent(LevelInfo, r).Int64("feature_id", req.FeatureID).Bool("wait", req.Wait).Msg("add start")
	}

	// Join server base context with request context so shutdown cancels the wait too.
	ctx, cancel := joinContexts(serverBaseCtx, r.Context())
	defer cancel()
	if req.Wait && addWaitTimeout > 0 {
		var cancelWait context.CancelFunc
		ctx, cancelWait = context.WithTimeout(ctx, addWaitTimeout)
		defer cancelWait()
	}

	view, err := svc.AddSite(ctx, req)
	if err != nil {
		// client went away; nothing to write
		if r.Context().Err() != nil {
			return
		}
		status := statusFor(err)
		if sites.IsAtCapacity(err) {
			IncrementBackpressure("at_capacity")
		}
		writeJSONError(w, status, err.Error())
		logOutcome(r, "add", status, start, err)
		return
	}
	status := http.StatusAccepted
	if req.Wait {
		status = http.StatusCreated
	}
	w.Header().Set("Location", "/sites/"+view.ID)
	writeJSON(w, status, view)
	logOutcome(r, "add", status, start, nil)
}
