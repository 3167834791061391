package httpapi

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"sitecompare/internal/observable"
	"sitecompare/internal/sites"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sitecompare",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"path", "method", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "sitecompare",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"path", "method", "status"},
	)

	httpInflight = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "sitecompare",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "In-flight HTTP requests",
		},
		[]string{"path"},
	)

	backpressureTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sitecompare",
			Subsystem: "http",
			Name:      "backpressure_total",
			Help:      "Total backpressure rejections (429)",
		},
		[]string{"reason"},
	)

	sitesOccupied = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "sitecompare",
		Name:      "sites_occupied",
		Help:      "Number of mounted candidate sites",
	})

	sitesCapacity = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "sitecompare",
		Name:      "sites_capacity",
		Help:      "Maximum number of concurrent candidate sites",
	})

	enrichmentTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sitecompare",
			Name:      "enrichment_total",
			Help:      "Enrichment outcomes by result",
		},
		[]string{"outcome"},
	)

	enrichmentDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "sitecompare",
		Name:      "enrichment_duration_seconds",
		Help:      "Duration of enrichment requests in seconds",
		Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60},
	})
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal, httpRequestDuration, httpInflight, backpressureTotal,
		sitesOccupied, sitesCapacity, enrichmentTotal, enrichmentDuration,
	)
	sitesCapacity.Set(sites.MaxSites)
}

// statusRecorder wraps http.ResponseWriter to capture status code
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

// Flush lets streaming handlers behind the middleware flush.
func (sr *statusRecorder) Flush() {
	if f, ok := sr.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Hijack lets WebSocket upgrades pass through the middleware.
func (sr *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if h, ok := sr.ResponseWriter.(http.Hijacker); ok {
		sr.status = http.StatusSwitchingProtocols
		return h.Hijack()
	}
	return nil, nil, errors.New("hijack not supported")
}

func (sr *statusRecorder) Unwrap() http.ResponseWriter { return sr.ResponseWriter }

// MetricsMiddleware instruments requests for Prometheus
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sr := &statusRecorder{ResponseWriter: w, status: 200}
		start := time.Now()
		httpInflight.WithLabelValues(r.URL.Path).Inc()
		next.ServeHTTP(sr, r)
		httpInflight.WithLabelValues(r.URL.Path).Dec()
		// the route pattern is only known once chi has routed the request
		path := routePatternOrPath(r)
		statusLabel := strconv.Itoa(sr.status)
		dur := time.Since(start).Seconds()
		httpRequestsTotal.WithLabelValues(path, r.Method, statusLabel).Inc()
		httpRequestDuration.WithLabelValues(path, r.Method, statusLabel).Observe(dur)
	})
}

// routePatternOrPath returns the chi route pattern if available, otherwise
// falls back to URL path. This avoids high-cardinality label values.
func routePatternOrPath(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}

// IncrementBackpressure is called when returning 429 to the client
func IncrementBackpressure(reason string) {
	if reason == "" {
		reason = "unspecified"
	}
	backpressureTotal.WithLabelValues(reason).Inc()
}

// EnrichmentMetrics records enrichment outcomes from manager events.
type EnrichmentMetrics struct{}

// Publish implements sites.EventPublisher.
func (EnrichmentMetrics) Publish(e sites.Event) {
	var outcome string
	switch e.Name {
	case sites.EventEnrichDone:
		outcome = "success"
	case sites.EventEnrichFailed:
		outcome = "failure"
		if k, ok := e.Fields["kind"].(string); ok && k != "" {
			outcome = k
		}
	case sites.EventEnrichDropped:
		outcome = "dropped"
	default:
		return
	}
	enrichmentTotal.WithLabelValues(outcome).Inc()
	if d, ok := e.Fields["duration_seconds"].(float64); ok {
		enrichmentDuration.Observe(d)
	}
}

// occupancyWatcher is implemented by services exposing observable counts.
type occupancyWatcher interface {
	Watch(name string, fn observable.Handler) (cancel func())
}

// WatchOccupancy keeps the occupancy gauge in sync with svc.
func WatchOccupancy(svc occupancyWatcher) (cancel func()) {
	return svc.Watch(sites.PropOccupiedCount, func(v any) {
		if n, ok := v.(int); ok {
			sitesOccupied.Set(float64(n))
		}
	})
}
