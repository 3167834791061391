package httpapi

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"sitecompare/internal/sites"
)

func metricValue(c prometheus.Metric) float64 {
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		return -1
	}
	if m.Counter != nil {
		return m.GetCounter().GetValue()
	}
	return m.GetGauge().GetValue()
}

func TestEnrichmentMetrics_CountsOutcomes(t *testing.T) {
	before := metricValue(enrichmentTotal.WithLabelValues("success"))
	beforeNoData := metricValue(enrichmentTotal.WithLabelValues("no_data"))
	m := EnrichmentMetrics{}
	m.Publish(sites.Event{Name: sites.EventEnrichStart, SiteID: "a"})
	m.Publish(sites.Event{Name: sites.EventEnrichDone, SiteID: "a", Fields: map[string]any{"duration_seconds": 0.2}})
	m.Publish(sites.Event{Name: sites.EventEnrichFailed, SiteID: "b", Fields: map[string]any{"kind": "no_data"}})

	if got := metricValue(enrichmentTotal.WithLabelValues("success")) - before; got != 1 {
		t.Fatalf("success delta=%v", got)
	}
	if got := metricValue(enrichmentTotal.WithLabelValues("no_data")) - beforeNoData; got != 1 {
		t.Fatalf("no_data delta=%v", got)
	}
}

func TestWatchOccupancy_TracksProperty(t *testing.T) {
	svc := &mockService{}
	cancel := WatchOccupancy(svc)
	defer cancel()
	svc.props.Set(sites.PropOccupiedCount, 4)
	if got := metricValue(sitesOccupied); got != 4 {
		t.Fatalf("occupied=%v", got)
	}
	if got := metricValue(sitesCapacity); got != sites.MaxSites {
		t.Fatalf("capacity=%v", got)
	}
}

func TestBackpressureOnCapacity(t *testing.T) {
	before := metricValue(backpressureTotal.WithLabelValues("at_capacity"))
	w := postJSON(t, NewMux(&mockService{addErr: sites.ErrAtCapacity(sites.MaxSites)}), "/sites", `{"feature_id":1}`)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status=%d", w.Code)
	}
	if got := metricValue(backpressureTotal.WithLabelValues("at_capacity")) - before; got != 1 {
		t.Fatalf("backpressure delta=%v", got)
	}
	mrr := httptest.NewRecorder()
	NewMux(&mockService{}).ServeHTTP(mrr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !bytes.Contains(mrr.Body.Bytes(), []byte("sitecompare_sites_capacity")) {
		t.Fatalf("capacity gauge not exported")
	}
}
