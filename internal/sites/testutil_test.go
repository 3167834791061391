package sites

import (
	"context"
	"sync"
	"testing"
	"time"

	"sitecompare/internal/enrich"
	"sitecompare/pkg/types"
)

// fakeEnricher answers with result/err. When gate is non-nil each call
// blocks until gate is closed or the call's context ends.
type fakeEnricher struct {
	mu     sync.Mutex
	calls  []enrich.Request
	gate   chan struct{}
	result enrich.Result
	err    error
}

func (f *fakeEnricher) Enrich(ctx context.Context, req enrich.Request) (enrich.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	gate, res, err := f.gate, f.result, f.err
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return enrich.Result{}, ctx.Err()
		}
	}
	return res, err
}

func (f *fakeEnricher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func sampleResult() enrich.Result {
	return enrich.Result{
		Geometry: types.Polygon{Rings: [][][2]float64{{{-117.2, 34.0}, {-117.1, 34.0}, {-117.1, 34.1}, {-117.2, 34.0}}}},
		Attributes: map[string]any{
			"DPOP_CY":    float64(12345),
			"UNEMPRT_CY": float64(5.6),
			"N01_BUS":    float64(321),
			"MEDVAL_CY":  float64(400000),
			"MEDVAL_FY":  float64(450000),
			"MEDHINC_CY": float64(70000),
			"MEDHINC_FY": float64(65000),
		},
	}
}

func feature(oid int64) types.SiteFeature {
	return types.SiteFeature{
		OID:      oid,
		Name:     "Site",
		Address:  "380 New York St, Redlands CA",
		SQFT:     12000,
		Parking:  "40",
		Location: types.Point{Longitude: -117.19, Latitude: 34.05},
	}
}

func newTestManager(t *testing.T, f *fakeEnricher, pub EventPublisher) *Manager {
	t.Helper()
	m, err := New(Config{Enricher: f, Publisher: pub, EnrichTimeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = m.Close(ctx)
	})
	return m
}

func testCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}
