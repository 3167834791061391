package e2e

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"sitecompare/internal/app"
	"sitecompare/internal/enrich"
	"sitecompare/internal/features"
	"sitecompare/internal/httpapi"
	"sitecompare/internal/sites"
	"sitecompare/internal/sitetype"
)

const enrichBody = `{"results":[{"value":{"FeatureSet":[{"features":[{"attributes":{"DPOP_CY":12345,"UNEMPRT_CY":5.6,"N01_BUS":321,"MEDHINC_CY":70000,"MEDHINC_FY":65000},"geometry":{"rings":[[[-117.2,34.0],[-117.1,34.0],[-117.1,34.1],[-117.2,34.0]]]}}]}]}}]}`

// writeFeatures creates a features file with n Retail sites (object ids 1..n).
func writeFeatures(t *testing.T, n int) string {
	t.Helper()
	var parts []string
	for i := 1; i <= n; i++ {
		parts = append(parts, fmt.Sprintf(
			`{"attributes":{"OBJECTID":%d,"Location_Name":"Site %02d","SiteType":"Retail","Address":"%d Main St, Town","SQFT":%d},"geometry":{"x":-117.%d,"y":34.%d}}`,
			i, i, i, 1000*i, i, i))
	}
	p := filepath.Join(t.TempDir(), "sites.json")
	if err := os.WriteFile(p, []byte(`{"spatialReference":{"wkid":4326},"features":[`+strings.Join(parts, ",")+`]}`), 0o644); err != nil {
		t.Fatalf("write features: %v", err)
	}
	return p
}

// enrichService is a fake enrichment endpoint. While held, requests block
// until release is called.
type enrichService struct {
	srv   *httptest.Server
	mu    sync.Mutex
	calls int
	body  string
	gate  chan struct{}
}

func newEnrichService(t *testing.T) *enrichService {
	t.Helper()
	es := &enrichService{body: enrichBody}
	es.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		es.mu.Lock()
		es.calls++
		gate, body := es.gate, es.body
		es.mu.Unlock()
		if gate != nil {
			select {
			case <-gate:
			case <-r.Context().Done():
				return
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(es.srv.Close)
	return es
}

func (es *enrichService) hold() {
	es.mu.Lock()
	es.gate = make(chan struct{})
	es.mu.Unlock()
}

func (es *enrichService) release() {
	es.mu.Lock()
	if es.gate != nil {
		close(es.gate)
		es.gate = nil
	}
	es.mu.Unlock()
}

func (es *enrichService) respond(body string) {
	es.mu.Lock()
	es.body = body
	es.mu.Unlock()
}

// newStack wires the real app and router against the fake service.
func newStack(t *testing.T, nFeatures int, es *enrichService) (*httptest.Server, *app.App) {
	t.Helper()
	cat := features.NewCatalog(features.FileSource{Path: writeFeatures(t, nFeatures)}, nil)
	if err := cat.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	client := enrich.NewClient(enrich.Config{URL: es.srv.URL, APIKey: "k", MaxTries: 1, Timeout: 5 * time.Second})
	a, err := app.New(app.Config{
		Features:   cat,
		Enricher:   client,
		SiteTypes:  sitetype.Default(),
		Publishers: []sites.EventPublisher{httpapi.EnrichmentMetrics{}},
		Params:     map[string]any{app.ParamTitle: "Compare", app.ParamName: "Downtown"},
		ShareBase:  "https://example.com/compare",
	})
	if err != nil {
		t.Fatalf("app: %v", err)
	}
	srv := httptest.NewServer(httpapi.NewMux(a))
	t.Cleanup(func() {
		es.release()
		srv.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = a.Close(ctx)
	})
	return srv, a
}

func httpGet(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}

func httpPostJSON(t *testing.T, url string, payload []byte) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}

func httpDelete(t *testing.T, url string) int {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodDelete, url, nil)
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	_ = resp.Body.Close()
	return resp.StatusCode
}

func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(10 * time.Millisecond)
	}
}
