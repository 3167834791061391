package e2e

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"sitecompare/internal/realtime"
	"sitecompare/internal/sites"
	"sitecompare/pkg/types"
)

func addSite(t *testing.T, base string, oid int64, wait bool) (int, types.SiteView) {
	t.Helper()
	resp, body := httpPostJSON(t, base+"/sites", []byte(fmt.Sprintf(`{"feature_id":%d,"wait":%t}`, oid, wait)))
	var view types.SiteView
	if resp.StatusCode < 300 {
		if err := json.Unmarshal(body, &view); err != nil {
			t.Fatalf("json: %v body=%s", err, string(body))
		}
	}
	return resp.StatusCode, view
}

func status(t *testing.T, base string) types.StatusResponse {
	t.Helper()
	_, body := httpGet(t, base+"/status")
	var st types.StatusResponse
	if err := json.Unmarshal(body, &st); err != nil {
		t.Fatalf("status json: %v body=%s", err, string(body))
	}
	return st
}

// TestE2E_CapacityAndRemoval fills all slots, verifies the next add is
// rejected with 429, then frees one slot and adds again.
func TestE2E_CapacityAndRemoval(t *testing.T) {
	es := newEnrichService(t)
	srv, _ := newStack(t, 12, es)

	var ids []string
	for oid := int64(1); oid <= sites.MaxSites; oid++ {
		code, view := addSite(t, srv.URL, oid, false)
		if code != http.StatusAccepted {
			t.Fatalf("add %d: status=%d", oid, code)
		}
		ids = append(ids, view.ID)
	}
	st := status(t, srv.URL)
	if st.Occupied != sites.MaxSites || st.CanAcceptMore || st.Label != "10 of 10" {
		t.Fatalf("unexpected full status: %+v", st)
	}

	if code, _ := addSite(t, srv.URL, 11, false); code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 at capacity, got %d", code)
	}

	if code := httpDelete(t, srv.URL+"/sites/"+ids[0]); code != http.StatusNoContent {
		t.Fatalf("delete status=%d", code)
	}
	if code := httpDelete(t, srv.URL+"/sites/"+ids[0]); code != http.StatusNotFound {
		t.Fatalf("second delete status=%d", code)
	}
	st = status(t, srv.URL)
	if st.Occupied != sites.MaxSites-1 || !st.CanAcceptMore {
		t.Fatalf("unexpected status after remove: %+v", st)
	}
	if code, _ := addSite(t, srv.URL, 11, false); code != http.StatusAccepted {
		t.Fatalf("expected add after remove, got %d", code)
	}
}

func TestE2E_WaitReturnsEnrichedSite(t *testing.T) {
	es := newEnrichService(t)
	srv, _ := newStack(t, 2, es)

	code, view := addSite(t, srv.URL, 1, true)
	if code != http.StatusCreated {
		t.Fatalf("status=%d", code)
	}
	if view.State != string(sites.StateReady) || view.Results == nil {
		t.Fatalf("expected ready site with results, got %+v", view)
	}
	if len(view.Results.Groups) == 0 || view.Results.Extent == nil {
		t.Fatalf("incomplete results: %+v", view.Results)
	}

	resp, body := httpGet(t, srv.URL+"/sites/"+view.ID)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), `"state":"ready"`) {
		t.Fatalf("get site %d %s", resp.StatusCode, string(body))
	}
}

func TestE2E_ServiceErrorsRenderIntoSite(t *testing.T) {
	es := newEnrichService(t)
	srv, _ := newStack(t, 2, es)

	es.respond(`{"error":{"code":498,"message":"Invalid token."}}`)
	_, view := addSite(t, srv.URL, 1, true)
	if view.State != string(sites.StateError) || view.Error == nil || view.Error.Kind != "not_authenticated" {
		t.Fatalf("expected not authenticated site error, got %+v", view)
	}

	es.respond(`{"results":[{"value":{"FeatureSet":[{"features":[]}]}}]}`)
	_, view = addSite(t, srv.URL, 2, true)
	if view.Error == nil || view.Error.Message != "No data found." {
		t.Fatalf("expected no data error, got %+v", view)
	}
	// failed sites keep their slots
	if st := status(t, srv.URL); st.Occupied != 2 || st.Failed != 2 {
		t.Fatalf("unexpected status: %+v", st)
	}
}

func TestE2E_RemoveWhileEnrichingDropsResult(t *testing.T) {
	es := newEnrichService(t)
	srv, a := newStack(t, 2, es)

	es.hold()
	code, view := addSite(t, srv.URL, 1, false)
	if code != http.StatusAccepted || view.State != string(sites.StatePending) {
		t.Fatalf("add: %d %+v", code, view)
	}
	if code := httpDelete(t, srv.URL+"/sites/"+view.ID); code != http.StatusNoContent {
		t.Fatalf("delete status=%d", code)
	}
	es.release()
	if _, err := a.Site(view.ID); !sites.IsSiteNotFound(err) {
		t.Fatalf("expected removed site to be gone, got %v", err)
	}
	if st := status(t, srv.URL); st.Occupied != 0 {
		t.Fatalf("unexpected status: %+v", st)
	}
}

func TestE2E_SSEStreamsStateThenEvents(t *testing.T) {
	es := newEnrichService(t)
	srv, _ := newStack(t, 2, es)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Fatalf("content-type=%s", ct)
	}

	events := make(chan string, 32)
	go func() {
		sc := bufio.NewScanner(resp.Body)
		for sc.Scan() {
			if name, ok := strings.CutPrefix(sc.Text(), "event: "); ok {
				events <- name
			}
		}
		close(events)
	}()

	next := func() string {
		select {
		case e := <-events:
			return e
		case <-time.After(3 * time.Second):
			t.Fatal("timed out waiting for event")
			return ""
		}
	}
	if first := next(); first != realtime.TypeState {
		t.Fatalf("first event=%q", first)
	}
	addSite(t, srv.URL, 1, false)
	seen := map[string]bool{}
	for !seen[sites.EventEnrichDone] {
		seen[next()] = true
	}
	if !seen[sites.EventSiteAdded] || !seen[sites.EventPropertyChanged] {
		t.Fatalf("missing events: %v", seen)
	}
}

func TestE2E_WebSocketReceivesState(t *testing.T) {
	es := newEnrichService(t)
	srv, _ := newStack(t, 2, es)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))

	var m realtime.Message
	if err := conn.ReadJSON(&m); err != nil {
		t.Fatalf("read: %v", err)
	}
	if m.Type != realtime.TypeState {
		t.Fatalf("first message type=%q", m.Type)
	}
	addSite(t, srv.URL, 2, false)
	for {
		if err := conn.ReadJSON(&m); err != nil {
			t.Fatalf("read: %v", err)
		}
		if m.Type == sites.EventSiteAdded {
			break
		}
	}
}

func TestE2E_ParamsShareAndFeatures(t *testing.T) {
	es := newEnrichService(t)
	srv, _ := newStack(t, 3, es)

	_, body := httpGet(t, srv.URL+"/share")
	var share types.ShareResponse
	if err := json.Unmarshal(body, &share); err != nil {
		t.Fatalf("json: %v", err)
	}
	if share.URL != "https://example.com/compare" && !strings.HasPrefix(share.URL, "https://example.com/compare?") {
		t.Fatalf("share url=%q", share.URL)
	}

	_, body = httpGet(t, srv.URL+"/features?type=Retail")
	var feats types.FeaturesResponse
	if err := json.Unmarshal(body, &feats); err != nil {
		t.Fatalf("json: %v", err)
	}
	if len(feats.Features) != 3 || feats.Features[0].Label != "Site 01" {
		t.Fatalf("unexpected features: %+v", feats.Features)
	}
	if !strings.HasSuffix(feats.Features[0].Description, "sq/ft") {
		t.Fatalf("description=%q", feats.Features[0].Description)
	}

	resp, _ := httpGet(t, srv.URL+"/features?type=Stadium")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("unknown type status=%d", resp.StatusCode)
	}
	resp, _ = httpGet(t, srv.URL+"/readyz")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("readyz=%d", resp.StatusCode)
	}
}
