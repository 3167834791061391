package features

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"sitecompare/pkg/types"
)

// LayerSource queries a hosted feature layer.
type LayerSource struct {
	// URL of the layer, e.g. https://services.arcgis.com/.../FeatureServer/0.
	URL    string
	Token  string
	Where  string
	Client *http.Client
}

// Load implements Loader.
func (s LayerSource) Load(ctx context.Context) ([]types.SiteFeature, error) {
	if strings.TrimSpace(s.URL) == "" {
		return nil, fmt.Errorf("feature layer url is required")
	}
	q := url.Values{}
	where := s.Where
	if where == "" {
		where = "1=1"
	}
	q.Set("where", where)
	q.Set("outFields", strings.Join(OutFields, ","))
	q.Set("orderByFields", FieldName+" ASC")
	q.Set("returnGeometry", "true")
	q.Set("outSR", "4326")
	q.Set("f", "json")
	if s.Token != "" {
		q.Set("token", s.Token)
	}
	u := strings.TrimSuffix(s.URL, "/") + "/query?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	client := s.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query feature layer: %w", err)
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return nil, fmt.Errorf("read feature layer: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feature layer http %d", resp.StatusCode)
	}
	return decodeFeatureSet(b)
}
