// Package enrich queries the demographic GeoEnrichment service for the study
// area around a location.
package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog"

	"sitecompare/pkg/types"
)

// DefaultURL is the public GeoEnrichment enrich endpoint.
const DefaultURL = "https://geoenrich.arcgis.com/arcgis/rest/services/World/geoenrichmentserver/GeoEnrichment/enrich"

// Defaults applied when corresponding Config fields are unset.
const (
	defaultTimeout   = 30 * time.Second
	defaultMaxTries  = 3
	defaultRetryBase = 250 * time.Millisecond
)

// Request describes one enrichment query.
type Request struct {
	Location          types.Point
	AnalysisVariables []string
	StudyArea         types.StudyAreaOptions
}

// Result is the first feature returned for the study area.
type Result struct {
	Geometry   types.Polygon  `json:"geometry"`
	Attributes map[string]any `json:"attributes"`
}

// Enricher is anything that can enrich a location.
type Enricher interface {
	Enrich(ctx context.Context, req Request) (Result, error)
}

// Config holds client tunables. Zero values select defaults.
type Config struct {
	URL        string
	APIKey     string
	Timeout    time.Duration
	MaxTries   uint
	RetryBase  time.Duration
	HTTPClient *http.Client
	Logger     *zerolog.Logger
}

// Client talks to the enrichment REST endpoint.
type Client struct {
	url       string
	apiKey    string
	timeout   time.Duration
	maxTries  uint
	retryBase time.Duration
	http      *http.Client
	log       zerolog.Logger
}

// NewClient constructs a Client from cfg.
func NewClient(cfg Config) *Client {
	c := &Client{
		url:       strings.TrimSpace(cfg.URL),
		apiKey:    strings.TrimSpace(cfg.APIKey),
		timeout:   cfg.Timeout,
		maxTries:  cfg.MaxTries,
		retryBase: cfg.RetryBase,
		http:      cfg.HTTPClient,
		log:       zerolog.Nop(),
	}
	if c.url == "" {
		c.url = DefaultURL
	}
	if c.timeout <= 0 {
		c.timeout = defaultTimeout
	}
	if c.maxTries == 0 {
		c.maxTries = defaultMaxTries
	}
	if c.retryBase <= 0 {
		c.retryBase = defaultRetryBase
	}
	if c.http == nil {
		tr := &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:        20,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		}
		// deadlines come from the per-request context
		c.http = &http.Client{Transport: tr}
	}
	if cfg.Logger != nil {
		c.log = *cfg.Logger
	}
	return c
}

// Authenticated reports whether an API key is configured.
func (c *Client) Authenticated() bool { return c.apiKey != "" }

// Budget is the longest Enrich can take: every try at the full timeout plus
// the largest backoff sleep between tries.
func (c *Client) Budget() time.Duration {
	total := time.Duration(c.maxTries) * c.timeout
	next := float64(c.retryBase)
	for i := uint(1); i < c.maxTries; i++ {
		sleep := min(next, float64(backoff.DefaultMaxInterval))
		total += time.Duration(sleep * (1 + backoff.DefaultRandomizationFactor))
		next *= backoff.DefaultMultiplier
	}
	return total
}

// Enrich posts req and returns the first feature of the first feature set.
// Transport errors, HTTP 5xx and 429 are retried with exponential backoff.
func (c *Client) Enrich(ctx context.Context, req Request) (Result, error) {
	if !c.Authenticated() {
		return Result{}, ErrNotAuthenticated("no API key configured for the enrichment service")
	}
	form, err := encodeForm(req, c.apiKey)
	if err != nil {
		return Result{}, err
	}

	op := func() (Result, error) {
		res, err := c.post(ctx, form)
		if err == nil {
			return res, nil
		}
		if ctx.Err() != nil {
			return Result{}, backoff.Permanent(ctx.Err())
		}
		if se, ok := err.(serviceError); ok && se.retryable() {
			return Result{}, err
		}
		if _, ok := err.(transportError); ok {
			return Result{}, err
		}
		return Result{}, backoff.Permanent(err)
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.retryBase
	res, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(c.maxTries),
		backoff.WithNotify(func(err error, next time.Duration) {
			c.log.Warn().Err(err).Dur("retry_in", next).Msg("enrichment retry")
		}),
	)
	if err != nil {
		if te, ok := err.(transportError); ok {
			return Result{}, serviceError{msg: te.Error()}
		}
		return Result{}, err
	}
	return res, nil
}

// transportError wraps network failures so they can be retried.
type transportError struct{ err error }

func (e transportError) Error() string { return e.err.Error() }
func (e transportError) Unwrap() error { return e.err }

func (c *Client) post(ctx context.Context, form url.Values) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, strings.NewReader(form.Encode()))
	if err != nil {
		return Result{}, fmt.Errorf("build enrich request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return Result{}, transportError{err: err}
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return Result{}, transportError{err: err}
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return Result{}, ErrNotAuthenticated(http.StatusText(resp.StatusCode))
	}
	if resp.StatusCode != http.StatusOK {
		return Result{}, serviceError{status: resp.StatusCode, msg: strings.TrimSpace(string(body))}
	}
	return decodeResponse(body)
}

type enrichResponse struct {
	Results []struct {
		Value struct {
			FeatureSet []struct {
				Features []struct {
					Attributes map[string]any `json:"attributes"`
					Geometry   *types.Polygon `json:"geometry"`
				} `json:"features"`
			} `json:"FeatureSet"`
		} `json:"value"`
	} `json:"results"`
	Error *struct {
		Code    int      `json:"code"`
		Message string   `json:"message"`
		Details []string `json:"details"`
	} `json:"error"`
}

func decodeResponse(body []byte) (Result, error) {
	var r enrichResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return Result{}, serviceError{msg: "invalid response: " + err.Error()}
	}
	if r.Error != nil {
		msg := r.Error.Message
		if len(r.Error.Details) > 0 {
			msg += " (" + strings.Join(r.Error.Details, "; ") + ")"
		}
		switch r.Error.Code {
		case 401, 403, 498, 499:
			return Result{}, ErrNotAuthenticated(msg)
		}
		return Result{}, serviceError{code: r.Error.Code, msg: msg}
	}
	if len(r.Results) == 0 {
		return Result{}, ErrNoData
	}
	fs := r.Results[0].Value.FeatureSet
	if len(fs) == 0 || len(fs[0].Features) == 0 {
		return Result{}, ErrNoData
	}
	f := fs[0].Features[0]
	res := Result{Attributes: f.Attributes}
	if f.Geometry != nil {
		res.Geometry = *f.Geometry
	}
	if res.Attributes == nil {
		res.Attributes = map[string]any{}
	}
	return res, nil
}

func encodeForm(req Request, token string) (url.Values, error) {
	studyAreas, err := json.Marshal([]map[string]any{{
		"geometry": map[string]float64{"x": req.Location.Longitude, "y": req.Location.Latitude},
	}})
	if err != nil {
		return nil, err
	}
	vars, err := json.Marshal(req.AnalysisVariables)
	if err != nil {
		return nil, err
	}
	opts, err := json.Marshal(req.StudyArea)
	if err != nil {
		return nil, err
	}
	v := url.Values{}
	v.Set("studyAreas", string(studyAreas))
	v.Set("analysisVariables", string(vars))
	v.Set("studyAreasOptions", string(opts))
	v.Set("returnGeometry", strconv.FormatBool(true))
	v.Set("f", "json")
	v.Set("token", token)
	return v, nil
}
