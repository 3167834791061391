package enrich

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/rs/zerolog"
)

// Cache stores enrichment results by request key.
type Cache interface {
	Get(ctx context.Context, key string) (Result, bool, error)
	Put(ctx context.Context, key string, r Result) error
}

// Cached consults a Cache before calling the wrapped Enricher. Only
// successful results are stored. Cache failures are logged and ignored.
type Cached struct {
	next  Enricher
	cache Cache
	log   zerolog.Logger
}

// NewCached wraps next with cache.
func NewCached(next Enricher, cache Cache, log *zerolog.Logger) *Cached {
	c := &Cached{next: next, cache: cache, log: zerolog.Nop()}
	if log != nil {
		c.log = *log
	}
	return c
}

// Enrich implements Enricher.
func (c *Cached) Enrich(ctx context.Context, req Request) (Result, error) {
	key := CacheKey(req)
	if res, ok, err := c.cache.Get(ctx, key); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("enrichment cache read failed")
	} else if ok {
		c.log.Debug().Str("key", key).Msg("enrichment cache hit")
		return res, nil
	}
	res, err := c.next.Enrich(ctx, req)
	if err != nil {
		return Result{}, err
	}
	if err := c.cache.Put(ctx, key, res); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("enrichment cache write failed")
	}
	return res, nil
}

// CacheKey returns a stable digest of req.
func CacheKey(req Request) string {
	b, _ := json.Marshal(struct {
		X, Y float64
		Vars []string
		Area any
	}{req.Location.Longitude, req.Location.Latitude, req.AnalysisVariables, req.StudyArea})
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
