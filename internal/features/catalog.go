// Package features loads the candidate-site features a user can pick from.
package features

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"sitecompare/internal/format"
	"sitecompare/internal/sitetype"
	"sitecompare/pkg/types"
)

// GoToZoom is the zoom level used when navigating to a single site.
const GoToZoom = 15

// Loader fetches every candidate-site feature.
type Loader interface {
	Load(ctx context.Context) ([]types.SiteFeature, error)
}

type notFoundError struct{ oid int64 }

func (e notFoundError) Error() string { return fmt.Sprintf("feature not found: %d", e.oid) }

// ErrNotFound returns the error reported for an unknown object id.
func ErrNotFound(oid int64) error { return notFoundError{oid: oid} }

// IsNotFound reports whether err indicates an unknown feature.
func IsNotFound(err error) bool {
	_, ok := err.(notFoundError)
	return ok
}

// Catalog caches the features of a Loader by object id after the first
// successful load.
type Catalog struct {
	loader Loader
	log    zerolog.Logger

	mu     sync.RWMutex
	loaded bool
	byOID  map[int64]types.SiteFeature
	order  []int64
}

// NewCatalog wraps loader.
func NewCatalog(loader Loader, log *zerolog.Logger) *Catalog {
	c := &Catalog{loader: loader, log: zerolog.Nop()}
	if log != nil {
		c.log = *log
	}
	return c
}

// Refresh reloads every feature, replacing the cache on success.
func (c *Catalog) Refresh(ctx context.Context) error {
	fs, err := c.loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("load features: %w", err)
	}
	sort.SliceStable(fs, func(i, j int) bool { return fs[i].Name < fs[j].Name })
	byOID := make(map[int64]types.SiteFeature, len(fs))
	order := make([]int64, 0, len(fs))
	for _, f := range fs {
		if _, dup := byOID[f.OID]; dup {
			c.log.Warn().Int64("oid", f.OID).Msg("duplicate feature id; keeping first")
			continue
		}
		byOID[f.OID] = f
		order = append(order, f.OID)
	}
	c.mu.Lock()
	c.byOID, c.order, c.loaded = byOID, order, true
	c.mu.Unlock()
	c.log.Info().Int("features", len(order)).Msg("features loaded")
	return nil
}

// Ready reports whether features have been loaded.
func (c *Catalog) Ready() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

func (c *Catalog) ensure(ctx context.Context) error {
	if c.Ready() {
		return nil
	}
	return c.Refresh(ctx)
}

// List returns features ordered by location name. A non-empty siteType keeps
// only features of that type; features without a type count as the default.
func (c *Catalog) List(ctx context.Context, siteType string) ([]types.SiteFeature, error) {
	if err := c.ensure(ctx); err != nil {
		return nil, err
	}
	siteType = strings.TrimSpace(siteType)
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]types.SiteFeature, 0, len(c.order))
	for _, oid := range c.order {
		f := c.byOID[oid]
		if siteType != "" && !strings.EqualFold(TypeOf(f), siteType) {
			continue
		}
		out = append(out, f)
	}
	return out, nil
}

// Find returns the feature with the given object id.
func (c *Catalog) Find(ctx context.Context, oid int64) (types.SiteFeature, error) {
	if err := c.ensure(ctx); err != nil {
		return types.SiteFeature{}, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	f, ok := c.byOID[oid]
	if !ok {
		return types.SiteFeature{}, notFoundError{oid: oid}
	}
	return f, nil
}

// TypeOf returns the feature's site type, or the default type when unset.
func TypeOf(f types.SiteFeature) string {
	if f.SiteType == "" {
		return sitetype.DefaultType
	}
	return f.SiteType
}

// Items renders features as list entries.
func Items(fs []types.SiteFeature) []types.FeatureItem {
	out := make([]types.FeatureItem, 0, len(fs))
	for _, f := range fs {
		street, _, _ := strings.Cut(f.Address, ",")
		out = append(out, types.FeatureItem{
			OID:         f.OID,
			Label:       f.Name,
			Description: strings.TrimSpace(street) + " - " + format.SquareFeet(f.SQFT),
			SiteType:    TypeOf(f),
		})
	}
	return out
}

// Target is where a map view should navigate to show f.
func Target(f types.SiteFeature) types.GoToTarget {
	p := f.Location
	return types.GoToTarget{Point: &p, Zoom: GoToZoom}
}
