package sites

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"sitecompare/internal/enrich"
	"sitecompare/internal/observable"
	"sitecompare/internal/sitetype"
	"sitecompare/pkg/types"
)

// Observable property names.
const (
	PropOccupiedCount = "occupiedCount"
	PropCanAcceptMore = "canAcceptMore"
)

// Manager owns at most MaxSites candidate sites at a time.
type Manager struct {
	mu        sync.Mutex
	sites     map[string]*Site
	order     []string // newest first
	occupied  int
	closed    bool
	props     *observable.Store
	container Container

	enricher      enrich.Enricher
	catalog       *sitetype.Catalog
	publisher     EventPublisher
	enrichTimeout time.Duration
	log           zerolog.Logger

	baseCtx   context.Context
	stop      context.CancelFunc
	wg        sync.WaitGroup
	startTime time.Time
}

// New constructs a Manager from cfg.
func New(cfg Config) (*Manager, error) {
	if cfg.Enricher == nil {
		return nil, errors.New("sites: enricher is required")
	}
	m := &Manager{
		sites:         make(map[string]*Site),
		props:         observable.New(),
		container:     cfg.Container,
		enricher:      cfg.Enricher,
		catalog:       cfg.Catalog,
		publisher:     cfg.Publisher,
		enrichTimeout: cfg.EnrichTimeout,
		log:           zerolog.Nop(),
		startTime:     time.Now(),
	}
	if m.container == nil {
		m.container = NewBoard()
	}
	if m.catalog == nil {
		m.catalog = sitetype.Default()
	}
	if m.publisher == nil {
		m.publisher = noopPublisher{}
	}
	if m.enrichTimeout <= 0 {
		m.enrichTimeout = defaultEnrichTimeout
	}
	if cfg.Logger != nil {
		m.log = *cfg.Logger
	}
	m.baseCtx, m.stop = context.WithCancel(context.Background())

	m.props.Set(PropOccupiedCount, 0)
	m.props.Set(PropCanAcceptMore, true)
	for _, name := range []string{PropOccupiedCount, PropCanAcceptMore} {
		name := name
		m.props.Watch(name, func(v any) {
			m.publisher.Publish(Event{Name: EventPropertyChanged, Fields: map[string]any{"name": name, "value": v}})
		})
	}
	return m, nil
}

// Add mounts a new site for f and starts its enrichment in the background.
// Counts are updated before Add returns. At capacity Add fails with an
// at-capacity error and nothing is mounted.
func (m *Manager) Add(f types.SiteFeature) (*Site, error) {
	profile, err := m.catalog.Profile(f.SiteType)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, ErrClosed
	}
	if m.occupied >= MaxSites {
		m.mu.Unlock()
		return nil, ErrAtCapacity(MaxSites)
	}
	s := newSite(uuid.NewString(), f, profile, time.Now())
	ctx, cancel := context.WithTimeout(m.baseCtx, m.enrichTimeout)
	s.cancel = cancel
	m.sites[s.id] = s
	m.order = append([]string{s.id}, m.order...)
	m.container.Mount(s)
	m.occupied++
	m.stageCountsLocked()
	m.wg.Add(1)
	m.mu.Unlock()

	m.props.Flush()
	m.log.Info().Str("site", s.id).Int64("oid", f.OID).Str("type", profile.SiteType).Msg("site added")
	m.publisher.Publish(Event{Name: EventSiteAdded, SiteID: s.id, Fields: map[string]any{
		"oid": f.OID, "name": f.Name, "site_type": profile.SiteType,
	}})

	go m.runEnrichment(ctx, s)
	return s, nil
}

// Remove unmounts the site, fires its removal event and releases its slot.
// Removing an unknown or already removed id returns a not-found error.
func (m *Manager) Remove(id string) error {
	m.mu.Lock()
	s := m.sites[id]
	if s == nil {
		m.mu.Unlock()
		return ErrSiteNotFound(id)
	}
	s.detach()
	delete(m.sites, id)
	for i, x := range m.order {
		if x == id {
			m.order = append(m.order[:i:i], m.order[i+1:]...)
			break
		}
	}
	m.container.Unmount(id)
	m.occupied--
	m.stageCountsLocked()
	m.mu.Unlock()

	s.markRemoved()
	m.props.Flush()
	m.log.Info().Str("site", id).Msg("site removed")
	m.publisher.Publish(Event{Name: EventSiteRemoved, SiteID: id, Fields: map[string]any{}})
	return nil
}

// stageCountsLocked records the counts in the observable store. m.mu must be
// held; the caller flushes after unlocking.
func (m *Manager) stageCountsLocked() {
	m.props.Stage(PropOccupiedCount, m.occupied)
	m.props.Stage(PropCanAcceptMore, m.occupied < MaxSites)
}

// Get returns the mounted site with the given id.
func (m *Manager) Get(id string) (*Site, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.sites[id]
	if s == nil {
		return nil, ErrSiteNotFound(id)
	}
	return s, nil
}

// List returns the mounted sites, newest first.
func (m *Manager) List() []*Site {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Site, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.sites[id])
	}
	return out
}

// OccupiedCount returns the number of mounted sites.
func (m *Manager) OccupiedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.occupied
}

// CanAcceptMore reports whether another site may be added.
func (m *Manager) CanAcceptMore() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.occupied < MaxSites
}

// Watch registers fn for changes of an observable manager property
// (PropOccupiedCount or PropCanAcceptMore). The current value is replayed.
func (m *Manager) Watch(name string, fn observable.Handler) (cancel func()) {
	return m.props.Watch(name, fn)
}

// Catalog returns the site-type catalog used for profiles.
func (m *Manager) Catalog() *sitetype.Catalog { return m.catalog }

// Close stops accepting sites, cancels in-flight enrichments and waits for
// them to finish or for ctx to end. Mounted sites stay mounted.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	m.stop()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
