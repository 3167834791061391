package sites

import (
	"context"
	"sync"
	"time"

	"sitecompare/internal/sitetype"
	"sitecompare/pkg/types"
)

// State is the lifecycle state of a Site.
type State string

const (
	StatePending State = "pending"
	StateReady   State = "ready"
	StateError   State = "error"
	StateRemoved State = "removed"
)

// Site is one candidate site slot. Identity, feature and profile are fixed
// at creation; display state changes once when enrichment completes.
type Site struct {
	id        string
	feature   types.SiteFeature
	profile   sitetype.Profile
	info      []types.DataRow
	createdAt time.Time

	cancel     context.CancelFunc
	done       chan struct{}
	removed    chan struct{}
	removeOnce sync.Once

	mu      sync.RWMutex
	alive   bool
	state   State
	results *types.SiteResults
	siteErr *types.SiteError
	err     error
}

func newSite(id string, f types.SiteFeature, p sitetype.Profile, now time.Time) *Site {
	return &Site{
		id:        id,
		feature:   f,
		profile:   p,
		info:      InfoRows(f, p.SiteType),
		createdAt: now,
		cancel:    func() {},
		done:      make(chan struct{}),
		removed:   make(chan struct{}),
		alive:     true,
		state:     StatePending,
	}
}

func (s *Site) ID() string                 { return s.id }
func (s *Site) Feature() types.SiteFeature { return s.feature }
func (s *Site) SiteType() string           { return s.profile.SiteType }

// State returns the current lifecycle state.
func (s *Site) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Live reports whether the site is still mounted.
func (s *Site) Live() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.alive
}

// Done is closed once the enrichment outcome is known (applied or dropped).
func (s *Site) Done() <-chan struct{} { return s.done }

// Removed is closed, once, when the site is removed.
func (s *Site) Removed() <-chan struct{} { return s.removed }

// Wait blocks until the enrichment outcome is known or ctx ends. It returns
// nil when results were applied, the enrichment error when it failed, and
// ErrRemoved when the site was removed first.
func (s *Site) Wait(ctx context.Context) error {
	select {
	case <-s.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch {
	case s.state == StateRemoved && s.results == nil && s.siteErr == nil:
		return ErrRemoved
	case s.err != nil:
		return s.err
	}
	return nil
}

// View returns a read-only projection of the site.
func (s *Site) View() types.SiteView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v := types.SiteView{
		ID:        s.id,
		State:     string(s.state),
		Feature:   s.feature,
		SiteType:  s.profile.SiteType,
		Info:      append([]types.DataRow(nil), s.info...),
		CreatedAt: s.createdAt,
	}
	if s.results != nil {
		r := *s.results
		v.Results = &r
	}
	if s.siteErr != nil {
		e := *s.siteErr
		v.Error = &e
	}
	return v
}

// apply runs fn under the site lock if the site is still alive and reports
// whether it ran.
func (s *Site) apply(fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.alive {
		return false
	}
	fn()
	return true
}

// detach stops later outcomes from being applied. The manager calls it while
// unmounting so no result lands on a site that is no longer mounted.
func (s *Site) detach() {
	s.mu.Lock()
	s.alive = false
	s.state = StateRemoved
	s.mu.Unlock()
}

// markRemoved marks the site dead, cancels its enrichment and fires the
// removal event. Only the first call has any effect.
func (s *Site) markRemoved() bool {
	first := false
	s.removeOnce.Do(func() {
		first = true
		s.mu.Lock()
		s.alive = false
		s.state = StateRemoved
		s.mu.Unlock()
		s.cancel()
		close(s.removed)
	})
	return first
}
