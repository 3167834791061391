package sites

import (
	"context"
	"time"

	"sitecompare/internal/enrich"
	"sitecompare/pkg/types"
)

// runEnrichment requests enrichment for s and applies the outcome if s is
// still mounted. Failures stay local to the site.
func (m *Manager) runEnrichment(ctx context.Context, s *Site) {
	defer m.wg.Done()
	defer close(s.done)
	defer s.cancel()

	start := time.Now()
	m.publisher.Publish(Event{Name: EventEnrichStart, SiteID: s.id, Fields: map[string]any{"variables": len(s.profile.VariableIDs)}})

	res, err := m.enricher.Enrich(ctx, enrich.Request{
		Location:          s.feature.Location,
		AnalysisVariables: s.profile.VariableIDs,
		StudyArea:         s.profile.StudyArea,
	})
	dur := time.Since(start)
	fields := map[string]any{"dur_ms": int(dur / time.Millisecond), "duration_seconds": dur.Seconds()}

	if err != nil {
		kind := enrich.Kind(err)
		applied := s.apply(func() {
			s.state = StateError
			s.err = err
			s.siteErr = &types.SiteError{Kind: kind, Message: errorMessage(err)}
		})
		if !applied {
			m.publisher.Publish(Event{Name: EventEnrichDropped, SiteID: s.id, Fields: fields})
			return
		}
		fields["error"] = err.Error()
		fields["kind"] = kind
		m.log.Warn().Err(err).Str("site", s.id).Str("kind", kind).Msg("enrichment failed")
		m.publisher.Publish(Event{Name: EventEnrichFailed, SiteID: s.id, Fields: fields})
		return
	}

	results := BuildResults(s.profile, res)
	applied := s.apply(func() {
		s.state = StateReady
		s.results = &results
	})
	if !applied {
		m.publisher.Publish(Event{Name: EventEnrichDropped, SiteID: s.id, Fields: fields})
		return
	}
	m.log.Debug().Str("site", s.id).Dur("dur", dur).Msg("enrichment done")
	m.publisher.Publish(Event{Name: EventEnrichDone, SiteID: s.id, Fields: fields})
}

func errorMessage(err error) string {
	switch {
	case enrich.IsNoData(err):
		return "No data found."
	case enrich.IsNotAuthenticated(err):
		return "The enrichment service requires a valid API key: " + err.Error()
	}
	return err.Error()
}
