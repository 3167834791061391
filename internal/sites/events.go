package sites

// Event represents a manager lifecycle event.
type Event struct {
	Name   string
	SiteID string
	Fields map[string]any
}

// Event names.
const (
	EventSiteAdded       = "site_added"
	EventSiteRemoved     = "site_removed"
	EventEnrichStart     = "enrich_start"
	EventEnrichDone      = "enrich_done"
	EventEnrichFailed    = "enrich_failed"
	EventEnrichDropped   = "enrich_dropped"
	EventPropertyChanged = "property_changed"
)

// EventPublisher receives events from the manager. Implementations should be
// lightweight and non-blocking; Publish must not panic. Publish is never
// called with the manager lock held.
type EventPublisher interface {
	Publish(Event)
}

// noopPublisher is the default; it drops events.
type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}

// MultiPublisher fans each event out to every publisher in order.
type MultiPublisher []EventPublisher

func (mp MultiPublisher) Publish(e Event) {
	for _, p := range mp {
		if p != nil {
			p.Publish(e)
		}
	}
}
