package sites

import (
	"time"

	"github.com/rs/zerolog"

	"sitecompare/internal/enrich"
	"sitecompare/internal/sitetype"
)

// MaxSites is the fixed capacity shared by every Manager.
const MaxSites = 10

// Defaults applied when corresponding Config fields are unset.
const (
	defaultEnrichTimeout = 60 * time.Second
)

// Config encapsulates all tunables for Manager construction.
type Config struct {
	// Enricher is required.
	Enricher enrich.Enricher
	// Catalog defaults to sitetype.Default().
	Catalog *sitetype.Catalog
	// Container defaults to an in-memory Board.
	Container Container
	// Publisher defaults to dropping events.
	Publisher     EventPublisher
	EnrichTimeout time.Duration
	Logger        *zerolog.Logger
}
