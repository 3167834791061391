package main

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"sitecompare/internal/app"
	"sitecompare/internal/common/fsutil"
	"sitecompare/internal/config"
	"sitecompare/internal/enrich"
	"sitecompare/internal/features"
	"sitecompare/internal/httpapi"
	"sitecompare/internal/sites"
	"sitecompare/internal/sitetype"
	"sitecompare/internal/store"
)

// components are the collaborators built from a Config.
type components struct {
	siteTypes *sitetype.Catalog
	features  *features.Catalog
	enricher  enrich.Enricher
	cache     *store.Store
	// budget bounds one site's enrichment, retries included
	budget time.Duration
}

func (c *components) Close() error {
	if c.cache != nil {
		return c.cache.Close()
	}
	return nil
}

func buildComponents(ctx context.Context, cfg config.Config, log zerolog.Logger) (*components, error) {
	c := &components{}
	typesPath, err := fsutil.ExpandHome(cfg.SiteTypesFile)
	if err != nil {
		return nil, err
	}
	if c.siteTypes, err = sitetype.Load(typesPath); err != nil {
		return nil, err
	}

	var loader features.Loader
	if cfg.FeaturesPath != "" {
		p, err := fsutil.ExpandHome(cfg.FeaturesPath)
		if err != nil {
			return nil, err
		}
		loader = features.FileSource{Path: p}
	} else {
		loader = features.LayerSource{
			URL:    cfg.LayerURL,
			Token:  cfg.LayerToken,
			Where:  cfg.LayerWhere,
			Client: &http.Client{Timeout: time.Duration(cfg.EnrichTimeoutSeconds) * time.Second},
		}
	}
	featLog := log.With().Str("component", "features").Logger()
	c.features = features.NewCatalog(loader, &featLog)

	enrichLog := log.With().Str("component", "enrich").Logger()
	client := enrich.NewClient(enrich.Config{
		URL:      cfg.EnrichURL,
		APIKey:   cfg.APIKey,
		Timeout:  time.Duration(cfg.EnrichTimeoutSeconds) * time.Second,
		MaxTries: cfg.EnrichRetries,
		Logger:   &enrichLog,
	})
	if !client.Authenticated() {
		log.Warn().Msg("no api key configured; enrichment will report not authenticated")
	}
	c.enricher = client
	c.budget = client.Budget()

	if cfg.CachePath != "" {
		p, err := fsutil.ExpandHome(cfg.CachePath)
		if err != nil {
			return nil, err
		}
		st, err := store.Open(p, time.Duration(cfg.CacheTTLHours)*time.Hour)
		if err != nil {
			return nil, err
		}
		if n, err := st.Purge(ctx); err != nil {
			log.Warn().Err(err).Msg("purge enrichment cache")
		} else if n > 0 {
			log.Info().Int64("purged", n).Msg("purged expired enrichment results")
		}
		c.cache = st
		c.enricher = enrich.NewCached(client, st, &enrichLog)
	}
	return c, nil
}

func buildApp(c *components, cfg config.Config, log zerolog.Logger) (*app.App, error) {
	return app.New(app.Config{
		Features:   c.features,
		Enricher:   c.enricher,
		SiteTypes:  c.siteTypes,
		Publishers: []sites.EventPublisher{httpapi.EnrichmentMetrics{}},
		Params: map[string]any{
			app.ParamTitle:       cfg.Title,
			app.ParamDescription: cfg.Description,
			app.ParamName:        cfg.Name,
		},
		ShareQuery:    cfg.ShareQuery,
		ShareBase:     cfg.ShareBase,
		Analytics:     cfg.Analytics,
		PageType:      cfg.PageType,
		PagePath:      cfg.PagePath,
		EnrichTimeout: c.budget,
		Logger:        &log,
	})
}
