// Package app wires the feature catalog, the site manager and the realtime
// hub into the service exposed over HTTP.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"sitecompare/internal/enrich"
	"sitecompare/internal/features"
	"sitecompare/internal/observable"
	"sitecompare/internal/realtime"
	"sitecompare/internal/sites"
	"sitecompare/internal/sitetype"
	"sitecompare/pkg/types"
)

// Config holds the collaborators and settings of an App.
type Config struct {
	Features  *features.Catalog
	Enricher  enrich.Enricher
	SiteTypes *sitetype.Catalog
	// Publishers receive manager events in addition to the realtime hub.
	Publishers    []sites.EventPublisher
	Params        map[string]any
	ShareQuery    string
	ShareBase     string
	Analytics     bool
	PageType      string
	PagePath      string
	EnrichTimeout time.Duration
	Logger        *zerolog.Logger
}

// App is the application context: it replaces page-level globals with one
// explicit object.
type App struct {
	features  *features.Catalog
	sites     *sites.Manager
	hub       *realtime.Hub
	params    *Params
	dataLayer *DataLayer
	shareBase string
	log       zerolog.Logger
}

// New builds an App from cfg.
func New(cfg Config) (*App, error) {
	if cfg.Features == nil {
		return nil, errors.New("app: feature catalog is required")
	}
	a := &App{
		features:  cfg.Features,
		params:    NewParams(cfg.Params),
		shareBase: cfg.ShareBase,
		log:       zerolog.Nop(),
	}
	if cfg.Logger != nil {
		a.log = *cfg.Logger
	}
	if cfg.ShareQuery != "" {
		q, err := url.ParseQuery(strings.TrimPrefix(cfg.ShareQuery, "?"))
		if err != nil {
			return nil, fmt.Errorf("parse share query: %w", err)
		}
		a.params.ApplyQuery(q)
	}
	if cfg.Analytics {
		a.dataLayer = NewDataLayer(cfg.PageType, cfg.PagePath)
		a.dataLayer.Attach(a.params)
	}

	hubLog := a.log.With().Str("component", "realtime").Logger()
	a.hub = realtime.NewHub(a.state, &hubLog)

	pubs := append(sites.MultiPublisher{a.hub}, cfg.Publishers...)
	mgrLog := a.log.With().Str("component", "sites").Logger()
	mgr, err := sites.New(sites.Config{
		Enricher:      cfg.Enricher,
		Catalog:       cfg.SiteTypes,
		Publisher:     pubs,
		EnrichTimeout: cfg.EnrichTimeout,
		Logger:        &mgrLog,
	})
	if err != nil {
		return nil, err
	}
	a.sites = mgr
	return a, nil
}

// state is the snapshot sent to realtime clients when they connect.
func (a *App) state() any {
	if a.sites == nil {
		return nil
	}
	return map[string]any{"status": a.Status(), "sites": a.Sites()}
}

// Manager returns the site manager.
func (a *App) Manager() *sites.Manager { return a.sites }

// Types returns the site-type catalogue.
func (a *App) Types() []types.SiteTypeInfo { return a.sites.Catalog().Info() }

// Features lists candidate features, optionally of one site type.
func (a *App) Features(ctx context.Context, siteType string) ([]types.FeatureItem, error) {
	if siteType != "" {
		if _, err := a.sites.Catalog().Profile(siteType); err != nil {
			return nil, err
		}
	}
	fs, err := a.features.List(ctx, siteType)
	if err != nil {
		return nil, err
	}
	return features.Items(fs), nil
}

// FeatureTarget returns where a map view should navigate for feature oid.
func (a *App) FeatureTarget(ctx context.Context, oid int64) (types.GoToTarget, error) {
	f, err := a.features.Find(ctx, oid)
	if err != nil {
		return types.GoToTarget{}, err
	}
	return features.Target(f), nil
}

// Sites returns every mounted site, newest first.
func (a *App) Sites() []types.SiteView {
	list := a.sites.List()
	out := make([]types.SiteView, 0, len(list))
	for _, s := range list {
		out = append(out, s.View())
	}
	return out
}

// Site returns one mounted site.
func (a *App) Site(id string) (types.SiteView, error) {
	s, err := a.sites.Get(id)
	if err != nil {
		return types.SiteView{}, err
	}
	return s.View(), nil
}

// AddSite mounts a site for the requested feature. With req.Wait it returns
// once enrichment has finished, successfully or not.
func (a *App) AddSite(ctx context.Context, req types.AddSiteRequest) (types.SiteView, error) {
	f, err := a.features.Find(ctx, req.FeatureID)
	if err != nil {
		return types.SiteView{}, err
	}
	s, err := a.sites.Add(f)
	if err != nil {
		return types.SiteView{}, err
	}
	if req.Wait {
		if err := s.Wait(ctx); err != nil && ctx.Err() != nil {
			return types.SiteView{}, ctx.Err()
		}
	}
	return s.View(), nil
}

// RemoveSite removes a mounted site.
func (a *App) RemoveSite(id string) error { return a.sites.Remove(id) }

// Status reports manager occupancy and feature readiness.
func (a *App) Status() types.StatusResponse {
	st := a.sites.Status()
	st.FeaturesReady = a.features.Ready()
	return st
}

// Params returns the application parameters.
func (a *App) Params() types.ParamsResponse {
	resp := types.ParamsResponse{Params: a.params.Snapshot(), Shareable: a.params.Shareable()}
	if a.dataLayer != nil {
		resp.DataLayer = a.dataLayer.Snapshot()
	}
	return resp
}

// ParamStore exposes the observable parameters.
func (a *App) ParamStore() *Params { return a.params }

// ShareURL returns the share URL rooted at base, or at the configured base
// when base is empty.
func (a *App) ShareURL(base string) string {
	if base == "" {
		base = a.shareBase
	}
	return a.params.ShareURL(base)
}

// Ready reports whether features have been loaded.
func (a *App) Ready() bool { return a.features.Ready() }

// Watch registers fn for a manager property.
func (a *App) Watch(name string, fn observable.Handler) (cancel func()) {
	return a.sites.Watch(name, fn)
}

// ServeEvents streams manager events as Server-Sent Events.
func (a *App) ServeEvents(w http.ResponseWriter, r *http.Request) { a.hub.ServeSSE(w, r) }

// ServeWS streams manager events over a WebSocket.
func (a *App) ServeWS(w http.ResponseWriter, r *http.Request) { a.hub.ServeWS(w, r) }

// Close stops the manager and disconnects realtime clients.
func (a *App) Close(ctx context.Context) error {
	if a.dataLayer != nil {
		a.dataLayer.Detach()
	}
	err := a.sites.Close(ctx)
	a.hub.Close()
	return err
}
