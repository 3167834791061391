package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"sitecompare/internal/config"
	"sitecompare/internal/httpapi"
)

func newServeCmd(opts *options) *cobra.Command {
	var (
		addr        string
		corsOrigins string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg
			if addr != "" {
				cfg.Addr = addr
			}
			if corsOrigins != "" {
				cfg.CORS.Enabled = true
				cfg.CORS.Origins = splitCSV(corsOrigins)
				cfg.ApplyDefaults()
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, opts.log)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address, e.g. :8080 (overrides config)")
	cmd.Flags().StringVar(&corsOrigins, "cors-origins", "", "Comma-separated allowed CORS origins; enables CORS")
	return cmd
}

// serve runs the API until ctx is canceled, then drains connections and
// stops the site manager.
func serve(ctx context.Context, cfg config.Config, log zerolog.Logger) error {
	comps, err := buildComponents(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer comps.Close()

	a, err := buildApp(comps, cfg, log)
	if err != nil {
		return err
	}

	httpapi.SetLogger(log.With().Str("component", "http").Logger())
	if cfg.HTTPLog != "" {
		httpapi.SetDefaultLogLevel(cfg.HTTPLog)
	}
	httpapi.SetMaxBodyBytes(cfg.MaxBodyBytes)
	httpapi.SetAddWaitTimeout(time.Duration(cfg.AddWaitTimeoutSeconds) * time.Second)
	httpapi.SetCORSOptions(cfg.CORS.Enabled, cfg.CORS.Origins, cfg.CORS.Methods, cfg.CORS.Headers)
	httpapi.SetBaseContext(ctx)
	stopGauge := httpapi.WatchOccupancy(a)
	defer stopGauge()

	// load features in the background; /readyz reports loading until done
	go func() {
		if err := comps.features.Refresh(ctx); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("load features")
		}
	}()

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Handler:           httpapi.NewMux(a),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", ln.Addr().String()).Msg("sitecompare listening")
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	grace := time.Duration(cfg.ShutdownGraceSeconds) * time.Second
	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	log.Info().Msg("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("graceful shutdown error")
	}
	if err := a.Close(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("close sites")
	}
	return nil
}
