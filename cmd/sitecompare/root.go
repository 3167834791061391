package main

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"sitecompare/internal/config"
)

// options are the persistent flags shared by every subcommand.
type options struct {
	configPath string
	envFile    string
	logLevel   string
	logJSON    bool

	cfg config.Config
	log zerolog.Logger
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "sitecompare",
		Short: "Compare candidate real-estate sites by their demographics",
		Long: `sitecompare serves a bounded set of candidate sites under comparison.
Each added site is enriched asynchronously with demographics for its study
area; state changes are streamed to clients over SSE and WebSocket.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd.ErrOrStderr())
		},
	}
	pf := root.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", "", "Config file (.yaml, .yml, .json or .toml)")
	pf.StringVar(&opts.envFile, "env-file", ".env", "Optional dotenv file loaded before reading SITECOMPARE_* variables")
	pf.StringVar(&opts.logLevel, "log-level", "", "Log level: debug|info|warn|error (overrides config)")
	pf.BoolVar(&opts.logJSON, "log-json", false, "Emit JSON logs instead of console output")

	root.AddCommand(newServeCmd(opts), newTypesCmd(opts), newFeaturesCmd(opts), newEnrichCmd(opts))
	return root
}

// setup loads the dotenv file, resolves configuration and builds the logger.
func (o *options) setup(stderr io.Writer) error {
	if o.envFile != "" {
		// a missing dotenv file is fine; anything else is not
		if err := godotenv.Load(o.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	cfg, err := config.Resolve(o.configPath)
	if err != nil {
		return err
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	o.cfg = cfg
	o.log = newLogger(stderr, cfg.LogLevel, o.logJSON)
	return nil
}

func newLogger(w io.Writer, level string, asJSON bool) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	if w == nil {
		w = os.Stderr
	}
	if !asJSON {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

// splitCSV splits a comma-separated flag value, dropping blanks.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
