package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable read by FromEnv.
const EnvPrefix = "SITECOMPARE_"

// Config holds runtime parameters for the service.
// Zero values mean "unspecified" and are replaced by ApplyDefaults.
type Config struct {
	Addr     string `json:"addr" yaml:"addr" toml:"addr" env:"ADDR"`
	LogLevel string `json:"log_level" yaml:"log_level" toml:"log_level" env:"LOG_LEVEL"`
	// Per-request HTTP log level: off, error, info or debug.
	HTTPLog string `json:"http_log" yaml:"http_log" toml:"http_log" env:"HTTP_LOG"`

	// Candidate features come from a file or directory of Esri JSON, or from a
	// feature layer when FeaturesPath is empty.
	FeaturesPath string `json:"features_path" yaml:"features_path" toml:"features_path" env:"FEATURES_PATH"`
	LayerURL     string `json:"layer_url" yaml:"layer_url" toml:"layer_url" env:"LAYER_URL"`
	LayerToken   string `json:"layer_token" yaml:"layer_token" toml:"layer_token" env:"LAYER_TOKEN"`
	LayerWhere   string `json:"layer_where" yaml:"layer_where" toml:"layer_where" env:"LAYER_WHERE"`

	SiteTypesFile string `json:"site_types_file" yaml:"site_types_file" toml:"site_types_file" env:"SITE_TYPES_FILE"`

	EnrichURL            string `json:"enrich_url" yaml:"enrich_url" toml:"enrich_url" env:"ENRICH_URL"`
	APIKey               string `json:"api_key" yaml:"api_key" toml:"api_key" env:"API_KEY"`
	EnrichTimeoutSeconds int    `json:"enrich_timeout_seconds" yaml:"enrich_timeout_seconds" toml:"enrich_timeout_seconds" env:"ENRICH_TIMEOUT_SECONDS"`
	EnrichRetries        uint   `json:"enrich_retries" yaml:"enrich_retries" toml:"enrich_retries" env:"ENRICH_RETRIES"`

	// Empty CachePath disables the enrichment cache.
	CachePath     string `json:"cache_path" yaml:"cache_path" toml:"cache_path" env:"CACHE_PATH"`
	CacheTTLHours int    `json:"cache_ttl_hours" yaml:"cache_ttl_hours" toml:"cache_ttl_hours" env:"CACHE_TTL_HOURS"`

	MaxBodyBytes          int64 `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes" env:"MAX_BODY_BYTES"`
	AddWaitTimeoutSeconds int   `json:"add_wait_timeout_seconds" yaml:"add_wait_timeout_seconds" toml:"add_wait_timeout_seconds" env:"ADD_WAIT_TIMEOUT_SECONDS"`
	ShutdownGraceSeconds  int   `json:"shutdown_grace_seconds" yaml:"shutdown_grace_seconds" toml:"shutdown_grace_seconds" env:"SHUTDOWN_GRACE_SECONDS"`

	CORS CORS `json:"cors" yaml:"cors" toml:"cors" envPrefix:"CORS_"`

	Title       string `json:"title" yaml:"title" toml:"title" env:"TITLE"`
	Name        string `json:"name" yaml:"name" toml:"name" env:"NAME"`
	Description string `json:"description" yaml:"description" toml:"description" env:"DESCRIPTION"`
	// ShareQuery seeds params from a query string, e.g. "name=Downtown".
	ShareQuery string `json:"share_query" yaml:"share_query" toml:"share_query" env:"SHARE_QUERY"`
	ShareBase  string `json:"share_base" yaml:"share_base" toml:"share_base" env:"SHARE_BASE"`

	Analytics bool   `json:"analytics" yaml:"analytics" toml:"analytics" env:"ANALYTICS"`
	PageType  string `json:"page_type" yaml:"page_type" toml:"page_type" env:"PAGE_TYPE"`
	PagePath  string `json:"page_path" yaml:"page_path" toml:"page_path" env:"PAGE_PATH"`
}

// CORS is the opt-in cross-origin configuration of the HTTP server.
type CORS struct {
	Enabled bool     `json:"enabled" yaml:"enabled" toml:"enabled" env:"ENABLED"`
	Origins []string `json:"origins" yaml:"origins" toml:"origins" env:"ORIGINS" envSeparator:","`
	Methods []string `json:"methods" yaml:"methods" toml:"methods" env:"METHODS" envSeparator:","`
	Headers []string `json:"headers" yaml:"headers" toml:"headers" env:"HEADERS" envSeparator:","`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}

// FromEnv overlays SITECOMPARE_* environment variables onto cfg. Unset
// variables leave the current values alone.
func FromEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Resolve loads path when it is non-empty, applies the environment overlay
// and fills defaults.
func Resolve(path string) (Config, error) {
	var cfg Config
	if path != "" {
		var err error
		if cfg, err = Load(path); err != nil {
			return cfg, fmt.Errorf("load config %s: %w", path, err)
		}
	}
	if err := FromEnv(&cfg); err != nil {
		return cfg, err
	}
	cfg.ApplyDefaults()
	return cfg, nil
}
