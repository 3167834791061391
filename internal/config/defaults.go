package config

import "errors"

const (
	DefaultAddr           = ":8080"
	DefaultLogLevel       = "info"
	DefaultEnrichTimeout  = 30
	DefaultEnrichRetries  = 3
	DefaultCacheTTLHours  = 24
	DefaultAddWaitTimeout = 60
	DefaultShutdownGrace  = 10
	DefaultTitle          = "Site Comparison"
)

var errNoFeatureSource = errors.New("config: features_path or layer_url is required")

// ApplyDefaults replaces unspecified values with defaults.
func (c *Config) ApplyDefaults() {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.EnrichTimeoutSeconds <= 0 {
		c.EnrichTimeoutSeconds = DefaultEnrichTimeout
	}
	if c.EnrichRetries == 0 {
		c.EnrichRetries = DefaultEnrichRetries
	}
	if c.CacheTTLHours <= 0 {
		c.CacheTTLHours = DefaultCacheTTLHours
	}
	if c.AddWaitTimeoutSeconds <= 0 {
		c.AddWaitTimeoutSeconds = DefaultAddWaitTimeout
	}
	if c.ShutdownGraceSeconds <= 0 {
		c.ShutdownGraceSeconds = DefaultShutdownGrace
	}
	if c.Title == "" {
		c.Title = DefaultTitle
	}
	if c.CORS.Enabled {
		if len(c.CORS.Methods) == 0 {
			c.CORS.Methods = []string{"GET", "POST", "DELETE", "OPTIONS"}
		}
		if len(c.CORS.Headers) == 0 {
			c.CORS.Headers = []string{"Content-Type", "X-Log-Level"}
		}
	}
}

// Validate reports configurations the server cannot start with.
func (c Config) Validate() error {
	if c.FeaturesPath == "" && c.LayerURL == "" {
		return errNoFeatureSource
	}
	return nil
}
