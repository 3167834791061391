package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestLoadYAML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.yaml", "addr: :9999\nfeatures_path: /tmp/sites.json\nenrich_timeout_seconds: 12\ncache_ttl_hours: 3\ncors:\n  enabled: true\n  origins: [\"https://a\", \"https://b\"]\n")
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9999" || cfg.FeaturesPath != "/tmp/sites.json" || cfg.EnrichTimeoutSeconds != 12 || cfg.CacheTTLHours != 3 {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	if !cfg.CORS.Enabled || len(cfg.CORS.Origins) != 2 {
		t.Fatalf("unexpected cors: %+v", cfg.CORS)
	}
}

func TestLoadJSON(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.json", `{"addr":":7070","layer_url":"https://example.com/FeatureServer/0","api_key":"k","analytics":true}`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":7070" || cfg.LayerURL != "https://example.com/FeatureServer/0" || cfg.APIKey != "k" || !cfg.Analytics {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadTOML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.toml", "addr=\":8081\"\nfeatures_path=\"/x\"\nenrich_retries=5\ntitle=\"Downtown\"\n[cors]\nenabled=true\n")
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":8081" || cfg.FeaturesPath != "/x" || cfg.EnrichRetries != 5 || cfg.Title != "Downtown" || !cfg.CORS.Enabled {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error on empty path")
	}
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.txt", "not supported")
	if _, err := Load(p); err == nil {
		t.Fatalf("expected unsupported extension error")
	}
}
