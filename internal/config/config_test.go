package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := Validate(DefaultConfig()); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"bad scheme", func(c *Config) { c.API.BaseURL = "ftp://wigo/api" }, "api.base_url"},
		{"no host", func(c *Config) { c.API.BaseURL = "http:///api" }, "api.base_url"},
		{"zero timeout", func(c *Config) { c.API.Timeout = 0 }, "api.timeout"},
		{"negative refresh", func(c *Config) { c.Refresh.Overview = -time.Second }, "refresh.overview"},
		{"negative logs refresh", func(c *Config) { c.Refresh.Logs = -time.Second }, "refresh.logs"},
		{"negative limit", func(c *Config) { c.Logs.Limit = -1 }, "logs.limit"},
		{"dashboard port", func(c *Config) { c.Dashboard.Port = 0 }, "dashboard.port"},
		{"storage type", func(c *Config) { c.Storage.Types = []string{"parquet"} }, "parquet"},
		{"mongo uri", func(c *Config) { c.Storage.Types = []string{"mongodb"} }, "mongo_uri"},
		{"webhook url", func(c *Config) { c.Notify.Webhooks = []string{"mailto:ops"} }, "notify.webhooks"},
		{"webhook timeout", func(c *Config) { c.Notify.Webhooks = []string{"http://hooks"}; c.Notify.Timeout = 0 }, "notify.timeout"},
		{"log level", func(c *Config) { c.Logging.Level = "trace" }, "logging.level"},
		{"log format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"metrics port", func(c *Config) { c.Metrics.Enabled = true; c.Metrics.Port = 70000 }, "metrics.port"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := Validate(cfg)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestValidateAllowsDisabledRefresh(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Refresh.Overview = 0
	cfg.Refresh.Logs = 0
	if err := Validate(cfg); err != nil {
		t.Errorf("zero refresh should be allowed: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wigowatch.yaml")
	content := `
api:
  base_url: https://wigo.example.com/api
  timeout: 3s
refresh:
  overview: 15s
  logs: 0s
logs:
  min_level: WARNING
storage:
  types: [jsonl, csv]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.API.BaseURL != "https://wigo.example.com/api" {
		t.Errorf("unexpected base url %q", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 3*time.Second {
		t.Errorf("unexpected timeout %v", cfg.API.Timeout)
	}
	if cfg.Refresh.Overview != 15*time.Second || cfg.Refresh.Logs != 0 {
		t.Errorf("unexpected refresh %+v", cfg.Refresh)
	}
	if cfg.Logs.MinLevel != "WARNING" {
		t.Errorf("unexpected min level %q", cfg.Logs.MinLevel)
	}
	if len(cfg.Storage.Types) != 2 || cfg.Storage.Types[1] != "csv" {
		t.Errorf("unexpected storage types %v", cfg.Storage.Types)
	}
	// Untouched keys keep their defaults.
	if cfg.Dashboard.Port != 8080 {
		t.Errorf("expected default dashboard port, got %d", cfg.Dashboard.Port)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing explicit config file")
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("WIGOWATCH_DASHBOARD_PORT", "9999")
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Dashboard.Port != 9999 {
		t.Errorf("expected env override 9999, got %d", cfg.Dashboard.Port)
	}
}

func TestDumpMasksPassword(t *testing.T) {
	cfg := DefaultConfig()
	cfg.API.Password = "hunter2"

	out, err := Dump(cfg)
	if err != nil {
		t.Fatalf("dump: %v", err)
	}
	if strings.Contains(string(out), "hunter2") {
		t.Error("password leaked in dump")
	}
	if !strings.Contains(string(out), "base_url: http://localhost:4000/api") {
		t.Errorf("dump missing base_url:\n%s", out)
	}
	if cfg.API.Password != "hunter2" {
		t.Error("Dump must not modify its input")
	}
}
