package config

import (
	"fmt"
	"net/url"
)

// Validate checks the configuration for invalid values.
func Validate(cfg *Config) error {
	if err := ValidateURL(cfg.API.BaseURL); err != nil {
		return fmt.Errorf("api.base_url: %w", err)
	}
	if cfg.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be > 0")
	}
	if cfg.API.MaxBodySize <= 0 {
		return fmt.Errorf("api.max_body_size must be > 0")
	}
	if cfg.API.MaxIdleConns < 0 {
		return fmt.Errorf("api.max_idle_conns must be >= 0, got %d", cfg.API.MaxIdleConns)
	}

	if cfg.Refresh.Overview < 0 {
		return fmt.Errorf("refresh.overview must be >= 0 (0 disables), got %s", cfg.Refresh.Overview)
	}
	if cfg.Refresh.Logs < 0 {
		return fmt.Errorf("refresh.logs must be >= 0 (0 disables), got %s", cfg.Refresh.Logs)
	}

	if cfg.Logs.Limit < 0 {
		return fmt.Errorf("logs.limit must be >= 0, got %d", cfg.Logs.Limit)
	}

	if cfg.Dashboard.Port < 1 || cfg.Dashboard.Port > 65535 {
		return fmt.Errorf("dashboard.port must be 1-65535, got %d", cfg.Dashboard.Port)
	}

	validStorageTypes := map[string]bool{
		"none": true, "jsonl": true, "csv": true, "mongodb": true,
	}
	for _, t := range cfg.Storage.Types {
		if !validStorageTypes[t] {
			return fmt.Errorf("storage type %q is not supported (valid: none, jsonl, csv, mongodb)", t)
		}
		if t == "mongodb" && cfg.Storage.MongoURI == "" {
			return fmt.Errorf("storage.mongo_uri is required for the mongodb backend")
		}
	}

	for _, hook := range cfg.Notify.Webhooks {
		if err := ValidateURL(hook); err != nil {
			return fmt.Errorf("notify.webhooks %q: %w", hook, err)
		}
	}
	if len(cfg.Notify.Webhooks) > 0 && cfg.Notify.Timeout <= 0 {
		return fmt.Errorf("notify.timeout must be > 0 when webhooks are set")
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be debug/info/warn/error, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" && cfg.Logging.Format != "json" {
		return fmt.Errorf("logging.format must be 'text' or 'json', got %q", cfg.Logging.Format)
	}

	if cfg.Metrics.Enabled {
		if cfg.Metrics.Port < 1 || cfg.Metrics.Port > 65535 {
			return fmt.Errorf("metrics.port must be 1-65535, got %d", cfg.Metrics.Port)
		}
	}

	return nil
}

// ValidateURL checks that a URL is an absolute http(s) URL.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL must have a host")
	}
	return nil
}
