package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Load reads configuration from file, environment, and defaults.
// Priority (highest to lowest): env vars > config file > defaults.
// CLI flags are applied by the caller on the returned Config.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")

	setDefaults(v, cfg)

	v.SetEnvPrefix("WIGOWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("wigowatch")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".wigowatch"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found is okay if not explicitly specified
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || configPath != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// Dump renders cfg as YAML with credentials masked.
func Dump(cfg *Config) ([]byte, error) {
	masked := *cfg
	if masked.API.Password != "" {
		masked.API.Password = "********"
	}
	return yaml.Marshal(&masked)
}

// setDefaults registers default values in viper.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("api.base_url", cfg.API.BaseURL)
	v.SetDefault("api.username", cfg.API.Username)
	v.SetDefault("api.password", cfg.API.Password)
	v.SetDefault("api.timeout", cfg.API.Timeout)
	v.SetDefault("api.tls_insecure", cfg.API.TLSInsecure)
	v.SetDefault("api.max_body_size", cfg.API.MaxBodySize)
	v.SetDefault("api.idle_conn_timeout", cfg.API.IdleConnTimeout)
	v.SetDefault("api.max_idle_conns", cfg.API.MaxIdleConns)
	v.SetDefault("api.user_agent", cfg.API.UserAgent)

	v.SetDefault("refresh.overview", cfg.Refresh.Overview)
	v.SetDefault("refresh.logs", cfg.Refresh.Logs)

	v.SetDefault("logs.min_level", cfg.Logs.MinLevel)
	v.SetDefault("logs.limit", cfg.Logs.Limit)
	v.SetDefault("logs.group", cfg.Logs.Group)
	v.SetDefault("logs.host", cfg.Logs.Host)
	v.SetDefault("logs.probe", cfg.Logs.Probe)

	v.SetDefault("dashboard.port", cfg.Dashboard.Port)
	v.SetDefault("dashboard.title", cfg.Dashboard.Title)

	v.SetDefault("storage.types", cfg.Storage.Types)
	v.SetDefault("storage.output_path", cfg.Storage.OutputPath)
	v.SetDefault("storage.mongo_uri", cfg.Storage.MongoURI)
	v.SetDefault("storage.mongo_database", cfg.Storage.MongoDatabase)
	v.SetDefault("storage.mongo_collection", cfg.Storage.MongoCollection)

	v.SetDefault("notify.webhooks", cfg.Notify.Webhooks)
	v.SetDefault("notify.timeout", cfg.Notify.Timeout)

	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
	v.SetDefault("logging.output", cfg.Logging.Output)

	v.SetDefault("metrics.enabled", cfg.Metrics.Enabled)
	v.SetDefault("metrics.port", cfg.Metrics.Port)
	v.SetDefault("metrics.path", cfg.Metrics.Path)
}
