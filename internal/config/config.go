package config

import (
	"time"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Config is the root configuration for wigowatch.
type Config struct {
	API       APIConfig       `mapstructure:"api"       yaml:"api"`
	Refresh   RefreshConfig   `mapstructure:"refresh"   yaml:"refresh"`
	Logs      LogsConfig      `mapstructure:"logs"      yaml:"logs"`
	Dashboard DashboardConfig `mapstructure:"dashboard" yaml:"dashboard"`
	Storage   StorageConfig   `mapstructure:"storage"   yaml:"storage"`
	Notify    NotifyConfig    `mapstructure:"notify"    yaml:"notify"`
	Logging   LoggingConfig   `mapstructure:"logging"   yaml:"logging"`
	Metrics   MetricsConfig   `mapstructure:"metrics"   yaml:"metrics"`
}

// APIConfig controls how the wigo REST API is reached.
type APIConfig struct {
	BaseURL         string        `mapstructure:"base_url"          yaml:"base_url"`
	Username        string        `mapstructure:"username"          yaml:"username"`
	Password        string        `mapstructure:"password"          yaml:"password"`
	Timeout         time.Duration `mapstructure:"timeout"           yaml:"timeout"`
	TLSInsecure     bool          `mapstructure:"tls_insecure"      yaml:"tls_insecure"`
	MaxBodySize     int64         `mapstructure:"max_body_size"     yaml:"max_body_size"`
	IdleConnTimeout time.Duration `mapstructure:"idle_conn_timeout" yaml:"idle_conn_timeout"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"    yaml:"max_idle_conns"`
	UserAgent       string        `mapstructure:"user_agent"        yaml:"user_agent"`
}

// RefreshConfig controls how often views re-fetch. Zero disables auto-refresh.
type RefreshConfig struct {
	Overview time.Duration `mapstructure:"overview" yaml:"overview"`
	Logs     time.Duration `mapstructure:"logs"     yaml:"logs"`
}

// LogsConfig controls which logs are fetched and shown.
type LogsConfig struct {
	MinLevel string `mapstructure:"min_level" yaml:"min_level"`
	Limit    int    `mapstructure:"limit"     yaml:"limit"`
	Group    string `mapstructure:"group"     yaml:"group"`
	Host     string `mapstructure:"host"      yaml:"host"`
	Probe    string `mapstructure:"probe"     yaml:"probe"`
}

// DashboardConfig controls the web dashboard.
type DashboardConfig struct {
	Port  int    `mapstructure:"port"  yaml:"port"`
	Title string `mapstructure:"title" yaml:"title"`
}

// StorageConfig controls status history recording.
type StorageConfig struct {
	Types           []string `mapstructure:"types"            yaml:"types"`
	OutputPath      string   `mapstructure:"output_path"      yaml:"output_path"`
	MongoURI        string   `mapstructure:"mongo_uri"        yaml:"mongo_uri"`
	MongoDatabase   string   `mapstructure:"mongo_database"   yaml:"mongo_database"`
	MongoCollection string   `mapstructure:"mongo_collection" yaml:"mongo_collection"`
}

// NotifyConfig controls status change notifications.
type NotifyConfig struct {
	Webhooks []string      `mapstructure:"webhooks" yaml:"webhooks"`
	Timeout  time.Duration `mapstructure:"timeout"  yaml:"timeout"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
	Output string `mapstructure:"output" yaml:"output"`
}

// MetricsConfig controls Prometheus metrics.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Port    int    `mapstructure:"port"    yaml:"port"`
	Path    string `mapstructure:"path"    yaml:"path"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:         "http://localhost:4000/api",
			Timeout:         10 * time.Second,
			MaxBodySize:     10 * 1024 * 1024, // 10MB
			IdleConnTimeout: 90 * time.Second,
			MaxIdleConns:    10,
		},
		Refresh: RefreshConfig{
			Overview: 60 * time.Second,
			Logs:     60 * time.Second,
		},
		Logs: LogsConfig{
			MinLevel: "INFO",
			Limit:    100,
		},
		Dashboard: DashboardConfig{
			Port:  8080,
			Title: "wigo",
		},
		Storage: StorageConfig{
			OutputPath:      "./history",
			MongoDatabase:   "wigowatch",
			MongoCollection: "samples",
		},
		Notify: NotifyConfig{
			Timeout: 5 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Port:    9090,
			Path:    "/metrics",
		},
	}
}
