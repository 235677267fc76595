package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wigowatch/wigowatch/internal/client"
	"github.com/wigowatch/wigowatch/internal/config"
	"github.com/wigowatch/wigowatch/internal/observability"
)

var (
	cfgFile string
	verbose bool
	apiURL  string
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "wigowatch",
		Short: "wigowatch: dashboard and CLI for a wigo monitoring API",
		Long: `wigowatch polls a wigo REST API and presents host and probe status.

Features:
  • Web dashboard with live websocket updates
  • Terminal watch mode with adjustable refresh interval
  • Log browsing filtered by severity
  • Host authority management
  • Status history in JSONL, CSV or MongoDB
  • Prometheus metrics endpoint`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().StringVar(&apiURL, "api", "", "wigo API base URL (overrides config)")

	root.AddCommand(serveCmd())
	root.AddCommand(watchCmd())
	root.AddCommand(statusCmd())
	root.AddCommand(logsCmd())
	root.AddCommand(authorityCmd())
	root.AddCommand(configCmd())
	root.AddCommand(versionCmd())
	return root
}

// env holds what every command needs.
type env struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *observability.Metrics
	client  *client.Client
	close   func()
}

// setup loads and validates the config, then builds the logger, metrics and
// API client.
func setup() (*env, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if apiURL != "" {
		cfg.API.BaseURL = apiURL
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger, closeLog, err := observability.NewLogger(cfg.Logging, verbose)
	if err != nil {
		return nil, err
	}

	metrics := observability.NewMetrics(logger)
	c, err := client.New(cfg, metrics, logger)
	if err != nil {
		closeLog()
		return nil, fmt.Errorf("create client: %w", err)
	}

	return &env{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics,
		client:  c,
		close: func() {
			c.Close()
			closeLog()
		},
	}, nil
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("received signal, shutting down...", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()
	return ctx, cancel
}

// versionCmd creates the "version" subcommand.
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "wigowatch %s\n", config.Version)
		},
	}
}

// configCmd creates the "config" subcommand printing the effective
// configuration as YAML.
func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			if apiURL != "" {
				cfg.API.BaseURL = apiURL
			}
			out, err := config.Dump(cfg)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}
