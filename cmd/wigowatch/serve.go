package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wigowatch/wigowatch/internal/client"
	"github.com/wigowatch/wigowatch/internal/dashboard"
	"github.com/wigowatch/wigowatch/internal/monitor"
	"github.com/wigowatch/wigowatch/internal/storage"
	"github.com/wigowatch/wigowatch/internal/types"
	"github.com/wigowatch/wigowatch/internal/watch"
)

var servePort int

// serveCmd creates the "serve" subcommand.
func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web dashboard",
		Long:  "Serve the HTML dashboard and JSON API, refreshing the overview and logs periodically.",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	cmd.Flags().IntVarP(&servePort, "port", "p", 0, "dashboard port (overrides config)")
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.close()
	if servePort > 0 {
		e.cfg.Dashboard.Port = servePort
	}

	store, err := storage.NewStorage(e.cfg.Storage, e.logger)
	if err != nil {
		return fmt.Errorf("create storage: %w", err)
	}
	defer store.Close()

	opts := []watch.Option{watch.WithLogger(e.logger), watch.WithMetrics(e.metrics)}
	overview := watch.NewOverviewView(e.client, e.cfg.Refresh.Overview, opts...)
	q := client.LogQuery{
		Limit: e.cfg.Logs.Limit,
		Group: e.cfg.Logs.Group,
		Host:  e.cfg.Logs.Host,
		Probe: e.cfg.Logs.Probe,
	}
	logs := watch.NewLogsView(e.client, q, e.cfg.Logs.MinLevel, e.cfg.Refresh.Logs, opts...)

	ctx, cancel := signalContext(e.logger)
	defer cancel()

	recorder := storage.NewRecorder(store, e.metrics, e.logger)
	detector := monitor.NewChangeDetector(e.logger)
	notifier := monitor.NewNotifierFromConfig(e.cfg.Notify, e.logger)
	overview.OnUpdate(func(u watch.Update[*types.Overview]) {
		if u.Err != nil {
			return
		}
		recorder.Record(u.Data)
		notifier.Notify(ctx, detector.Detect(u.Data))
	})

	dash, err := dashboard.NewDashboard(e.cfg, overview, logs, e.metrics, e.logger)
	if err != nil {
		return fmt.Errorf("create dashboard: %w", err)
	}

	if e.cfg.Metrics.Enabled && e.cfg.Metrics.Port != e.cfg.Dashboard.Port {
		if err := e.metrics.StartServer(e.cfg.Metrics.Port, e.cfg.Metrics.Path); err != nil {
			e.logger.Warn("failed to start metrics server", "error", err)
		}
	}

	if err := dash.Start(); err != nil {
		return fmt.Errorf("start dashboard: %w", err)
	}
	overview.Mount(ctx)
	logs.Mount(ctx)

	e.logger.Info("serving dashboard",
		"api", e.client.BaseURL(),
		"port", e.cfg.Dashboard.Port,
		"overview_refresh", e.cfg.Refresh.Overview,
		"logs_refresh", e.cfg.Refresh.Logs,
		"storage", store.Name(),
	)

	<-ctx.Done()

	overview.Unmount()
	logs.Unmount()
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	return dash.Shutdown(shutdownCtx)
}
