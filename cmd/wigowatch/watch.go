package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/wigowatch/wigowatch/internal/render"
	"github.com/wigowatch/wigowatch/internal/types"
	"github.com/wigowatch/wigowatch/internal/watch"
)

var (
	watchInterval time.Duration
	watchWide     bool
	watchNoClear  bool
)

// watchCmd creates the "watch" subcommand.
func watchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Continuously display the overview in the terminal",
		Long:  "Refresh the overview periodically and redraw it until interrupted with Ctrl-C.",
		Args:  cobra.NoArgs,
		RunE:  runWatch,
	}
	cmd.Flags().DurationVarP(&watchInterval, "interval", "i", 0, "refresh interval (overrides config, 0 keeps config)")
	cmd.Flags().BoolVarP(&watchWide, "wide", "w", false, "show one row per probe")
	cmd.Flags().BoolVar(&watchNoClear, "no-clear", false, "do not clear the screen between refreshes")
	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.close()

	interval := e.cfg.Refresh.Overview
	if watchInterval > 0 {
		interval = watchInterval
	}
	format := render.FormatTable
	if watchWide {
		format = render.FormatWide
	}

	view := watch.NewOverviewView(e.client, interval, watch.WithLogger(e.logger), watch.WithMetrics(e.metrics))
	updates := view.Subscribe()

	ctx, cancel := signalContext(e.logger)
	defer cancel()
	view.Mount(ctx)
	defer view.Unmount()

	out := cmd.OutOrStdout()
	for u := range updates {
		drawWatch(out, u, view.Interval(), format, !watchNoClear)
	}
	return nil
}

func drawWatch(out io.Writer, u watch.Update[*types.Overview], interval time.Duration, format string, clear bool) {
	if clear {
		fmt.Fprint(out, "\033[H\033[2J")
	}
	refresh := "disabled"
	if interval > 0 {
		refresh = interval.String()
	}
	fmt.Fprintf(out, "wigowatch  %s  refresh %s  (Ctrl-C to quit)\n", u.At.Format("15:04:05"), refresh)
	if u.Err != nil {
		fmt.Fprintf(out, "refresh failed: %v\n", u.Err)
	}
	if u.Data == nil {
		return
	}
	fmt.Fprintln(out)
	render.Overview(out, u.Data, format)
	fmt.Fprintln(out)
	render.Summary(out, watch.HostLevelCounts(u.Data))
}
