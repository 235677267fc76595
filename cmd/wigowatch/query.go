package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wigowatch/wigowatch/internal/client"
	"github.com/wigowatch/wigowatch/internal/render"
	"github.com/wigowatch/wigowatch/internal/status"
	"github.com/wigowatch/wigowatch/internal/types"
	"github.com/wigowatch/wigowatch/internal/watch"
)

var (
	outputFormat string
	logsMinLevel string
	logsLimit    int
	logsOffset   int
	logsHost     string
	logsGroup    string
	logsProbe    string
)

func addOutputFlag(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&outputFormat, "output", "o", render.FormatTable, "output format: table, wide, json, yaml")
}

func checkOutputFlag() error {
	if !render.ValidFormat(outputFormat) {
		return fmt.Errorf("unknown output format %q", outputFormat)
	}
	return nil
}

// statusCmd creates the "status" subcommand.
func statusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Print the current overview once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkOutputFlag(); err != nil {
				return err
			}
			e, err := setup()
			if err != nil {
				return err
			}
			defer e.close()

			ctx, cancel := signalContext(e.logger)
			defer cancel()

			o, err := e.client.Overview(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if err := render.Overview(out, o, outputFormat); err != nil {
				return err
			}
			if outputFormat == render.FormatTable || outputFormat == render.FormatWide {
				fmt.Fprintln(out)
				render.Summary(out, watch.HostLevelCounts(o))
			}
			return nil
		},
	}
	addOutputFlag(cmd)
	return cmd
}

// logsCmd creates the "logs" subcommand.
func logsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Print recent logs",
		Long:  "Print recent logs, optionally scoped to a group, host or probe and filtered by minimum level.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkOutputFlag(); err != nil {
				return err
			}
			e, err := setup()
			if err != nil {
				return err
			}
			defer e.close()

			minLevel := e.cfg.Logs.MinLevel
			if cmd.Flags().Changed("min-level") {
				minLevel = logsMinLevel
			}
			if minLevel != "" && status.ParseLogLevel(minLevel) == 0 {
				e.logger.Warn("unknown log level, showing everything", "level", minLevel)
			}
			q := client.LogQuery{
				Offset: logsOffset,
				Limit:  e.cfg.Logs.Limit,
				Group:  firstNonEmpty(logsGroup, e.cfg.Logs.Group),
				Host:   firstNonEmpty(logsHost, e.cfg.Logs.Host),
				Probe:  firstNonEmpty(logsProbe, e.cfg.Logs.Probe),
			}
			if cmd.Flags().Changed("limit") {
				q.Limit = logsLimit
			}

			ctx, cancel := signalContext(e.logger)
			defer cancel()

			logs, err := fetchLogs(ctx, e.client, q)
			if err != nil {
				return err
			}
			return render.Logs(cmd.OutOrStdout(), status.FilterLogsByLevel(logs, minLevel), outputFormat)
		},
	}
	cmd.Flags().StringVar(&logsMinLevel, "min-level", "", "minimum level: DEBUG, OK, INFO, ERROR, WARNING, CRITICAL, EMERGENCY")
	cmd.Flags().IntVar(&logsLimit, "limit", 0, "maximum number of logs to fetch")
	cmd.Flags().IntVar(&logsOffset, "offset", 0, "number of logs to skip")
	cmd.Flags().StringVar(&logsHost, "host", "", "only logs of this host")
	cmd.Flags().StringVar(&logsGroup, "group", "", "only logs of this group")
	cmd.Flags().StringVar(&logsProbe, "probe", "", "only logs of this probe")
	addOutputFlag(cmd)
	return cmd
}

// fetchLogs picks the most specific endpoint for q.
func fetchLogs(ctx context.Context, c *client.Client, q client.LogQuery) ([]types.Log, error) {
	switch {
	case q.Host != "" && q.Probe != "":
		return c.GetProbeLogs(ctx, q.Host, q.Probe, q)
	case q.Host != "":
		return c.GetHostLogs(ctx, q.Host, q)
	case q.Probe != "":
		return c.GetProbeLogsByName(ctx, q.Probe, q)
	case q.Group != "":
		return c.GetGroupLogs(ctx, q.Group, q)
	default:
		return c.GetLogs(ctx, q)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// authorityCmd creates the "authority" subcommand and its children.
func authorityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "authority",
		Short: "Manage host authorizations",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List waiting and allowed hosts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkOutputFlag(); err != nil {
				return err
			}
			e, err := setup()
			if err != nil {
				return err
			}
			defer e.close()

			a, err := e.client.GetAuthorityHosts(cmd.Context())
			if err != nil {
				return err
			}
			return render.Authority(cmd.OutOrStdout(), a, outputFormat)
		},
	}
	addOutputFlag(list)

	cmd.AddCommand(list)
	cmd.AddCommand(authorityActionCmd("allow", "Authorize a waiting host", (*client.Client).AllowHost))
	cmd.AddCommand(authorityActionCmd("revoke", "Revoke a host's authorization", (*client.Client).RevokeHost))
	return cmd
}

func authorityActionCmd(name, short string, action func(*client.Client, context.Context, string) error) *cobra.Command {
	return &cobra.Command{
		Use:   name + " <uuid>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup()
			if err != nil {
				return err
			}
			defer e.close()

			if err := action(e.client, cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("%s %s: %w", name, args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", name, args[0])
			return nil
		},
	}
}
