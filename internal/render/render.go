// Package render prints wigo data for terminals.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/wigowatch/wigowatch/internal/status"
	"github.com/wigowatch/wigowatch/internal/types"
)

// Output formats.
const (
	FormatTable = "table"
	FormatWide  = "wide"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// ValidFormat reports whether f is a known output format.
func ValidFormat(f string) bool {
	switch f {
	case FormatTable, FormatWide, FormatJSON, FormatYAML:
		return true
	}
	return false
}

// encode writes v as JSON or YAML. It returns false for table formats.
func encode(w io.Writer, format string, v any) (bool, error) {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return true, enc.Encode(v)
	case FormatYAML:
		out, err := yaml.Marshal(v)
		if err != nil {
			return true, err
		}
		_, err = w.Write(out)
		return true, err
	}
	return false, nil
}

// Overview prints the global status and one row per host. The wide format
// adds one row per probe.
func Overview(w io.Writer, o *types.Overview, format string) error {
	if done, err := encode(w, format, o); done {
		return err
	}

	fmt.Fprintf(w, "Global status: %d (%s)\n\n", o.Status, status.FromCode(o.Status))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if format == FormatWide {
		fmt.Fprintln(tw, "GROUP\tHOST\tPROBE\tSTATUS\tLEVEL\tMESSAGE")
	} else {
		fmt.Fprintln(tw, "GROUP\tHOST\tSTATUS\tLEVEL\tALIVE\tPROBES")
	}
	for _, g := range o.Groups {
		for _, h := range g.Hosts {
			if format == FormatWide {
				for _, p := range h.Probes {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n", g.Name, h.Name, p.Name, p.Status, status.FromCode(p.Status), p.Message)
				}
				continue
			}
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%v\t%d\n", g.Name, h.Name, h.Status, status.FromCode(h.Status), h.IsAlive, len(h.Probes))
		}
	}
	return tw.Flush()
}

// Summary prints the number of hosts per level, worst first.
func Summary(w io.Writer, counts map[status.Level]int64) {
	for i := len(status.Levels) - 1; i >= 0; i-- {
		l := status.Levels[i]
		fmt.Fprintf(w, "%-9s %d\n", l, counts[l])
	}
}

// Logs prints log records, oldest first as received.
func Logs(w io.Writer, logs []types.Log, format string) error {
	if logs == nil {
		logs = []types.Log{}
	}
	if done, err := encode(w, format, logs); done {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tLEVEL\tGROUP\tHOST\tPROBE\tMESSAGE")
	for _, l := range logs {
		name, ok := status.LogLevelAt(int(l.Level))
		level := name.String()
		if !ok {
			level = fmt.Sprint(l.Level)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", l.Date, level, l.Group, l.Host, l.Probe, l.Message)
	}
	return tw.Flush()
}

// Authority prints waiting and allowed hosts sorted by uuid.
func Authority(w io.Writer, a *types.AuthorityHosts, format string) error {
	if done, err := encode(w, format, a); done {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STATE\tUUID\tHOST")
	writeSection := func(state string, hosts map[string]string) {
		uuids := make([]string, 0, len(hosts))
		for uuid := range hosts {
			uuids = append(uuids, uuid)
		}
		sort.Strings(uuids)
		for _, uuid := range uuids {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", state, uuid, hosts[uuid])
		}
	}
	writeSection("waiting", a.Waiting)
	writeSection("allowed", a.Allowed)
	return tw.Flush()
}
