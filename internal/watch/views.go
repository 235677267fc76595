package watch

import (
	"context"
	"time"

	"github.com/wigowatch/wigowatch/internal/client"
	"github.com/wigowatch/wigowatch/internal/status"
	"github.com/wigowatch/wigowatch/internal/types"
)

// View names.
const (
	OverviewViewName = "overview"
	LogsViewName     = "logs"
)

// OverviewSource fetches the global overview.
type OverviewSource interface {
	Overview(ctx context.Context) (*types.Overview, error)
}

// LogSource lists logs.
type LogSource interface {
	GetLogs(ctx context.Context, q client.LogQuery) ([]types.Log, error)
}

// OverviewView is a view over the global overview.
type OverviewView = View[*types.Overview]

// LogsView is a view over the filtered log list.
type LogsView = View[[]types.Log]

// NewOverviewView creates a view polling src.Overview. Host level gauges in
// the metrics are updated on every successful load.
func NewOverviewView(src OverviewSource, interval time.Duration, opts ...Option) *OverviewView {
	v := New[*types.Overview](OverviewViewName, src.Overview, interval, opts...)
	v.OnUpdate(func(u Update[*types.Overview]) {
		if u.Err == nil && u.Data != nil {
			v.metrics.SetLevelCounts(HostLevelCounts(u.Data))
		}
	})
	return v
}

// NewLogsView creates a view polling src.GetLogs with q, keeping only entries
// at minLevel or above. An unknown minLevel keeps every entry.
func NewLogsView(src LogSource, q client.LogQuery, minLevel string, interval time.Duration, opts ...Option) *LogsView {
	fetch := func(ctx context.Context) ([]types.Log, error) {
		logs, err := src.GetLogs(ctx, q)
		if err != nil {
			return nil, err
		}
		return status.FilterLogsByLevel(logs, minLevel), nil
	}
	return New[[]types.Log](LogsViewName, fetch, interval, opts...)
}

// HostLevelCounts counts hosts per status level across all groups.
func HostLevelCounts(o *types.Overview) map[status.Level]int64 {
	counts := make(map[status.Level]int64, len(status.Levels))
	for _, l := range status.Levels {
		counts[l] = 0
	}
	for _, g := range o.Groups {
		for _, h := range g.Hosts {
			counts[status.FromCode(h.Status)]++
		}
	}
	return counts
}
