package observability

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/wigowatch/wigowatch/internal/status"
)

// Metrics tracks operational metrics for the dashboard.
type Metrics struct {
	// API request metrics
	RequestsTotal   atomic.Int64
	RequestsFailed  atomic.Int64
	Responses2xx    atomic.Int64
	Responses3xx    atomic.Int64
	Responses4xx    atomic.Int64
	Responses5xx    atomic.Int64
	BytesDownloaded atomic.Int64

	// View refresh metrics
	RefreshesTotal  atomic.Int64
	RefreshesFailed atomic.Int64
	RefreshesStale  atomic.Int64

	// History metrics
	SamplesStored atomic.Int64
	StorageErrors atomic.Int64

	// Live clients
	WebsocketClients atomic.Int32

	levelMu     sync.RWMutex
	levelCounts map[status.Level]int64

	logger *slog.Logger
}

// NewMetrics creates a new Metrics instance.
func NewMetrics(logger *slog.Logger) *Metrics {
	return &Metrics{
		levelCounts: make(map[status.Level]int64),
		logger:      logger.With("component", "metrics"),
	}
}

// ObserveResponse counts a response by status class.
func (m *Metrics) ObserveResponse(code int) {
	switch {
	case code >= 500:
		m.Responses5xx.Add(1)
	case code >= 400:
		m.Responses4xx.Add(1)
	case code >= 300:
		m.Responses3xx.Add(1)
	case code >= 200:
		m.Responses2xx.Add(1)
	}
}

// SetLevelCounts replaces the number of hosts currently at each level.
func (m *Metrics) SetLevelCounts(counts map[status.Level]int64) {
	m.levelMu.Lock()
	defer m.levelMu.Unlock()
	m.levelCounts = make(map[status.Level]int64, len(counts))
	for l, n := range counts {
		m.levelCounts[l] = n
	}
}

// LevelCount returns the number of hosts last seen at l.
func (m *Metrics) LevelCount(l status.Level) int64 {
	m.levelMu.RLock()
	defer m.levelMu.RUnlock()
	return m.levelCounts[l]
}

// ServeHTTP serves metrics in Prometheus text exposition format.
func (m *Metrics) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	counters := []struct {
		name  string
		help  string
		kind  string
		value int64
	}{
		{"wigowatch_api_requests_total", "Total API requests made", "counter", m.RequestsTotal.Load()},
		{"wigowatch_api_requests_failed_total", "Total failed API requests", "counter", m.RequestsFailed.Load()},
		{"wigowatch_api_responses_2xx_total", "Total 2xx responses", "counter", m.Responses2xx.Load()},
		{"wigowatch_api_responses_3xx_total", "Total 3xx responses", "counter", m.Responses3xx.Load()},
		{"wigowatch_api_responses_4xx_total", "Total 4xx responses", "counter", m.Responses4xx.Load()},
		{"wigowatch_api_responses_5xx_total", "Total 5xx responses", "counter", m.Responses5xx.Load()},
		{"wigowatch_api_bytes_downloaded_total", "Total bytes downloaded", "counter", m.BytesDownloaded.Load()},
		{"wigowatch_refreshes_total", "Total view refreshes", "counter", m.RefreshesTotal.Load()},
		{"wigowatch_refreshes_failed_total", "Total failed view refreshes", "counter", m.RefreshesFailed.Load()},
		{"wigowatch_refreshes_stale_total", "Refresh results discarded as outdated", "counter", m.RefreshesStale.Load()},
		{"wigowatch_samples_stored_total", "Total history samples stored", "counter", m.SamplesStored.Load()},
		{"wigowatch_storage_errors_total", "Total history storage errors", "counter", m.StorageErrors.Load()},
		{"wigowatch_websocket_clients", "Connected websocket clients", "gauge", int64(m.WebsocketClients.Load())},
	}

	for _, metric := range counters {
		fmt.Fprintf(w, "# HELP %s %s\n", metric.name, metric.help)
		fmt.Fprintf(w, "# TYPE %s %s\n", metric.name, metric.kind)
		fmt.Fprintf(w, "%s %d\n", metric.name, metric.value)
	}

	fmt.Fprintf(w, "# HELP wigowatch_hosts Hosts by status level\n")
	fmt.Fprintf(w, "# TYPE wigowatch_hosts gauge\n")
	for _, l := range status.Levels {
		fmt.Fprintf(w, "wigowatch_hosts{level=%q} %d\n", strings.ToLower(l.String()), m.LevelCount(l))
	}
}

// StartServer starts the metrics HTTP server.
func (m *Metrics) StartServer(port int, path string) error {
	mux := http.NewServeMux()
	mux.Handle(path, m)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "ok")
	})

	addr := fmt.Sprintf(":%d", port)
	m.logger.Info("metrics server starting", "addr", addr, "path", path)

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			m.logger.Error("metrics server error", "error", err)
		}
	}()

	return nil
}

// Snapshot returns all metrics as a map.
func (m *Metrics) Snapshot() map[string]int64 {
	return map[string]int64{
		"requests_total":    m.RequestsTotal.Load(),
		"requests_failed":   m.RequestsFailed.Load(),
		"responses_2xx":     m.Responses2xx.Load(),
		"responses_4xx":     m.Responses4xx.Load(),
		"responses_5xx":     m.Responses5xx.Load(),
		"bytes_downloaded":  m.BytesDownloaded.Load(),
		"refreshes_total":   m.RefreshesTotal.Load(),
		"refreshes_failed":  m.RefreshesFailed.Load(),
		"refreshes_stale":   m.RefreshesStale.Load(),
		"samples_stored":    m.SamplesStored.Load(),
		"storage_errors":    m.StorageErrors.Load(),
		"websocket_clients": int64(m.WebsocketClients.Load()),
	}
}
