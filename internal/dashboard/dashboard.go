// Package dashboard serves the HTML dashboard, its JSON API and live updates.
package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/net/websocket"

	"github.com/wigowatch/wigowatch/internal/config"
	"github.com/wigowatch/wigowatch/internal/observability"
	"github.com/wigowatch/wigowatch/internal/status"
	"github.com/wigowatch/wigowatch/internal/types"
	"github.com/wigowatch/wigowatch/internal/watch"
)

// Dashboard serves the web dashboard.
type Dashboard struct {
	port        int
	title       string
	metricsPath string

	overview *watch.OverviewView
	logs     *watch.LogsView
	metrics  *observability.Metrics
	logger   *slog.Logger

	overviewTmpl *template.Template
	logsTmpl     *template.Template

	clientsMu sync.Mutex
	clients   map[*websocket.Conn]bool

	server *http.Server
}

// NewDashboard creates a dashboard over the two views. The metrics path is
// served when cfg.Metrics.Enabled is set.
func NewDashboard(cfg *config.Config, overview *watch.OverviewView, logs *watch.LogsView, metrics *observability.Metrics, logger *slog.Logger) (*Dashboard, error) {
	overviewTmpl, logsTmpl, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	if metrics == nil {
		metrics = observability.NewMetrics(logger)
	}

	d := &Dashboard{
		port:         cfg.Dashboard.Port,
		title:        cfg.Dashboard.Title,
		overview:     overview,
		logs:         logs,
		metrics:      metrics,
		logger:       logger.With("component", "dashboard"),
		overviewTmpl: overviewTmpl,
		logsTmpl:     logsTmpl,
		clients:      make(map[*websocket.Conn]bool),
	}
	if cfg.Metrics.Enabled {
		d.metricsPath = cfg.Metrics.Path
	}
	if d.title == "" {
		d.title = "wigowatch"
	}
	return d, nil
}

var templateFuncs = template.FuncMap{
	"level":          status.FromCode,
	"textClass":      status.TextClass,
	"bgClass":        status.BgClass,
	"badgeClass":     status.BadgeClass,
	"btnClass":       status.BtnClass,
	"statusRowClass": status.StatusRowClass,
	"logRowClass":    func(l uint8) string { return status.LogRowClass(int(l)) },
	"logLevelName": func(l uint8) string {
		if name, ok := status.LogLevelAt(int(l)); ok {
			return name.String()
		}
		return strconv.Itoa(int(l))
	},
}

func parseTemplates() (*template.Template, *template.Template, error) {
	layout, err := template.New("layout").Funcs(templateFuncs).Parse(layoutHTML)
	if err != nil {
		return nil, nil, fmt.Errorf("parse layout template: %w", err)
	}
	overview, err := template.Must(layout.Clone()).New("overview").Parse(overviewHTML)
	if err != nil {
		return nil, nil, fmt.Errorf("parse overview template: %w", err)
	}
	logs, err := template.Must(layout.Clone()).New("logs").Parse(logsHTML)
	if err != nil {
		return nil, nil, fmt.Errorf("parse logs template: %w", err)
	}
	return overview, logs, nil
}

// Handler returns the dashboard routes.
func (d *Dashboard) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", d.handleOverview)
	mux.HandleFunc("GET /logs", d.handleLogs)
	mux.HandleFunc("GET /api/overview", d.handleAPIOverview)
	mux.HandleFunc("GET /api/logs", d.handleAPILogs)
	mux.HandleFunc("GET /api/refresh", d.handleGetRefresh)
	mux.HandleFunc("POST /api/refresh", d.handleSetRefresh)
	mux.Handle("/ws", websocket.Handler(d.handleWS))
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "ok")
	})
	if d.metricsPath != "" && d.metrics != nil {
		mux.Handle(d.metricsPath, d.metrics)
	}
	return mux
}

// Start serves the dashboard in the background and pushes overview updates
// to websocket clients until the overview view unmounts.
func (d *Dashboard) Start() error {
	addr := fmt.Sprintf(":%d", d.port)
	d.server = &http.Server{
		Addr:              addr,
		Handler:           d.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	d.logger.Info("dashboard starting", "addr", addr)

	go d.broadcastLoop(d.overview.Subscribe())

	go func() {
		if err := d.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			d.logger.Error("dashboard error", "error", err)
		}
	}()
	return nil
}

// Shutdown stops the HTTP server and disconnects websocket clients.
func (d *Dashboard) Shutdown(ctx context.Context) error {
	d.clientsMu.Lock()
	for c := range d.clients {
		c.Close()
		delete(d.clients, c)
	}
	d.clientsMu.Unlock()

	if d.server == nil {
		return nil
	}
	return d.server.Shutdown(ctx)
}

type page struct {
	Title     string
	Error     string
	UpdatedAt time.Time
	Interval  time.Duration
}

type overviewPage struct {
	page
	Overview *types.Overview
}

type logsPage struct {
	page
	Level  string
	Levels []status.LogLevel
	Logs   []types.Log
}

func errorString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func (d *Dashboard) handleOverview(w http.ResponseWriter, r *http.Request) {
	o, at, _ := d.overview.Snapshot()
	data := overviewPage{
		page: page{
			Title:     d.title,
			Error:     errorString(d.overview.LastError()),
			UpdatedAt: at,
			Interval:  d.overview.Interval(),
		},
		Overview: o,
	}
	d.render(w, d.overviewTmpl, data)
}

func (d *Dashboard) handleLogs(w http.ResponseWriter, r *http.Request) {
	level := r.URL.Query().Get("level")
	logs, at, _ := d.logs.Snapshot()
	data := logsPage{
		page: page{
			Title:     d.title + " logs",
			Error:     errorString(d.logs.LastError()),
			UpdatedAt: at,
			Interval:  d.logs.Interval(),
		},
		Level:  level,
		Levels: status.LogLevels[:],
		Logs:   status.FilterLogsByLevel(logs, level),
	}
	d.render(w, d.logsTmpl, data)
}

func (d *Dashboard) render(w http.ResponseWriter, t *template.Template, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := t.Execute(w, data); err != nil {
		d.logger.Error("template render failed", "template", t.Name(), "error", err)
	}
}

// overviewPayload is the JSON form of the overview, also pushed on /ws.
type overviewPayload struct {
	Seq       uint64        `json:"seq,omitempty"`
	Status    int           `json:"status"`
	Level     status.Level  `json:"level"`
	Groups    []types.Group `json:"groups"`
	UpdatedAt time.Time     `json:"updated_at"`
	Error     string        `json:"error,omitempty"`
}

func newOverviewPayload(o *types.Overview, at time.Time, err error) overviewPayload {
	p := overviewPayload{UpdatedAt: at, Error: errorString(err), Groups: []types.Group{}}
	if o != nil {
		p.Status = o.Status
		p.Level = status.FromCode(o.Status)
		if o.Groups != nil {
			p.Groups = o.Groups
		}
	}
	return p
}

func (d *Dashboard) handleAPIOverview(w http.ResponseWriter, r *http.Request) {
	o, at, ok := d.overview.Snapshot()
	if !ok {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "no data yet: " + errorString(d.overview.LastError()),
		})
		return
	}
	writeJSON(w, http.StatusOK, newOverviewPayload(o, at, d.overview.LastError()))
}

func (d *Dashboard) handleAPILogs(w http.ResponseWriter, r *http.Request) {
	logs, _, _ := d.logs.Snapshot()
	logs = status.FilterLogsByLevel(logs, r.URL.Query().Get("level"))
	if logs == nil {
		logs = []types.Log{}
	}
	writeJSON(w, http.StatusOK, logs)
}

// maxIntervalSeconds is the largest interval that fits in a time.Duration.
const maxIntervalSeconds = math.MaxInt64 / int64(time.Second)

type refreshSettings struct {
	OverviewSeconds int `json:"overview_seconds"`
	LogsSeconds     int `json:"logs_seconds"`
}

func (d *Dashboard) refreshSettings() refreshSettings {
	return refreshSettings{
		OverviewSeconds: int(d.overview.Interval() / time.Second),
		LogsSeconds:     int(d.logs.Interval() / time.Second),
	}
}

func (d *Dashboard) handleGetRefresh(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, d.refreshSettings())
}

// handleSetRefresh sets both refresh intervals from the "interval" value in
// seconds; 0 disables periodic refreshes. Without a value both views are
// refreshed immediately.
func (d *Dashboard) handleSetRefresh(w http.ResponseWriter, r *http.Request) {
	raw := r.FormValue("interval")
	if raw == "" {
		d.overview.Refresh()
		d.logs.Refresh()
		writeJSON(w, http.StatusAccepted, d.refreshSettings())
		return
	}

	secs, err := strconv.Atoi(raw)
	if err != nil || secs < 0 || int64(secs) > maxIntervalSeconds {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": fmt.Sprintf("interval must be between 0 and %d seconds, got %q", maxIntervalSeconds, raw),
		})
		return
	}

	interval := time.Duration(secs) * time.Second
	d.overview.SetInterval(interval)
	d.logs.SetInterval(interval)
	d.logger.Info("refresh interval changed", "interval", interval)
	writeJSON(w, http.StatusOK, d.refreshSettings())
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
