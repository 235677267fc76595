// Package monitor detects status transitions between overviews and sends
// notifications about them.
package monitor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/wigowatch/wigowatch/internal/config"
	"github.com/wigowatch/wigowatch/internal/status"
	"github.com/wigowatch/wigowatch/internal/types"
)

// ChangeType identifies what kind of change occurred.
type ChangeType string

const (
	ChangeAdded    ChangeType = "added"
	ChangeModified ChangeType = "modified"
	ChangeRemoved  ChangeType = "removed"
)

// Change is a status transition of one group, host or probe.
type Change struct {
	Type      ChangeType   `json:"type"`
	Kind      string       `json:"kind"`
	Group     string       `json:"group,omitempty"`
	Host      string       `json:"host,omitempty"`
	Probe     string       `json:"probe,omitempty"`
	OldStatus int          `json:"old_status,omitempty"`
	NewStatus int          `json:"new_status,omitempty"`
	OldLevel  status.Level `json:"old_level,omitempty"`
	NewLevel  status.Level `json:"new_level,omitempty"`
	Message   string       `json:"message,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
}

// Key identifies the subject of a change.
func (c Change) Key() string {
	return c.Kind + ":" + c.Group + "/" + c.Host + "/" + c.Probe
}

type observed struct {
	sample  *types.Sample
	message string
}

// ChangeDetector compares each overview against the previous one.
type ChangeDetector struct {
	last   map[string]observed
	logger *slog.Logger
	mu     sync.Mutex
}

// NewChangeDetector creates a detector with no history. The first Detect
// call only records a baseline.
func NewChangeDetector(logger *slog.Logger) *ChangeDetector {
	return &ChangeDetector{
		logger: logger.With("component", "change_detector"),
	}
}

// Detect returns the level transitions since the previous overview, sorted by
// subject. A status change within the same level is not reported.
func (cd *ChangeDetector) Detect(o *types.Overview) []Change {
	if o == nil {
		return nil
	}
	current := index(o)

	cd.mu.Lock()
	defer cd.mu.Unlock()

	if cd.last == nil {
		cd.last = current
		cd.logger.Debug("baseline recorded", "subjects", len(current))
		return nil
	}

	ts := o.FetchedAt
	if ts.IsZero() {
		ts = time.Now()
	}

	var changes []Change
	for key, cur := range current {
		old, seen := cd.last[key]
		s := cur.sample
		switch {
		case !seen:
			changes = append(changes, Change{
				Type: ChangeAdded, Kind: s.Kind, Group: s.Group, Host: s.Host, Probe: s.Probe,
				NewStatus: s.Status, NewLevel: status.Level(s.Level), Message: cur.message, Timestamp: ts,
			})
		case old.sample.Level != s.Level:
			changes = append(changes, Change{
				Type: ChangeModified, Kind: s.Kind, Group: s.Group, Host: s.Host, Probe: s.Probe,
				OldStatus: old.sample.Status, NewStatus: s.Status,
				OldLevel: status.Level(old.sample.Level), NewLevel: status.Level(s.Level),
				Message: cur.message, Timestamp: ts,
			})
		}
	}
	for key, old := range cd.last {
		if _, ok := current[key]; ok {
			continue
		}
		s := old.sample
		changes = append(changes, Change{
			Type: ChangeRemoved, Kind: s.Kind, Group: s.Group, Host: s.Host, Probe: s.Probe,
			OldStatus: s.Status, OldLevel: status.Level(s.Level), Timestamp: ts,
		})
	}
	cd.last = current

	sort.Slice(changes, func(i, j int) bool { return changes[i].Key() < changes[j].Key() })
	return changes
}

func index(o *types.Overview) map[string]observed {
	messages := make(map[string]string)
	for _, g := range o.Groups {
		for _, h := range g.Hosts {
			for _, p := range h.Probes {
				messages[g.Name+"/"+h.Name+"/"+p.Name] = p.Message
			}
		}
	}

	samples := o.Samples(func(code int) string { return status.FromCode(code).String() })
	out := make(map[string]observed, len(samples))
	for _, s := range samples {
		c := Change{Kind: s.Kind, Group: s.Group, Host: s.Host, Probe: s.Probe}
		out[c.Key()] = observed{sample: s, message: messages[s.Group+"/"+s.Host+"/"+s.Probe]}
	}
	return out
}

// --- Notification System ---

// NotificationType specifies the notification channel.
type NotificationType string

const (
	NotifyWebhook NotificationType = "webhook"
	NotifyLog     NotificationType = "log"
)

// NotificationChannel is an interface for notification delivery.
type NotificationChannel interface {
	Send(ctx context.Context, changes []Change) error
	Type() NotificationType
}

// Notifier sends notifications when changes are detected.
type Notifier struct {
	channels []NotificationChannel
	logger   *slog.Logger
}

// NewNotifier creates a new change notifier.
func NewNotifier(logger *slog.Logger) *Notifier {
	return &Notifier{
		logger: logger.With("component", "notifier"),
	}
}

// NewNotifierFromConfig creates a notifier logging every change and posting
// to each configured webhook.
func NewNotifierFromConfig(cfg config.NotifyConfig, logger *slog.Logger) *Notifier {
	n := NewNotifier(logger)
	n.AddChannel(NewLogChannel(logger))
	client := &http.Client{Timeout: cfg.Timeout}
	for _, url := range cfg.Webhooks {
		n.AddChannel(NewWebhookChannel(url, client, logger))
	}
	return n
}

// AddChannel registers a notification channel.
func (n *Notifier) AddChannel(ch NotificationChannel) {
	n.channels = append(n.channels, ch)
}

// Notify sends changes to all registered channels.
func (n *Notifier) Notify(ctx context.Context, changes []Change) {
	if len(changes) == 0 {
		return
	}
	for _, ch := range n.channels {
		if err := ch.Send(ctx, changes); err != nil {
			n.logger.Error("notification failed", "channel", ch.Type(), "error", err)
		}
	}
}

// LogChannel writes one log line per change.
type LogChannel struct {
	logger *slog.Logger
}

// NewLogChannel creates a log channel.
func NewLogChannel(logger *slog.Logger) *LogChannel {
	return &LogChannel{logger: logger.With("component", "status_changes")}
}

func (l *LogChannel) Type() NotificationType { return NotifyLog }

func (l *LogChannel) Send(ctx context.Context, changes []Change) error {
	for _, c := range changes {
		l.logger.Info("status change",
			"type", c.Type,
			"kind", c.Kind,
			"group", c.Group,
			"host", c.Host,
			"probe", c.Probe,
			"from", c.OldLevel,
			"to", c.NewLevel,
		)
	}
	return nil
}

// WebhookChannel posts changes as JSON to a URL.
type WebhookChannel struct {
	URL    string
	client *http.Client
	logger *slog.Logger
}

// NewWebhookChannel creates a webhook channel. A nil client uses
// http.DefaultClient.
func NewWebhookChannel(url string, client *http.Client, logger *slog.Logger) *WebhookChannel {
	if client == nil {
		client = http.DefaultClient
	}
	return &WebhookChannel{
		URL:    url,
		client: client,
		logger: logger.With("component", "webhook"),
	}
}

func (w *WebhookChannel) Type() NotificationType { return NotifyWebhook }

func (w *WebhookChannel) Send(ctx context.Context, changes []Change) error {
	data, err := json.Marshal(map[string]any{
		"changes":   changes,
		"count":     len(changes),
		"timestamp": time.Now(),
	})
	if err != nil {
		return fmt.Errorf("encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook %s returned HTTP %d", w.URL, resp.StatusCode)
	}

	w.logger.Debug("webhook sent", "url", w.URL, "changes", len(changes), "size", len(data))
	return nil
}
