package monitor

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wigowatch/wigowatch/internal/config"
	"github.com/wigowatch/wigowatch/internal/status"
	"github.com/wigowatch/wigowatch/internal/types"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func overview(hostStatus, probeStatus int, extraHost bool) *types.Overview {
	hosts := []types.Host{{
		Name:   "web-1",
		Status: hostStatus,
		Probes: []types.Probe{{Name: "disk", Status: probeStatus, Message: "usage"}},
	}}
	if extraHost {
		hosts = append(hosts, types.Host{Name: "web-2", Status: 100})
	}
	return &types.Overview{
		Status: hostStatus,
		Groups: []types.Group{{Name: "prod", Status: hostStatus, Hosts: hosts}},
	}
}

func TestDetectBaselineThenTransitions(t *testing.T) {
	cd := NewChangeDetector(testLogger())

	assert.Empty(t, cd.Detect(overview(100, 100, true)), "first overview is the baseline")
	assert.Empty(t, cd.Detect(overview(100, 100, true)))

	changes := cd.Detect(overview(100, 250, true))
	require.Len(t, changes, 1)
	c := changes[0]
	assert.Equal(t, ChangeModified, c.Type)
	assert.Equal(t, types.KindProbe, c.Kind)
	assert.Equal(t, "disk", c.Probe)
	assert.Equal(t, status.LevelOK, c.OldLevel)
	assert.Equal(t, status.LevelWarning, c.NewLevel)
	assert.Equal(t, "usage", c.Message)

	assert.Empty(t, cd.Detect(overview(100, 260, true)), "same level is not a change")
}

func TestDetectAddedAndRemoved(t *testing.T) {
	cd := NewChangeDetector(testLogger())
	cd.Detect(overview(100, 100, false))

	changes := cd.Detect(overview(100, 100, true))
	require.Len(t, changes, 1)
	assert.Equal(t, ChangeAdded, changes[0].Type)
	assert.Equal(t, "web-2", changes[0].Host)

	changes = cd.Detect(overview(100, 100, false))
	require.Len(t, changes, 1)
	assert.Equal(t, ChangeRemoved, changes[0].Type)
	assert.Equal(t, "web-2", changes[0].Host)
}

func TestDetectSortedAndNil(t *testing.T) {
	cd := NewChangeDetector(testLogger())
	assert.Nil(t, cd.Detect(nil))

	cd.Detect(overview(100, 100, false))
	changes := cd.Detect(overview(300, 300, false))
	require.Len(t, changes, 4)
	for i := 1; i < len(changes); i++ {
		assert.Less(t, changes[i-1].Key(), changes[i].Key())
	}
}

type recordChannel struct{ got []Change }

func (r *recordChannel) Type() NotificationType { return "record" }
func (r *recordChannel) Send(_ context.Context, c []Change) error {
	r.got = append(r.got, c...)
	return nil
}

func TestNotifierSkipsEmpty(t *testing.T) {
	rec := &recordChannel{}
	n := NewNotifier(testLogger())
	n.AddChannel(rec)

	n.Notify(context.Background(), nil)
	assert.Empty(t, rec.got)

	n.Notify(context.Background(), []Change{{Type: ChangeAdded}})
	assert.Len(t, rec.got, 1)
}

func TestWebhookChannel(t *testing.T) {
	var payload struct {
		Count   int      `json:"count"`
		Changes []Change `json:"changes"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
	}))
	defer srv.Close()

	n := NewNotifierFromConfig(config.NotifyConfig{Webhooks: []string{srv.URL}, Timeout: 0}, testLogger())
	n.Notify(context.Background(), []Change{{Type: ChangeModified, Kind: types.KindHost, Host: "web-1"}})

	assert.Equal(t, 1, payload.Count)
	require.Len(t, payload.Changes, 1)
	assert.Equal(t, "web-1", payload.Changes[0].Host)
}

func TestWebhookChannelHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	ch := NewWebhookChannel(srv.URL, nil, testLogger())
	err := ch.Send(context.Background(), []Change{{Type: ChangeAdded}})
	assert.ErrorContains(t, err, "502")
}
