package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/wigowatch/wigowatch/internal/status"
	"github.com/wigowatch/wigowatch/internal/types"
)

func sampleOverview() *types.Overview {
	return &types.Overview{
		Status: 300,
		Groups: []types.Group{{
			Name:   "prod",
			Status: 300,
			Hosts: []types.Host{
				{Name: "web-1", Status: 100, IsAlive: true, Probes: []types.Probe{{Name: "disk", Status: 100, Message: "ok"}}},
				{Name: "db-1", Status: 300, IsAlive: true, Probes: []types.Probe{{Name: "mysql", Status: 300, Message: "replication broken"}, {Name: "load", Status: 100}}},
			},
		}},
	}
}

func TestOverviewTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Overview(&buf, sampleOverview(), FormatTable))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, "Global status: 300 (CRITICAL)", lines[0])
	require.Len(t, lines, 5)
	assert.Equal(t, []string{"GROUP", "HOST", "STATUS", "LEVEL", "ALIVE", "PROBES"}, strings.Fields(lines[2]))
	assert.Equal(t, []string{"prod", "db-1", "300", "CRITICAL", "true", "2"}, strings.Fields(lines[4]))
}

func TestOverviewWide(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Overview(&buf, sampleOverview(), FormatWide))
	out := buf.String()
	assert.Contains(t, out, "replication broken")
	assert.Equal(t, 3, strings.Count(out, "prod"))
}

func TestOverviewJSONAndYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Overview(&buf, sampleOverview(), FormatJSON))
	var o types.Overview
	require.NoError(t, json.Unmarshal(buf.Bytes(), &o))
	assert.Equal(t, 300, o.Status)

	buf.Reset()
	require.NoError(t, Overview(&buf, sampleOverview(), FormatYAML))
	var m map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &m))
	assert.Equal(t, 300, m["status"])
}

func TestSummaryWorstFirst(t *testing.T) {
	var buf bytes.Buffer
	Summary(&buf, map[status.Level]int64{status.LevelOK: 4, status.LevelError: 1})
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, []string{"ERROR", "1"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"OK", "4"}, strings.Fields(lines[4]))
}

func TestLogs(t *testing.T) {
	var buf bytes.Buffer
	logs := []types.Log{
		{Date: "2026-03-01", Level: 6, Host: "db-1", Message: "disk full"},
		{Date: "2026-03-01", Level: 42, Host: "db-1", Message: "odd"},
	}
	require.NoError(t, Logs(&buf, logs, FormatTable))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "CRITICAL")
	assert.Contains(t, lines[2], "42")

	buf.Reset()
	require.NoError(t, Logs(&buf, nil, FormatJSON))
	assert.Equal(t, "[]\n", buf.String())
}

func TestAuthority(t *testing.T) {
	var buf bytes.Buffer
	a := &types.AuthorityHosts{
		Waiting: map[string]string{"b-uuid": "new-2", "a-uuid": "new-1"},
		Allowed: map[string]string{"c-uuid": "web-1"},
	}
	require.NoError(t, Authority(&buf, a, FormatTable))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, []string{"waiting", "a-uuid", "new-1"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"allowed", "c-uuid", "web-1"}, strings.Fields(lines[3]))
}

func TestValidFormat(t *testing.T) {
	for _, f := range []string{"table", "wide", "json", "yaml"} {
		assert.True(t, ValidFormat(f), f)
	}
	assert.False(t, ValidFormat("xml"))
}
