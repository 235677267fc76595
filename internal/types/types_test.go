package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestHostUnmarshalProbeList(t *testing.T) {
	data := `{"Name":"web1","Status":200,"Probes":[{"Name":"disk","Status":250}]}`

	var h Host
	if err := json.Unmarshal([]byte(data), &h); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if h.Name != "web1" || h.Status != 200 {
		t.Errorf("unexpected host %+v", h)
	}
	if len(h.Probes) != 1 || h.Probes[0].Name != "disk" || h.Probes[0].Status != 250 {
		t.Errorf("unexpected probes %+v", h.Probes)
	}
}

func TestHostUnmarshalProbeMap(t *testing.T) {
	data := `{"Name":"db1","Probes":{"load":{"Status":100},"cpu":{"Name":"cpu","Status":300}}}`

	var h Host
	if err := json.Unmarshal([]byte(data), &h); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(h.Probes) != 2 {
		t.Fatalf("expected 2 probes, got %d", len(h.Probes))
	}
	if h.Probes[0].Name != "cpu" || h.Probes[1].Name != "load" {
		t.Errorf("probes should be named and sorted, got %+v", h.Probes)
	}
}

func TestHostUnmarshalNoProbes(t *testing.T) {
	var h Host
	if err := json.Unmarshal([]byte(`{"Name":"x","Probes":null}`), &h); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if h.Probes != nil {
		t.Errorf("expected no probes, got %+v", h.Probes)
	}
}

func TestOverviewSamples(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	o := &Overview{
		Status:    250,
		FetchedAt: ts,
		Groups: []Group{{
			Name:   "prod",
			Status: 250,
			Hosts: []Host{{
				Name:   "web1",
				Status: 250,
				Probes: []Probe{{Name: "disk", Status: 250}, {Name: "load", Status: 100}},
			}},
		}},
	}

	samples := o.Samples(func(code int) string { return fmt.Sprintf("L%d", code) })
	if len(samples) != 5 {
		t.Fatalf("expected 5 samples, got %d", len(samples))
	}

	kinds := []string{KindGlobal, KindGroup, KindHost, KindProbe, KindProbe}
	for i, s := range samples {
		if s.Kind != kinds[i] {
			t.Errorf("sample %d: kind %q, want %q", i, s.Kind, kinds[i])
		}
		if !s.Timestamp.Equal(ts) {
			t.Errorf("sample %d: timestamp %v", i, s.Timestamp)
		}
	}
	last := samples[4]
	if last.Host != "web1" || last.Probe != "load" || last.Level != "L100" {
		t.Errorf("unexpected probe sample %+v", last)
	}

	flat := last.ToFlatMap()
	if flat["status"] != "100" || flat["timestamp"] != "2024-01-02T03:04:05Z" {
		t.Errorf("unexpected flat map %v", flat)
	}
}

func TestLogSeverityIndex(t *testing.T) {
	l := Log{Level: 6, Timestamp: 1700000000}
	if l.SeverityIndex() != 6 {
		t.Errorf("expected 6, got %d", l.SeverityIndex())
	}
	if l.Time().Unix() != 1700000000 {
		t.Errorf("unexpected time %v", l.Time())
	}
}

func TestAPIErrorUnwrap(t *testing.T) {
	err := fmt.Errorf("get hosts: %w", &APIError{URL: "http://x/api/hosts", StatusCode: 404, Err: ErrNotFound})

	if !errors.Is(err, ErrNotFound) {
		t.Error("expected errors.Is to find ErrNotFound")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != 404 {
		t.Errorf("expected APIError with status 404, got %v", err)
	}
	if apiErr.IsRetryable() {
		t.Error("404 should not be retryable")
	}
}
