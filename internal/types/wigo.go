package types

import (
	"encoding/json"
	"time"
)

// Log is a wigo log record. Level is the 1-based log severity index.
type Log struct {
	Date      string
	Timestamp int64
	Level     uint8
	Message   string
	Host      string
	Probe     string
	Group     string
}

// SeverityIndex returns the 1-based log severity index.
func (l Log) SeverityIndex() int { return int(l.Level) }

// Time returns the record timestamp.
func (l Log) Time() time.Time { return time.Unix(l.Timestamp, 0) }

// Probe is the last result of a probe on a host.
type Probe struct {
	Name      string
	Version   string
	Value     any
	Message   string
	Status    int
	ProbeDate string
}

// Host is a monitored host and its probes.
type Host struct {
	Name    string
	Group   string
	Status  int
	IsAlive bool
	Probes  []Probe
}

// UnmarshalJSON accepts Probes either as a list or as a map keyed by probe name.
func (h *Host) UnmarshalJSON(data []byte) error {
	type plain Host
	var raw struct {
		plain
		Probes json.RawMessage
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*h = Host(raw.plain)
	h.Probes = nil
	if len(raw.Probes) == 0 || string(raw.Probes) == "null" {
		return nil
	}

	if raw.Probes[0] == '{' {
		var byName map[string]Probe
		if err := json.Unmarshal(raw.Probes, &byName); err != nil {
			return err
		}
		for name, p := range byName {
			if p.Name == "" {
				p.Name = name
			}
			h.Probes = append(h.Probes, p)
		}
		sortProbes(h.Probes)
		return nil
	}
	return json.Unmarshal(raw.Probes, &h.Probes)
}

// Group is a named set of hosts with an aggregated status.
type Group struct {
	Name   string
	Status int
	Hosts  []Host
}

// Overview is the global status together with every group.
type Overview struct {
	Status    int       `json:"status"`
	Groups    []Group   `json:"groups"`
	FetchedAt time.Time `json:"fetched_at"`
}

// AuthorityHosts lists hosts waiting for and holding authorization, keyed by uuid.
type AuthorityHosts struct {
	Waiting map[string]string `json:"waiting"`
	Allowed map[string]string `json:"allowed"`
}
