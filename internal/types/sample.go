package types

import (
	"sort"
	"strconv"
	"time"
)

// Sample kinds.
const (
	KindGlobal = "global"
	KindGroup  = "group"
	KindHost   = "host"
	KindProbe  = "probe"
)

// Sample is one recorded status observation.
type Sample struct {
	Kind      string    `json:"kind"            bson:"kind"`
	Group     string    `json:"group,omitempty" bson:"group,omitempty"`
	Host      string    `json:"host,omitempty"  bson:"host,omitempty"`
	Probe     string    `json:"probe,omitempty" bson:"probe,omitempty"`
	Status    int       `json:"status"          bson:"status"`
	Level     string    `json:"level"           bson:"level"`
	Timestamp time.Time `json:"timestamp"       bson:"timestamp"`
}

// ToFlatMap returns a flat map suitable for CSV export.
func (s *Sample) ToFlatMap() map[string]string {
	return map[string]string{
		"kind":      s.Kind,
		"group":     s.Group,
		"host":      s.Host,
		"probe":     s.Probe,
		"status":    strconv.Itoa(s.Status),
		"level":     s.Level,
		"timestamp": s.Timestamp.Format(time.RFC3339),
	}
}

// Samples flattens an overview into one sample per group, host and probe plus
// a global one. classify names the level of a status code.
func (o *Overview) Samples(classify func(int) string) []*Sample {
	ts := o.FetchedAt
	if ts.IsZero() {
		ts = time.Now()
	}

	out := []*Sample{{Kind: KindGlobal, Status: o.Status, Level: classify(o.Status), Timestamp: ts}}
	for _, g := range o.Groups {
		out = append(out, &Sample{Kind: KindGroup, Group: g.Name, Status: g.Status, Level: classify(g.Status), Timestamp: ts})
		for _, h := range g.Hosts {
			out = append(out, &Sample{Kind: KindHost, Group: g.Name, Host: h.Name, Status: h.Status, Level: classify(h.Status), Timestamp: ts})
			for _, p := range h.Probes {
				out = append(out, &Sample{Kind: KindProbe, Group: g.Name, Host: h.Name, Probe: p.Name, Status: p.Status, Level: classify(p.Status), Timestamp: ts})
			}
		}
	}
	return out
}

func sortProbes(probes []Probe) {
	sort.Slice(probes, func(i, j int) bool { return probes[i].Name < probes[j].Name })
}
