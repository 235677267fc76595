package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/wigowatch/wigowatch/internal/types"
)

// LogQuery narrows a log listing. Zero fields are not sent.
type LogQuery struct {
	Offset int
	Limit  int
	Group  string
	Host   string
	Probe  string
}

// Values encodes q as query parameters.
func (q LogQuery) Values() url.Values {
	v := url.Values{}
	if q.Offset > 0 {
		v.Set("offset", strconv.Itoa(q.Offset))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Group != "" {
		v.Set("group", q.Group)
	}
	if q.Host != "" {
		v.Set("host", q.Host)
	}
	if q.Probe != "" {
		v.Set("probe", q.Probe)
	}
	return v
}

// pageOnly keeps the pagination part of q, for endpoints already scoped by path.
func (q LogQuery) pageOnly() url.Values {
	return LogQuery{Offset: q.Offset, Limit: q.Limit}.Values()
}

// GetGroups returns the group names.
func (c *Client) GetGroups(ctx context.Context) ([]string, error) {
	var groups []string
	if err := c.getJSON(ctx, c.endpoint(nil, "groups"), &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// GetGroup returns a group and its hosts.
func (c *Client) GetGroup(ctx context.Context, name string) (*types.Group, error) {
	var g types.Group
	if err := c.getJSON(ctx, c.endpoint(nil, "groups", name), &g); err != nil {
		return nil, err
	}
	if g.Name == "" {
		g.Name = name
	}
	return &g, nil
}

// GetHosts returns the host names.
func (c *Client) GetHosts(ctx context.Context) ([]string, error) {
	var hosts []string
	if err := c.getJSON(ctx, c.endpoint(nil, "hosts"), &hosts); err != nil {
		return nil, err
	}
	return hosts, nil
}

// GetHost returns a host and its probes.
func (c *Client) GetHost(ctx context.Context, hostname string) (*types.Host, error) {
	var h types.Host
	if err := c.getJSON(ctx, c.endpoint(nil, "hosts", hostname), &h); err != nil {
		return nil, err
	}
	if h.Name == "" {
		h.Name = hostname
	}
	return &h, nil
}

// GetHostStatus returns the status code of a host.
func (c *Client) GetHostStatus(ctx context.Context, hostname string) (int, error) {
	return c.getStatus(ctx, c.endpoint(nil, "hosts", hostname, "status"))
}

// GetHostProbes returns the probe names of a host.
func (c *Client) GetHostProbes(ctx context.Context, hostname string) ([]string, error) {
	var probes []string
	if err := c.getJSON(ctx, c.endpoint(nil, "hosts", hostname, "probes"), &probes); err != nil {
		return nil, err
	}
	return probes, nil
}

// GetProbe returns the last result of a probe.
func (c *Client) GetProbe(ctx context.Context, hostname, probe string) (*types.Probe, error) {
	var p types.Probe
	if err := c.getJSON(ctx, c.endpoint(nil, "hosts", hostname, "probes", probe), &p); err != nil {
		return nil, err
	}
	if p.Name == "" {
		p.Name = probe
	}
	return &p, nil
}

// GetProbeStatus returns the status code of a probe.
func (c *Client) GetProbeStatus(ctx context.Context, hostname, probe string) (int, error) {
	return c.getStatus(ctx, c.endpoint(nil, "hosts", hostname, "probes", probe, "status"))
}

// GetLogs returns logs matching q.
func (c *Client) GetLogs(ctx context.Context, q LogQuery) ([]types.Log, error) {
	var logs []types.Log
	if err := c.getJSON(ctx, c.endpoint(q.Values(), "logs"), &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

// GetGroupLogs returns the logs of a group.
func (c *Client) GetGroupLogs(ctx context.Context, group string, q LogQuery) ([]types.Log, error) {
	var logs []types.Log
	if err := c.getJSON(ctx, c.endpoint(q.pageOnly(), "groups", group, "logs"), &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

// GetHostLogs returns the logs of a host.
func (c *Client) GetHostLogs(ctx context.Context, hostname string, q LogQuery) ([]types.Log, error) {
	var logs []types.Log
	if err := c.getJSON(ctx, c.endpoint(q.pageOnly(), "hosts", hostname, "logs"), &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

// GetProbeLogs returns the logs of a probe on a host.
func (c *Client) GetProbeLogs(ctx context.Context, hostname, probe string, q LogQuery) ([]types.Log, error) {
	var logs []types.Log
	if err := c.getJSON(ctx, c.endpoint(q.pageOnly(), "hosts", hostname, "probes", probe, "logs"), &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

// GetProbeLogsByName returns the logs of a probe across hosts.
func (c *Client) GetProbeLogsByName(ctx context.Context, probe string, q LogQuery) ([]types.Log, error) {
	var logs []types.Log
	if err := c.getJSON(ctx, c.endpoint(q.pageOnly(), "probes", probe, "logs"), &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

// GetLogIndexes returns the log index summary.
func (c *Client) GetLogIndexes(ctx context.Context) (map[string]any, error) {
	var idx map[string]any
	if err := c.getJSON(ctx, c.endpoint(nil, "logs", "indexes"), &idx); err != nil {
		return nil, err
	}
	return idx, nil
}

// GetStatus returns the global status code.
func (c *Client) GetStatus(ctx context.Context) (int, error) {
	return c.getStatus(ctx, c.endpoint(nil, "status"))
}

// GetAll returns the complete wigo document undecoded.
func (c *Client) GetAll(ctx context.Context) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.getJSON(ctx, c.endpoint(nil), &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// GetAuthorityHosts returns hosts waiting for and holding authorization.
func (c *Client) GetAuthorityHosts(ctx context.Context) (*types.AuthorityHosts, error) {
	var a types.AuthorityHosts
	if err := c.getJSON(ctx, c.endpoint(nil, "authority", "hosts"), &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// AllowHost authorizes a waiting host.
func (c *Client) AllowHost(ctx context.Context, uuid string) error {
	_, err := c.do(ctx, http.MethodPost, c.endpoint(nil, "authority", "hosts", uuid, "allow"))
	return err
}

// RevokeHost removes a host's authorization.
func (c *Client) RevokeHost(ctx context.Context, uuid string) error {
	_, err := c.do(ctx, http.MethodPost, c.endpoint(nil, "authority", "hosts", uuid, "revoke"))
	return err
}

// Overview fetches the global status and the detail of every group.
func (c *Client) Overview(ctx context.Context) (*types.Overview, error) {
	code, err := c.GetStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("get status: %w", err)
	}
	names, err := c.GetGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("get groups: %w", err)
	}

	o := &types.Overview{Status: code, Groups: make([]types.Group, 0, len(names))}
	for _, name := range names {
		g, err := c.GetGroup(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("get group %q: %w", name, err)
		}
		o.Groups = append(o.Groups, *g)
	}
	o.FetchedAt = time.Now()
	return o, nil
}
