// Package client talks to the wigo REST API.
package client

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/andybalholm/brotli"

	"github.com/wigowatch/wigowatch/internal/config"
	"github.com/wigowatch/wigowatch/internal/observability"
	"github.com/wigowatch/wigowatch/internal/types"
)

// Client is a wigo API client. It is safe for concurrent use.
type Client struct {
	http     *http.Client
	base     *url.URL
	cfg      *config.APIConfig
	metrics  *observability.Metrics
	logger   *slog.Logger
	username string
	password string
}

// New creates a client for cfg.API.
func New(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.API.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse api base url: %w", err)
	}

	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        cfg.API.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.API.MaxIdleConns,
		IdleConnTimeout:     cfg.API.IdleConnTimeout,
		TLSHandshakeTimeout: 10 * time.Second,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: cfg.API.TLSInsecure,
		},
		DisableCompression: true, // We handle decompression ourselves (including brotli)
	}

	if metrics == nil {
		metrics = observability.NewMetrics(logger)
	}

	username, password := cfg.API.Username, cfg.API.Password
	if base.User != nil {
		username = base.User.Username()
		password, _ = base.User.Password()
		base.User = nil
	}

	return &Client{
		http: &http.Client{
			Transport: transport,
			Timeout:   cfg.API.Timeout,
		},
		base:     base,
		cfg:      &cfg.API,
		metrics:  metrics,
		logger:   logger.With("component", "api_client"),
		username: username,
		password: password,
	}, nil
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

// BaseURL returns the API root without credentials.
func (c *Client) BaseURL() string {
	return c.base.String()
}

func (c *Client) endpoint(query url.Values, segments ...string) string {
	u := c.base.JoinPath(segments...)
	if len(segments) == 0 {
		u.Path = c.base.Path + "/"
	}
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// do performs a request and returns the decoded body.
func (c *Client) do(ctx context.Context, method, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return nil, &types.APIError{URL: target, Err: err}
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")
	ua := c.cfg.UserAgent
	if ua == "" {
		ua = "wigowatch/" + config.Version
	}
	req.Header.Set("User-Agent", ua)
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	c.metrics.RequestsTotal.Add(1)
	start := time.Now()
	resp, err := c.http.Do(req)
	duration := time.Since(start)
	if err != nil {
		c.metrics.RequestsFailed.Add(1)
		return nil, &types.APIError{URL: target, Err: err, Retryable: isRetryableError(err)}
	}
	defer resp.Body.Close()

	c.metrics.ObserveResponse(resp.StatusCode)

	if resp.StatusCode >= 400 {
		c.metrics.RequestsFailed.Add(1)
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &types.APIError{
			URL:        target,
			StatusCode: resp.StatusCode,
			Err:        statusError(resp.StatusCode, snippet),
			Retryable:  resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests,
		}
	}

	var reader io.Reader = resp.Body
	if c.cfg.MaxBodySize > 0 {
		reader = io.LimitReader(reader, c.cfg.MaxBodySize)
	}
	reader, err = decompressReader(resp, reader)
	if err != nil {
		return nil, &types.APIError{URL: target, StatusCode: resp.StatusCode, Err: err}
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		c.metrics.RequestsFailed.Add(1)
		return nil, &types.APIError{URL: target, StatusCode: resp.StatusCode, Err: err, Retryable: true}
	}
	c.metrics.BytesDownloaded.Add(int64(len(body)))

	c.logger.Debug("request complete",
		"method", method,
		"url", target,
		"status", resp.StatusCode,
		"size", len(body),
		"duration", duration,
	)
	return body, nil
}

func (c *Client) getJSON(ctx context.Context, target string, out any) error {
	body, err := c.do(ctx, http.MethodGet, target)
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return &types.APIError{URL: target, Err: types.ErrEmptyBody}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &types.APIError{URL: target, Err: fmt.Errorf("decode JSON: %w", err)}
	}
	return nil
}

func (c *Client) getStatus(ctx context.Context, target string) (int, error) {
	body, err := c.do(ctx, http.MethodGet, target)
	if err != nil {
		return 0, err
	}
	code, err := ParseStatus(body)
	if err != nil {
		return 0, &types.APIError{URL: target, Err: err}
	}
	return code, nil
}

// ParseStatus reads the leading decimal integer of a status body. Surrounding
// whitespace and JSON string quotes are ignored, trailing garbage is dropped.
func ParseStatus(body []byte) (int, error) {
	s := strings.TrimSpace(string(body))
	s = strings.Trim(s, `"`)
	s = strings.TrimSpace(s)

	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, fmt.Errorf("%w: %q", types.ErrBadStatus, truncate(s, 32))
	}

	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, fmt.Errorf("%w: %v", types.ErrBadStatus, err)
	}
	return n, nil
}

func statusError(code int, body []byte) error {
	msg := strings.TrimSpace(string(body))
	switch code {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", types.ErrNotFound, msg)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", types.ErrUnauthorized, msg)
	default:
		return fmt.Errorf("HTTP %d: %s", code, msg)
	}
}

// decompressReader wraps a reader with the appropriate decompressor.
// Handles gzip, deflate, and brotli (br) encodings.
func decompressReader(resp *http.Response, reader io.Reader) (io.Reader, error) {
	switch resp.Header.Get("Content-Encoding") {
	case "gzip":
		return gzip.NewReader(reader)
	case "deflate":
		return flate.NewReader(reader), nil
	case "br":
		return brotli.NewReader(reader), nil
	default:
		return reader, nil
	}
}

// isRetryableError checks if a network error is worth another attempt on the
// next refresh tick.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if errors.Is(opErr.Err, syscall.ECONNRESET) ||
			errors.Is(opErr.Err, syscall.ECONNREFUSED) {
			return true
		}
	}
	return false
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
