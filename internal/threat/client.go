package threat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"sentraip-mcp/internal/metrics"
)

// DefaultTimeout bounds a single upstream call.
const DefaultTimeout = 10 * time.Second

// maxBodyBytes caps an upstream response; larger bodies are rejected, never truncated.
const maxBodyBytes = 8 << 20

// ClientConfig describes how to reach the SentraIP API.
type ClientConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// Client issues authenticated GET requests against the SentraIP API.
// It holds no per-request state and is safe for concurrent use.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	logger  *slog.Logger
}

// NewClient creates a client. A zero Timeout falls back to DefaultTimeout.
func NewClient(cfg ClientConfig, logger *slog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		http:    &http.Client{Transport: transport, Timeout: timeout},
		logger:  logger,
	}
}

// CheckIP returns the reputation record for an address.
func (c *Client) CheckIP(ctx context.Context, ip string) (json.RawMessage, error) {
	return c.Get(ctx, PathIPCheck, url.Values{"ips": {ip}})
}

// Stats returns account statistics.
func (c *Client) Stats(ctx context.Context) (json.RawMessage, error) {
	return c.Get(ctx, PathStats, nil)
}

// Get performs exactly one GET against path and maps the outcome.
// On success the upstream JSON body is returned untouched; every failure
// is an *Error.
func (c *Client) Get(ctx context.Context, path string, params url.Values) (json.RawMessage, error) {
	target := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(params) > 0 {
		target += "?" + params.Encode()
	}
	c.logger.Info("querying SentraIP API", "url", target, "params", params)

	start := time.Now()
	body, err := c.do(ctx, target)
	metrics.UpstreamDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())

	outcome := "ok"
	if err != nil {
		outcome = string(KindUpstream)
		var e *Error
		if errors.As(err, &e) {
			outcome = string(e.Kind)
		}
		c.logger.Error("SentraIP request failed", "url", target, "err", err)
	}
	metrics.UpstreamRequests.WithLabelValues(path, outcome).Inc()
	return body, err
}

func (c *Client) do(ctx context.Context, target string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, upstreamError(http.StatusBadGateway, "Invalid SentraIP request")
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, connectivityError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, connectivityError(fmt.Errorf("read response: %w", err))
	}
	if len(body) > maxBodyBytes {
		return nil, upstreamError(http.StatusBadGateway, "Upstream SentraIP response too large")
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		if !json.Valid(body) {
			return nil, upstreamError(http.StatusBadGateway, "Invalid JSON from SentraIP")
		}
		return json.RawMessage(body), nil
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, authError()
	case resp.StatusCode == http.StatusNotFound:
		return nil, notFoundError()
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, upstreamError(http.StatusBadGateway, "Upstream SentraIP service error")
	default:
		detail := strings.TrimSpace(string(body))
		if detail == "" {
			detail = http.StatusText(resp.StatusCode)
		}
		return nil, upstreamError(resp.StatusCode, detail)
	}
}
