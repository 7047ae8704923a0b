package jira

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "github.com/lorrc/workload-dashboard/internal/core/errors"
	"github.com/lorrc/workload-dashboard/internal/core/ports"
	"golang.org/x/time/rate"
)

const (
	defaultGroupPageSize   = 100
	defaultSearchPageSize  = 1000
	defaultProjectPageSize = 50
	defaultMaxSearchPages  = 50
	defaultTimeout         = 30 * time.Second

	// maxErrorBody caps how much of a failed response is kept for diagnosis.
	maxErrorBody = 4 << 10
)

// Config holds the Jira Cloud connection settings.
type Config struct {
	BaseURL  string
	Email    string
	APIToken string

	GroupPageSize   int
	SearchPageSize  int
	ProjectPageSize int
	// MaxSearchPages bounds search pagination; exceeding it is an error.
	MaxSearchPages int

	Timeout time.Duration
	// RequestsPerSecond throttles outbound calls. Zero disables throttling.
	RequestsPerSecond float64
	Burst             int
}

// Client talks to the Jira Cloud REST API v3.
type Client struct {
	cfg     Config
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

var _ ports.TrackerClient = (*Client)(nil)

// NewClient creates a Jira client. The credentials are sent with every
// request using HTTP basic auth.
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.BaseURL == "" || cfg.Email == "" || cfg.APIToken == "" {
		return nil, apperrors.ErrTrackerNotReady
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid jira url %q", cfg.BaseURL)
	}

	if cfg.GroupPageSize <= 0 {
		cfg.GroupPageSize = defaultGroupPageSize
	}
	if cfg.SearchPageSize <= 0 {
		cfg.SearchPageSize = defaultSearchPageSize
	}
	if cfg.ProjectPageSize <= 0 {
		cfg.ProjectPageSize = defaultProjectPageSize
	}
	if cfg.MaxSearchPages <= 0 {
		cfg.MaxSearchPages = defaultMaxSearchPages
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	return &Client{
		cfg:     cfg,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: limiter,
		logger:  logger.With("component", "jira_client"),
	}, nil
}

// BaseURL returns the site root used for browser links.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Ping checks that the credentials are accepted.
func (c *Client) Ping(ctx context.Context) error {
	var me struct {
		AccountID string `json:"accountId"`
	}
	return c.doJSON(ctx, http.MethodGet, "/rest/api/3/myself", nil, nil, &me)
}

// doJSON sends a request and decodes a JSON response into out.
// Non-2xx responses are returned as *apperrors.TrackerError.
func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("wait for rate limiter: %w", err)
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.SetBasicAuth(c.cfg.Email, c.cfg.APIToken)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w: %w", method, path, apperrors.ErrTrackerRequest, err)
	}
	defer resp.Body.Close()

	c.logger.DebugContext(ctx, "jira request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &apperrors.TrackerError{
			Method:     method,
			Endpoint:   path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(raw)),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: %w: %w", method, path, apperrors.ErrTrackerDecode, err)
	}
	return nil
}
