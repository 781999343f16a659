// Package sdk is a small HTTP client for the Server Sentinel backend.
package sdk

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	serversPath      = "/api/servers"
	latestReportPath = "/api/latest-report"

	// DefaultRunPath is the push channel endpoint for run progress.
	DefaultRunPath = "/ws/run"
)

// StatusError is returned when the backend answers with a non-200 status.
type StatusError struct {
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("GET %s: %d %s", e.Path, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("GET %s: API error (%d)", e.Path, e.StatusCode)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient returns a client for baseURL. A zero timeout leaves requests
// bounded only by their context.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// ListServers pulls the server directory.
func (c *Client) ListServers(ctx context.Context) ([]Server, error) {
	var servers []Server
	if err := c.get(ctx, serversPath, &servers); err != nil {
		return nil, err
	}
	return servers, nil
}

// LatestReport pulls the report collection from the most recent completed run.
// The result is empty (not nil) when no run has ever completed.
func (c *Client) LatestReport(ctx context.Context) ([]ServerReport, error) {
	reports := []ServerReport{}
	if err := c.get(ctx, latestReportPath, &reports); err != nil {
		return nil, err
	}
	if reports == nil {
		reports = []ServerReport{}
	}
	return reports, nil
}

func (c *Client) get(ctx context.Context, path string, target interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{Path: path, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// WebSocketURL derives the push channel URL from the base URL, switching
// http(s) to ws(s).
func (c *Client) WebSocketURL(path string) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "https", "wss":
		u.Scheme = "wss"
	case "http", "ws", "":
		u.Scheme = "ws"
	default:
		return "", fmt.Errorf("unsupported URL scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("URL %q has no host", c.baseURL)
	}
	if path == "" {
		path = DefaultRunPath
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.TrimLeft(path, "/")
	return u.String(), nil
}
