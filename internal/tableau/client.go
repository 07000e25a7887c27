// Package tableau downloads packaged data sources from Tableau
// Server/Cloud via the REST API.
package tableau

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultAPIVersion is the REST API version used when constructing
	// content URLs from web UI links.
	DefaultAPIVersion = "3.17"

	// DefaultTimeout bounds the single download request, connect and
	// read included.
	DefaultTimeout = 60 * time.Second
)

var (
	// ErrAuth marks a download rejected by the server's authorization
	// check (401/403).
	ErrAuth = errors.New("authentication rejected")

	// ErrRemote marks any other download failure: transport errors,
	// timeouts and non-success HTTP statuses.
	ErrRemote = errors.New("download failed")
)

// datasourcePattern matches the site and datasource segments of a web UI
// link, e.g. https://server/#/site/sales/datasources/5f1a…
var datasourcePattern = regexp.MustCompile(`/site/([^/]+)/datasources/([A-Za-z0-9-]+)`)

// ContentURL resolves a Tableau Server/Cloud URL to the REST endpoint
// serving the packaged data source content.
//
// URLs already pointing at the REST API (containing "/api/") are used
// verbatim. Web UI links are rewritten to
// /api/<version>/sites/<site>/datasources/<id>/content.
func ContentURL(raw, apiVersion string) (string, error) {
	if apiVersion == "" {
		apiVersion = DefaultAPIVersion
	}
	if strings.Contains(raw, "/api/") {
		return raw, nil
	}

	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("not a valid datasource URL: %q", raw)
	}

	m := datasourcePattern.FindStringSubmatch(raw)
	if m == nil {
		return "", fmt.Errorf("could not find /site/<name>/datasources/<id> in %q", raw)
	}
	site, id := m[1], m[2]

	if _, err := uuid.Parse(id); err != nil {
		// Tableau Cloud addresses datasources by LUID; numeric ids only
		// resolve against on-prem Tableau Server.
		slog.Warn("datasource id is not a LUID", "id", id)
	}

	return fmt.Sprintf("%s://%s/api/%s/sites/%s/datasources/%s/content",
		u.Scheme, u.Host, apiVersion, site, id), nil
}

// Client performs the authenticated content download. It is created per
// run and holds no state beyond the token and the underlying HTTP client.
type Client struct {
	httpClient *http.Client
	token      string
}

// NewClient returns a download client using token as the bearer
// credential. A zero timeout falls back to DefaultTimeout.
func NewClient(token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		token:      token,
	}
}

// Download issues a single GET against contentURL and returns the fully
// buffered response body. No retries, no streaming.
func (c *Client) Download(ctx context.Context, contentURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, contentURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/octet-stream")
	req.Header.Set("Authorization", "Bearer "+c.token)
	// Tableau's own auth header; some deployments ignore plain Bearer.
	req.Header.Set("X-Tableau-Auth", c.token)

	slog.Debug("downloading datasource", "url", contentURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemote, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w (status %d): check the access token", ErrAuth, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: server returned %s: %s",
			ErrRemote, resp.Status, strings.TrimSpace(string(detail)))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrRemote, err)
	}

	slog.Debug("download complete", "bytes", len(data))
	return data, nil
}
