// Package trovi is a thin client for the Trovi artifact registry REST API.
//
// Every request authenticates with a freshly minted access token passed as
// the access_token query parameter, and every response status is compared
// against the code the endpoint is expected to return. Mismatches surface as
// *httperr.APIError.
package trovi

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

	"github.com/chameleoncloud/trovi/internal/auth"
	"github.com/chameleoncloud/trovi/internal/buildinfo"
	"github.com/chameleoncloud/trovi/internal/httperr"
)

const (
	// DefaultBaseURL is the Trovi development deployment.
	DefaultBaseURL = "https://trovi-dev.chameleoncloud.org"
	// ProductionBaseURL is the production Trovi deployment.
	ProductionBaseURL = "https://trovi.chameleoncloud.org"
	// DefaultPortalURL is where artifacts are shown to humans.
	DefaultPortalURL = "https://www.chameleoncloud.org/experiment/share/"
)

// forceValue is what the service expects for boolean query flags.
const forceValue = "True"

// Client issues authenticated requests against the Trovi API.
// It holds no mutable state and is safe for concurrent use.
type Client struct {
	baseURL    *url.URL
	portalURL  string
	tokens     auth.TokenSource
	httpClient *http.Client
	logger     *slog.Logger
	userAgent  string
}

// Option configures a Client.
type Option func(*Client) error

// WithBaseURL sets the API base URL.
func WithBaseURL(raw string) Option {
	return func(c *Client) error {
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("invalid base url %q: %w", raw, err)
		}
		if u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid base url %q: scheme and host are required", raw)
		}
		c.baseURL = u
		return nil
	}
}

// WithPortalURL sets the prefix used by WebURL.
func WithPortalURL(raw string) Option {
	return func(c *Client) error {
		c.portalURL = raw
		return nil
	}
}

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		c.httpClient = hc
		return nil
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) error {
		c.logger = l
		return nil
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) error {
		c.userAgent = ua
		return nil
	}
}

// New creates a client minting tokens from tokens.
func New(tokens auth.TokenSource, opts ...Option) (*Client, error) {
	base, _ := url.Parse(DefaultBaseURL)
	c := &Client{
		baseURL:    base,
		portalURL:  DefaultPortalURL,
		tokens:     tokens,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     slog.New(slog.DiscardHandler),
		userAgent:  buildinfo.GetUserAgent(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// BaseURL returns the API base URL.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// WebURL returns the portal page of an artifact.
func (c *Client) WebURL(artifactID string) string {
	return ArtifactWebURL(c.portalURL, artifactID)
}

// ArtifactWebURL joins a portal prefix and an artifact id. An empty portal
// selects DefaultPortalURL.
func ArtifactWebURL(portalURL, artifactID string) string {
	if portalURL == "" {
		portalURL = DefaultPortalURL
	}
	return strings.TrimRight(portalURL, "/") + "/" + url.PathEscape(artifactID)
}

// urlWithToken resolves path against the base URL and attaches a freshly
// minted access token to the query.
func (c *Client) urlWithToken(ctx context.Context, path string, query url.Values) (string, error) {
	token, err := c.tokens.GetAccessToken(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to obtain access token: %w", err)
	}

	q := url.Values{}
	for k, v := range query {
		q[k] = append([]string(nil), v...)
	}
	q.Set("access_token", token.AccessToken)

	return c.baseURL.ResolveReference(&url.URL{Path: path, RawQuery: q.Encode()}).String(), nil
}

// do sends one request and returns the body if the status equals expected.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, expected int) ([]byte, error) {
	endpoint, err := c.urlWithToken(ctx, path, query)
	if err != nil {
		return nil, err
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		// The transport error embeds the URL, token included.
		return nil, fmt.Errorf("%s %s failed: %w", method, path, redact(err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	c.logger.Debug("trovi request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start))

	if err := httperr.Check(resp, data, expected); err != nil {
		return nil, err
	}
	return data, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	return c.do(ctx, http.MethodGet, path, query, nil, http.StatusOK)
}

func (c *Client) post(ctx context.Context, path string, query url.Values, body any) ([]byte, error) {
	return c.do(ctx, http.MethodPost, path, query, body, http.StatusCreated)
}

func (c *Client) patch(ctx context.Context, path string, query url.Values, body any) ([]byte, error) {
	return c.do(ctx, http.MethodPatch, path, query, body, http.StatusOK)
}

func (c *Client) put(ctx context.Context, path string, query url.Values) ([]byte, error) {
	return c.do(ctx, http.MethodPut, path, query, nil, http.StatusNoContent)
}

func (c *Client) delete(ctx context.Context, path string, query url.Values) ([]byte, error) {
	return c.do(ctx, http.MethodDelete, path, query, nil, http.StatusNoContent)
}

func decode[T any](data []byte) (T, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("failed to decode response: %w", err)
	}
	return v, nil
}

// field decodes one top-level key of a JSON object response.
func field[T any](data []byte, key string) (T, error) {
	var zero T
	obj, err := decode[map[string]json.RawMessage](data)
	if err != nil {
		return zero, err
	}
	raw, ok := obj[key]
	if !ok {
		return zero, fmt.Errorf("response has no %q field", key)
	}
	return decode[T](raw)
}

// redact strips the query string from *url.Error values.
func redact(err error) error {
	if uErr, ok := err.(*url.Error); ok {
		if u, perr := url.Parse(uErr.URL); perr == nil {
			u.RawQuery = ""
			return &url.Error{Op: uErr.Op, URL: u.String(), Err: uErr.Err}
		}
	}
	return err
}

func artifactPath(id string) string {
	return "/artifacts/" + id + "/"
}

func versionPath(id, slug string) string {
	return artifactPath(id) + "versions/" + slug + "/"
}
