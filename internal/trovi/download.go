package trovi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/chameleoncloud/trovi/internal/httperr"
)

// ErrNoHTTPAccess is returned when contents cannot be fetched over HTTP.
var ErrNoHTTPAccess = errors.New("contents have no http access method")

// AccessMethod is one way of fetching version contents, as listed under
// "access_methods" in a contents response.
type AccessMethod struct {
	Protocol string            `json:"protocol"`
	URL      string            `json:"url"`
	Method   string            `json:"method,omitempty"`
	Headers  map[string]string `json:"headers,omitempty"`
}

// HTTPAccessMethod returns the first http access method of a contents object.
func HTTPAccessMethod(contents map[string]any) (AccessMethod, error) {
	raw, err := json.Marshal(contents["access_methods"])
	if err != nil {
		return AccessMethod{}, err
	}
	var methods []AccessMethod
	if err := json.Unmarshal(raw, &methods); err != nil {
		return AccessMethod{}, fmt.Errorf("invalid access_methods: %w", err)
	}
	for _, m := range methods {
		if m.Protocol == "http" && m.URL != "" {
			return m, nil
		}
	}
	return AccessMethod{}, ErrNoHTTPAccess
}

// OpenContents starts fetching contents through m. The caller closes the
// body. size is -1 when the server does not announce a length.
// Access URLs are pre-signed, so no Trovi token is attached. The client
// timeout does not apply; ctx bounds the whole transfer.
func (c *Client) OpenContents(ctx context.Context, m AccessMethod) (body io.ReadCloser, size int64, err error) {
	method := m.Method
	if method == "" {
		method = http.MethodGet
	}
	req, err := http.NewRequestWithContext(ctx, method, m.URL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	for k, v := range m.Headers {
		req.Header.Set(k, v)
	}

	streaming := *c.httpClient
	streaming.Timeout = 0
	resp, err := streaming.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%s contents failed: %w", method, redact(err))
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		data, _ := io.ReadAll(resp.Body)
		return nil, 0, httperr.Check(resp, data, http.StatusOK)
	}

	c.logger.Debug("contents download", "status", resp.StatusCode, "size", resp.ContentLength)
	return resp.Body, resp.ContentLength, nil
}
