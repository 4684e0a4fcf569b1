package trovi

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// DefaultMigrationBackend is the archive backend versions migrate to.
const DefaultMigrationBackend = "zenodo"

// DefaultMetric is the counter bumped by IncrementMetricCount.
const DefaultMetric = "access_count"

// VersionOptions are the optional fields of a new version.
type VersionOptions struct {
	Links []Link
	// CreatedAt backdates the version. Setting it requires the force flag,
	// which is sent automatically.
	CreatedAt time.Time
}

// CreateVersion registers new contents as a version of the artifact.
func (c *Client) CreateVersion(ctx context.Context, id, contentsURN string, opts VersionOptions) (Version, error) {
	body := map[string]any{
		"contents": map[string]string{"urn": contentsURN},
	}
	if len(opts.Links) > 0 {
		body["links"] = opts.Links
	}
	query := url.Values{}
	if !opts.CreatedAt.IsZero() {
		body["created_at"] = opts.CreatedAt.UTC().Format(time.RFC3339)
		query.Set("force", forceValue)
	}

	data, err := c.post(ctx, artifactPath(id)+"versions/", query, body)
	if err != nil {
		return nil, err
	}
	return decode[Version](data)
}

// MigrateVersion asks the service to copy a version to an archival backend.
// The migration runs asynchronously; the returned object describes it.
func (c *Client) MigrateVersion(ctx context.Context, id, slug, backend string) (map[string]any, error) {
	if backend == "" {
		backend = DefaultMigrationBackend
	}
	data, err := c.do(ctx, http.MethodPost, versionPath(id, slug)+"migration/", nil,
		map[string]string{"backend": backend}, http.StatusAccepted)
	if err != nil {
		return nil, err
	}
	return decode[map[string]any](data)
}

// DeleteVersion removes a version.
func (c *Client) DeleteVersion(ctx context.Context, id, slug string) error {
	_, err := c.delete(ctx, versionPath(id, slug), nil)
	return err
}

// IncrementMetricCount bumps a version metric by amount. originToken
// identifies the caller so the service can deduplicate counts.
func (c *Client) IncrementMetricCount(ctx context.Context, id, slug, originToken, metric string, amount int) error {
	if metric == "" {
		metric = DefaultMetric
	}
	query := url.Values{
		"metric": {metric},
		"amount": {strconv.Itoa(amount)},
		"origin": {originToken},
	}
	_, err := c.put(ctx, versionPath(id, slug)+"metrics/", query)
	return err
}
