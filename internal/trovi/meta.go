package trovi

import (
	"context"
	"net/url"
)

// ListTags returns the tags artifacts may be labelled with.
func (c *Client) ListTags(ctx context.Context) ([]string, error) {
	data, err := c.get(ctx, "/meta/tags/", nil)
	if err != nil {
		return nil, err
	}
	return field[[]string](data, "tags")
}

// CreateTag adds a tag and returns it as stored by the service.
func (c *Client) CreateTag(ctx context.Context, tag string) (string, error) {
	data, err := c.post(ctx, "/meta/tags/", nil, map[string]string{"tag": tag})
	if err != nil {
		return "", err
	}
	return field[string](data, "tag")
}

// GetContents resolves a contents URN to its access methods.
func (c *Client) GetContents(ctx context.Context, contentsURN, sharingKey string) (map[string]any, error) {
	query := url.Values{"urn": {contentsURN}}
	if sharingKey != "" {
		query.Set("sharing_key", sharingKey)
	}
	data, err := c.get(ctx, "/contents/", query)
	if err != nil {
		return nil, err
	}
	return decode[map[string]any](data)
}
