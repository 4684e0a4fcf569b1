package trovi

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateVersion(t *testing.T) {
	const path = "/artifacts/abc/versions/"

	t.Run("minimal", func(t *testing.T) {
		f := newFakeTrovi(t)
		f.on(http.MethodPost, path, http.StatusCreated, `{"slug":"2024-05-01","contents":{"urn":"urn:trovi:contents:chameleon:x"}}`)
		c := newTestClient(t, f)

		v, err := c.CreateVersion(context.Background(), "abc", "urn:trovi:contents:chameleon:x", VersionOptions{})
		require.NoError(t, err)
		assert.Equal(t, "2024-05-01", v.Slug())
		assert.Equal(t, "urn:trovi:contents:chameleon:x", v.ContentsURN())

		req := f.recorded()[0]
		assert.JSONEq(t, `{"contents":{"urn":"urn:trovi:contents:chameleon:x"}}`, string(req.Body))
		assert.False(t, req.Query.Has("force"))
	})

	t.Run("links and backdated", func(t *testing.T) {
		f := newFakeTrovi(t)
		f.on(http.MethodPost, path, http.StatusCreated, `{"slug":"2020-01-02"}`)
		c := newTestClient(t, f)

		createdAt := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
		_, err := c.CreateVersion(context.Background(), "abc", "urn:trovi:contents:zenodo:10.5281/zenodo.1", VersionOptions{
			Links:     []Link{{Label: "paper", URN: "urn:trovi:link:doi:10.1/abc"}},
			CreatedAt: createdAt,
		})
		require.NoError(t, err)

		req := f.recorded()[0]
		assert.Equal(t, "True", req.Query.Get("force"))
		body := decodeBody(t, req.Body)
		assert.Equal(t, "2020-01-02T03:04:05Z", body["created_at"])
		assert.Equal(t, []any{map[string]any{"label": "paper", "urn": "urn:trovi:link:doi:10.1/abc"}}, body["links"])
	})
}

func TestMigrateVersion(t *testing.T) {
	f := newFakeTrovi(t)
	f.on(http.MethodPost, "/artifacts/abc/versions/v1/migration/", http.StatusAccepted, `{"status":"queued","backend":"zenodo"}`)
	c := newTestClient(t, f)

	out, err := c.MigrateVersion(context.Background(), "abc", "v1", "")
	require.NoError(t, err)
	assert.Equal(t, "queued", out["status"])
	assert.JSONEq(t, `{"backend":"zenodo"}`, string(f.recorded()[0].Body))

	_, err = c.MigrateVersion(context.Background(), "abc", "v1", "figshare")
	require.NoError(t, err)
	assert.JSONEq(t, `{"backend":"figshare"}`, string(f.recorded()[1].Body))
}

func TestDeleteVersion(t *testing.T) {
	f := newFakeTrovi(t)
	f.on(http.MethodDelete, "/artifacts/abc/versions/v1/", http.StatusNoContent, "")
	c := newTestClient(t, f)

	require.NoError(t, c.DeleteVersion(context.Background(), "abc", "v1"))
	assert.Equal(t, http.MethodDelete, f.recorded()[0].Method)
}

func TestIncrementMetricCount(t *testing.T) {
	f := newFakeTrovi(t)
	f.on(http.MethodPut, "/artifacts/abc/versions/v1/metrics/", http.StatusNoContent, "")
	c := newTestClient(t, f)

	require.NoError(t, c.IncrementMetricCount(context.Background(), "abc", "v1", "origin-1", "", 1))
	require.NoError(t, c.IncrementMetricCount(context.Background(), "abc", "v1", "origin-2", "cell_execution_count", 5))

	reqs := f.recorded()
	require.Len(t, reqs, 2)
	assert.Equal(t, "access_count", reqs[0].Query.Get("metric"))
	assert.Equal(t, "1", reqs[0].Query.Get("amount"))
	assert.Equal(t, "origin-1", reqs[0].Query.Get("origin"))
	assert.Equal(t, "cell_execution_count", reqs[1].Query.Get("metric"))
	assert.Equal(t, "5", reqs[1].Query.Get("amount"))
	assert.Empty(t, reqs[0].Body)
}
