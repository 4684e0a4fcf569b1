package httperr

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func response(method, rawURL string, status int) *http.Response {
	u, _ := url.Parse(rawURL)
	return &http.Response{
		StatusCode: status,
		Request:    &http.Request{Method: method, URL: u},
	}
}

func TestCheck(t *testing.T) {
	t.Parallel()

	t.Run("matching status passes", func(t *testing.T) {
		t.Parallel()
		resp := response(http.MethodGet, "https://trovi.example/artifacts/", http.StatusOK)
		require.NoError(t, Check(resp, nil, http.StatusOK))
	})

	t.Run("zero expected disables check", func(t *testing.T) {
		t.Parallel()
		resp := response(http.MethodGet, "https://trovi.example/artifacts/", http.StatusTeapot)
		require.NoError(t, Check(resp, nil, 0))
	})

	t.Run("mismatch carries request details", func(t *testing.T) {
		t.Parallel()
		resp := response(http.MethodPatch,
			"https://trovi.example/artifacts/abc/?access_token=secret", http.StatusForbidden)

		err := Check(resp, []byte(`{"detail":"not allowed"}`), http.StatusOK)

		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		require.Equal(t, http.MethodPatch, apiErr.Method)
		require.Equal(t, "/artifacts/abc/", apiErr.Path)
		require.Equal(t, http.StatusForbidden, apiErr.StatusCode)
		require.Equal(t, http.StatusOK, apiErr.Expected)
		require.Equal(t, "not allowed", apiErr.Detail)
		require.Equal(t, "PATCH /artifacts/abc/ 403 returned, expected 200: not allowed", err.Error())
		require.NotContains(t, err.Error(), "secret")
	})
}

func TestDetail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{name: "detail field", status: 400, body: `{"detail":"bad sort"}`, want: "bad sort"},
		{name: "error_description fallback", status: 401, body: `{"error":"invalid_grant","error_description":"expired"}`, want: "expired"},
		{name: "detail wins over error_description", status: 400, body: `{"detail":"a","error_description":"b"}`, want: "a"},
		{name: "object without known keys", status: 400, body: `{"title":["required"]}`, want: `{"title":["required"]}`},
		{name: "structured detail", status: 400, body: `{"detail":{"title":["required"]}}`, want: `{"title":["required"]}`},
		{name: "json list", status: 400, body: `["nope"]`, want: `["nope"]`},
		{name: "plain text", status: 404, body: "Not Found", want: "Not Found"},
		{name: "html on 500", status: 500, body: "<html>Server Error</html>", want: ""},
		{name: "empty 500", status: 500, body: "", want: ""},
		{name: "json on 500", status: 500, body: `{"detail":"boom"}`, want: "boom"},
		{name: "null detail", status: 400, body: `{"detail":null}`, want: ""},
		{name: "null detail skips error_description", status: 400, body: `{"detail":null,"error_description":"b"}`, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, Detail(tt.status, []byte(tt.body)))
		})
	}
}

func TestCode(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("listing artifacts: %w", &APIError{StatusCode: http.StatusBadGateway})
	require.Equal(t, http.StatusBadGateway, Code(err))
	require.Equal(t, 0, Code(errors.New("plain")))
	require.Equal(t, 0, Code(nil))
}
