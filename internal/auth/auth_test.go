package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chameleoncloud/trovi/internal/httperr"
)

// fakeServer plays both the Keycloak realm and Trovi's token endpoint.
type fakeServer struct {
	*httptest.Server

	grants     atomic.Int32
	exchanges  atomic.Int32
	discovers  atomic.Int32
	lastScope  atomic.Value
	lastBody   atomic.Value
	exchangeSC int
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()

	f := &fakeServer{exchangeSC: http.StatusCreated}
	mux := http.NewServeMux()

	mux.HandleFunc("GET /realms/chameleon/.well-known/openid-configuration", func(w http.ResponseWriter, r *http.Request) {
		f.discovers.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"issuer":                f.URL + "/realms/chameleon",
			"token_endpoint":        f.URL + "/realms/chameleon/custom/token",
			"grant_types_supported": []string{"authorization_code", "client_credentials"},
		})
	})

	grant := func(w http.ResponseWriter, r *http.Request) {
		f.grants.Add(1)
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if r.PostForm.Get("grant_type") != "client_credentials" ||
			r.PostForm.Get("client_id") != "trovi-cli" ||
			r.PostForm.Get("client_secret") != "s3cret" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"unauthorized_client","error_description":"Invalid client secret"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"identity-jwt","token_type":"Bearer","expires_in":300}`))
	}
	mux.HandleFunc("POST /realms/chameleon/protocol/openid-connect/token", grant)
	mux.HandleFunc("POST /realms/chameleon/custom/token", grant)

	mux.HandleFunc("POST /token/", func(w http.ResponseWriter, r *http.Request) {
		f.exchanges.Add(1)
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.lastBody.Store(body)
		f.lastScope.Store(body["scope"])
		if f.exchangeSC != http.StatusCreated {
			w.WriteHeader(f.exchangeSC)
			_, _ = w.Write([]byte(`{"detail":"exchange refused"}`))
			return
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"access_token":"trovi-token","token_type":"Bearer","expires_in":600,"scope":"` + body["scope"] + `"}`))
	})

	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

func (f *fakeServer) credentials() Credentials {
	return Credentials{
		IdentityURL:  f.URL,
		Realm:        "chameleon",
		ClientID:     "trovi-cli",
		ClientSecret: "s3cret",
	}
}

func TestGetAccessToken(t *testing.T) {
	srv := newFakeServer(t)
	p := NewTokenProvider(srv.credentials(), srv.URL, WithHTTPClient(srv.Client()))

	tok, err := p.GetAccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "trovi-token", tok.AccessToken)
	assert.Equal(t, "Bearer", tok.TokenType)

	assert.EqualValues(t, 1, srv.grants.Load(), "one identity provider call")
	assert.EqualValues(t, 1, srv.exchanges.Load(), "one exchange call")

	body := srv.lastBody.Load().(map[string]string)
	assert.Equal(t, "token_exchange", body["grant_type"])
	assert.Equal(t, "identity-jwt", body["subject_token"])
	assert.Equal(t, "urn:ietf:params:oauth:token-type:jwt", body["subject_token_type"])
	assert.Equal(t, "artifacts:read", body["scope"])
}

func TestGetAccessTokenIsNotCached(t *testing.T) {
	srv := newFakeServer(t)
	p := NewTokenProvider(srv.credentials(), srv.URL, WithHTTPClient(srv.Client()))

	for range 3 {
		_, err := p.GetAccessToken(context.Background())
		require.NoError(t, err)
	}

	assert.EqualValues(t, 3, srv.grants.Load())
	assert.EqualValues(t, 3, srv.exchanges.Load())
}

func TestAdminScopeIsAppendedOnce(t *testing.T) {
	srv := newFakeServer(t)
	creds := srv.credentials()
	creds.Admin = true
	creds.Scopes = []string{"artifacts:read", "artifacts:write"}
	p := NewTokenProvider(creds, srv.URL, WithHTTPClient(srv.Client()))

	for range 2 {
		_, err := p.GetAccessToken(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "artifacts:read artifacts:write trovi:admin", srv.lastScope.Load())
	}
	assert.Equal(t, []string{"artifacts:read", "artifacts:write"}, creds.Scopes)
}

func TestExchangeStatusMismatch(t *testing.T) {
	srv := newFakeServer(t)
	srv.exchangeSC = http.StatusBadRequest
	p := NewTokenProvider(srv.credentials(), srv.URL, WithHTTPClient(srv.Client()))

	_, err := p.GetAccessToken(context.Background())
	require.Error(t, err)

	var apiErr *httperr.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.MethodPost, apiErr.Method)
	assert.Equal(t, "/token/", apiErr.Path)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, http.StatusCreated, apiErr.Expected)
	assert.Equal(t, "exchange refused", apiErr.Detail)
}

func TestIdentityGrantFailure(t *testing.T) {
	srv := newFakeServer(t)
	creds := srv.credentials()
	creds.ClientSecret = "wrong"
	p := NewTokenProvider(creds, srv.URL, WithHTTPClient(srv.Client()))

	_, err := p.GetAccessToken(context.Background())

	var apiErr *httperr.APIError
	require.True(t, errors.As(err, &apiErr), "got %v", err)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "/realms/chameleon/protocol/openid-connect/token", apiErr.Path)
	assert.Equal(t, "Invalid client secret", apiErr.Detail)
	assert.EqualValues(t, 0, srv.exchanges.Load())
}

func TestDiscoveryIsResolvedOnce(t *testing.T) {
	srv := newFakeServer(t)
	p := NewTokenProvider(srv.credentials(), srv.URL,
		WithHTTPClient(srv.Client()), WithDiscovery(true))

	for range 2 {
		_, err := p.GetAccessToken(context.Background())
		require.NoError(t, err)
	}

	assert.EqualValues(t, 1, srv.discovers.Load())
	assert.EqualValues(t, 2, srv.grants.Load())
}

func TestStaticToken(t *testing.T) {
	tok, err := StaticToken("abc").GetAccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "abc", tok.AccessToken)
}

func TestConventionalTokenEndpoint(t *testing.T) {
	assert.Equal(t,
		"https://auth.example.org/auth/realms/chameleon/protocol/openid-connect/token",
		ConventionalTokenEndpoint("https://auth.example.org/auth/", "chameleon"))
}
