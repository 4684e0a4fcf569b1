// Package auth obtains Trovi access tokens. A token is minted in two steps:
// an OpenID Connect client-credentials grant against the identity realm,
// then an exchange of that identity token at Trovi's /token/ endpoint.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/chameleoncloud/trovi/internal/buildinfo"
	"github.com/chameleoncloud/trovi/internal/httperr"
)

// Credentials identify the client to the identity provider and Trovi.
type Credentials struct {
	// IdentityURL is the Keycloak server URL, e.g. https://auth.chameleoncloud.org/auth
	IdentityURL  string
	Realm        string
	ClientID     string
	ClientSecret string
	// Admin requests the trovi:admin scope in addition to Scopes.
	Admin  bool
	Scopes []string
}

// AccessToken is a Trovi-scoped bearer token.
type AccessToken struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
	ExpiresIn   int    `json:"expires_in,omitempty"`
	Scope       string `json:"scope,omitempty"`
}

// TokenSource mints access tokens.
type TokenSource interface {
	GetAccessToken(ctx context.Context) (*AccessToken, error)
}

// StaticToken is a TokenSource that always returns the same token.
type StaticToken string

// GetAccessToken returns the static token.
func (s StaticToken) GetAccessToken(context.Context) (*AccessToken, error) {
	return &AccessToken{AccessToken: string(s), TokenType: "Bearer"}, nil
}

// TokenProvider exchanges client credentials for Trovi access tokens.
// Tokens are not cached: every call performs the grant and the exchange.
type TokenProvider struct {
	creds      Credentials
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	discovery  bool

	mu       sync.Mutex
	tokenURL string
}

// Option configures a TokenProvider.
type Option func(*TokenProvider)

// WithHTTPClient sets the HTTP client used for both identity and Trovi calls.
func WithHTTPClient(c *http.Client) Option {
	return func(p *TokenProvider) {
		p.httpClient = c
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *TokenProvider) {
		p.logger = l
	}
}

// WithDiscovery resolves the realm token endpoint through OpenID Connect
// discovery instead of the Keycloak path convention. The endpoint is looked
// up once per provider.
func WithDiscovery(enabled bool) Option {
	return func(p *TokenProvider) {
		p.discovery = enabled
	}
}

// NewTokenProvider creates a provider exchanging tokens at baseURL/token/.
func NewTokenProvider(creds Credentials, baseURL string, opts ...Option) *TokenProvider {
	// Own a copy so the admin scope is never appended to the caller's slice.
	if len(creds.Scopes) == 0 {
		creds.Scopes = DefaultScopes
	}
	creds.Scopes = append([]string(nil), creds.Scopes...)

	p := &TokenProvider{
		creds:      creds,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Scope returns the space separated scope string sent to Trovi.
func (p *TokenProvider) Scope() string {
	scopes := p.creds.Scopes
	if p.creds.Admin {
		scopes = append(scopes[:len(scopes):len(scopes)], ScopeAdmin)
	}
	return strings.Join(scopes, " ")
}

// GetAccessToken performs the client-credentials grant and exchanges the
// resulting identity token for a Trovi access token.
func (p *TokenProvider) GetAccessToken(ctx context.Context) (*AccessToken, error) {
	subject, err := p.identityToken(ctx)
	if err != nil {
		return nil, err
	}
	return p.exchange(ctx, subject)
}

// TokenEndpoint returns the realm token endpoint.
func (p *TokenProvider) TokenEndpoint(ctx context.Context) (string, error) {
	if !p.discovery {
		return ConventionalTokenEndpoint(p.creds.IdentityURL, p.creds.Realm), nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.tokenURL != "" {
		return p.tokenURL, nil
	}

	doc, err := Discover(ctx, p.httpClient, p.creds.IdentityURL, p.creds.Realm)
	if err != nil {
		return "", fmt.Errorf("openid discovery failed: %w", err)
	}
	if !doc.SupportsGrantType("client_credentials") {
		return "", fmt.Errorf("realm %s does not support the client_credentials grant", p.creds.Realm)
	}
	p.tokenURL = doc.TokenEndpoint
	return p.tokenURL, nil
}

func (p *TokenProvider) identityToken(ctx context.Context) (string, error) {
	tokenURL, err := p.TokenEndpoint(ctx)
	if err != nil {
		return "", err
	}

	cfg := clientcredentials.Config{
		ClientID:     p.creds.ClientID,
		ClientSecret: p.creds.ClientSecret,
		TokenURL:     tokenURL,
		AuthStyle:    oauth2.AuthStyleInParams,
	}

	tok, err := cfg.Token(context.WithValue(ctx, oauth2.HTTPClient, p.httpClient))
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
			return "", &httperr.APIError{
				Method:     http.MethodPost,
				Path:       pathOf(tokenURL),
				StatusCode: retrieveErr.Response.StatusCode,
				Expected:   http.StatusOK,
				Detail:     httperr.Detail(retrieveErr.Response.StatusCode, retrieveErr.Body),
			}
		}
		return "", fmt.Errorf("client credentials grant failed: %w", err)
	}

	p.logger.Debug("obtained identity token", "realm", p.creds.Realm, "client_id", p.creds.ClientID)
	return tok.AccessToken, nil
}

type exchangeRequest struct {
	GrantType        string `json:"grant_type"`
	SubjectToken     string `json:"subject_token"`
	SubjectTokenType string `json:"subject_token_type"`
	Scope            string `json:"scope"`
}

func (p *TokenProvider) exchange(ctx context.Context, subjectToken string) (*AccessToken, error) {
	endpoint, err := resolve(p.baseURL, TokenExchangePath)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(exchangeRequest{
		GrantType:        GrantTypeTokenExchange,
		SubjectToken:     subjectToken,
		SubjectTokenType: SubjectTokenTypeJWT,
		Scope:            p.Scope(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode token exchange: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", buildinfo.GetUserAgent())

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token exchange failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read token exchange response: %w", err)
	}
	if err := httperr.Check(resp, body, http.StatusCreated); err != nil {
		return nil, err
	}

	var token AccessToken
	if err := json.Unmarshal(body, &token); err != nil {
		return nil, fmt.Errorf("failed to decode token exchange response: %w", err)
	}
	if token.AccessToken == "" {
		return nil, errors.New("token exchange response has no access_token")
	}

	p.logger.Debug("exchanged token", "scope", p.Scope(), "expires_in", token.ExpiresIn)
	return &token, nil
}

// resolve joins an absolute path onto base, replacing any path base carries.
func resolve(base, path string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid base url %q: %w", base, err)
	}
	return u.ResolveReference(&url.URL{Path: path}).String(), nil
}

func pathOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Path
}
