package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/chameleoncloud/trovi/internal/buildinfo"
	"github.com/chameleoncloud/trovi/internal/httperr"
)

// ErrMissingTokenEndpoint indicates the discovery document has no token_endpoint.
var ErrMissingTokenEndpoint = errors.New("missing token_endpoint")

// DiscoveryDocument is the subset of the OpenID Connect Discovery 1.0
// document the client reads.
type DiscoveryDocument struct {
	Issuer                string   `json:"issuer"`
	AuthorizationEndpoint string   `json:"authorization_endpoint"`
	TokenEndpoint         string   `json:"token_endpoint"`
	JWKSURI               string   `json:"jwks_uri"`
	GrantTypesSupported   []string `json:"grant_types_supported,omitempty"`
}

// SupportsGrantType reports whether the realm advertises the given grant
// type. An empty list is treated as "unknown" and reports true.
func (d *DiscoveryDocument) SupportsGrantType(grantType string) bool {
	if len(d.GrantTypesSupported) == 0 {
		return true
	}
	for _, gt := range d.GrantTypesSupported {
		if gt == grantType {
			return true
		}
	}
	return false
}

// RealmURL returns the base URL of a Keycloak realm.
func RealmURL(identityURL, realm string) string {
	return strings.TrimRight(identityURL, "/") + "/realms/" + realm
}

// ConventionalTokenEndpoint returns the Keycloak token endpoint of a realm
// without performing discovery.
func ConventionalTokenEndpoint(identityURL, realm string) string {
	return RealmURL(identityURL, realm) + "/protocol/openid-connect/token"
}

// Discover fetches the realm's OpenID Connect discovery document.
func Discover(ctx context.Context, httpClient *http.Client, identityURL, realm string) (*DiscoveryDocument, error) {
	endpoint := RealmURL(identityURL, realm) + WellKnownOIDCPath

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", buildinfo.GetUserAgent())

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch discovery document: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read discovery document: %w", err)
	}
	if err := httperr.Check(resp, body, http.StatusOK); err != nil {
		return nil, err
	}

	var doc DiscoveryDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode discovery document: %w", err)
	}
	if doc.TokenEndpoint == "" {
		return nil, ErrMissingTokenEndpoint
	}
	return &doc, nil
}
