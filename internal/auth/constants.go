package auth

const (
	// WellKnownOIDCPath is the OpenID Connect discovery path, relative to the realm.
	WellKnownOIDCPath = "/.well-known/openid-configuration"

	// GrantTypeTokenExchange is the grant Trovi's /token/ endpoint accepts.
	GrantTypeTokenExchange = "token_exchange"

	// SubjectTokenTypeJWT marks the exchanged identity token as a JWT.
	SubjectTokenTypeJWT = "urn:ietf:params:oauth:token-type:jwt"

	// ScopeArtifactsRead is the default scope requested from Trovi.
	ScopeArtifactsRead = "artifacts:read"

	// ScopeArtifactsWrite allows creating and modifying artifacts.
	ScopeArtifactsWrite = "artifacts:write"

	// ScopeAdmin is appended to the requested scopes for admin clients.
	ScopeAdmin = "trovi:admin"

	// TokenExchangePath is the Trovi endpoint exchanging identity tokens.
	TokenExchangePath = "/token/"
)

// DefaultScopes are requested when the credentials list none.
var DefaultScopes = []string{ScopeArtifactsRead}
