package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/chameleoncloud/trovi/internal/auth"
	"github.com/chameleoncloud/trovi/internal/buildinfo"
	"github.com/chameleoncloud/trovi/internal/config"
	"github.com/chameleoncloud/trovi/internal/logger"
	"github.com/chameleoncloud/trovi/internal/trovi"
	"github.com/chameleoncloud/trovi/internal/ui/components"
)

// commandTimeout bounds every command that talks to Trovi.
const commandTimeout = 30 * time.Second

// Global flag names.
const (
	flagProfile          = "profile"
	flagKeycloakURL      = "keycloak-url"
	flagKeycloakRealm    = "keycloak-realm"
	flagOIDCClientID     = "oidc-client-id"
	flagOIDCClientSecret = "oidc-client-secret"
	flagAdmin            = "admin"
	flagBaseURL          = "base-url"
	flagPortalURL        = "portal-url"
	flagOIDCDiscovery    = "oidc-discovery"
)

// addGlobalFlags registers the connection flags shared by every command.
func addGlobalFlags(flags *pflag.FlagSet) {
	flags.String(flagProfile, "", "Use a specific profile (can also use TROVI_PROFILE)")
	flags.String(flagKeycloakURL, "", "Identity provider URL (TROVI_KEYCLOAK_URL)")
	flags.String(flagKeycloakRealm, "", "Identity provider realm (TROVI_KEYCLOAK_REALM)")
	flags.String(flagOIDCClientID, "", "OIDC client id (TROVI_OIDC_CLIENT_ID)")
	flags.String(flagOIDCClientSecret, "", "OIDC client secret (TROVI_OIDC_CLIENT_SECRET)")
	flags.Bool(flagAdmin, false, "Request the admin scope (TROVI_ADMIN)")
	flags.String(flagBaseURL, "", "Trovi API URL (TROVI_BASE_URL)")
	flags.String(flagPortalURL, "", "Portal URL used by 'artifact open' (TROVI_PORTAL_URL)")
	flags.Bool(flagOIDCDiscovery, false, "Resolve the token endpoint via OpenID Connect discovery (TROVI_OIDC_DISCOVERY)")
}

// loadProfile resolves settings with flag > environment > file precedence,
// then falls back to the keyring for the client secret.
func loadProfile(cmd *cobra.Command) (*config.Profile, error) {
	p, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	flags := cmd.Flags()
	stringFlags := map[string]*string{
		flagKeycloakURL:      &p.KeycloakURL,
		flagKeycloakRealm:    &p.Realm,
		flagOIDCClientID:     &p.ClientID,
		flagOIDCClientSecret: &p.ClientSecret,
		flagBaseURL:          &p.BaseURL,
		flagPortalURL:        &p.PortalURL,
	}
	for name, dst := range stringFlags {
		if flags.Changed(name) {
			*dst, _ = flags.GetString(name)
		}
	}
	if flags.Changed(flagAdmin) {
		p.Admin, _ = flags.GetBool(flagAdmin)
	}
	if flags.Changed(flagOIDCDiscovery) {
		p.Discovery, _ = flags.GetBool(flagOIDCDiscovery)
	}

	if err := p.ResolveSecret(); err != nil {
		return nil, err
	}
	return p, nil
}

// newClient builds an authenticated API client for the resolved profile.
func newClient(cmd *cobra.Command) (*trovi.Client, error) {
	p, err := loadProfile(cmd)
	if err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%w\nSet it with a flag, a TROVI_* environment variable or 'trovi config set'", err)
	}

	log := logger.Get()
	tokens := auth.NewTokenProvider(p.Credentials(), p.GetBaseURL(),
		auth.WithLogger(log),
		auth.WithDiscovery(p.Discovery),
	)
	opts := []trovi.Option{
		trovi.WithBaseURL(p.GetBaseURL()),
		trovi.WithLogger(log),
		trovi.WithUserAgent(buildinfo.GetUserAgent()),
	}
	if p.PortalURL != "" {
		opts = append(opts, trovi.WithPortalURL(p.PortalURL))
	}
	return trovi.New(tokens, opts...)
}

// commandContext returns the per-command deadline.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, commandTimeout)
}

// fetch runs fn behind a spinner on stderr unless machine output is requested.
func fetch[T any](cmd *cobra.Command, message string, quiet bool, fn func() (T, error)) (T, error) {
	if quiet {
		return fn()
	}
	return components.RunWithSpinner(message, cmd.ErrOrStderr(), fn)
}
