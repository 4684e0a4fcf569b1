package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/gofrs/flock"

	"github.com/chameleoncloud/trovi/internal/auth"
	"github.com/chameleoncloud/trovi/internal/cache"
	"github.com/chameleoncloud/trovi/internal/trovi"
	"github.com/chameleoncloud/trovi/internal/utils"
)

// DefaultProfileName is the name used for the default profile
const DefaultProfileName = "default"

// EnvPrefix prefixes every environment variable read by the CLI.
const EnvPrefix = "TROVI_"

// Environment variable names.
const (
	EnvKeycloakURL      = EnvPrefix + "KEYCLOAK_URL"
	EnvKeycloakRealm    = EnvPrefix + "KEYCLOAK_REALM"
	EnvOIDCClientID     = EnvPrefix + "OIDC_CLIENT_ID"
	EnvOIDCClientSecret = EnvPrefix + "OIDC_CLIENT_SECRET"
	EnvAdmin            = EnvPrefix + "ADMIN"
	EnvBaseURL          = EnvPrefix + "BASE_URL"
	EnvPortalURL        = EnvPrefix + "PORTAL_URL"
	EnvScopes           = EnvPrefix + "SCOPES"
	EnvOIDCDiscovery    = EnvPrefix + "OIDC_DISCOVERY"
	EnvProfile          = EnvPrefix + "PROFILE"
)

// ErrMissingField is wrapped by Validate for every required setting left empty.
var ErrMissingField = errors.New("missing required setting")

// Profile holds the connection settings for one Trovi deployment.
type Profile struct {
	BaseURL      string   `toml:"base_url,omitempty"`
	PortalURL    string   `toml:"portal_url,omitempty"`
	KeycloakURL  string   `toml:"keycloak_url,omitempty"`
	Realm        string   `toml:"keycloak_realm,omitempty"`
	ClientID     string   `toml:"oidc_client_id,omitempty"`
	ClientSecret string   `toml:"oidc_client_secret,omitempty"`
	Admin        bool     `toml:"admin,omitempty"`
	Scopes       []string `toml:"scopes,omitempty"`
	Discovery    bool     `toml:"oidc_discovery,omitempty"`
}

// File is the on-disk configuration with one or more named profiles.
type File struct {
	DefaultProfile string              `toml:"default_profile"`
	Profiles       map[string]*Profile `toml:"profiles"`
}

// activeProfileOverride is set via SetActiveProfile to override the default profile
var activeProfileOverride string

// SetActiveProfile sets the active profile for the current session.
// This is typically set from a --profile flag.
func SetActiveProfile(name string) {
	activeProfileOverride = name
}

// ActiveProfileName returns the profile in use: the override, then
// TROVI_PROFILE, then the file default.
func ActiveProfileName(f *File) string {
	if activeProfileOverride != "" {
		return activeProfileOverride
	}
	if env := os.Getenv(EnvProfile); env != "" {
		return env
	}
	if f != nil && f.DefaultProfile != "" {
		return f.DefaultProfile
	}
	return DefaultProfileName
}

// LoadFile reads the configuration file. A missing file yields an empty
// configuration.
func LoadFile() (*File, error) {
	configFile, err := utils.GetConfigFile()
	if err != nil {
		return nil, fmt.Errorf("failed to get config file path: %w", err)
	}

	f := &File{DefaultProfile: DefaultProfileName, Profiles: map[string]*Profile{}}
	if !utils.FileExists(configFile) {
		return f, nil
	}

	if _, err := toml.DecodeFile(configFile, f); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if f.Profiles == nil {
		f.Profiles = map[string]*Profile{}
	}
	return f, nil
}

// SaveFile writes the configuration file, holding a file lock so concurrent
// invocations do not interleave writes.
func SaveFile(ctx context.Context, f *File) error {
	configFile, err := utils.GetConfigFile()
	if err != nil {
		return fmt.Errorf("failed to get config file path: %w", err)
	}
	if err := utils.EnsureDir(filepath.Dir(configFile)); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	lockDir, err := cache.GetLockDir()
	if err != nil {
		return fmt.Errorf("failed to get lock directory: %w", err)
	}
	if err := utils.EnsureDir(lockDir); err != nil {
		return fmt.Errorf("failed to create lock directory: %w", err)
	}

	fileLock := flock.New(filepath.Join(lockDir, "config.lock"))
	locked, err := fileLock.TryLockContext(ctx, 50*time.Millisecond)
	if err != nil {
		return fmt.Errorf("failed to acquire config lock: %w", err)
	}
	if !locked {
		return errors.New("could not acquire config lock (timeout)")
	}
	defer func() { _ = fileLock.Unlock() }()

	tmp, err := os.CreateTemp(filepath.Dir(configFile), ".config-*.toml")
	if err != nil {
		return fmt.Errorf("failed to create temp config: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := toml.NewEncoder(tmp).Encode(f); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set config permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	if err := os.Rename(tmp.Name(), configFile); err != nil {
		return fmt.Errorf("failed to replace config file: %w", err)
	}
	return nil
}

// ProfileNames returns the configured profile names, sorted.
func (f *File) ProfileNames() []string {
	names := make([]string, 0, len(f.Profiles))
	for name := range f.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Load returns a copy of the active profile with environment overrides
// applied. Flags are applied on top by the caller.
func Load() (*Profile, error) {
	f, err := LoadFile()
	if err != nil {
		return nil, err
	}

	p := &Profile{}
	if stored, ok := f.Profiles[ActiveProfileName(f)]; ok && stored != nil {
		*p = *stored
		p.Scopes = append([]string(nil), stored.Scopes...)
	}
	if err := p.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}
	return p, nil
}

// ApplyEnv overrides settings from TROVI_* environment variables.
func (p *Profile) ApplyEnv(getenv func(string) string) error {
	setString := func(dst *string, key string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	setBool := func(dst *bool, key string) error {
		v := getenv(key)
		if v == "" {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s value %q: %w", key, v, err)
		}
		*dst = b
		return nil
	}

	setString(&p.KeycloakURL, EnvKeycloakURL)
	setString(&p.Realm, EnvKeycloakRealm)
	setString(&p.ClientID, EnvOIDCClientID)
	setString(&p.ClientSecret, EnvOIDCClientSecret)
	setString(&p.BaseURL, EnvBaseURL)
	setString(&p.PortalURL, EnvPortalURL)
	if v := getenv(EnvScopes); v != "" {
		p.Scopes = SplitScopes(v)
	}
	if err := setBool(&p.Admin, EnvAdmin); err != nil {
		return err
	}
	return setBool(&p.Discovery, EnvOIDCDiscovery)
}

// SplitScopes splits a scope list separated by spaces or commas.
func SplitScopes(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' '
	})
}

// GetBaseURL returns the Trovi API URL, defaulting to the development deployment.
func (p *Profile) GetBaseURL() string {
	if p.BaseURL == "" {
		return trovi.DefaultBaseURL
	}
	return p.BaseURL
}

// Validate reports the first required setting that is empty.
func (p *Profile) Validate() error {
	required := []struct {
		value, name string
	}{
		{p.KeycloakURL, "keycloak_url"},
		{p.Realm, "keycloak_realm"},
		{p.ClientID, "oidc_client_id"},
		{p.ClientSecret, "oidc_client_secret"},
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("%w: %s", ErrMissingField, r.name)
		}
	}
	return nil
}

// Credentials converts the profile into token provider credentials.
func (p *Profile) Credentials() auth.Credentials {
	return auth.Credentials{
		IdentityURL:  p.KeycloakURL,
		Realm:        p.Realm,
		ClientID:     p.ClientID,
		ClientSecret: p.ClientSecret,
		Admin:        p.Admin,
		Scopes:       append([]string(nil), p.Scopes...),
	}
}
