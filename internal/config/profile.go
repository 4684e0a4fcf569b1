package config

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrProfileNotFound is returned for operations on an unknown profile.
var ErrProfileNotFound = errors.New("profile not found")

// SettableKeys lists the keys accepted by Profile.Set, in display order.
var SettableKeys = []string{
	"base_url",
	"portal_url",
	"keycloak_url",
	"keycloak_realm",
	"oidc_client_id",
	"oidc_client_secret",
	"admin",
	"scopes",
	"oidc_discovery",
}

// Set assigns a setting by its file key.
func (p *Profile) Set(key, value string) error {
	parseBool := func() (bool, error) {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return false, fmt.Errorf("invalid %s value %q: %w", key, value, err)
		}
		return b, nil
	}

	var err error
	switch key {
	case "base_url":
		p.BaseURL = value
	case "portal_url":
		p.PortalURL = value
	case "keycloak_url":
		p.KeycloakURL = value
	case "keycloak_realm":
		p.Realm = value
	case "oidc_client_id":
		p.ClientID = value
	case "oidc_client_secret":
		p.ClientSecret = value
	case "admin":
		p.Admin, err = parseBool()
	case "scopes":
		p.Scopes = SplitScopes(value)
	case "oidc_discovery":
		p.Discovery, err = parseBool()
	default:
		return fmt.Errorf("unknown setting %q (valid: %v)", key, SettableKeys)
	}
	return err
}

// GetProfile returns the named profile.
func (f *File) GetProfile(name string) (*Profile, bool) {
	p, ok := f.Profiles[name]
	return p, ok && p != nil
}

// EnsureProfile returns the named profile, creating an empty one if needed.
func (f *File) EnsureProfile(name string) *Profile {
	if p, ok := f.GetProfile(name); ok {
		return p
	}
	p := &Profile{}
	f.Profiles[name] = p
	return p
}

// SetDefaultProfile makes name the profile used when none is selected.
func (f *File) SetDefaultProfile(name string) error {
	if _, ok := f.GetProfile(name); !ok {
		return fmt.Errorf("%w: %s", ErrProfileNotFound, name)
	}
	f.DefaultProfile = name
	return nil
}

// DeleteProfile removes a profile. The default profile cannot be removed.
func (f *File) DeleteProfile(name string) error {
	if _, ok := f.GetProfile(name); !ok {
		return fmt.Errorf("%w: %s", ErrProfileNotFound, name)
	}
	if name == f.DefaultProfile {
		return fmt.Errorf("cannot remove the default profile %s", name)
	}
	delete(f.Profiles, name)
	return nil
}
