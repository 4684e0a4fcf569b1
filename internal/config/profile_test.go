package config

import (
	"errors"
	"testing"
)

func TestProfileSet(t *testing.T) {
	tests := []struct {
		key, value string
		check      func(p *Profile) bool
		wantErr    bool
	}{
		{"keycloak_url", "https://auth.example", func(p *Profile) bool { return p.KeycloakURL == "https://auth.example" }, false},
		{"keycloak_realm", "chameleon", func(p *Profile) bool { return p.Realm == "chameleon" }, false},
		{"portal_url", "https://portal.example", func(p *Profile) bool { return p.PortalURL == "https://portal.example" }, false},
		{"admin", "true", func(p *Profile) bool { return p.Admin }, false},
		{"oidc_discovery", "1", func(p *Profile) bool { return p.Discovery }, false},
		{"scopes", "a b,c", func(p *Profile) bool { return len(p.Scopes) == 3 }, false},
		{"admin", "perhaps", nil, true},
		{"colour", "blue", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			p := &Profile{}
			err := p.Set(tt.key, tt.value)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Set() failed: %v", err)
			}
			if !tt.check(p) {
				t.Errorf("Set(%s, %s) did not apply: %+v", tt.key, tt.value, p)
			}
		})
	}
}

func TestFileProfiles(t *testing.T) {
	f := &File{DefaultProfile: "default", Profiles: map[string]*Profile{}}

	f.EnsureProfile("default").KeycloakURL = "https://auth.example"
	f.EnsureProfile("staging")
	if f.EnsureProfile("default").KeycloakURL != "https://auth.example" {
		t.Error("EnsureProfile must return the existing profile")
	}

	if err := f.SetDefaultProfile("missing"); !errors.Is(err, ErrProfileNotFound) {
		t.Errorf("expected ErrProfileNotFound, got %v", err)
	}
	if err := f.DeleteProfile("default"); err == nil {
		t.Error("deleting the default profile must fail")
	}
	if err := f.SetDefaultProfile("staging"); err != nil {
		t.Fatalf("SetDefaultProfile() failed: %v", err)
	}
	if err := f.DeleteProfile("default"); err != nil {
		t.Fatalf("DeleteProfile() failed: %v", err)
	}
	if names := f.ProfileNames(); len(names) != 1 || names[0] != "staging" {
		t.Errorf("profiles = %v", names)
	}
}
