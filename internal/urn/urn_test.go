package urn

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantType string
		provider string
		id       string
	}{
		{
			name:     "chameleon project",
			input:    "urn:trovi:project:chameleon:CHI-231095",
			wantType: "project",
			provider: "chameleon",
			id:       "CHI-231095",
		},
		{
			name:     "owner",
			input:    "urn:trovi:user:chameleon:jdoe@example.org",
			wantType: "user",
			provider: "chameleon",
			id:       "jdoe@example.org",
		},
		{
			name:     "id keeps extra colons",
			input:    "urn:trovi:contents:git:https://github.com/org/repo@main",
			wantType: "contents",
			provider: "git",
			id:       "https://github.com/org/repo@main",
		},
		{
			name:     "empty id",
			input:    "urn:trovi:project:zenodo:",
			wantType: "project",
			provider: "zenodo",
			id:       "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse(%q) failed: %v", tt.input, err)
			}
			if got.Type != tt.wantType || got.Provider != tt.provider || got.ID != tt.id {
				t.Errorf("Parse(%q) = %+v, want type=%q provider=%q id=%q",
					tt.input, got, tt.wantType, tt.provider, tt.id)
			}
		})
	}
}

func TestParseMalformed(t *testing.T) {
	for _, input := range []string{"", "urn", "urn:trovi:project", "urn:trovi:project:chameleon"} {
		if _, err := Parse(input); !errors.Is(err, ErrMalformedURN) {
			t.Errorf("Parse(%q) error = %v, want ErrMalformedURN", input, err)
		}
		if _, err := ParseProject(input); !errors.Is(err, ErrMalformedURN) {
			t.Errorf("ParseProject(%q) error = %v, want ErrMalformedURN", input, err)
		}
	}
}

func TestVariants(t *testing.T) {
	p, err := ParseProject("urn:trovi:project:chameleon:CHI-1")
	if err != nil {
		t.Fatal(err)
	}
	if p.Provider != "chameleon" || p.ProjectID != "CHI-1" {
		t.Errorf("unexpected project %+v", p)
	}

	o, err := ParseOwner("urn:trovi:user:chameleon:alice")
	if err != nil {
		t.Fatal(err)
	}
	if o.Provider != "chameleon" || o.ID != "alice" {
		t.Errorf("unexpected owner %+v", o)
	}

	c, err := ParseContents("urn:trovi:contents:chameleon:2f1c8d1e")
	if err != nil {
		t.Fatal(err)
	}
	if c.Provider != "chameleon" || c.ID != "2f1c8d1e" {
		t.Errorf("unexpected contents %+v", c)
	}
}

func TestRoundTrip(t *testing.T) {
	if got := ChameleonProject("CHI-42"); got != "urn:trovi:project:chameleon:CHI-42" {
		t.Errorf("ChameleonProject() = %q", got)
	}

	in := "urn:trovi:contents:zenodo:10.5281/zenodo.123"
	c, err := ParseContents(in)
	if err != nil {
		t.Fatal(err)
	}
	if c.String() != in {
		t.Errorf("String() = %q, want %q", c.String(), in)
	}
}
