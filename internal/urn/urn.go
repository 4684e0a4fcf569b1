// Package urn parses the colon-delimited identifiers Trovi uses for owners,
// linked projects and version contents, e.g. urn:trovi:project:chameleon:CHI-123.
package urn

import (
	"errors"
	"fmt"
	"strings"
)

// Prefix is the namespace shared by every Trovi URN.
const Prefix = "urn:trovi:"

// Well-known URN types.
const (
	TypeProject  = "project"
	TypeUser     = "user"
	TypeContents = "contents"
)

// ProviderChameleon is the provider segment for Chameleon allocations.
const ProviderChameleon = "chameleon"

// ErrMalformedURN is returned when a string has too few colon-delimited segments.
var ErrMalformedURN = errors.New("malformed urn")

// URN is a parsed urn:trovi:<type>:<provider>:<id> identifier.
type URN struct {
	Type     string
	Provider string
	// ID is everything after the provider segment; it may itself contain colons.
	ID string
}

// Parse splits s into at most five segments and returns the type, provider
// and id. The namespace segments are not checked.
func Parse(s string) (URN, error) {
	parts := strings.SplitN(s, ":", 5)
	if len(parts) < 5 {
		return URN{}, fmt.Errorf("%w: %q", ErrMalformedURN, s)
	}
	return URN{Type: parts[2], Provider: parts[3], ID: parts[4]}, nil
}

// String renders the URN back to its canonical form.
func (u URN) String() string {
	return Prefix + u.Type + ":" + u.Provider + ":" + u.ID
}

// ProjectURN identifies a project linked to an artifact.
type ProjectURN struct {
	Provider  string
	ProjectID string
}

// ParseProject parses a linked project URN.
func ParseProject(s string) (ProjectURN, error) {
	u, err := Parse(s)
	if err != nil {
		return ProjectURN{}, err
	}
	return ProjectURN{Provider: u.Provider, ProjectID: u.ID}, nil
}

// String returns urn:trovi:project:<provider>:<project id>.
func (p ProjectURN) String() string {
	return URN{Type: TypeProject, Provider: p.Provider, ID: p.ProjectID}.String()
}

// OwnerURN identifies the owner of an artifact.
type OwnerURN struct {
	Provider string
	ID       string
}

// ParseOwner parses an owner URN.
func ParseOwner(s string) (OwnerURN, error) {
	u, err := Parse(s)
	if err != nil {
		return OwnerURN{}, err
	}
	return OwnerURN{Provider: u.Provider, ID: u.ID}, nil
}

// ContentsURN identifies the storage backend and object holding version contents.
type ContentsURN struct {
	Provider string
	ID       string
}

// ParseContents parses a contents URN.
func ParseContents(s string) (ContentsURN, error) {
	u, err := Parse(s)
	if err != nil {
		return ContentsURN{}, err
	}
	return ContentsURN{Provider: u.Provider, ID: u.ID}, nil
}

// String returns urn:trovi:contents:<provider>:<id>.
func (c ContentsURN) String() string {
	return URN{Type: TypeContents, Provider: c.Provider, ID: c.ID}.String()
}

// ChameleonProject returns the project URN for a Chameleon charge code.
func ChameleonProject(chargeCode string) string {
	return ProjectURN{Provider: ProviderChameleon, ProjectID: chargeCode}.String()
}
