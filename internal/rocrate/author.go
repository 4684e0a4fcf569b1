package rocrate

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedAuthor is returned when an author is not given as name:institution.
var ErrMalformedAuthor = errors.New("author must be given as name:institution")

// Author is a crate author and their affiliation.
type Author struct {
	Name        string
	Institution string
}

// ParseAuthor parses "name:institution". Both parts must be non-empty; the
// institution may itself contain colons.
func ParseAuthor(s string) (Author, error) {
	name, institution, ok := strings.Cut(s, ":")
	name = strings.TrimSpace(name)
	institution = strings.TrimSpace(institution)
	if !ok || name == "" || institution == "" {
		return Author{}, fmt.Errorf("%w: %q", ErrMalformedAuthor, s)
	}
	return Author{Name: name, Institution: institution}, nil
}

// ParseAuthors parses every entry, stopping at the first malformed one.
func ParseAuthors(values []string) ([]Author, error) {
	authors := make([]Author, 0, len(values))
	for _, v := range values {
		a, err := ParseAuthor(v)
		if err != nil {
			return nil, err
		}
		authors = append(authors, a)
	}
	return authors, nil
}
