package trovi

// Artifact is an artifact as returned by the service. The schema is owned by
// the server, so it is kept as an open JSON object; accessors read the keys
// the CLI displays.
type Artifact map[string]any

// Title returns the artifact title.
func (a Artifact) Title() string { return a.str("title") }

// UUID returns the artifact id.
func (a Artifact) UUID() string { return a.str("uuid") }

// CreatedAt returns the creation timestamp as sent by the server.
func (a Artifact) CreatedAt() string { return a.str("created_at") }

// OwnerURN returns the owner URN.
func (a Artifact) OwnerURN() string { return a.str("owner_urn") }

// Visibility returns "public" or "private".
func (a Artifact) Visibility() string { return a.str("visibility") }

// Tags returns the artifact tags.
func (a Artifact) Tags() []string { return a.strings("tags") }

// LinkedProjects returns the linked project URNs.
func (a Artifact) LinkedProjects() []string { return a.strings("linked_projects") }

// Versions returns the artifact versions.
func (a Artifact) Versions() []Version {
	raw, _ := a["versions"].([]any)
	versions := make([]Version, 0, len(raw))
	for _, v := range raw {
		if m, ok := v.(map[string]any); ok {
			versions = append(versions, Version(m))
		}
	}
	return versions
}

func (a Artifact) str(key string) string {
	s, _ := a[key].(string)
	return s
}

func (a Artifact) strings(key string) []string {
	switch v := a[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// Version is an artifact version as returned by the service.
type Version map[string]any

// Slug returns the version slug used in version URLs.
func (v Version) Slug() string {
	s, _ := v["slug"].(string)
	return s
}

// ContentsURN returns the URN of the version contents.
func (v Version) ContentsURN() string {
	contents, _ := v["contents"].(map[string]any)
	s, _ := contents["urn"].(string)
	return s
}

// Link is a labelled URN attached to a version.
type Link struct {
	Label string `json:"label"`
	URN   string `json:"urn"`
}
