package rocrate

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RO-Crate 1.1 identifiers.
const (
	ContextURL      = "https://w3id.org/ro/crate/1.1/context"
	SpecURL         = "https://w3id.org/ro/crate/1.1"
	MetadataFile    = "ro-crate-metadata.json"
	PreviewFile     = "ro-crate-preview.html"
	RootID          = "./"
	DefaultLicense  = "https://creativecommons.org/licenses/by/4.0/"
	datePublishedAt = "2006-01-02"
)

// Entity is one node of the JSON-LD graph.
type Entity map[string]any

// ID returns the entity's @id.
func (e Entity) ID() string {
	id, _ := e["@id"].(string)
	return id
}

// Type returns the entity's @type.
func (e Entity) Type() string {
	t, _ := e["@type"].(string)
	return t
}

func ref(id string) map[string]any {
	return map[string]any{"@id": id}
}

// Crate is an RO-Crate metadata document.
type Crate struct {
	Context string   `json:"@context"`
	Graph   []Entity `json:"@graph"`

	// Generator names the tool that wrote the crate. It only appears in the preview.
	Generator string `json:"-"`
}

// Entity returns the graph node with the given id, or nil.
func (c *Crate) Entity(id string) Entity {
	for _, e := range c.Graph {
		if e.ID() == id {
			return e
		}
	}
	return nil
}

// Root returns the root dataset.
func (c *Crate) Root() Entity {
	return c.Entity(RootID)
}

// Title returns the root dataset name.
func (c *Crate) Title() string {
	name, _ := c.Root()["name"].(string)
	return name
}

// Options describe the artifact a crate is generated for.
type Options struct {
	Title         string
	Description   string
	Keywords      []string
	Authors       []Author
	Environment   string
	License       string
	DatePublished time.Time
	Generator     string

	// NewID generates entity ids; defaults to random UUIDs.
	NewID func() string
}

// Generate builds the crate graph for opts.
func Generate(opts Options) (*Crate, error) {
	if opts.Title == "" {
		return nil, errors.New("crate title is required")
	}
	if len(opts.Authors) == 0 {
		return nil, errors.New("at least one author is required")
	}

	envKey := opts.Environment
	if envKey == "" {
		envKey = DefaultEnvironment
	}
	env, err := LookupEnvironment(envKey)
	if err != nil {
		return nil, err
	}

	newID := opts.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	license := opts.License
	if license == "" {
		license = DefaultLicense
	}
	published := opts.DatePublished
	if published.IsZero() {
		published = time.Now()
	}
	keywords := opts.Keywords
	if keywords == nil {
		keywords = []string{}
	}

	descriptor := Entity{
		"@id":        MetadataFile,
		"@type":      "CreativeWork",
		"conformsTo": ref(SpecURL),
		"about":      ref(RootID),
	}
	root := Entity{
		"@id":           RootID,
		"@type":         "Dataset",
		"name":          opts.Title,
		"description":   opts.Description,
		"keywords":      keywords,
		"datePublished": published.UTC().Format(datePublishedAt),
		"license":       ref(license),
		"mentions":      ref(env.URL),
	}

	graph := []Entity{descriptor, root}

	// Authors sharing an institution point at the same organization.
	orgs := map[string]string{}
	var authorRefs []any
	var people, organizations []Entity
	for _, a := range opts.Authors {
		orgID, ok := orgs[a.Institution]
		if !ok {
			orgID = "#" + newID()
			orgs[a.Institution] = orgID
			organizations = append(organizations, Entity{
				"@id":   orgID,
				"@type": "Organization",
				"name":  a.Institution,
			})
		}

		personID := "#" + newID()
		people = append(people, Entity{
			"@id":         personID,
			"@type":       "Person",
			"name":        a.Name,
			"affiliation": ref(orgID),
		})
		authorRefs = append(authorRefs, ref(personID))
	}
	root["author"] = authorRefs

	graph = append(graph, people...)
	graph = append(graph, organizations...)
	graph = append(graph, Entity{
		"@id":   env.URL,
		"@type": "SoftwareApplication",
		"name":  env.Name,
		"url":   env.URL,
	}, Entity{
		"@id":   license,
		"@type": "CreativeWork",
		"name":  license,
	})

	return &Crate{Context: ContextURL, Graph: graph, Generator: opts.Generator}, nil
}

// Marshal encodes the crate as indented JSON-LD.
func Marshal(c *Crate) ([]byte, error) {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal crate: %w", err)
	}
	return data, nil
}

// Parse decodes a crate metadata document.
func Parse(data []byte) (*Crate, error) {
	var c Crate
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse crate: %w", err)
	}
	if c.Root() == nil {
		return nil, errors.New("crate has no root dataset")
	}
	return &c, nil
}
