package rocrate

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"

	"github.com/chameleoncloud/trovi/internal/utils"
)

// ArchiveSuffix is appended to the slugified title to name the archive.
const ArchiveSuffix = ".crate.zip"

var previewTemplate = template.Must(template.New("preview").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
{{if .Generator}}<meta name="generator" content="{{.Generator}}">
{{end}}<title>{{.Title}}</title>
<script type="application/ld+json">{{.Metadata}}</script>
</head>
<body>
<h1>{{.Title}}</h1>
<p>{{.Description}}</p>
</body>
</html>
`))

// Preview renders the human-readable index stored next to the metadata.
func Preview(c *Crate) ([]byte, error) {
	metadata, err := Marshal(c)
	if err != nil {
		return nil, err
	}
	description, _ := c.Root()["description"].(string)

	var buf bytes.Buffer
	err = previewTemplate.Execute(&buf, map[string]any{
		"Title":       c.Title(),
		"Description": description,
		"Metadata":    template.JS(metadata),
		"Generator":   c.Generator,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render crate preview: %w", err)
	}
	return buf.Bytes(), nil
}

// ArchiveName returns the archive file name for a crate.
func ArchiveName(c *Crate) string {
	slug := utils.Slugify(c.Title())
	if slug == "" {
		slug = "artifact"
	}
	return slug + ArchiveSuffix
}

// WriteArchive writes the crate as a zip archive in dir and returns its path.
func WriteArchive(c *Crate, dir string) (string, error) {
	metadata, err := Marshal(c)
	if err != nil {
		return "", err
	}
	preview, err := Preview(c)
	if err != nil {
		return "", err
	}

	data, err := utils.CreateZipFromFiles(map[string][]byte{
		MetadataFile: metadata,
		PreviewFile:  preview,
	})
	if err != nil {
		return "", fmt.Errorf("failed to build crate archive: %w", err)
	}

	if err := utils.EnsureDir(dir); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(dir, ArchiveName(c))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write crate archive: %w", err)
	}
	return path, nil
}

// ReadArchive loads the crate metadata from an archive written by WriteArchive.
func ReadArchive(path string) (*Crate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read crate archive: %w", err)
	}
	if !utils.IsZipFile(data) {
		return nil, fmt.Errorf("%s is not a zip archive", path)
	}
	metadata, err := utils.ReadZipFile(data, MetadataFile)
	if err != nil {
		return nil, err
	}
	return Parse(metadata)
}
