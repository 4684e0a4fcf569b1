package utils

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"sort"
)

// ZipMagicBytes are the first 4 bytes of a ZIP file
var ZipMagicBytes = []byte{0x50, 0x4B, 0x03, 0x04}

// IsZipFile checks if data starts with ZIP magic bytes
func IsZipFile(data []byte) bool {
	if len(data) < 4 {
		return false
	}
	return bytes.Equal(data[:4], ZipMagicBytes)
}

// CreateZipFromFiles creates a zip archive from a filename to content map.
// Entries are written in lexical order so the output is reproducible.
func CreateZipFromFiles(files map[string][]byte) ([]byte, error) {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	buf := new(bytes.Buffer)
	writer := zip.NewWriter(buf)

	for _, name := range names {
		w, err := writer.Create(name)
		if err != nil {
			return nil, fmt.Errorf("failed to create file in zip: %w", err)
		}
		if _, err := w.Write(files[name]); err != nil {
			return nil, fmt.Errorf("failed to write %s to zip: %w", name, err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close zip writer: %w", err)
	}

	return buf.Bytes(), nil
}

// ReadZipFile reads a specific file from a zip archive without extracting
func ReadZipFile(zipData []byte, filename string) ([]byte, error) {
	if !IsZipFile(zipData) {
		return nil, fmt.Errorf("invalid zip file: missing magic bytes")
	}

	reader, err := zip.NewReader(bytes.NewReader(zipData), int64(len(zipData)))
	if err != nil {
		return nil, fmt.Errorf("failed to read zip: %w", err)
	}

	for _, file := range reader.File {
		if file.Name != filename {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open file in zip: %w", err)
		}
		defer rc.Close()

		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("failed to read file in zip: %w", err)
		}
		return data, nil
	}

	return nil, fmt.Errorf("file not found in zip: %s", filename)
}

// ListZipFiles returns a list of all files in a zip archive
func ListZipFiles(zipData []byte) ([]string, error) {
	if !IsZipFile(zipData) {
		return nil, fmt.Errorf("invalid zip file: missing magic bytes")
	}

	reader, err := zip.NewReader(bytes.NewReader(zipData), int64(len(zipData)))
	if err != nil {
		return nil, fmt.Errorf("failed to read zip: %w", err)
	}

	var files []string
	for _, file := range reader.File {
		files = append(files, file.Name)
	}

	return files, nil
}
