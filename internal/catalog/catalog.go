// Package catalog exposes the externally maintained category taxonomy.
//
// The document is re-read on every access so edits to the file take effect
// without a restart. Its content is passed through verbatim and is never used
// to validate the category of an expense.
package catalog

import (
	"context"
	"fmt"
	"os"
)

// ResourceURI names the read-only resource view of the catalog.
const ResourceURI = "expense://categories"

// MimeType of the catalog document.
const MimeType = "application/json"

// Source reads the catalog document as raw text.
type Source interface {
	Read(ctx context.Context) (string, error)
}

// FileSource reads the catalog from a file on disk.
type FileSource struct {
	Path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

// Read returns the current file content.
func (s *FileSource) Read(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return "", fmt.Errorf("read categories file: %w", err)
	}
	return string(data), nil
}
