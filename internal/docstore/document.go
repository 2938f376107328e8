// Package docstore persists known source documents as individual JSON
// records with a derived multi-key lookup index, and answers "does the store
// contain a document matching this reference?".
package docstore

import (
	"errors"

	"github.com/citegraph/citecheck/internal/reference"
)

// Document is one known source work usable as verification evidence. The
// document files are authoritative; every index is derived from them.
type Document struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Authors  []string `json:"authors"`
	DOI      string   `json:"doi,omitempty"`
	FilePath string   `json:"filePath"`
	Content  string   `json:"content"`
	Year     string   `json:"year,omitempty"`
	Journal  string   `json:"journal,omitempty"`
}

// Errors returned by store operations.
var (
	// ErrNotFound means no stored document matched; a normal outcome, not a
	// failure.
	ErrNotFound = errors.New("no matching document in store")

	// ErrIndexNotFound means the derived index file is absent and lookups
	// fell back to scanning.
	ErrIndexNotFound = errors.New("lookup index not found")

	ErrEmptyID    = errors.New("document id is required")
	ErrEmptyTitle = errors.New("document title is required")
)

// Validate checks the fields required before persisting.
func (d *Document) Validate() error {
	if d.ID == "" {
		return ErrEmptyID
	}
	if d.Title == "" {
		return ErrEmptyTitle
	}
	return nil
}

// authorSurname applies the surname heuristic to a display name: the token
// before a comma if present, otherwise the last whitespace-delimited token.
func authorSurname(name string) string {
	return reference.Author{Raw: name}.Surname()
}
