// Package citation links in-text citation markers to bibliography entries
// and prepares deduplicated reference groups for verification.
package citation

import (
	"github.com/citegraph/citecheck/internal/reference"
)

// Context represents one in-text citation occurrence. A single marker may
// target several bibliography entries ("[3,7]"), so TargetIDs is a list.
type Context struct {
	ID          string   `json:"id"`
	Marker      string   `json:"marker"`
	Page        int      `json:"page,omitempty"`
	Coords      string   `json:"coords,omitempty"`
	TargetIDs   []string `json:"target_ids,omitempty"`
	Surrounding string   `json:"surrounding,omitempty"`
}

// Data bundles everything extracted from one document in a single run.
// It is transient: nothing in it is persisted independently.
type Data struct {
	Title    string                   `json:"title,omitempty"`
	Authors  []reference.Author       `json:"authors,omitempty"`
	DOI      string                   `json:"doi,omitempty"`
	Year     string                   `json:"year,omitempty"`
	Refs     []reference.BibReference `json:"references"`
	Contexts []Context                `json:"contexts"`
	FullText string                   `json:"full_text,omitempty"`
}

// Usage pairs one bibliography entry with every context that cites it, in
// document order. References never cited in text still get a Usage with an
// empty context list.
type Usage struct {
	Reference reference.BibReference `json:"reference"`
	Contexts  []Context              `json:"contexts"`
}

// CitationCount returns the number of contexts citing this reference.
func (u Usage) CitationCount() int {
	return len(u.Contexts)
}
