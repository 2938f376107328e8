// Package reference defines the core domain types for bibliography entries.
package reference

import (
	"fmt"
	"strings"
)

// Author represents one author of a cited work. When the extraction service
// provides structured name parts, First/Middle/Last are set; when only a
// display string is available, Raw holds it and the parts are empty.
type Author struct {
	First  string `json:"first,omitempty"`
	Middle string `json:"middle,omitempty"`
	Last   string `json:"last,omitempty"`
	Raw    string `json:"raw,omitempty"`
}

// DisplayName returns the author's display string.
func (a Author) DisplayName() string {
	if a.Raw != "" {
		return a.Raw
	}
	parts := make([]string, 0, 3)
	for _, p := range []string{a.First, a.Middle, a.Last} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// Surname returns the author's family name. For unstructured names it uses
// the token before a comma if present, otherwise the last whitespace-delimited
// token.
func (a Author) Surname() string {
	if a.Last != "" {
		return a.Last
	}
	name := strings.TrimSpace(a.Raw)
	if name == "" {
		return ""
	}
	if idx := strings.Index(name, ","); idx > 0 {
		return strings.TrimSpace(name[:idx])
	}
	fields := strings.Fields(name)
	return fields[len(fields)-1]
}

// RefID identifies a bibliography entry within one document. The extraction
// service usually assigns identifiers; when it omits one, a synthetic ID is
// derived from the entry's position so downstream code can tell the two
// apart.
type RefID struct {
	Value     string `json:"value"`
	Synthetic bool   `json:"synthetic,omitempty"`
}

// NewRefID wraps an identifier assigned by the extraction service.
func NewRefID(value string) RefID {
	return RefID{Value: value}
}

// SyntheticRefID creates a run-local identifier from a positional index.
func SyntheticRefID(position int) RefID {
	return RefID{Value: fmt.Sprintf("ref-%d", position), Synthetic: true}
}

func (id RefID) String() string {
	return id.Value
}

// IsZero reports whether the identifier is unset.
func (id RefID) IsZero() bool {
	return id.Value == ""
}

// BibReference represents one bibliography entry extracted from a document.
// Any field other than ID may be empty: low-quality scans routinely produce
// entries with no title or authors.
type BibReference struct {
	ID      RefID    `json:"id"`
	Title   string   `json:"title,omitempty"`
	Authors []Author `json:"authors,omitempty"`
	Year    string   `json:"year,omitempty"`
	Journal string   `json:"journal,omitempty"`
	Volume  string   `json:"volume,omitempty"`
	Issue   string   `json:"issue,omitempty"`
	Pages   string   `json:"pages,omitempty"`
	DOI     string   `json:"doi,omitempty"`
	RawText string   `json:"raw_text,omitempty"`
}

// AuthorNames returns display names for all authors.
func (r BibReference) AuthorNames() []string {
	if len(r.Authors) == 0 {
		return nil
	}
	names := make([]string, len(r.Authors))
	for i, a := range r.Authors {
		names[i] = a.DisplayName()
	}
	return names
}
