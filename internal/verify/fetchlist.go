package verify

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/citegraph/citecheck/internal/reference"
)

// FetchEntry is one reference queued for later document acquisition.
type FetchEntry struct {
	Title   string `json:"title"`
	DOI     string `json:"doi,omitempty"`
	Authors string `json:"authors,omitempty"`
	Year    string `json:"year,omitempty"`
	AddedAt string `json:"addedAt"`
}

// FetchList persists references the operator wants to obtain documents for.
// Entries are deduplicated by normalized title.
type FetchList struct {
	path    string
	entries []FetchEntry
}

// LoadFetchList reads the list at path, returning an empty list when the
// file does not exist yet.
func LoadFetchList(path string) (*FetchList, error) {
	fl := &FetchList{path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fl, nil
		}
		return nil, fmt.Errorf("reading fetch list: %w", err)
	}
	if err := json.Unmarshal(data, &fl.entries); err != nil {
		return nil, fmt.Errorf("parsing fetch list %s: %w", path, err)
	}
	return fl, nil
}

// Entries returns the queued references.
func (fl *FetchList) Entries() []FetchEntry {
	return fl.entries
}

// Add queues a reference unless an entry with the same normalized title is
// already present. Reports whether the entry was added.
func (fl *FetchList) Add(ref reference.BibReference) bool {
	norm := reference.NormalizeTitle(ref.Title)
	for _, e := range fl.entries {
		if reference.NormalizeTitle(e.Title) == norm {
			return false
		}
	}
	fl.entries = append(fl.entries, FetchEntry{
		Title:   ref.Title,
		DOI:     ref.DOI,
		Authors: strings.Join(ref.AuthorNames(), "; "),
		Year:    ref.Year,
		AddedAt: time.Now().UTC().Format(time.RFC3339),
	})
	return true
}

// Save writes the list atomically: temp file first, then rename.
func (fl *FetchList) Save() error {
	if err := os.MkdirAll(filepath.Dir(fl.path), 0755); err != nil {
		return fmt.Errorf("creating fetch list directory: %w", err)
	}
	data, err := json.MarshalIndent(fl.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding fetch list: %w", err)
	}
	tempPath := fl.path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("writing temp fetch list: %w", err)
	}
	if err := os.Rename(tempPath, fl.path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("renaming temp fetch list: %w", err)
	}
	return nil
}
