package docstore

import (
	"sort"
	"strings"

	"github.com/citegraph/citecheck/internal/reference"
)

// LookupIndex maps DOIs, significant title words, and publication years to
// document record locations (paths relative to the store root). It is fully
// derivable from the document set: a rebuild discards it and re-derives
// everything.
type LookupIndex struct {
	ByDOI        map[string]string   `json:"byDoi"`
	ByTitleWords map[string][]string `json:"byTitleWords"`
	ByYear       map[string][]string `json:"byYear"`
}

// NewLookupIndex creates an empty index.
func NewLookupIndex() *LookupIndex {
	return &LookupIndex{
		ByDOI:        make(map[string]string),
		ByTitleWords: make(map[string][]string),
		ByYear:       make(map[string][]string),
	}
}

// Add indexes one document record stored at the given location.
func (idx *LookupIndex) Add(doc Document, location string) {
	if doi := reference.NormalizeDOI(doc.DOI); doi != "" {
		idx.ByDOI[doi] = location
	}
	for word := range reference.SignificantWords(doc.Title) {
		idx.ByTitleWords[word] = appendUnique(idx.ByTitleWords[word], location)
	}
	if year := strings.TrimSpace(doc.Year); year != "" {
		idx.ByYear[year] = appendUnique(idx.ByYear[year], location)
	}
}

// normalize sorts every location list so serialized output is deterministic;
// rebuilding from an unchanged document set must produce identical bytes.
func (idx *LookupIndex) normalize() {
	for _, locs := range idx.ByTitleWords {
		sort.Strings(locs)
	}
	for _, locs := range idx.ByYear {
		sort.Strings(locs)
	}
}

func appendUnique(locs []string, loc string) []string {
	for _, l := range locs {
		if l == loc {
			return locs
		}
	}
	return append(locs, loc)
}
