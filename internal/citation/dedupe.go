package citation

import (
	"github.com/citegraph/citecheck/internal/reference"
)

// ContextDetail is the citation evidence kept on an enhanced reference:
// the literal marker, the page it appeared on, and the surrounding text.
type ContextDetail struct {
	Marker      string `json:"marker"`
	Page        int    `json:"page,omitempty"`
	Surrounding string `json:"surrounding,omitempty"`
}

// EnhancedReference is one real-world work after filtering and
// deduplication: reference metadata plus every citation of it across all
// merged bibliography entries. This is the unit the verification engine
// consumes.
type EnhancedReference struct {
	Reference     reference.BibReference `json:"reference"`
	CitationCount int                    `json:"citation_count"`
	Contexts      []ContextDetail        `json:"contexts,omitempty"`

	// PrimaryContext is the first context's surrounding text, kept as a
	// convenience for display and as the default verification evidence.
	PrimaryContext string `json:"primary_context,omitempty"`
}

// keep decides whether a usage is worth verifying at all. Bibliography
// parsing produces noise entries (a journal name misread as a reference);
// those have short titles, no DOI, and are never cited.
func keep(u Usage) bool {
	if len(u.Reference.Title) > reference.MinTrustedTitleLength {
		return true
	}
	if len(u.Reference.Authors) > 0 && u.Reference.DOI != "" {
		return true
	}
	return len(u.Contexts) > 0
}

// Enhance filters noise entries and collapses bibliography entries that are
// the same work cited through slightly different text. Titles normalizing to
// the same string are merged when long enough to trust; short titles are
// always kept distinct. On merge, citation contexts are concatenated in
// first-seen order and missing DOI/journal fields are backfilled from the
// duplicate.
func Enhance(usages []Usage) []EnhancedReference {
	var out []EnhancedReference
	byTitle := make(map[string]int)

	for _, u := range usages {
		if !keep(u) {
			continue
		}

		details := make([]ContextDetail, 0, len(u.Contexts))
		for _, c := range u.Contexts {
			details = append(details, ContextDetail{
				Marker:      c.Marker,
				Page:        c.Page,
				Surrounding: c.Surrounding,
			})
		}

		norm := reference.NormalizeTitle(u.Reference.Title)
		if len(norm) > reference.MinTrustedTitleLength {
			if idx, ok := byTitle[norm]; ok {
				merged := &out[idx]
				merged.CitationCount += len(details)
				merged.Contexts = append(merged.Contexts, details...)
				if merged.Reference.DOI == "" {
					merged.Reference.DOI = u.Reference.DOI
				}
				if merged.Reference.Journal == "" {
					merged.Reference.Journal = u.Reference.Journal
				}
				if merged.PrimaryContext == "" && len(merged.Contexts) > 0 {
					merged.PrimaryContext = merged.Contexts[0].Surrounding
				}
				continue
			}
			byTitle[norm] = len(out)
		}

		enhanced := EnhancedReference{
			Reference:     u.Reference,
			CitationCount: len(details),
			Contexts:      details,
		}
		if len(details) > 0 {
			enhanced.PrimaryContext = details[0].Surrounding
		}
		out = append(out, enhanced)
	}

	return out
}
