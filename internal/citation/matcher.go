package citation

import (
	"github.com/citegraph/citecheck/internal/reference"
)

// MatchStats records diagnostics from a matching pass. Nothing here is an
// error: orphans are a normal property of noisy extraction output.
type MatchStats struct {
	// DuplicateRefIDs lists identifiers that appeared on more than one
	// bibliography entry. The later entry wins, which is an extraction
	// defect we surface rather than hide.
	DuplicateRefIDs []string `json:"duplicate_ref_ids,omitempty"`

	// OrphanedContexts lists context IDs whose target identifiers resolved
	// to no bibliography entry at all.
	OrphanedContexts []string `json:"orphaned_contexts,omitempty"`

	// OrphanReferences counts bibliography entries never cited in text.
	OrphanReferences int `json:"orphan_references"`
}

// BuildUsages links citation contexts to bibliography entries by target
// identifier and returns one Usage per reference, in bibliography order.
//
// A context targeting N resolvable identifiers contributes to all N usages;
// the same surrounding text is evidence for each targeted work. Contexts
// whose targets all fail to resolve are reported in stats, never dropped
// silently.
func BuildUsages(refs []reference.BibReference, contexts []Context) ([]Usage, MatchStats) {
	var stats MatchStats

	// Identifiers must be unique within one bibliography; when the
	// extraction service violates that, last write wins and we record it.
	byID := make(map[string]int, len(refs))
	usages := make([]Usage, len(refs))
	for i, ref := range refs {
		if ref.ID.IsZero() {
			ref.ID = reference.SyntheticRefID(i)
			refs[i] = ref
		}
		if _, seen := byID[ref.ID.Value]; seen {
			stats.DuplicateRefIDs = append(stats.DuplicateRefIDs, ref.ID.Value)
		}
		byID[ref.ID.Value] = i
		usages[i] = Usage{Reference: ref}
	}

	for _, ctx := range contexts {
		resolved := false
		for _, target := range ctx.TargetIDs {
			idx, ok := byID[target]
			if !ok {
				continue
			}
			usages[idx].Contexts = append(usages[idx].Contexts, ctx)
			resolved = true
		}
		if !resolved && len(ctx.TargetIDs) > 0 {
			stats.OrphanedContexts = append(stats.OrphanedContexts, ctx.ID)
		}
	}

	for _, u := range usages {
		if len(u.Contexts) == 0 {
			stats.OrphanReferences++
		}
	}

	return usages, stats
}
