package citation

import (
	"testing"

	"github.com/citegraph/citecheck/internal/reference"
)

func usage(id, title string, contexts ...Context) Usage {
	return Usage{
		Reference: reference.BibReference{ID: reference.NewRefID(id), Title: title},
		Contexts:  contexts,
	}
}

func TestEnhanceMergesNearDuplicateTitles(t *testing.T) {
	a := usage("b0", "A Graph-Convolutional Neural Network Model",
		Context{Marker: "[1]", Page: 2, Surrounding: "first citation"},
	)
	a.Reference.Journal = "Chem. Sci."
	b := usage("b7", "a graph convolutional neural network model!",
		Context{Marker: "[7]", Page: 5, Surrounding: "second citation"},
		Context{Marker: "[7]", Page: 9, Surrounding: "third citation"},
	)
	b.Reference.DOI = "10.1/xyz"

	out := Enhance([]Usage{a, b})

	if len(out) != 1 {
		t.Fatalf("got %d enhanced references, want 1", len(out))
	}
	merged := out[0]
	if merged.CitationCount != 3 {
		t.Errorf("CitationCount = %d, want 3 (sum of both inputs)", merged.CitationCount)
	}
	if len(merged.Contexts) != 3 {
		t.Fatalf("got %d contexts, want concatenation of 3", len(merged.Contexts))
	}
	// First-seen order, then merged-in.
	if merged.Contexts[0].Surrounding != "first citation" || merged.Contexts[2].Surrounding != "third citation" {
		t.Errorf("context order not preserved: %+v", merged.Contexts)
	}
	// Missing fields backfilled from the duplicate.
	if merged.Reference.DOI != "10.1/xyz" {
		t.Errorf("DOI not backfilled: %q", merged.Reference.DOI)
	}
	if merged.Reference.Journal != "Chem. Sci." {
		t.Errorf("retained journal overwritten: %q", merged.Reference.Journal)
	}
	if merged.PrimaryContext != "first citation" {
		t.Errorf("PrimaryContext = %q, want first context", merged.PrimaryContext)
	}
}

func TestEnhanceShortTitlesNeverMerge(t *testing.T) {
	a := usage("b0", "Nature", Context{Marker: "[1]", Surrounding: "x"})
	b := usage("b1", "Nature", Context{Marker: "[2]", Surrounding: "y"})

	out := Enhance([]Usage{a, b})
	if len(out) != 2 {
		t.Fatalf("short titles must stay distinct, got %d entries", len(out))
	}
}

func TestEnhanceFiltersNoise(t *testing.T) {
	tests := []struct {
		name string
		u    Usage
		kept bool
	}{
		{
			name: "long title kept",
			u:    usage("b0", "A sufficiently descriptive title"),
			kept: true,
		},
		{
			name: "short title with author and DOI kept",
			u: Usage{Reference: reference.BibReference{
				ID:      reference.NewRefID("b1"),
				Title:   "Short",
				Authors: []reference.Author{{Last: "Doe"}},
				DOI:     "10.1/abc",
			}},
			kept: true,
		},
		{
			name: "short uncited entry with no DOI dropped",
			u:    usage("b2", "J. Chem."),
			kept: false,
		},
		{
			name: "short entry kept because it is cited",
			u:    usage("b3", "J. Chem.", Context{Marker: "[3]", Surrounding: "cited here"}),
			kept: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Enhance([]Usage{tt.u})
			if got := len(out) == 1; got != tt.kept {
				t.Errorf("kept = %v, want %v", got, tt.kept)
			}
		})
	}
}

func TestEnhanceUncitedReferenceHasZeroCount(t *testing.T) {
	out := Enhance([]Usage{usage("b0", "An orphan reference in the bibliography")})
	if len(out) != 1 {
		t.Fatalf("got %d entries, want 1", len(out))
	}
	if out[0].CitationCount != 0 || out[0].PrimaryContext != "" {
		t.Errorf("uncited reference should have zero count and no primary context: %+v", out[0])
	}
}
