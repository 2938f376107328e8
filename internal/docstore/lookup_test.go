package docstore

import (
	"errors"
	"os"
	"testing"

	"github.com/citegraph/citecheck/internal/reference"
)

func TestLookupByDOICaseInsensitive(t *testing.T) {
	s := testStore(t)
	mustAdd(t, s, Document{ID: "foo", Title: "Foo", DOI: "10.1/x"})

	doc, err := s.FindForReference(reference.BibReference{DOI: " 10.1/X "})
	if err != nil {
		t.Fatalf("FindForReference: %v", err)
	}
	if doc.ID != "foo" {
		t.Errorf("matched %q, want foo", doc.ID)
	}
}

func TestLookupDOIPrecedesTitle(t *testing.T) {
	s := testStore(t)
	mustAdd(t, s, Document{ID: "a", Title: "Completely unrelated topic entirely", DOI: "10.1/a"})
	mustAdd(t, s, Document{ID: "b", Title: "Graph convolutional networks for reactivity prediction"})

	// Reference carries A's DOI but a title fuzzily matching B.
	doc, err := s.FindForReference(reference.BibReference{
		DOI:   "10.1/A",
		Title: "graph convolutional networks reactivity prediction",
	})
	if err != nil {
		t.Fatalf("FindForReference: %v", err)
	}
	if doc.ID != "a" {
		t.Errorf("matched %q, want a (DOI precedence over fuzzy title)", doc.ID)
	}
}

func TestLookupDOIScanWhenIndexMissing(t *testing.T) {
	s := testStore(t)
	mustAdd(t, s, Document{ID: "foo", Title: "Foo bar baz quux title", DOI: "10.1/x"})
	if err := os.Remove(s.IndexPath()); err != nil {
		t.Fatal(err)
	}

	doc, err := s.FindForReference(reference.BibReference{DOI: "10.1/X"})
	if err != nil {
		t.Fatalf("FindForReference without index: %v", err)
	}
	if doc.ID != "foo" {
		t.Errorf("matched %q, want foo via full scan", doc.ID)
	}
}

func TestLookupExactTitle(t *testing.T) {
	s := testStore(t)
	mustAdd(t, s, Document{ID: "x", Title: "Attention Is All You Need"})

	doc, err := s.FindForReference(reference.BibReference{Title: "attention is all you need"})
	if err != nil {
		t.Fatalf("FindForReference: %v", err)
	}
	if doc.ID != "x" {
		t.Errorf("matched %q, want x", doc.ID)
	}
}

func TestLookupFuzzyTitle(t *testing.T) {
	s := testStore(t)
	mustAdd(t, s, Document{ID: "coley", Title: "A graph-convolutional neural network model for chemical reactivity"})

	doc, err := s.FindForReference(reference.BibReference{
		Title: "graph convolutional neural network model chemical reactivity",
	})
	if err != nil {
		t.Fatalf("FindForReference: %v", err)
	}
	if doc.ID != "coley" {
		t.Errorf("matched %q, want coley", doc.ID)
	}
}

func TestLookupAuthorYear(t *testing.T) {
	s := testStore(t)
	mustAdd(t, s, Document{
		ID:      "smith-2020",
		Title:   "Some work with a mangled title in the bibliography",
		Authors: []string{"Jane Q Smith", "Bob Jones"},
		Year:    "2020",
	})

	doc, err := s.FindForReference(reference.BibReference{
		Title:   "completely garbled ocr text here",
		Authors: []reference.Author{{Raw: "Smith, Jane"}},
		Year:    "2020",
	})
	if err != nil {
		t.Fatalf("FindForReference: %v", err)
	}
	if doc.ID != "smith-2020" {
		t.Errorf("matched %q, want smith-2020", doc.ID)
	}

	// Same author, wrong year: no match.
	_, err = s.FindForReference(reference.BibReference{
		Title:   "completely garbled ocr text here",
		Authors: []reference.Author{{Raw: "Smith, Jane"}},
		Year:    "2021",
	})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("want ErrNotFound for year mismatch, got %v", err)
	}
}

func TestLookupNotFound(t *testing.T) {
	s := testStore(t)
	mustAdd(t, s, Document{ID: "x", Title: "Something in the store already"})

	_, err := s.FindForReference(reference.BibReference{Title: "nothing matches this query title"})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("want ErrNotFound, got %v", err)
	}
}

func TestFindByTitle(t *testing.T) {
	s := testStore(t)
	mustAdd(t, s, Document{ID: "a", Title: "Neural message passing for quantum chemistry"})
	mustAdd(t, s, Document{ID: "b", Title: "Message passing networks in quantum simulations"})

	exact, err := s.FindByTitle("neural message passing for quantum chemistry")
	if err != nil {
		t.Fatal(err)
	}
	if len(exact) != 1 || exact[0].ID != "a" {
		t.Errorf("exact match = %+v, want only a", exact)
	}

	// Looser 0.5 threshold applies for title-only searches.
	fuzzy, err := s.FindByTitle("message passing quantum")
	if err != nil {
		t.Fatal(err)
	}
	if len(fuzzy) != 2 {
		t.Errorf("fuzzy match found %d documents, want 2", len(fuzzy))
	}

	none, err := s.FindByTitle("   ")
	if err != nil || none != nil {
		t.Errorf("blank title should return nothing, got %+v, %v", none, err)
	}
}
