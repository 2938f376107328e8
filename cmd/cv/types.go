package main

import (
	"github.com/citegraph/citecheck/internal/citation"
)

// ExtractOutput is the JSON artifact produced by `cv extract` and consumed
// by `cv verify`.
type ExtractOutput struct {
	Title       string                       `json:"title,omitempty"`
	Authors     []string                     `json:"authors,omitempty"`
	DOI         string                       `json:"doi,omitempty"`
	Year        string                       `json:"year,omitempty"`
	References  []citation.EnhancedReference `json:"references"`
	Diagnostics citation.MatchStats          `json:"diagnostics"`
}
