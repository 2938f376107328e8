package verify

import (
	"fmt"
	"strings"

	"github.com/citegraph/citecheck/internal/citation"
	"github.com/citegraph/citecheck/internal/docstore"
)

// DefaultMaxEvidenceChars bounds how much document content is sent to the
// oracle per verification call.
const DefaultMaxEvidenceChars = 24000

const systemPrompt = `You verify whether a citing sentence accurately represents the content of the document it cites. You are given the cited document's metadata and text, followed by the citing sentence. Judge only whether the claim attributed to the document is supported by it.

Respond with JSON only, in exactly this shape:
{"verified": true, "confidenceScore": 0.9, "matchLocation": "exact supporting excerpt from the document, or empty", "explanation": "one or two sentences"}`

// BuildPrompt renders the evidence for one verification call. Content beyond
// maxChars is cut and the cut is flagged inside the prompt so the oracle
// knows it saw a partial document.
func BuildPrompt(doc *docstore.Document, ref citation.EnhancedReference, maxChars int) (system, user string) {
	if maxChars <= 0 {
		maxChars = DefaultMaxEvidenceChars
	}

	var b strings.Builder
	b.WriteString("Cited document:\n")
	fmt.Fprintf(&b, "Title: %s\n", doc.Title)
	if len(doc.Authors) > 0 {
		fmt.Fprintf(&b, "Authors: %s\n", strings.Join(doc.Authors, "; "))
	}
	if doc.DOI != "" {
		fmt.Fprintf(&b, "DOI: %s\n", doc.DOI)
	}
	if doc.Year != "" {
		fmt.Fprintf(&b, "Year: %s\n", doc.Year)
	}
	if doc.Journal != "" {
		fmt.Fprintf(&b, "Journal: %s\n", doc.Journal)
	}

	content := doc.Content
	truncated := false
	if len(content) > maxChars {
		content = content[:maxChars]
		truncated = true
	}
	b.WriteString("\nDocument text")
	if truncated {
		fmt.Fprintf(&b, " (truncated to the first %d characters)", maxChars)
	}
	b.WriteString(":\n")
	b.WriteString(content)

	b.WriteString("\n\nCiting text to verify:\n")
	b.WriteString(citingEvidence(ref))

	return systemPrompt, b.String()
}

// citingEvidence picks the citation text the verdict is about: the primary
// context's surrounding sentence when one exists, the reference's raw
// bibliography text otherwise.
func citingEvidence(ref citation.EnhancedReference) string {
	if s := strings.TrimSpace(ref.PrimaryContext); s != "" {
		return s
	}
	if s := strings.TrimSpace(ref.Reference.RawText); s != "" {
		return s
	}
	return ref.Reference.Title
}
