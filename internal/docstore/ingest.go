package docstore

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/citegraph/citecheck/internal/reference"
)

// doiPattern matches 10.XXXX/... identifiers in page text.
var doiPattern = regexp.MustCompile(`10\.\d{4,9}/[^\s<>"{}|\\^~\[\]` + "`" + `]+`)

// doiSearchPages bounds the DOI scan; publishers put the DOI on the first
// page or two.
const doiSearchPages = 3

// IngestPDF builds a document record from a local PDF: full text as
// content, a best-effort title from the first page when none is supplied,
// and a DOI scanned from the leading pages. The caller decides the
// identifier; pass "" to derive a slug from the title.
func IngestPDF(pdfPath string, doc Document) (Document, error) {
	f, r, err := pdf.Open(pdfPath)
	if err != nil {
		return doc, fmt.Errorf("opening pdf: %w", err)
	}
	defer f.Close()

	var content strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		content.WriteString(text)
		content.WriteString("\n")

		if doc.DOI == "" && i <= doiSearchPages {
			doc.DOI = findDOI(text)
		}
	}
	doc.Content = content.String()

	if doc.Title == "" {
		doc.Title = guessTitle(doc.Content)
	}
	if doc.ID == "" {
		doc.ID = reference.Slug(doc.Title)
	}
	if doc.FilePath == "" {
		doc.FilePath = pdfPath
	}
	return doc, nil
}

// findDOI returns the first plausible DOI in text.
func findDOI(text string) string {
	for _, match := range doiPattern.FindAllString(text, -1) {
		match = strings.TrimRight(match, ".,;:)")
		if isValidDOI(match) {
			return match
		}
	}
	return ""
}

func isValidDOI(doi string) bool {
	if len(doi) < 10 || !strings.HasPrefix(doi, "10.") {
		return false
	}
	slash := strings.Index(doi, "/")
	return slash > 0 && slash < len(doi)-1
}

// guessTitle picks the first substantial line of the document text. A
// heuristic only; callers should pass an explicit title when they have one.
func guessTitle(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if len(line) > 20 && !isHeaderLine(line) {
			return line
		}
	}
	return ""
}

// isHeaderLine filters running headers and imprint lines that beat the real
// title to the top of the page.
func isHeaderLine(line string) bool {
	lower := strings.ToLower(line)
	switch {
	case strings.Contains(lower, "journal"):
		return true
	case strings.Contains(lower, "volume") && strings.Contains(lower, "issue"):
		return true
	case strings.Contains(lower, "copyright"):
		return true
	case strings.Contains(lower, "doi.org"):
		return true
	}
	return false
}
