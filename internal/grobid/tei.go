package grobid

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/citegraph/citecheck/internal/citation"
	"github.com/citegraph/citecheck/internal/reference"
)

// surroundingWindow is the number of characters kept on each side of a
// citation marker when no sentence boundary is found nearby.
const surroundingWindow = 200

// node is a minimal mixed-content XML tree. Element names are local names
// only: the extraction service is inconsistent about namespace declarations,
// so matching qualified names would break on harmless variance.
type node struct {
	name string // empty for text nodes
	attr map[string]string
	kids []*node
	text string // set for text nodes only
}

// parseTree builds a node tree from TEI markup. It is deliberately lenient:
// on a syntax error it returns whatever was parsed before the error, so a
// truncated response still yields partial data.
func parseTree(data []byte) *node {
	dec := xml.NewDecoder(bytes.NewReader(data))
	root := &node{name: "#root"}
	stack := []*node{root}

	for {
		tok, err := dec.Token()
		if err == io.EOF || err != nil {
			return root
		}
		top := stack[len(stack)-1]
		switch t := tok.(type) {
		case xml.StartElement:
			n := &node{name: t.Name.Local, attr: make(map[string]string, len(t.Attr))}
			for _, a := range t.Attr {
				// Last declaration wins for same local name (e.g. xml:id vs id);
				// keep the first so xml:id is not clobbered by a later plain id.
				if _, ok := n.attr[a.Name.Local]; !ok {
					n.attr[a.Name.Local] = a.Value
				}
			}
			top.kids = append(top.kids, n)
			stack = append(stack, n)
		case xml.EndElement:
			if len(stack) > 1 {
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			s := string(t)
			if s != "" {
				top.kids = append(top.kids, &node{text: s})
			}
		}
	}
}

// child returns the first direct child element with the given local name.
func (n *node) child(name string) *node {
	for _, k := range n.kids {
		if k.name == name {
			return k
		}
	}
	return nil
}

// find returns the first descendant element with the given local name.
func (n *node) find(name string) *node {
	for _, k := range n.kids {
		if k.name == name {
			return k
		}
		if k.name != "" {
			if found := k.find(name); found != nil {
				return found
			}
		}
	}
	return nil
}

// findAll returns every descendant element with the given local name, in
// document order.
func (n *node) findAll(name string) []*node {
	var out []*node
	for _, k := range n.kids {
		if k.name == name {
			out = append(out, k)
		}
		if k.name != "" {
			out = append(out, k.findAll(name)...)
		}
	}
	return out
}

// allText concatenates the text content of the subtree.
func (n *node) allText() string {
	var b strings.Builder
	n.writeText(&b)
	return strings.TrimSpace(b.String())
}

func (n *node) writeText(b *strings.Builder) {
	if n.name == "" {
		b.WriteString(n.text)
		return
	}
	for _, k := range n.kids {
		k.writeText(b)
	}
}

// ParseTEI converts the extraction service's TEI markup into typed citation
// data. It never fails: missing sections, absent identifiers, and truncated
// markup all degrade to empty fields per the error-handling policy for
// markup parsing.
func ParseTEI(data []byte) *citation.Data {
	out := &citation.Data{}
	if len(data) == 0 {
		return out
	}
	root := parseTree(data)

	if header := root.find("teiHeader"); header != nil {
		parseHeader(header, out)
	}
	out.Refs = parseBibliography(root)
	out.Contexts, out.FullText = parseBody(root)
	return out
}

// parseHeader extracts the citing document's own metadata.
func parseHeader(header *node, out *citation.Data) {
	if stmt := header.find("titleStmt"); stmt != nil {
		if title := stmt.find("title"); title != nil {
			out.Title = title.allText()
		}
	}
	if src := header.find("sourceDesc"); src != nil {
		if bibl := src.find("biblStruct"); bibl != nil {
			for _, a := range bibl.findAll("author") {
				if author := parseAuthor(a); author != (reference.Author{}) {
					out.Authors = append(out.Authors, author)
				}
			}
			out.DOI = findIdno(bibl, "DOI")
			if date := bibl.find("date"); date != nil {
				out.Year = yearOf(date)
			}
		}
	}
}

// parseAuthor reads a persName block, falling back to the element text when
// no structured parts exist.
func parseAuthor(a *node) reference.Author {
	pers := a.find("persName")
	if pers == nil {
		if raw := a.allText(); raw != "" {
			return reference.Author{Raw: raw}
		}
		return reference.Author{}
	}
	var author reference.Author
	for _, fn := range pers.findAll("forename") {
		switch fn.attr["type"] {
		case "middle":
			author.Middle = fn.allText()
		default:
			if author.First == "" {
				author.First = fn.allText()
			}
		}
	}
	if sn := pers.find("surname"); sn != nil {
		author.Last = sn.allText()
	}
	if author == (reference.Author{}) {
		if raw := pers.allText(); raw != "" {
			author.Raw = raw
		}
	}
	return author
}

// findIdno returns the text of the first idno child of the given type
// (case-insensitive), searching the subtree.
func findIdno(n *node, idType string) string {
	for _, idno := range n.findAll("idno") {
		if strings.EqualFold(idno.attr["type"], idType) {
			return idno.allText()
		}
	}
	return ""
}

// yearOf extracts a four-digit year from a date element, preferring the
// machine-readable when attribute.
func yearOf(date *node) string {
	s := date.attr["when"]
	if s == "" {
		s = date.allText()
	}
	for i := 0; i+4 <= len(s); i++ {
		if isDigits(s[i : i+4]) {
			return s[i : i+4]
		}
	}
	return ""
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return len(s) > 0
}

// parseBibliography reads the back-matter reference list. Entries without an
// xml:id get a synthetic positional identifier.
func parseBibliography(root *node) []reference.BibReference {
	list := root.find("listBibl")
	if list == nil {
		return nil
	}

	var refs []reference.BibReference
	for i, bibl := range list.findAll("biblStruct") {
		ref := reference.BibReference{}
		if id := bibl.attr["id"]; id != "" {
			ref.ID = reference.NewRefID(id)
		} else {
			ref.ID = reference.SyntheticRefID(i)
		}

		// The analytic block describes the article itself; the monogr block
		// describes the venue it appeared in.
		analytic := bibl.child("analytic")
		monogr := bibl.child("monogr")

		if analytic != nil {
			if title := analytic.child("title"); title != nil {
				ref.Title = title.allText()
			}
			for _, a := range analytic.findAll("author") {
				if author := parseAuthor(a); author != (reference.Author{}) {
					ref.Authors = append(ref.Authors, author)
				}
			}
			ref.DOI = findIdno(analytic, "DOI")
		}
		if monogr != nil {
			if title := monogr.child("title"); title != nil {
				if ref.Title == "" && title.attr["level"] != "j" {
					ref.Title = title.allText()
				} else {
					ref.Journal = title.allText()
				}
			}
			if ref.Title == "" {
				for _, a := range monogr.findAll("author") {
					if author := parseAuthor(a); author != (reference.Author{}) {
						ref.Authors = append(ref.Authors, author)
					}
				}
			}
			if imprint := monogr.child("imprint"); imprint != nil {
				if date := imprint.child("date"); date != nil {
					ref.Year = yearOf(date)
				}
				for _, scope := range imprint.findAll("biblScope") {
					switch scope.attr["unit"] {
					case "volume":
						ref.Volume = scope.allText()
					case "issue":
						ref.Issue = scope.allText()
					case "page":
						if from := scope.attr["from"]; from != "" {
							ref.Pages = from
							if to := scope.attr["to"]; to != "" {
								ref.Pages = from + "-" + to
							}
						} else {
							ref.Pages = scope.allText()
						}
					}
				}
			}
		}
		if ref.DOI == "" {
			ref.DOI = findIdno(bibl, "DOI")
		}
		if note := bibl.find("note"); note != nil && note.attr["type"] == "raw_reference" {
			ref.RawText = note.allText()
		}
		refs = append(refs, ref)
	}
	return refs
}

// markerSpan records where a citation marker landed in its paragraph text.
type markerSpan struct {
	ctx   citation.Context
	start int
	end   int
}

// parseBody walks body paragraphs, collecting full text and one citation
// context per in-text reference marker, with surrounding evidence text.
func parseBody(root *node) ([]citation.Context, string) {
	body := root.find("body")
	if body == nil {
		return nil, ""
	}

	var contexts []citation.Context
	var fullText strings.Builder
	seq := 0

	for _, p := range body.findAll("p") {
		text, spans := flattenParagraph(p, &seq)
		if text == "" {
			continue
		}
		for _, span := range spans {
			span.ctx.Surrounding = surroundingText(text, span.start, span.end)
			contexts = append(contexts, span.ctx)
		}
		if fullText.Len() > 0 {
			fullText.WriteString("\n\n")
		}
		fullText.WriteString(text)
	}
	return contexts, fullText.String()
}

// flattenParagraph renders a paragraph to plain text while recording the
// span of every bibliography reference marker inside it.
func flattenParagraph(p *node, seq *int) (string, []markerSpan) {
	var b strings.Builder
	var spans []markerSpan

	var walk func(n *node)
	walk = func(n *node) {
		if n.name == "" {
			b.WriteString(collapseSpace(n.text))
			return
		}
		if n.name == "ref" && isBibliographyRef(n) {
			marker := n.allText()
			start := b.Len()
			b.WriteString(marker)
			ctx := citation.Context{
				ID:        fmt.Sprintf("ctx-%d", *seq),
				Marker:    marker,
				TargetIDs: parseTargets(n.attr["target"]),
				Coords:    n.attr["coords"],
				Page:      pageFromCoords(n.attr["coords"]),
			}
			*seq++
			spans = append(spans, markerSpan{ctx: ctx, start: start, end: b.Len()})
			return
		}
		for _, k := range n.kids {
			walk(k)
		}
	}
	for _, k := range p.kids {
		walk(k)
	}
	return strings.TrimSpace(b.String()), spans
}

// isBibliographyRef reports whether a ref element points at the reference
// list rather than a figure, table, or formula.
func isBibliographyRef(n *node) bool {
	switch n.attr["type"] {
	case "bibr", "citation", "":
		return n.attr["target"] != "" || n.attr["type"] != ""
	default:
		return false
	}
}

// parseTargets splits a target attribute like "#b12 #b13" into bare
// identifiers.
func parseTargets(target string) []string {
	if target == "" {
		return nil
	}
	var ids []string
	for _, t := range strings.Fields(target) {
		ids = append(ids, strings.TrimPrefix(t, "#"))
	}
	return ids
}

// pageFromCoords parses the page number from a coords attribute shaped like
// "4,321.01,554.3,9.2,10.1;...". Zero means unknown.
func pageFromCoords(coords string) int {
	if coords == "" {
		return 0
	}
	first := coords
	if idx := strings.IndexByte(first, ';'); idx >= 0 {
		first = first[:idx]
	}
	if idx := strings.IndexByte(first, ','); idx >= 0 {
		first = first[:idx]
	}
	page, err := strconv.Atoi(strings.TrimSpace(first))
	if err != nil {
		return 0
	}
	return page
}

var spaceReplacer = strings.NewReplacer("\n", " ", "\t", " ", "\r", " ")

func collapseSpace(s string) string {
	s = spaceReplacer.Replace(s)
	for strings.Contains(s, "  ") {
		s = strings.ReplaceAll(s, "  ", " ")
	}
	return s
}

// surroundingText returns the sentence enclosing a marker span, or a
// bounded character window when no sentence boundary is found nearby.
func surroundingText(text string, start, end int) string {
	lo := start - surroundingWindow
	if lo < 0 {
		lo = 0
	}
	hi := end + surroundingWindow
	if hi > len(text) {
		hi = len(text)
	}

	// Prefer the enclosing sentence when its boundaries fall inside the
	// window.
	if idx := lastSentenceBreak(text[lo:start]); idx >= 0 {
		lo += idx
	}
	if idx := nextSentenceEnd(text[end:hi]); idx >= 0 {
		hi = end + idx
	}
	return strings.TrimSpace(text[lo:hi])
}

// lastSentenceBreak finds the offset just after the last sentence terminator
// in s, or -1 if none.
func lastSentenceBreak(s string) int {
	for i := len(s) - 1; i > 0; i-- {
		if isSentenceEnd(s[i-1]) && s[i] == ' ' {
			return i + 1
		}
	}
	return -1
}

// nextSentenceEnd finds the offset just past the first sentence terminator
// in s, or -1 if none.
func nextSentenceEnd(s string) int {
	for i := 0; i < len(s); i++ {
		if isSentenceEnd(s[i]) && (i+1 == len(s) || s[i+1] == ' ') {
			return i + 1
		}
	}
	return -1
}

func isSentenceEnd(c byte) bool {
	return c == '.' || c == '!' || c == '?'
}
