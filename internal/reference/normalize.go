package reference

import (
	"regexp"
	"strings"
)

// MinTrustedTitleLength is the normalized-title length below which titles are
// considered too short to identify a work on their own. Shorter titles are
// never merged during deduplication and never matched by title alone.
const MinTrustedTitleLength = 10

// SignificantWordLength is the minimum length for a title word to count as
// significant. Shorter words (of, the, and, ...) carry no identity.
const SignificantWordLength = 3

var nonWordRe = regexp.MustCompile(`[^\w\s]`)

// NormalizeTitle lower-cases a title, strips non-word characters, and
// collapses whitespace. Two references whose normalized titles are equal
// (and long enough to trust) describe the same work.
func NormalizeTitle(title string) string {
	s := strings.ToLower(title)
	s = nonWordRe.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// AggressiveNormalize reduces a title to lower-case alphanumerics only,
// dropping whitespace and underscores entirely. Used for the strictest form
// of title equality.
func AggressiveNormalize(title string) string {
	var b strings.Builder
	b.Grow(len(title))
	for _, r := range strings.ToLower(title) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeDOI lower-cases and trims a DOI for comparison.
func NormalizeDOI(doi string) string {
	return strings.ToLower(strings.TrimSpace(doi))
}

// SignificantWords returns the set of significant words (longer than
// SignificantWordLength) in a normalized title.
func SignificantWords(title string) map[string]bool {
	words := make(map[string]bool)
	for _, w := range strings.Fields(NormalizeTitle(title)) {
		if len(w) > SignificantWordLength {
			words[w] = true
		}
	}
	return words
}

// WordOverlap returns the fraction of significant words shared by two titles,
// relative to the smaller word set. Returns 0 when either set is empty.
func WordOverlap(a, b string) float64 {
	wa := SignificantWords(a)
	wb := SignificantWords(b)
	if len(wa) == 0 || len(wb) == 0 {
		return 0
	}
	smaller := wa
	larger := wb
	if len(wb) < len(wa) {
		smaller, larger = wb, wa
	}
	shared := 0
	for w := range smaller {
		if larger[w] {
			shared++
		}
	}
	return float64(shared) / float64(len(smaller))
}

// StrictOverlapThreshold is the word-overlap fraction required to accept a
// title match when other reference fields are available to corroborate.
const StrictOverlapThreshold = 0.7

// LooseOverlapThreshold is the word-overlap fraction used for best-effort
// title-only searches where no other fields exist.
const LooseOverlapThreshold = 0.5

// SimilarTitles reports whether two titles describe the same work:
// aggressively normalized forms are identical, one normalized title contains
// the other, or their significant-word overlap meets the threshold.
func SimilarTitles(a, b string, threshold float64) bool {
	if a == "" || b == "" {
		return false
	}
	if AggressiveNormalize(a) == AggressiveNormalize(b) {
		return true
	}
	na := NormalizeTitle(a)
	nb := NormalizeTitle(b)
	if na != "" && nb != "" && (strings.Contains(na, nb) || strings.Contains(nb, na)) {
		return true
	}
	return WordOverlap(a, b) >= threshold
}

var slugStripRe = regexp.MustCompile(`[^a-z0-9]+`)

// Slug derives a stable document identifier from a title: lower-case
// alphanumerics joined by hyphens, truncated to a sane length.
func Slug(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = slugStripRe.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > 80 {
		s = s[:80]
		if idx := strings.LastIndex(s, "-"); idx > 40 {
			s = s[:idx]
		}
	}
	if s == "" {
		s = "untitled"
	}
	return s
}
