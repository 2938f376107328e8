package docstore

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/citegraph/citecheck/internal/reference"
)

// FindForReference locates the stored document a bibliography entry refers
// to. Match precedence, first hit wins:
//
//  1. DOI exact match (case-insensitive, trimmed), with a full scan fallback
//     when the index is stale or absent.
//  2. Exact title match (case-insensitive).
//  3. Title-word candidates filtered by the strict similarity test.
//  4. Author surname + exact year match.
//
// Returns ErrNotFound when nothing matches; callers treat that as a normal,
// policy-governed outcome.
func (s *Store) FindForReference(ref reference.BibReference) (*Document, error) {
	idx, idxErr := s.LoadIndex()

	if doi := reference.NormalizeDOI(ref.DOI); doi != "" {
		if idx != nil && idxErr == nil {
			if location, ok := idx.ByDOI[doi]; ok {
				if doc, err := s.loadByLocation(location); err == nil {
					return doc, nil
				}
				// Stale index entry; fall through to the scan.
			}
		}
		if doc := s.scanByDOI(doi); doc != nil {
			return doc, nil
		}
	}

	if ref.Title != "" {
		candidates := s.titleCandidates(idx, idxErr == nil, ref.Title)

		for i := range candidates {
			if strings.EqualFold(candidates[i].Title, ref.Title) {
				return &candidates[i], nil
			}
		}
		for i := range candidates {
			if reference.SimilarTitles(ref.Title, candidates[i].Title, reference.StrictOverlapThreshold) {
				return &candidates[i], nil
			}
		}
	}

	if len(ref.Authors) > 0 && ref.Year != "" {
		if doc := s.matchByAuthorYear(idx, idxErr == nil, ref); doc != nil {
			return doc, nil
		}
	}

	return nil, ErrNotFound
}

// FindByTitle is the best-effort entry point used when only a title string
// is available. Exact matches win; otherwise every stored document is
// scanned with the looser overlap threshold, since no other fields exist to
// corroborate.
func (s *Store) FindByTitle(title string) ([]Document, error) {
	if strings.TrimSpace(title) == "" {
		return nil, nil
	}
	docs, err := s.List()
	if err != nil {
		return nil, err
	}

	var exact []Document
	for _, doc := range docs {
		if strings.EqualFold(doc.Title, title) {
			exact = append(exact, doc)
		}
	}
	if len(exact) > 0 {
		return exact, nil
	}

	var fuzzy []Document
	for _, doc := range docs {
		if reference.SimilarTitles(title, doc.Title, reference.LooseOverlapThreshold) {
			fuzzy = append(fuzzy, doc)
		}
	}
	return fuzzy, nil
}

// scanByDOI compares normalized DOIs across every stored document.
func (s *Store) scanByDOI(doi string) *Document {
	docs, err := s.List()
	if err != nil {
		return nil
	}
	for i := range docs {
		if reference.NormalizeDOI(docs[i].DOI) == doi {
			return &docs[i]
		}
	}
	return nil
}

// titleCandidates gathers documents sharing at least one significant title
// word with the query, using the word index when available and a full scan
// otherwise. Candidate order follows location order for determinism.
func (s *Store) titleCandidates(idx *LookupIndex, indexOK bool, title string) []Document {
	if !indexOK || idx == nil {
		docs, err := s.List()
		if err != nil {
			return nil
		}
		return docs
	}

	seen := make(map[string]bool)
	var locations []string
	for word := range reference.SignificantWords(title) {
		for _, location := range idx.ByTitleWords[word] {
			if !seen[location] {
				seen[location] = true
				locations = append(locations, location)
			}
		}
	}
	sort.Strings(locations)

	var candidates []Document
	for _, location := range locations {
		doc, err := s.loadByLocation(location)
		if err != nil {
			s.logger.Warn("skipping stale index entry",
				zap.String("location", location), zap.Error(err))
			continue
		}
		candidates = append(candidates, *doc)
	}
	return candidates
}

// matchByAuthorYear accepts a candidate when at least one reference author
// surname appears among the candidate's authors and the years match exactly.
func (s *Store) matchByAuthorYear(idx *LookupIndex, indexOK bool, ref reference.BibReference) *Document {
	var candidates []Document
	if indexOK && idx != nil {
		locations := append([]string(nil), idx.ByYear[strings.TrimSpace(ref.Year)]...)
		sort.Strings(locations)
		for _, location := range locations {
			doc, err := s.loadByLocation(location)
			if err != nil {
				continue
			}
			candidates = append(candidates, *doc)
		}
	} else {
		docs, err := s.List()
		if err != nil {
			return nil
		}
		candidates = docs
	}

	surnames := make(map[string]bool)
	for _, a := range ref.Authors {
		if surname := strings.ToLower(a.Surname()); surname != "" {
			surnames[surname] = true
		}
	}
	if len(surnames) == 0 {
		return nil
	}

	for i := range candidates {
		if strings.TrimSpace(candidates[i].Year) != strings.TrimSpace(ref.Year) {
			continue
		}
		for _, name := range candidates[i].Authors {
			if surnames[strings.ToLower(authorSurname(name))] {
				return &candidates[i]
			}
		}
	}
	return nil
}
