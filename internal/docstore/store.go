package docstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
)

const (
	// DocumentsDirName holds one JSON file per document.
	DocumentsDirName = "documents"

	// IndexFileName is the derived lookup index.
	IndexFileName = "index.json"

	// CacheDirName holds ephemeral derived artifacts (the query database).
	CacheDirName = "cache"
)

// Store persists documents under a root directory: documents/<id>.json plus
// a derived index.json. Document files are authoritative; the index is
// rebuildable at any time.
type Store struct {
	root   string
	logger *zap.Logger
}

// NewStore creates a store rooted at the given directory.
func NewStore(root string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{root: root, logger: logger}
}

// Root returns the store's root directory.
func (s *Store) Root() string {
	return s.root
}

// DocumentsDir returns the directory holding document records.
func (s *Store) DocumentsDir() string {
	return filepath.Join(s.root, DocumentsDirName)
}

// IndexPath returns the path to the derived index file.
func (s *Store) IndexPath() string {
	return filepath.Join(s.root, IndexFileName)
}

// CacheDir returns the directory for derived query artifacts.
func (s *Store) CacheDir() string {
	return filepath.Join(s.root, CacheDirName)
}

// documentLocation returns the store-relative location of a record.
func documentLocation(id string) string {
	return filepath.ToSlash(filepath.Join(DocumentsDirName, id+".json"))
}

// Add persists a document and updates the index incrementally. Re-ingestion
// under the same identifier overwrites the previous record.
func (s *Store) Add(doc Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(s.DocumentsDir(), 0755); err != nil {
		return fmt.Errorf("creating documents directory: %w", err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}
	path := filepath.Join(s.root, filepath.FromSlash(documentLocation(doc.ID)))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing document: %w", err)
	}

	// Incremental index maintenance; a missing index is derived fresh.
	idx, err := s.LoadIndex()
	if err != nil {
		idx = NewLookupIndex()
	}
	idx.Add(doc, documentLocation(doc.ID))
	if err := s.saveIndex(idx); err != nil {
		return fmt.Errorf("updating index: %w", err)
	}
	return nil
}

// Get loads one document by identifier.
func (s *Store) Get(id string) (*Document, error) {
	return s.loadByLocation(documentLocation(id))
}

// List returns every readable document in the store, sorted by identifier.
// A corrupt record is skipped with a warning; one bad file must never abort
// a bulk listing.
func (s *Store) List() ([]Document, error) {
	entries, err := os.ReadDir(s.DocumentsDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading documents directory: %w", err)
	}

	var docs []Document
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		doc, err := s.loadByLocation(filepath.ToSlash(filepath.Join(DocumentsDirName, entry.Name())))
		if err != nil {
			s.logger.Warn("skipping unreadable document record",
				zap.String("file", entry.Name()),
				zap.Error(err))
			continue
		}
		docs = append(docs, *doc)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs, nil
}

// loadByLocation reads one record by store-relative location.
func (s *Store) loadByLocation(location string) (*Document, error) {
	data, err := os.ReadFile(filepath.Join(s.root, filepath.FromSlash(location)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading document: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing document %s: %w", location, err)
	}
	return &doc, nil
}

// LoadIndex reads the derived index from disk.
func (s *Store) LoadIndex() (*LookupIndex, error) {
	data, err := os.ReadFile(s.IndexPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrIndexNotFound
		}
		return nil, fmt.Errorf("reading index: %w", err)
	}
	var idx LookupIndex
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("parsing index: %w", err)
	}
	if idx.ByDOI == nil {
		idx.ByDOI = make(map[string]string)
	}
	if idx.ByTitleWords == nil {
		idx.ByTitleWords = make(map[string][]string)
	}
	if idx.ByYear == nil {
		idx.ByYear = make(map[string][]string)
	}
	return &idx, nil
}

// saveIndex writes the index atomically: temp file first, then rename.
func (s *Store) saveIndex(idx *LookupIndex) error {
	idx.normalize()
	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding index: %w", err)
	}

	tempPath := s.IndexPath() + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("writing temp index: %w", err)
	}
	if err := os.Rename(tempPath, s.IndexPath()); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("renaming temp index: %w", err)
	}
	return nil
}

// RebuildIndex discards the persisted index and re-derives it from every
// stored document. Idempotent: an unchanged document set yields identical
// index bytes. Corrupt records are skipped with a warning, consistent with
// List.
func (s *Store) RebuildIndex() (*LookupIndex, error) {
	docs, err := s.List()
	if err != nil {
		return nil, err
	}
	idx := NewLookupIndex()
	for _, doc := range docs {
		idx.Add(doc, documentLocation(doc.ID))
	}
	if err := s.saveIndex(idx); err != nil {
		return nil, err
	}
	return idx, nil
}
