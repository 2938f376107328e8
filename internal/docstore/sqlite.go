package docstore

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// DBFileName is the ephemeral full-text query database, derived from the
// document JSON records and rebuilt whenever they change.
const DBFileName = "citecheck.db"

// QueryDB wraps the SQLite full-text cache. The JSON records stay
// authoritative; this database exists only to answer content searches fast.
type QueryDB struct {
	db *sql.DB
}

// SearchHit is one full-text search result.
type SearchHit struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Snippet string `json:"snippet,omitempty"`
}

// DBPath returns the query database location under the store's cache dir.
func (s *Store) DBPath() string {
	return filepath.Join(s.CacheDir(), DBFileName)
}

// OpenQueryDB opens or creates the query database for a store.
func OpenQueryDB(s *Store) (*QueryDB, error) {
	if err := os.MkdirAll(s.CacheDir(), 0755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	db, err := sql.Open("sqlite", s.DBPath())
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &QueryDB{db: db}, nil
}

// Close closes the database connection.
func (q *QueryDB) Close() error {
	return q.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS documents (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			doi TEXT,
			year TEXT,
			journal TEXT
		);

		CREATE VIRTUAL TABLE IF NOT EXISTS documents_fts USING fts5(
			id UNINDEXED,
			title,
			content
		);

		CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`
	_, err := db.Exec(schema)
	return err
}

// ComputeStoreHash hashes every document record in sorted filename order.
// The stored hash decides whether the query database is stale.
func ComputeStoreHash(s *Store) (string, error) {
	docs, err := s.List()
	if err != nil {
		return "", err
	}
	h := sha256.New()
	for _, doc := range docs {
		fmt.Fprintf(h, "%s\x00%s\x00%d\x00", doc.ID, doc.Title, len(doc.Content))
		h.Write([]byte(doc.Content))
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// NeedsSync reports whether the document set changed since the last rebuild.
func (q *QueryDB) NeedsSync(s *Store) (bool, error) {
	current, err := ComputeStoreHash(s)
	if err != nil {
		return true, err
	}
	var stored string
	err = q.db.QueryRow(`SELECT value FROM meta WHERE key = 'store_hash'`).Scan(&stored)
	if err == sql.ErrNoRows {
		return true, nil
	}
	if err != nil {
		return true, err
	}
	return current != stored, nil
}

// Sync rebuilds the query tables from the store's document records and
// returns the number of documents indexed.
func (q *QueryDB) Sync(s *Store) (int, error) {
	docs, err := s.List()
	if err != nil {
		return 0, fmt.Errorf("listing documents: %w", err)
	}
	hash, err := ComputeStoreHash(s)
	if err != nil {
		return 0, fmt.Errorf("computing store hash: %w", err)
	}

	tx, err := q.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM documents`); err != nil {
		return 0, fmt.Errorf("clearing documents table: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM documents_fts`); err != nil {
		return 0, fmt.Errorf("clearing fts table: %w", err)
	}

	docStmt, err := tx.Prepare(`INSERT INTO documents (id, title, doi, year, journal) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer docStmt.Close()

	ftsStmt, err := tx.Prepare(`INSERT INTO documents_fts (id, title, content) VALUES (?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing fts insert: %w", err)
	}
	defer ftsStmt.Close()

	for _, doc := range docs {
		if _, err := docStmt.Exec(doc.ID, doc.Title, doc.DOI, doc.Year, doc.Journal); err != nil {
			return 0, fmt.Errorf("inserting document %s: %w", doc.ID, err)
		}
		if _, err := ftsStmt.Exec(doc.ID, doc.Title, doc.Content); err != nil {
			return 0, fmt.Errorf("indexing document %s: %w", doc.ID, err)
		}
	}

	if _, err := tx.Exec(`INSERT INTO meta (key, value) VALUES ('store_hash', ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, hash); err != nil {
		return 0, fmt.Errorf("storing hash: %w", err)
	}
	if _, err := tx.Exec(`INSERT INTO meta (key, value) VALUES ('last_sync', ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return 0, fmt.Errorf("storing sync time: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing: %w", err)
	}
	return len(docs), nil
}

// Search runs a full-text query over document titles and content.
func (q *QueryDB) Search(query string, limit int) ([]SearchHit, error) {
	if limit <= 0 {
		limit = 20
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	rows, err := q.db.Query(`
		SELECT id, title, snippet(documents_fts, 2, '[', ']', '...', 12)
		FROM documents_fts
		WHERE documents_fts MATCH ?
		ORDER BY rank
		LIMIT ?`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("executing search: %w", err)
	}
	defer rows.Close()

	var hits []SearchHit
	for rows.Next() {
		var hit SearchHit
		if err := rows.Scan(&hit.ID, &hit.Title, &hit.Snippet); err != nil {
			return nil, err
		}
		hits = append(hits, hit)
	}
	return hits, rows.Err()
}
