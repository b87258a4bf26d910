// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// store.go - SQLite passage store with FTS5 retrieval.
package devserver

import (
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"golang.org/x/crypto/blake2b"
	_ "modernc.org/sqlite"

	"github.com/jeranaias/wrench-tui/internal/model"
)

const storeSchema = `
CREATE TABLE IF NOT EXISTS documents (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    fingerprint TEXT NOT NULL UNIQUE, -- blake2b-256 of the uploaded bytes
    chunk_count INTEGER NOT NULL,
    ingested_at INTEGER NOT NULL      -- Unix timestamp
);

CREATE TABLE IF NOT EXISTS chunks (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    document_id INTEGER NOT NULL,
    page INTEGER NOT NULL,
    text TEXT NOT NULL,
    FOREIGN KEY(document_id) REFERENCES documents(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_chunks_document_id ON chunks(document_id);

CREATE VIRTUAL TABLE IF NOT EXISTS chunks_fts USING fts5(
    text,
    content='chunks',
    content_rowid='id',
    tokenize='porter unicode61'
);

CREATE TRIGGER IF NOT EXISTS chunks_ai AFTER INSERT ON chunks BEGIN
    INSERT INTO chunks_fts(rowid, text) VALUES (new.id, new.text);
END;

CREATE TRIGGER IF NOT EXISTS chunks_ad AFTER DELETE ON chunks BEGIN
    INSERT INTO chunks_fts(chunks_fts, rowid, text) VALUES ('delete', old.id, old.text);
END;
`

// ErrStoreClosed is returned by operations on a closed store.
var ErrStoreClosed = errors.New("store is closed")

// Store holds ingested manual passages. It is safe for concurrent use;
// SQLite serializes writers through the single connection.
type Store struct {
	db *sql.DB
}

// Passage is a retrieved chunk with its document name and relevance.
type Passage struct {
	Document string
	Page     int
	Text     string
	Score    float64 // higher is more relevant, in (0, 1)
}

// Source converts the passage to the wire form used in query answers.
func (p Passage) Source() model.Source {
	page, score := p.Page, p.Score
	return model.Source{Text: p.Text, Source: p.Document, Page: &page, Score: &score}
}

// OpenStore opens or creates the database at path. ":memory:" gives a
// private in-memory store.
func OpenStore(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA temp_store=MEMORY",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}
	if _, err := db.Exec(storeSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Fingerprint identifies uploaded content.
func Fingerprint(content []byte) string {
	sum := blake2b.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// =============================================================================
// INGESTION
// =============================================================================

// Ingest extracts, chunks and indexes one manual and returns the number of
// chunks it holds. Content that was ingested before is not indexed again;
// its existing chunk count is returned.
func (s *Store) Ingest(ctx context.Context, name string, content []byte) (int, error) {
	if s.db == nil {
		return 0, ErrStoreClosed
	}
	fp := Fingerprint(content)

	var existing int
	err := s.db.QueryRowContext(ctx, `SELECT chunk_count FROM documents WHERE fingerprint = ?`, fp).Scan(&existing)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("check %s: %w", name, err)
	}

	chunks := ChunkPages(ExtractPages(content))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO documents (name, fingerprint, chunk_count, ingested_at) VALUES (?, ?, ?, ?)`,
		name, fp, len(chunks), time.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("record %s: %w", name, err)
	}
	docID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO chunks (document_id, page, text) VALUES (?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()
	for _, c := range chunks {
		if _, err := stmt.ExecContext(ctx, docID, c.Page, c.Text); err != nil {
			return 0, fmt.Errorf("index %s page %d: %w", name, c.Page, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(chunks), nil
}

// Counts returns the number of stored documents and chunks.
func (s *Store) Counts(ctx context.Context) (docs, chunks int, err error) {
	if s.db == nil {
		return 0, 0, ErrStoreClosed
	}
	err = s.db.QueryRowContext(ctx,
		`SELECT (SELECT COUNT(*) FROM documents), (SELECT COUNT(*) FROM chunks)`).Scan(&docs, &chunks)
	return docs, chunks, err
}

// =============================================================================
// RETRIEVAL
// =============================================================================

// Search returns up to k passages ranked by BM25. A query with no
// searchable words matches nothing.
func (s *Store) Search(ctx context.Context, query string, k int) ([]Passage, error) {
	if s.db == nil {
		return nil, ErrStoreClosed
	}
	match := ftsQuery(query)
	if match == "" || k <= 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT d.name, c.page, c.text, bm25(chunks_fts) AS rank
		FROM chunks_fts
		JOIN chunks c ON c.id = chunks_fts.rowid
		JOIN documents d ON d.id = c.document_id
		WHERE chunks_fts MATCH ?
		ORDER BY rank
		LIMIT ?`, match, k)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	defer rows.Close()

	var out []Passage
	for rows.Next() {
		var p Passage
		var rank float64
		if err := rows.Scan(&p.Document, &p.Page, &p.Text, &rank); err != nil {
			return nil, err
		}
		p.Score = relevance(rank)
		out = append(out, p)
	}
	return out, rows.Err()
}

// ftsQuery turns free text into an FTS5 expression that ORs the quoted
// words, so no user input is parsed as FTS5 syntax.
func ftsQuery(query string) string {
	words := strings.FieldsFunc(NormalizeText(query), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	terms := make([]string, 0, len(words))
	seen := make(map[string]bool, len(words))
	for _, w := range words {
		w = strings.ToLower(w)
		if len([]rune(w)) < 2 || stopWords[w] || seen[w] {
			continue
		}
		seen[w] = true
		terms = append(terms, `"`+w+`"`)
	}
	return strings.Join(terms, " OR ")
}

// relevance maps a BM25 rank (negative, lower is better) into (0, 1).
func relevance(rank float64) float64 {
	r := -rank
	if r < 0 {
		r = 0
	}
	return r / (1 + r)
}

var stopWords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "by": true, "can": true, "do": true, "does": true, "for": true,
	"from": true, "how": true, "i": true, "in": true, "is": true, "it": true,
	"my": true, "of": true, "on": true, "or": true, "the": true, "to": true,
	"what": true, "when": true, "where": true, "which": true, "why": true,
	"with": true,
}
