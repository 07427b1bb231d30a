// Package document persists ingested documents and serves vector
// similarity search over their embeddings.
package document

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pgvector/pgvector-go"

	"github.com/tecnoperfil/portal-agent/internal/log"
)

// ErrNotFound indicates the requested document does not exist.
var ErrNotFound = errors.New("document not found")

// Document is one ingested file's searchable text.
type Document struct {
	ID        string
	Content   string
	Filename  string
	FileKind  string
	CreatedAt time.Time
}

// Match is a search hit: the document plus its cosine similarity to the
// query. Recency-fallback results carry similarity 0.
type Match struct {
	Document
	Similarity float64
}

// DB is the subset of pgxpool.Pool the store needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store persists documents with their embeddings.
//
// Store is safe for concurrent use by multiple goroutines.
type Store struct {
	db     DB
	logger log.Logger
}

// NewStore creates a Store backed by the given database handle.
func NewStore(db DB, logger log.Logger) *Store {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Store{db: db, logger: logger}
}

// Upsert inserts or replaces a document and its embedding.
func (s *Store) Upsert(ctx context.Context, doc Document, embedding []float32) error {
	vec := pgvector.NewVector(embedding)
	_, err := s.db.Exec(ctx, `
		INSERT INTO documents (id, content, filename, file_kind, embedding, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			content    = EXCLUDED.content,
			filename   = EXCLUDED.filename,
			file_kind  = EXCLUDED.file_kind,
			embedding  = EXCLUDED.embedding,
			created_at = EXCLUDED.created_at`,
		doc.ID, doc.Content, doc.Filename, doc.FileKind, vec, doc.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("upserting document %q: %w", doc.ID, err)
	}

	s.logger.Debug("upserted document", "id", doc.ID, "filename", doc.Filename,
		"content_length", len(doc.Content))
	return nil
}

// SearchSimilar returns documents whose cosine similarity to the query
// embedding is at or above threshold, most similar first.
func (s *Store) SearchSimilar(ctx context.Context, embedding []float32, k int, threshold float64) ([]Match, error) {
	vec := pgvector.NewVector(embedding)
	rows, err := s.db.Query(ctx, `
		SELECT id, content, filename, file_kind, created_at,
		       1 - (embedding <=> $1) AS similarity
		FROM documents
		WHERE embedding IS NOT NULL
		  AND 1 - (embedding <=> $1) >= $2
		ORDER BY embedding <=> $1
		LIMIT $3`,
		vec, threshold, k,
	)
	if err != nil {
		return nil, fmt.Errorf("searching documents: %w", err)
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var m Match
		if err := rows.Scan(&m.ID, &m.Content, &m.Filename, &m.FileKind,
			&m.CreatedAt, &m.Similarity); err != nil {
			return nil, fmt.Errorf("scanning search result: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading search results: %w", err)
	}
	return matches, nil
}

// ListRecent returns the k most recently ingested documents. Used as the
// retrieval fallback when similarity search finds nothing.
func (s *Store) ListRecent(ctx context.Context, k int) ([]Document, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, content, filename, file_kind, created_at
		FROM documents
		ORDER BY created_at DESC
		LIMIT $1`, k)
	if err != nil {
		return nil, fmt.Errorf("listing recent documents: %w", err)
	}
	defer rows.Close()

	return scanDocuments(rows)
}

// List returns document metadata ordered by recency. Content is included
// so callers can report sizes; embeddings are never read back.
func (s *Store) List(ctx context.Context, limit int) ([]Document, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, content, filename, file_kind, created_at
		FROM documents
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	return scanDocuments(rows)
}

// Delete removes a document. Returns ErrNotFound when no row matched.
func (s *Store) Delete(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting document %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, id)
	}

	s.logger.Debug("deleted document", "id", id)
	return nil
}

// Count returns the number of stored documents.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM documents`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting documents: %w", err)
	}
	return n, nil
}

func scanDocuments(rows pgx.Rows) ([]Document, error) {
	var docs []Document
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.ID, &d.Content, &d.Filename, &d.FileKind, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading documents: %w", err)
	}
	return docs, nil
}
