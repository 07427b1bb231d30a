// Package chatlog records question/answer exchanges for audit. Writes
// are best-effort: a failed append never fails the answer that produced
// it, the caller only logs the error.
package chatlog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tecnoperfil/portal-agent/internal/log"
)

// Exchange is one recorded question/answer pair with the sources that
// backed the answer.
type Exchange struct {
	ID          uuid.UUID
	Question    string
	Answer      string
	ContextUsed []string
	CreatedAt   time.Time
}

// DB is the subset of pgxpool.Pool the store needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store persists exchanges.
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

// Append records one exchange and returns its generated ID.
func (s *Store) Append(ctx context.Context, question, answer string, sources []string) (uuid.UUID, error) {
	id := uuid.New()
	if sources == nil {
		sources = []string{}
	}

	_, err := s.db.Exec(ctx, `
		INSERT INTO chat_exchanges (id, question, answer, context_used, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		id, question, answer, sources, time.Now().UTC(),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("appending exchange: %w", err)
	}

	s.logger.Debug("recorded exchange", "id", id.String())
	return id, nil
}

// ListRecent returns the newest exchanges, most recent first.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]Exchange, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, question, answer, context_used, created_at
		FROM chat_exchanges
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing exchanges: %w", err)
	}
	defer rows.Close()

	var out []Exchange
	for rows.Next() {
		var e Exchange
		if err := rows.Scan(&e.ID, &e.Question, &e.Answer, &e.ContextUsed, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning exchange: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading exchanges: %w", err)
	}
	return out, nil
}

// DeleteAll clears the exchange history and returns how many rows went.
func (s *Store) DeleteAll(ctx context.Context) (int64, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM chat_exchanges`)
	if err != nil {
		return 0, fmt.Errorf("clearing exchanges: %w", err)
	}
	return tag.RowsAffected(), nil
}
