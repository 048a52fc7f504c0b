// Package store persists audit results in Postgres. A result is stored as
// one audit_results row plus one audit_sections row per section, with the
// flattened question map held as JSONB; the two are always written in a
// single transaction so a stored document is never partially visible.
//
// Dependency rule: store imports audit only. It never imports api or
// scoring.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/calidad-labs/audit-compliance-backend/internal/audit"
)

// ErrNotFound is returned when no audit result exists for the requested ID.
// The HTTP layer maps it to a 404.
var ErrNotFound = errors.New("store: audit result not found")

// Repository is the surface the HTTP layer consumes. *Store is the
// production implementation; tests substitute an in-memory stub.
type Repository interface {
	CreateResult(ctx context.Context, res audit.Result) error
	ReplaceResult(ctx context.Context, res audit.Result) error
	GetResult(ctx context.Context, id uuid.UUID) (audit.Result, error)
	ListResults(ctx context.Context) ([]audit.Result, error)
	DeleteResult(ctx context.Context, id uuid.UUID) error
}

// Store holds the connection pool. The operation methods live in
// results.go.
type Store struct {
	pool *sql.DB
}

var _ Repository = (*Store)(nil)

// New creates a Store from a live connection pool. The pool must already be
// open and verified (e.g. via PingContext) before calling New.
func New(pool *sql.DB) *Store {
	return &Store{pool: pool}
}

// txFunc receives a transaction-scoped handle and returns an error.
// Returning a non-nil error causes withTx to roll back automatically.
type txFunc func(ctx context.Context, tx *sql.Tx) error

// withTx begins a transaction, passes it to fn, and commits on success or
// rolls back on any error (including panics). Serializable isolation is
// used because every multi-step write here is a read-then-write or
// delete-then-insert over the same document.
func (s *Store) withTx(ctx context.Context, fn txFunc) error {
	tx, err := s.pool.BeginTx(ctx, &sql.TxOptions{
		Isolation: sql.LevelSerializable,
	})
	if err != nil {
		return fmt.Errorf("store: begin transaction: %w", err)
	}

	// Roll back on panic so the connection is never left in a broken state.
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(ctx, tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("store: fn error: %w; rollback error: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit transaction: %w", err)
	}
	return nil
}
