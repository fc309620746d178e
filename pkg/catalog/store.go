// Package catalog implements the durable record of known documents,
// identified by file path. A document is created once and never mutated.
package catalog

import (
	"context"
	stdsql "database/sql"
	"errors"
	"fmt"

	"github.com/ammons-datalabs/adl-pdf-ingest-phd/pkg/models"
	"github.com/jmoiron/sqlx"
)

// Store provides catalog operations against PostgreSQL.
type Store struct {
	db *sqlx.DB
}

// NewStore wraps a connection pool for catalog operations.
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Register inserts a new document keyed by path. If the path already
// exists, inserted is false and id is the existing row's id — registration
// is idempotent, not an error.
func (s *Store) Register(ctx context.Context, path string) (id int64, inserted bool, err error) {
	const insert = `
		INSERT INTO documents (file_path)
		VALUES ($1)
		ON CONFLICT (file_path) DO NOTHING
		RETURNING id`

	if err := s.db.QueryRowxContext(ctx, insert, path).Scan(&id); err != nil {
		if errors.Is(err, stdsql.ErrNoRows) {
			const lookup = `SELECT id FROM documents WHERE file_path = $1`
			if err2 := s.db.QueryRowxContext(ctx, lookup, path).Scan(&id); err2 != nil {
				return 0, false, fmt.Errorf("catalog: register: resolve existing id: %w", err2)
			}
			return id, false, nil
		}
		return 0, false, fmt.Errorf("catalog: register: %w", err)
	}
	return id, true, nil
}

// RegisterMany registers a batch of paths inside one transaction and
// reports only how many rows were newly inserted.
func (s *Store) RegisterMany(ctx context.Context, paths []string) (countNew int, err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("catalog: register many: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const insert = `
		INSERT INTO documents (file_path)
		VALUES ($1)
		ON CONFLICT (file_path) DO NOTHING`

	for _, path := range paths {
		res, err := tx.ExecContext(ctx, insert, path)
		if err != nil {
			return 0, fmt.Errorf("catalog: register many: insert %q: %w", path, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("catalog: register many: rows affected: %w", err)
		}
		countNew += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("catalog: register many: commit: %w", err)
	}
	return countNew, nil
}

// GetByID returns the document with the given id, or ErrNotFound.
func (s *Store) GetByID(ctx context.Context, id int64) (*models.Document, error) {
	const q = `SELECT id, file_path, created_at FROM documents WHERE id = $1`
	var doc models.Document
	if err := s.db.GetContext(ctx, &doc, q, id); err != nil {
		if errors.Is(err, stdsql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("catalog: get by id: %w", err)
	}
	return &doc, nil
}

// GetByPath returns the document with the given file path, or ErrNotFound.
func (s *Store) GetByPath(ctx context.Context, path string) (*models.Document, error) {
	const q = `SELECT id, file_path, created_at FROM documents WHERE file_path = $1`
	var doc models.Document
	if err := s.db.GetContext(ctx, &doc, q, path); err != nil {
		if errors.Is(err, stdsql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("catalog: get by path: %w", err)
	}
	return &doc, nil
}

// ListAll returns every document ordered by id, optionally capped by limit.
func (s *Store) ListAll(ctx context.Context, limit *int) ([]models.Document, error) {
	q := `SELECT id, file_path, created_at FROM documents ORDER BY id ASC`
	args := []any{}
	if limit != nil {
		q += " LIMIT $1"
		args = append(args, *limit)
	}

	var docs []models.Document
	if err := s.db.SelectContext(ctx, &docs, q, args...); err != nil {
		return nil, fmt.Errorf("catalog: list all: %w", err)
	}
	return docs, nil
}
