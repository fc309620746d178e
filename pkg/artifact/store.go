// Package artifact implements the append-with-upsert store of typed
// enhancement payloads a robot accumulates per document. Multiple robots
// may each contribute an artifact of the same type; consumers (the search
// projection) choose how to merge by picking the most recent.
package artifact

import (
	"context"
	stdsql "database/sql"
	"errors"
	"fmt"

	"github.com/ammons-datalabs/adl-pdf-ingest-phd/pkg/models"
	"github.com/ammons-datalabs/adl-pdf-ingest-phd/pkg/sanitize"
	"github.com/jmoiron/sqlx"
)

// Store provides artifact operations against PostgreSQL.
type Store struct {
	db *sqlx.DB
}

// NewStore wraps a connection pool for artifact operations.
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Put upserts on (documentID, enhancementType, robotID): a second call with
// the same key overwrites content and refreshes created_at. Content is run
// through sanitize.Content before serialization, stripping null bytes from
// every string leaf — the store boundary is where sanitization happens, not
// the robot.
func (s *Store) Put(ctx context.Context, documentID int64, enhancementType models.EnhancementType, content models.Content, robotID string) (int64, error) {
	clean, ok := sanitize.Content(map[string]any(content)).(map[string]any)
	if !ok {
		clean = map[string]any{}
	}

	const q = `
		INSERT INTO enhancements (document_id, enhancement_type, content, robot_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (document_id, enhancement_type, robot_id) DO UPDATE
			SET content = EXCLUDED.content, created_at = now()
		RETURNING id`

	var id int64
	if err := s.db.QueryRowxContext(ctx, q, documentID, enhancementType, models.Content(clean), robotID).Scan(&id); err != nil {
		return 0, fmt.Errorf("artifact: put: %w", err)
	}
	return id, nil
}

// ListForDocument returns every artifact for a document ordered by
// creation time ascending.
func (s *Store) ListForDocument(ctx context.Context, documentID int64) ([]models.Enhancement, error) {
	const q = `
		SELECT id, document_id, enhancement_type, content, robot_id, created_at
		FROM enhancements
		WHERE document_id = $1
		ORDER BY created_at ASC`

	var out []models.Enhancement
	if err := s.db.SelectContext(ctx, &out, q, documentID); err != nil {
		return nil, fmt.Errorf("artifact: list for document: %w", err)
	}
	return out, nil
}

// Get returns the most recently created artifact of the given type for a
// document, tie-broken by id descending. Returns ErrNotFound on miss.
func (s *Store) Get(ctx context.Context, documentID int64, enhancementType models.EnhancementType) (*models.Enhancement, error) {
	const q = `
		SELECT id, document_id, enhancement_type, content, robot_id, created_at
		FROM enhancements
		WHERE document_id = $1 AND enhancement_type = $2
		ORDER BY created_at DESC, id DESC
		LIMIT 1`

	var e models.Enhancement
	if err := s.db.GetContext(ctx, &e, q, documentID, enhancementType); err != nil {
		if errors.Is(err, stdsql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("artifact: get: %w", err)
	}
	return &e, nil
}

// ListWithArtifacts is the bulk join used by the search projection: it
// fetches documents (optionally restricted to documentIDs) together with
// every accumulated artifact, in one read-only transaction so each
// document sees a self-consistent artifact set — avoiding a torn read that
// would produce an index entry missing an artifact written concurrently.
func (s *Store) ListWithArtifacts(ctx context.Context, documentIDs []int64, limit *int) ([]models.DocumentWithArtifacts, error) {
	tx, err := s.db.BeginTxx(ctx, &stdsql.TxOptions{ReadOnly: true, Isolation: stdsql.LevelRepeatableRead})
	if err != nil {
		return nil, fmt.Errorf("artifact: list with artifacts: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	docQuery := `SELECT id, file_path, created_at FROM documents`
	args := []any{}
	if len(documentIDs) > 0 {
		docQuery += " WHERE id = ANY($1)"
		args = append(args, documentIDs)
	}
	docQuery += " ORDER BY id ASC"
	if limit != nil {
		docQuery += fmt.Sprintf(" LIMIT $%d", len(args)+1)
		args = append(args, *limit)
	}

	var docs []models.Document
	if err := tx.SelectContext(ctx, &docs, docQuery, args...); err != nil {
		return nil, fmt.Errorf("artifact: list with artifacts: documents: %w", err)
	}
	if len(docs) == 0 {
		return nil, nil
	}

	ids := make([]int64, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}

	const artifactsQuery = `
		SELECT id, document_id, enhancement_type, content, robot_id, created_at
		FROM enhancements
		WHERE document_id = ANY($1)
		ORDER BY document_id ASC, created_at ASC`

	var artifacts []models.Enhancement
	if err := tx.SelectContext(ctx, &artifacts, artifactsQuery, ids); err != nil {
		return nil, fmt.Errorf("artifact: list with artifacts: artifacts: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("artifact: list with artifacts: commit: %w", err)
	}

	byDoc := make(map[int64][]models.Enhancement, len(docs))
	for _, a := range artifacts {
		byDoc[a.DocumentID] = append(byDoc[a.DocumentID], a)
	}

	out := make([]models.DocumentWithArtifacts, len(docs))
	for i, d := range docs {
		out[i] = models.DocumentWithArtifacts{Document: d, Artifacts: byDoc[d.ID]}
	}
	return out, nil
}
