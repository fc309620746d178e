// Package queue implements the work-queue state machine that drives the
// robot runtime: one pending record per (document, enhancement-type), with
// an atomic claim operation and a closed transition graph enforced on every
// status write.
package queue

import (
	"context"
	stdsql "database/sql"
	"errors"
	"fmt"

	"github.com/ammons-datalabs/adl-pdf-ingest-phd/pkg/models"
	"github.com/jmoiron/sqlx"
)

// Store provides the queue operations against PostgreSQL.
type Store struct {
	db *sqlx.DB
}

// NewStore wraps a connection pool for queue operations.
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Enqueue creates a pending unit for (documentID, enhancementType), or
// leaves an in-flight unit untouched if one already exists. Re-enqueuing a
// COMPLETED (or FAILED/EXPIRED/DISCARDED/INDEXING_FAILED) unit resets it to
// PENDING and leaves any previously produced artifact intact — a subsequent
// successful run overwrites that artifact via the artifact store's
// (document, type, robot-id) upsert key. This is deliberate, not a bug: see
// DESIGN.md's Open Question resolution.
func (s *Store) Enqueue(ctx context.Context, documentID int64, enhancementType models.EnhancementType) (int64, error) {
	const q = `
		INSERT INTO pending_enhancements (document_id, enhancement_type, status)
		VALUES ($1, $2, 'PENDING')
		ON CONFLICT (document_id, enhancement_type) DO UPDATE
			SET status = 'PENDING', updated_at = now()
			WHERE pending_enhancements.status IN ('COMPLETED', 'FAILED', 'EXPIRED', 'DISCARDED', 'INDEXING_FAILED')
		RETURNING id`

	var id int64
	if err := s.db.QueryRowxContext(ctx, q, documentID, enhancementType).Scan(&id); err != nil {
		if errors.Is(err, stdsql.ErrNoRows) {
			// The conflict's WHERE clause excluded the existing row
			// (it's in-flight): resolve the id of that untouched row.
			const lookup = `SELECT id FROM pending_enhancements WHERE document_id = $1 AND enhancement_type = $2`
			if err2 := s.db.QueryRowxContext(ctx, lookup, documentID, enhancementType).Scan(&id); err2 != nil {
				return 0, fmt.Errorf("queue: enqueue: resolve in-flight id: %w", err2)
			}
			return id, nil
		}
		return 0, fmt.Errorf("queue: enqueue: %w", err)
	}
	return id, nil
}

// ClaimNext atomically claims the oldest PENDING unit of the given type,
// moving it to PROCESSING and incrementing its attempt counter in a single
// round trip. Returns ErrNoWorkAvailable when nothing is pending.
func (s *Store) ClaimNext(ctx context.Context, enhancementType models.EnhancementType) (*models.PendingEnhancement, error) {
	const q = `
		WITH claimed AS (
			SELECT id FROM pending_enhancements
			WHERE status = 'PENDING' AND enhancement_type = $1
			ORDER BY created_at ASC, id ASC
			FOR UPDATE SKIP LOCKED
			LIMIT 1
		)
		UPDATE pending_enhancements
		SET status = 'PROCESSING', attempts = attempts + 1, updated_at = now()
		FROM claimed
		WHERE pending_enhancements.id = claimed.id
		RETURNING pending_enhancements.id, pending_enhancements.document_id,
			pending_enhancements.enhancement_type, pending_enhancements.status,
			pending_enhancements.created_at, pending_enhancements.updated_at,
			pending_enhancements.attempts, pending_enhancements.last_error`

	var pe models.PendingEnhancement
	if err := s.db.GetContext(ctx, &pe, q, enhancementType); err != nil {
		if errors.Is(err, stdsql.ErrNoRows) {
			return nil, ErrNoWorkAvailable
		}
		return nil, fmt.Errorf("queue: claim next: %w", err)
	}
	return &pe, nil
}

// SetStatus writes newStatus for the unit with the given id, rejecting the
// write with a *StateTransitionError if the transition table does not
// permit moving from the unit's current status to newStatus. lastError may
// be nil; when non-nil it overwrites the stored last_error column.
func (s *Store) SetStatus(ctx context.Context, id int64, newStatus models.Status, lastError *string) error {
	const getCurrent = `SELECT status FROM pending_enhancements WHERE id = $1`
	var current models.Status
	if err := s.db.GetContext(ctx, &current, getCurrent, id); err != nil {
		if errors.Is(err, stdsql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("queue: set status: load current: %w", err)
	}

	if ok, allowed := guard(current, newStatus); !ok {
		return &StateTransitionError{Current: current, Target: newStatus, Allowed: allowed}
	}

	const update = `
		UPDATE pending_enhancements
		SET status = $2, last_error = COALESCE($3, last_error), updated_at = now()
		WHERE id = $1`
	if _, err := s.db.ExecContext(ctx, update, id, newStatus, lastError); err != nil {
		return fmt.Errorf("queue: set status: %w", err)
	}
	return nil
}

// ListByStatus inspects pending units for operators and tests, optionally
// filtered by enhancement type and capped by limit.
func (s *Store) ListByStatus(ctx context.Context, statuses []models.Status, enhancementType *models.EnhancementType, limit *int) ([]models.PendingEnhancement, error) {
	q := `
		SELECT id, document_id, enhancement_type, status, created_at, updated_at, attempts, last_error
		FROM pending_enhancements
		WHERE status = ANY($1)`
	args := []any{statusesToStrings(statuses)}

	if enhancementType != nil {
		q += fmt.Sprintf(" AND enhancement_type = $%d", len(args)+1)
		args = append(args, *enhancementType)
	}

	q += " ORDER BY created_at ASC, id ASC"

	if limit != nil {
		q += fmt.Sprintf(" LIMIT $%d", len(args)+1)
		args = append(args, *limit)
	}

	var out []models.PendingEnhancement
	if err := s.db.SelectContext(ctx, &out, q, args...); err != nil {
		return nil, fmt.Errorf("queue: list by status: %w", err)
	}
	return out, nil
}

func statusesToStrings(statuses []models.Status) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
