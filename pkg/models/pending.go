package models

import "time"

// Status is a PendingEnhancement's position in the work-queue state machine.
// See pkg/queue for the transition table that governs movement between
// these values.
type Status string

// All states in the PendingEnhancement lifecycle.
const (
	StatusPending        Status = "PENDING"
	StatusProcessing     Status = "PROCESSING"
	StatusImporting      Status = "IMPORTING"
	StatusIndexing       Status = "INDEXING"
	StatusCompleted      Status = "COMPLETED"
	StatusExpired        Status = "EXPIRED"
	StatusDiscarded      Status = "DISCARDED"
	StatusIndexingFailed Status = "INDEXING_FAILED"
	StatusFailed         Status = "FAILED"
)

// Terminal reports whether a status has no outgoing transitions.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusDiscarded, StatusIndexingFailed:
		return true
	default:
		return false
	}
}

// Retriable reports whether a status may be explicitly returned to PENDING.
func (s Status) Retriable() bool {
	switch s {
	case StatusFailed, StatusExpired:
		return true
	default:
		return false
	}
}

// PendingEnhancement is the single work unit for a (document, enhancement
// type) pair: at most one live row exists per key, see pkg/queue.Enqueue.
type PendingEnhancement struct {
	ID              int64           `db:"id"`
	DocumentID      int64           `db:"document_id"`
	EnhancementType EnhancementType `db:"enhancement_type"`
	Status          Status          `db:"status"`
	CreatedAt       time.Time       `db:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at"`
	Attempts        int             `db:"attempts"`
	LastError       *string         `db:"last_error"`
}
