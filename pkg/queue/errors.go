package queue

import (
	"errors"
	"fmt"

	"github.com/ammons-datalabs/adl-pdf-ingest-phd/pkg/models"
)

// Sentinel errors for queue operations.
var (
	// ErrNoWorkAvailable indicates no pending unit matches the requested type.
	ErrNoWorkAvailable = errors.New("queue: no work available")

	// ErrNotFound indicates no pending enhancement exists with the given id.
	ErrNotFound = errors.New("queue: pending enhancement not found")
)

// StateTransitionError reports an attempted move between two states that
// the transition table does not allow. It is never returned by ClaimNext
// (which only ever moves PENDING->PROCESSING, always legal); it guards
// every SetStatus call instead.
type StateTransitionError struct {
	Current models.Status
	Target  models.Status
	Allowed []models.Status
}

func (e *StateTransitionError) Error() string {
	return fmt.Sprintf("queue: illegal transition %s -> %s (allowed: %v)", e.Current, e.Target, e.Allowed)
}
