package queue

import "github.com/ammons-datalabs/adl-pdf-ingest-phd/pkg/models"

// transitions is the closed set of legal moves between PendingEnhancement
// states, modeled as a compile-time constant table queried by guard rather
// than scattered across if-chains.
var transitions = map[models.Status]map[models.Status]struct{}{
	models.StatusPending: {
		models.StatusProcessing: {},
	},
	models.StatusProcessing: {
		models.StatusImporting: {},
		models.StatusExpired:   {},
		models.StatusFailed:    {},
		models.StatusDiscarded: {},
	},
	models.StatusImporting: {
		models.StatusIndexing:  {},
		models.StatusCompleted: {},
		models.StatusDiscarded: {},
		models.StatusFailed:    {},
	},
	models.StatusIndexing: {
		models.StatusCompleted:      {},
		models.StatusIndexingFailed: {},
	},
	models.StatusExpired: {
		models.StatusPending: {},
	},
	models.StatusFailed: {
		models.StatusPending: {},
	},
	// COMPLETED, DISCARDED, and INDEXING_FAILED are terminal here. Enqueue's
	// upsert can still move a unit in any of them (or in FAILED/EXPIRED)
	// back to PENDING; that move does not go through SetStatus, so it is
	// deliberately absent from this table.
}

// guard reports whether moving from current to target is a legal transition,
// and the set of states current may legally move to (for error reporting).
func guard(current, target models.Status) (bool, []models.Status) {
	allowed := transitions[current]
	_, ok := allowed[target]

	list := make([]models.Status, 0, len(allowed))
	for s := range allowed {
		list = append(list, s)
	}
	return ok, list
}
