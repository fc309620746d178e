// Package robot implements the long-lived polling loop that claims a unit
// of work, invokes a robot-specific handler, and advances the unit through
// the work-queue state machine. It also holds the two known handlers:
// an extractor robot (FULL_TEXT) and a manifest-sync robot
// (PAPERPILE_METADATA).
package robot

import (
	"context"
	"fmt"

	"github.com/ammons-datalabs/adl-pdf-ingest-phd/pkg/models"
)

// Extractor pulls raw text out of a PDF file. It is an opaque collaborator:
// any failure is reported as ExtractionError.
type Extractor interface {
	Extract(ctx context.Context, path string) (string, error)
}

// ExtractionError marks an error as an extraction failure. Extractor
// implementations wrap every failure with it, so callers can use a single
// prefix-stable message regardless of which underlying step broke.
func ExtractionError(err error) error {
	return fmt.Errorf("extraction failed: %w", err)
}

// Record is a bibliographic record carried verbatim into a PAPERPILE_METADATA
// artifact's content.
type Record map[string]any

// MetadataSource loads a keyed map of bibliographic records. Keys are file
// names, case-folded. ManifestSyncHandler calls Load once, on its first
// Handle call rather than at construction, and caches the result; a load
// error fails every unit that handler is given.
type MetadataSource interface {
	Load(ctx context.Context) (map[string]Record, error)
}

// Catalog is the subset of catalog.Store the runtime depends on.
type Catalog interface {
	GetByID(ctx context.Context, id int64) (*models.Document, error)
}

// ArtifactWriter is the subset of artifact.Store the runtime depends on.
type ArtifactWriter interface {
	Put(ctx context.Context, documentID int64, enhancementType models.EnhancementType, content models.Content, robotID string) (int64, error)
}

// Queue is the subset of queue.Store the runtime depends on.
type Queue interface {
	ClaimNext(ctx context.Context, enhancementType models.EnhancementType) (*models.PendingEnhancement, error)
	SetStatus(ctx context.Context, id int64, newStatus models.Status, lastError *string) error
}
