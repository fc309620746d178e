package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ammons-datalabs/adl-pdf-ingest-phd/pkg/catalog"
	"github.com/ammons-datalabs/adl-pdf-ingest-phd/pkg/models"
	"github.com/ammons-datalabs/adl-pdf-ingest-phd/pkg/queue"
)

var registerNoQueue bool

// registerCmd walks PDF_PROCESSING, registers every PDF into the catalog,
// and (unless --no-queue) enqueues a PENDING FULL_TEXT unit per document.
// Metadata work is enqueued separately by queue-metadata, which is useful
// on its own whenever a new Paperpile export lands. Registration is
// idempotent: re-running over files already in the catalog is a no-op for
// those files.
var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Register staged PDFs into the catalog and enqueue enhancement work",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		matches, err := filepath.Glob(filepath.Join(current.cfg.PDFProcessing, "*.pdf"))
		if err != nil {
			return fmt.Errorf("glob processing directory: %w", err)
		}

		store := catalog.NewStore(sqlxDB())
		q := queue.NewStore(sqlxDB())

		registered := 0
		for _, path := range matches {
			id, inserted, err := store.Register(ctx, path)
			if err != nil {
				return fmt.Errorf("register %s: %w", path, err)
			}
			if inserted {
				registered++
			}

			if registerNoQueue {
				continue
			}
			if _, err := q.Enqueue(ctx, id, models.EnhancementFullText); err != nil {
				return fmt.Errorf("enqueue %s: %w", path, err)
			}
		}

		fmt.Printf("registered %d new document(s) out of %d found\n", registered, len(matches))
		return nil
	},
}

func init() {
	registerCmd.Flags().BoolVar(&registerNoQueue, "no-queue", false, "Register documents without enqueueing enhancement work")
}
