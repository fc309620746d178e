package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ammons-datalabs/adl-pdf-ingest-phd/pkg/catalog"
	"github.com/ammons-datalabs/adl-pdf-ingest-phd/pkg/models"
	"github.com/ammons-datalabs/adl-pdf-ingest-phd/pkg/queue"
)

// queueMetadataCmd (re-)enqueues a PAPERPILE_METADATA unit for every
// cataloged document, independent of registration — useful after
// importing a new Paperpile export for a corpus that was already staged
// and full-text-extracted.
var queueMetadataCmd = &cobra.Command{
	Use:   "queue-metadata",
	Short: "Enqueue PAPERPILE_METADATA work for every cataloged document",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		store := catalog.NewStore(sqlxDB())
		q := queue.NewStore(sqlxDB())

		docs, err := store.ListAll(ctx, nil)
		if err != nil {
			return fmt.Errorf("list documents: %w", err)
		}

		for _, doc := range docs {
			if _, err := q.Enqueue(ctx, doc.ID, models.EnhancementPaperpileMetadata); err != nil {
				return fmt.Errorf("enqueue document %d: %w", doc.ID, err)
			}
		}

		fmt.Printf("enqueued PAPERPILE_METADATA work for %d document(s)\n", len(docs))
		return nil
	},
}
