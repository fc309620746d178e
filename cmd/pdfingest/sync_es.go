package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ammons-datalabs/adl-pdf-ingest-phd/pkg/artifact"
	"github.com/ammons-datalabs/adl-pdf-ingest-phd/pkg/search"
)

var syncESRebuild bool

// syncESCmd bulk-reprojects every cataloged document's accumulated
// artifacts into the search index. With --rebuild it first deletes every
// versioned index, so the reprojection starts over from a fresh v1 with
// the current mapping — the recovery path when the index contents (not
// just the mapping) are suspect.
var syncESCmd = &cobra.Command{
	Use:   "sync-es",
	Short: "Bulk-reproject the catalog into the search index",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if syncESRebuild {
			deleted, err := current.search.DeleteAllVersions(ctx)
			if err != nil {
				return fmt.Errorf("delete versioned indices: %w", err)
			}
			fmt.Printf("deleted %d versioned index(es)\n", len(deleted))
		}

		store := artifact.NewStore(sqlxDB())
		result, err := search.Reproject(ctx, current.search, store, nil)
		if err != nil {
			return fmt.Errorf("reproject: %w", err)
		}

		fmt.Printf("indexed %d document(s), %d bulk error(s)\n", result.Indexed, result.BulkErrors)
		return nil
	},
}

func init() {
	syncESCmd.Flags().BoolVar(&syncESRebuild, "rebuild", false, "Delete all versioned indices and reproject from scratch")
}
