package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var esCleanupKeep int

var esCleanupCmd = &cobra.Command{
	Use:   "es-cleanup",
	Short: "Delete superseded search index generations, keeping the most recent --keep",
	RunE: func(cmd *cobra.Command, args []string) error {
		deleted, err := current.search.Cleanup(cmd.Context(), esCleanupKeep)
		if err != nil {
			return fmt.Errorf("cleanup: %w", err)
		}
		fmt.Printf("deleted %d index generation(s): %v\n", len(deleted), deleted)
		return nil
	},
}

func init() {
	esCleanupCmd.Flags().IntVar(&esCleanupKeep, "keep", 2, "Number of most recent index generations to retain")
}
