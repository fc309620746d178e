package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var venuesTopN int

// venuesCmd prints the most common publication venues across the indexed
// corpus, backed by an aggregation query that is cached for a short TTL.
var venuesCmd = &cobra.Command{
	Use:   "venues",
	Short: "List the most common publication venues in the indexed corpus",
	RunE: func(cmd *cobra.Command, args []string) error {
		buckets, err := current.search.Venues(cmd.Context(), venuesTopN)
		if err != nil {
			return fmt.Errorf("venues: %w", err)
		}
		for _, b := range buckets {
			fmt.Printf("%6d  %s\n", b.Count, b.Venue)
		}
		return nil
	},
}

func init() {
	venuesCmd.Flags().IntVar(&venuesTopN, "top", 20, "Number of venues to list")
}
