package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ammons-datalabs/adl-pdf-ingest-phd/pkg/search"
)

var (
	grepFragments     int
	grepFragmentSize  int
	grepHighlightTerm string
)

// grepCmd runs the same query shape as search but requests highlighted
// full_text fragments, bracketed with ">>>"/"<<<" markers, so matches are
// visible in a terminal without ANSI color support.
var grepCmd = &cobra.Command{
	Use:   "grep",
	Short: "Search and print highlighted full-text fragments",
	RunE: func(cmd *cobra.Command, args []string) error {
		params := buildSearchParams()

		hp := search.HighlightParams{
			Params:            params,
			FragmentSize:      grepFragmentSize,
			NumberOfFragments: grepFragments,
		}
		if grepHighlightTerm != "" {
			hp.HighlightQuery = search.HighlightQueryForTerm(grepHighlightTerm)
		}

		hits, err := current.search.Highlight(cmd.Context(), hp)
		if err != nil {
			return fmt.Errorf("grep: %w", err)
		}

		for _, hit := range hits {
			fmt.Printf("%s (%s):\n", hit.Source.Title, hit.Source.FilePath)
			for _, fragment := range hit.Fragments {
				fmt.Printf("  %s\n", strings.TrimSpace(fragment))
			}
		}
		return nil
	},
}

func init() {
	grepCmd.Flags().IntVar(&grepFragments, "fragments", 3, "Number of highlighted fragments per document")
	grepCmd.Flags().IntVar(&grepFragmentSize, "fragment-size", 150, "Characters per highlighted fragment")
	grepCmd.Flags().StringVar(&grepHighlightTerm, "highlight", "", "Term to highlight (defaults to --query)")
}
