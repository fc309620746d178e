package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ammons-datalabs/adl-pdf-ingest-phd/pkg/search"
)

var (
	searchQuery    string
	searchTag      string
	searchFolder   string
	searchYearFrom int
	searchYearTo   int
	searchSort     string
	searchSize     int
	searchCount    bool
)

// searchCmd runs a free-text query against the search alias and prints a
// compact, scored result list.
var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search the indexed document corpus",
	RunE: func(cmd *cobra.Command, args []string) error {
		params := buildSearchParams()

		result, err := current.search.Search(cmd.Context(), params)
		if err != nil {
			return fmt.Errorf("search: %w", err)
		}

		if searchCount {
			fmt.Println(result.Total)
			return nil
		}

		fmt.Printf("%d total result(s)\n", result.Total)
		for _, hit := range result.Hits {
			authors := strings.Join(hit.Source.Authors, ", ")
			fmt.Printf("[%.2f] %s — %s (%s, %d)\n", hit.Score, hit.Source.Title, authors, hit.Source.Venue, hit.Source.Year)
		}
		return nil
	},
}

// buildSearchParams assembles a search.SearchParams from the flags shared
// by search and grep.
func buildSearchParams() search.SearchParams {
	params := search.SearchParams{
		Query:  searchQuery,
		Tag:    searchTag,
		Folder: searchFolder,
		Sort:   searchSort,
		Size:   searchSize,
	}
	if searchYearFrom > 0 {
		params.YearFrom = &searchYearFrom
	}
	if searchYearTo > 0 {
		params.YearTo = &searchYearTo
	}
	return params
}

func init() {
	for _, cmd := range []*cobra.Command{searchCmd, grepCmd} {
		cmd.Flags().StringVarP(&searchQuery, "query", "q", "", "Free-text query, with \"quoted\" substrings matched as phrases")
		cmd.Flags().StringVar(&searchTag, "tag", "", "Filter to documents tagged with this value")
		cmd.Flags().StringVar(&searchFolder, "folder", "", "Filter to documents in this folder")
		cmd.Flags().IntVar(&searchYearFrom, "year-from", 0, "Filter to documents published in or after this year")
		cmd.Flags().IntVar(&searchYearTo, "year-to", 0, "Filter to documents published in or before this year")
		cmd.Flags().StringVar(&searchSort, "sort", "", "relevance (default), year_asc, or year_desc")
		cmd.Flags().IntVar(&searchSize, "size", 20, "Maximum number of results")
		_ = cmd.MarkFlagRequired("query")
	}
	searchCmd.Flags().BoolVar(&searchCount, "count", false, "Only print the count of matching documents")
}
