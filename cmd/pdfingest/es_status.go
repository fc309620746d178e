package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var esStatusCmd = &cobra.Command{
	Use:   "es-status",
	Short: "Report the search alias's current binding, version, and document count",
	RunE: func(cmd *cobra.Command, args []string) error {
		status, err := current.search.Status(cmd.Context())
		if err != nil {
			return fmt.Errorf("status: %w", err)
		}

		fmt.Printf("alias:     %s\n", status.Alias)
		fmt.Printf("current:   %s (v%d)\n", status.CurrentIndex, status.Version)
		fmt.Printf("documents: %d\n", status.DocumentCount)
		fmt.Printf("versions:  %v\n", status.AllVersions)
		return nil
	},
}
