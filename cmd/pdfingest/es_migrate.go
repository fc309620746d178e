package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var esMigrateCmd = &cobra.Command{
	Use:   "es-migrate",
	Short: "Create the next versioned search index and atomically swap the alias to it",
	RunE: func(cmd *cobra.Command, args []string) error {
		version, err := current.search.Migrate(cmd.Context())
		if err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		fmt.Printf("alias now bound to version %d\n", version)
		return nil
	},
}
