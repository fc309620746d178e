package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// initDBCmd exists as an explicit, discoverable step even though
// database.NewClient already applies every pending migration as part of
// rootCmd's PersistentPreRunE — running it confirms connectivity and
// schema state without requiring any other subcommand's side effects.
var initDBCmd = &cobra.Command{
	Use:   "init-db",
	Short: "Connect to PostgreSQL and apply pending schema migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := current.db.Ping(); err != nil {
			return fmt.Errorf("database not reachable after migration: %w", err)
		}
		fmt.Println("database ready (schema migrated)")
		return nil
	},
}
