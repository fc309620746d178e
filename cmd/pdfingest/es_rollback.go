package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var esRollbackCmd = &cobra.Command{
	Use:   "es-rollback",
	Short: "Swap the search alias back to the previous versioned index",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := current.search.Rollback(cmd.Context()); err != nil {
			return fmt.Errorf("rollback: %w", err)
		}
		fmt.Println("alias rolled back to previous version")
		return nil
	},
}
