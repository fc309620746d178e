package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var initESCmd = &cobra.Command{
	Use:   "init-es",
	Short: "Create the first versioned search index and bind the alias to it",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := current.search.Initialize(cmd.Context()); err != nil {
			return fmt.Errorf("initialize search index: %w", err)
		}
		fmt.Printf("search alias %q ready\n", current.search.Alias())
		return nil
	},
}
