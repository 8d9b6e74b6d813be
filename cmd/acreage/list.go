// ABOUTME: List command for saved areas
// ABOUTME: Shows every area with its size and when it was last updated

package main

import (
	"fmt"

	"github.com/harper/acreage/internal/storage"
	"github.com/harper/acreage/internal/ui"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List saved areas",
	RunE: func(cmd *cobra.Command, args []string) error {
		areas, err := repo.ListAreas(cmd.Context(), owner())
		if err != nil {
			return fmt.Errorf("failed to list areas: %w", err)
		}

		search, _ := cmd.Flags().GetString("search")
		areas = storage.FilterByName(areas, search)

		out := cmd.OutOrStdout()
		if len(areas) == 0 {
			fmt.Fprintln(out, "No areas saved.")
			return nil
		}
		for _, rec := range areas {
			fmt.Fprintln(out, ui.FormatArea(rec))
		}
		return nil
	},
}

func init() {
	listCmd.Flags().StringP("search", "s", "", "only show names containing this text")

	rootCmd.AddCommand(listCmd)
}
