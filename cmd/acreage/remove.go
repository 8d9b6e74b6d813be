// ABOUTME: Remove command for saved areas
// ABOUTME: Deletes an area by name after confirmation

package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/harper/acreage/internal/storage"
	"github.com/spf13/cobra"
)

var removeCmd = &cobra.Command{
	Use:     "remove <name>",
	Aliases: []string{"rm"},
	Short:   "Remove a saved area",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		rec, err := repo.GetAreaByName(cmd.Context(), owner(), name)
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("area '%s' not found", name)
		}
		if err != nil {
			return fmt.Errorf("failed to load area: %w", err)
		}

		confirm, _ := cmd.Flags().GetBool("confirm")
		if !confirm {
			fmt.Fprintf(cmd.OutOrStdout(), "Remove '%s'? [y/N] ", name)
			reader := bufio.NewReader(cmd.InOrStdin())
			response, _ := reader.ReadString('\n')
			response = strings.TrimSpace(strings.ToLower(response))
			if response != "y" && response != "yes" {
				fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
				return nil
			}
		}

		if err := repo.DeleteArea(cmd.Context(), rec.ID); err != nil {
			return fmt.Errorf("failed to remove area: %w", err)
		}

		color.Green("✓ Removed %s", name)
		return nil
	},
}

func init() {
	removeCmd.Flags().Bool("confirm", false, "skip confirmation prompt")

	rootCmd.AddCommand(removeCmd)
}
