// ABOUTME: Show command for a single saved area
// ABOUTME: Prints figures, sides and vertices in the requested units

package main

import (
	"errors"
	"fmt"

	"github.com/harper/acreage/internal/storage"
	"github.com/harper/acreage/internal/ui"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a saved area in detail",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		areaUnit, lengthUnit, err := unitFlags(cmd)
		if err != nil {
			return err
		}

		rec, err := repo.GetAreaByName(cmd.Context(), owner(), args[0])
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("area '%s' not found", args[0])
		}
		if err != nil {
			return fmt.Errorf("failed to load area: %w", err)
		}

		fmt.Fprint(cmd.OutOrStdout(), ui.FormatAreaDetail(rec, areaUnit, lengthUnit))
		return nil
	},
}

func init() {
	addUnitFlags(showCmd)

	rootCmd.AddCommand(showCmd)
}
