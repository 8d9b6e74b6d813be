// ABOUTME: Import command for restoring data from YAML backup
// ABOUTME: Adds or replaces areas from a backup created by the backup command

package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/harper/acreage/internal/storage"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import areas from a YAML backup",
	Long: `Import areas from a YAML backup file.

Areas are saved under the current owner. An area whose id already exists
is replaced; everything else is added.

Examples:
  acreage import areas.yaml
  acreage import ~/backups/areas-20241214.yaml --confirm`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filename := args[0]

		data, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}

		confirm, _ := cmd.Flags().GetBool("confirm")
		if !confirm {
			fmt.Fprintf(cmd.OutOrStdout(), "Import areas from '%s'? [y/N] ", filename)
			reader := bufio.NewReader(cmd.InOrStdin())
			response, _ := reader.ReadString('\n')
			response = strings.TrimSpace(strings.ToLower(response))
			if response != "y" && response != "yes" {
				fmt.Fprintln(cmd.OutOrStdout(), "Canceled.")
				return nil
			}
		}

		n, err := storage.ImportBackup(cmd.Context(), repo, data, owner())
		if err != nil {
			return fmt.Errorf("failed to import: %w", err)
		}

		areas, _ := repo.ListAreas(cmd.Context(), owner())

		color.Green("Import complete")
		fmt.Fprintf(cmd.OutOrStdout(), "  %d imported, %d areas in store\n", n, len(areas))
		return nil
	},
}

func init() {
	importCmd.Flags().Bool("confirm", false, "skip confirmation prompt")

	rootCmd.AddCommand(importCmd)
}
