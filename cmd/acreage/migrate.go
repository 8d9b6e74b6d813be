// ABOUTME: Migration command for copying areas between storage backends
// ABOUTME: Supports sqlite-to-charm and charm-to-sqlite with safety checks

package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harper/acreage/internal/config"
	"github.com/harper/acreage/internal/storage"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate data between storage backends",
	Long: `Migrate all saved areas from the currently configured backend to a different backend.

Reads areas from the current backend and writes them to the target backend.
Does NOT update the config file; verify the migration was successful then
update config.json manually.

Examples:
  acreage migrate --to charm
  acreage migrate --to sqlite --data-dir ~/acreage-sqlite
  acreage migrate --to sqlite --force`,
	RunE: runMigrate,
}

var (
	migrateTo      string
	migrateDataDir string
	migrateForce   bool
)

func init() {
	migrateCmd.Flags().StringVar(&migrateTo, "to", "", "target backend (sqlite or charm)")
	migrateCmd.Flags().StringVar(&migrateDataDir, "data-dir", "", "target data directory for sqlite (defaults to current config data_dir)")
	migrateCmd.Flags().BoolVar(&migrateForce, "force", false, "allow writing into a non-empty target directory")
	_ = migrateCmd.MarkFlagRequired("to")

	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	sourceBackend := cfg.GetBackend()
	targetBackend := migrateTo

	if targetBackend != config.BackendSQLite && targetBackend != config.BackendCharm {
		return fmt.Errorf("invalid target backend %q: must be %q or %q", targetBackend, config.BackendSQLite, config.BackendCharm)
	}
	if targetBackend == sourceBackend {
		return fmt.Errorf("target backend %q is the same as the current backend", targetBackend)
	}

	target := *cfg
	if migrateDataDir != "" {
		target.DataDir = migrateDataDir
	}
	targetDataDir := target.GetDataDir()

	if targetBackend == config.BackendSQLite {
		nonEmpty, err := storage.IsDirNonEmpty(targetDataDir)
		if err != nil {
			return fmt.Errorf("check target directory: %w", err)
		}
		if nonEmpty && !migrateForce {
			return fmt.Errorf("target directory %q is not empty; use --force to overwrite", targetDataDir)
		}
	}

	dst, err := target.OpenBackend(targetBackend)
	if err != nil {
		return fmt.Errorf("open target storage (%s): %w", targetBackend, err)
	}
	defer func() {
		if cerr := dst.Close(); cerr != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "warning: closing target storage: %v\n", cerr)
		}
	}()

	out := cmd.OutOrStdout()
	color.Yellow("Migrating areas:")
	fmt.Fprintf(out, "  Source:  %s (%s)\n", sourceBackend, cfg.GetDataDir())
	fmt.Fprintf(out, "  Target:  %s (%s)\n", targetBackend, targetDataDir)
	fmt.Fprintln(out)

	summary, err := storage.MigrateData(cmd.Context(), repo, dst, owner())
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	if err := dst.Sync(); err != nil {
		logger.Warn("target sync failed", "err", err)
	}

	color.Green("Migration complete!")
	fmt.Fprintf(out, "  Areas:    %d\n", summary.Areas)
	fmt.Fprintf(out, "  Vertices: %d\n", summary.Vertices)
	fmt.Fprintln(out)
	color.Yellow("Note: config.json was NOT updated. To switch to the new backend, edit:")
	fmt.Fprintf(out, "  %s\n", config.GetConfigPath())
	fmt.Fprintf(out, "  Set \"backend\": %q", targetBackend)
	if migrateDataDir != "" {
		fmt.Fprintf(out, " and \"data_dir\": %q", migrateDataDir)
	}
	fmt.Fprintln(out)

	return nil
}
