// ABOUTME: Root Cobra command and global flags
// ABOUTME: Loads config, builds the logger and opens the configured storage backend

package main

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/harper/acreage/internal/config"
	"github.com/harper/acreage/internal/logging"
	"github.com/harper/acreage/internal/storage"
	"github.com/spf13/cobra"
)

var (
	cfg    *config.Config
	repo   storage.Repository
	logger *log.Logger

	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "acreage",
	Short: "Measure and save land areas on a map",
	Long: `
 █████╗  ██████╗██████╗ ███████╗ █████╗  ██████╗ ███████╗
██╔══██╗██╔════╝██╔══██╗██╔════╝██╔══██╗██╔════╝ ██╔════╝
███████║██║     ██████╔╝█████╗  ███████║██║  ███╗█████╗
██╔══██║██║     ██╔══██╗██╔══╝  ██╔══██║██║   ██║██╔══╝
██║  ██║╚██████╗██║  ██║███████╗██║  ██║╚██████╔╝███████╗
╚═╝  ╚═╝ ╚═════╝╚═╝  ╚═╝╚══════╝╚═╝  ╚═╝ ╚═════╝ ╚══════╝

      Trace a field on the map, get its area in hectares

Examples:
  acreage measure
  acreage area 37.0,-122.0 37.0,-121.999 37.001,-121.999
  acreage list
  acreage show "north field"`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if logLevel != "" {
			cfg.Log.Level = logLevel
		}
		logger = logging.New(cfg.Log)

		repo, err = cfg.OpenStorage()
		if err != nil {
			return fmt.Errorf("failed to open storage: %w", err)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if repo != nil {
			return repo.Close()
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
}

// owner is the id every command scopes records to.
func owner() string {
	if cfg == nil {
		return ""
	}
	return cfg.Owner
}
