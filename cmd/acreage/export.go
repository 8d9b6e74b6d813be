// ABOUTME: Export command for saved areas
// ABOUTME: Writes GeoJSON, KML, polylines, WKT, YAML or markdown to stdout or a file

package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/harper/acreage/internal/export"
	"github.com/harper/acreage/internal/models"
	"github.com/harper/acreage/internal/storage"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:     "export [name]",
	Aliases: []string{"e"},
	Short:   "Export saved areas in various formats",
	Long: `Export saved areas as GeoJSON, KML, encoded polylines, WKT, YAML or markdown.

Examples:
  # Export every area as GeoJSON polygons
  acreage export

  # Export one area as KML for Google Earth
  acreage export "north field" --format kml --output north.kml

  # Export area centers as GeoJSON points
  acreage export --format centroids

  # Export as markdown table
  acreage export --format markdown`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		output, _ := cmd.Flags().GetString("output")
		ctx := cmd.Context()

		var (
			data []byte
			err  error
		)
		switch strings.ToLower(format) {
		case "yaml":
			data, err = storage.ExportToYAML(ctx, repo, owner())
		case "markdown", "md":
			data, err = storage.ExportToMarkdown(ctx, repo, owner())
		default:
			var f export.Format
			f, err = export.ParseFormat(format)
			if err != nil {
				return fmt.Errorf("unsupported format: %s (use %s, yaml or markdown)", format, formatList())
			}
			var records []*models.AreaRecord
			records, err = exportRecords(cmd, args)
			if err != nil {
				return err
			}
			var buf bytes.Buffer
			err = export.Write(&buf, f, records)
			data = buf.Bytes()
		}
		if err != nil {
			return fmt.Errorf("failed to generate %s: %w", format, err)
		}

		if output != "" {
			if err := os.WriteFile(output, data, 0644); err != nil { //nolint:gosec // 0644 is intentional for data export files
				return fmt.Errorf("failed to write file: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s to %s\n", format, output)
			return nil
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

func init() {
	exportCmd.Flags().StringP("format", "f", string(export.GeoJSON), "output format ("+formatList()+", yaml, markdown)")
	exportCmd.Flags().StringP("output", "o", "", "write to file instead of stdout")

	rootCmd.AddCommand(exportCmd)
}

// exportRecords returns the named area, or every area when no name is given.
func exportRecords(cmd *cobra.Command, args []string) ([]*models.AreaRecord, error) {
	if len(args) == 1 {
		rec, err := repo.GetAreaByName(cmd.Context(), owner(), args[0])
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("area '%s' not found", args[0])
		}
		if err != nil {
			return nil, err
		}
		return []*models.AreaRecord{rec}, nil
	}
	records, err := repo.ListAreas(cmd.Context(), owner())
	if err != nil {
		return nil, fmt.Errorf("failed to list areas: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no areas found")
	}
	return records, nil
}

func formatList() string {
	names := make([]string, 0, len(export.Formats()))
	for _, f := range export.Formats() {
		names = append(names, string(f))
	}
	return strings.Join(names, ", ")
}
