// ABOUTME: One-shot area command
// ABOUTME: Measures a polygon given on the command line and optionally saves it

package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/harper/acreage/internal/geometry"
	"github.com/harper/acreage/internal/models"
	"github.com/harper/acreage/internal/storage"
	"github.com/harper/acreage/internal/ui"
	"github.com/spf13/cobra"
)

var areaCmd = &cobra.Command{
	Use:   "area LAT,LNG LAT,LNG LAT,LNG...",
	Short: "Measure a polygon without opening the map",
	Long: `Measure the polygon through the given points, in order.

Examples:
  acreage area 37.0,-122.0 37.0,-121.999 37.001,-121.999
  acreage area 37.0,-122.0 37.0,-121.999 37.001,-121.999 --area-unit m2
  acreage area 37.0,-122.0 37.0,-121.999 37.001,-121.999 --save "corner lot"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		areaUnit, lengthUnit, err := unitFlags(cmd)
		if err != nil {
			return err
		}

		vertices := make([]models.Vertex, 0, len(args))
		for _, arg := range args {
			v, err := parseVertex(arg)
			if err != nil {
				return err
			}
			vertices = append(vertices, v)
		}

		res := geometry.Compute(vertices, areaUnit, lengthUnit)
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%d points\n", len(vertices))
		fmt.Fprint(out, ui.FormatResult(res))

		name, _ := cmd.Flags().GetString("save")
		if name == "" {
			return nil
		}
		name = strings.TrimSpace(name)
		if len(vertices) < geometry.MinVertices {
			return fmt.Errorf("need at least %d points to save, have %d", geometry.MinVertices, len(vertices))
		}
		hectares := geometry.Compute(vertices, geometry.Hectares, geometry.Meters).Area
		rec := models.NewAreaRecord(name, owner(), vertices, hectares)
		if existing, err := repo.GetAreaByName(cmd.Context(), owner(), name); err == nil {
			rec.ID = existing.ID
		} else if !errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("failed to look up %q: %w", name, err)
		}
		if err := repo.SaveArea(cmd.Context(), rec); err != nil {
			return fmt.Errorf("failed to save area: %w", err)
		}
		color.Green("✓ Saved %s", rec.Name)
		return nil
	},
}

func init() {
	addUnitFlags(areaCmd)
	areaCmd.Flags().String("save", "", "save the polygon under this name")

	rootCmd.AddCommand(areaCmd)
}

// addUnitFlags registers --area-unit and --length-unit.
func addUnitFlags(cmd *cobra.Command) {
	cmd.Flags().String("area-unit", string(geometry.DefaultAreaUnit), "area unit (ha, m2, km2)")
	cmd.Flags().String("length-unit", string(geometry.DefaultLengthUnit), "length unit (m, km)")
}

func unitFlags(cmd *cobra.Command) (geometry.AreaUnit, geometry.LengthUnit, error) {
	a, _ := cmd.Flags().GetString("area-unit")
	l, _ := cmd.Flags().GetString("length-unit")
	areaUnit, err := geometry.ParseAreaUnit(a)
	if err != nil {
		return "", "", err
	}
	lengthUnit, err := geometry.ParseLengthUnit(l)
	if err != nil {
		return "", "", err
	}
	return areaUnit, lengthUnit, nil
}
