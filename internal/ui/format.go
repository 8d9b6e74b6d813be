// ABOUTME: Terminal UI formatting utilities
// ABOUTME: Provides human-readable output for areas, measurements and session status

package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/harper/acreage/internal/geometry"
	"github.com/harper/acreage/internal/models"
)

var faint = color.New(color.Faint)

// FormatVertex formats a vertex as "(lat, lng)".
func FormatVertex(v models.Vertex) string {
	return fmt.Sprintf("(%.6f, %.6f)", v.Latitude, v.Longitude)
}

// FormatMeasurement formats an area figure with its unit label.
func FormatMeasurement(value float64, unit geometry.AreaUnit) string {
	return fmt.Sprintf("%.4f %s", value, unit.Label())
}

// FormatArea formats a saved area for list display.
func FormatArea(rec *models.AreaRecord) string {
	if rec == nil {
		return faint.Sprint("(invalid area)")
	}
	return fmt.Sprintf("%s - %s, %d points (%s)",
		color.GreenString(rec.Name),
		color.CyanString(FormatMeasurement(rec.Hectares, geometry.Hectares)),
		len(rec.Vertices),
		faint.Sprint(FormatRelativeTime(rec.UpdatedAt)))
}

// FormatAreaDetail formats a saved area with its vertices and sides in the given units.
func FormatAreaDetail(rec *models.AreaRecord, areaUnit geometry.AreaUnit, lengthUnit geometry.LengthUnit) string {
	if rec == nil {
		return faint.Sprint("(invalid area)")
	}
	var b strings.Builder
	res := geometry.Compute(rec.Vertices, areaUnit, lengthUnit)

	fmt.Fprintf(&b, "%s\n", color.GreenString(rec.Name))
	fmt.Fprintf(&b, "  id:      %s\n", faint.Sprint(rec.ID))
	fmt.Fprintf(&b, "  updated: %s\n", rec.UpdatedAt.Format("Jan 2 2006, 3:04 PM"))
	fmt.Fprintf(&b, "  stored:  %s\n", FormatMeasurement(rec.Hectares, geometry.Hectares))
	b.WriteString(FormatResult(res))
	b.WriteString("  vertices:\n")
	for i, v := range rec.Vertices {
		fmt.Fprintf(&b, "    %d. %s\n", i+1, FormatVertex(v))
	}
	return b.String()
}

// FormatResult formats derived figures as indented lines.
func FormatResult(res geometry.Result) string {
	if res.Empty() {
		return "  " + faint.Sprint("no area yet (need at least 3 points)") + "\n"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "  area:    %s\n", color.CyanString(FormatMeasurement(res.Area, res.AreaUnit)))
	if res.Centroid != nil {
		fmt.Fprintf(&b, "  center:  %s\n", FormatVertex(*res.Centroid))
	}
	var perimeter float64
	for i, l := range res.SideLengths {
		fmt.Fprintf(&b, "  side %d:  %.2f %s\n", i+1, l, res.LengthUnit)
		perimeter += l
	}
	fmt.Fprintf(&b, "  perimeter: %.2f %s\n", perimeter, res.LengthUnit)
	return b.String()
}

// FormatStatus formats a one-line session summary.
func FormatStatus(points int, res geometry.Result, layer string, tracking bool, editing string) string {
	parts := []string{fmt.Sprintf("%d points", points)}
	if !res.Empty() {
		parts = append(parts, color.CyanString(FormatMeasurement(res.Area, res.AreaUnit)))
	}
	parts = append(parts, "layer "+layer)
	if tracking {
		parts = append(parts, color.YellowString("tracking"))
	}
	if editing != "" {
		parts = append(parts, "editing "+color.GreenString(editing))
	}
	return strings.Join(parts, " | ")
}

// FormatRelativeTime formats a time as relative to now.
func FormatRelativeTime(t time.Time) string {
	diff := time.Since(t)

	// Handle future times (clock skew, bad data)
	if diff < 0 {
		return color.YellowString("in the future")
	}

	if diff < time.Minute {
		return "just now"
	}
	if diff < time.Hour {
		mins := int(diff.Minutes())
		if mins == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", mins)
	}
	if diff < 24*time.Hour {
		hours := int(diff.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	}
	days := int(diff.Hours() / 24)
	if days == 1 {
		return "1 day ago"
	}
	return fmt.Sprintf("%d days ago", days)
}
