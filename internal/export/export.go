// ABOUTME: Export format selection and dispatch
// ABOUTME: Writes saved areas as GeoJSON, KML, encoded polylines or WKT

package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/harper/acreage/internal/models"
)

// Format names an export encoding.
type Format string

const (
	GeoJSON   Format = "geojson"
	Centroids Format = "centroids"
	KML       Format = "kml"
	Polyline  Format = "polyline"
	WKT       Format = "wkt"
)

// Formats lists every supported format.
func Formats() []Format {
	return []Format{GeoJSON, Centroids, KML, Polyline, WKT}
}

// ParseFormat parses a format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats() {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown export format %q", s)
}

// Write encodes records to w in format f.
func Write(w io.Writer, f Format, records []*models.AreaRecord) error {
	switch f {
	case GeoJSON:
		return writeJSON(w, ToPolygonFeatureCollection(records))
	case Centroids:
		return writeJSON(w, ToCentroidFeatureCollection(records))
	case KML:
		return WriteKML(w, records)
	case Polyline:
		return WritePolylines(w, records)
	case WKT:
		return WriteWKT(w, records)
	default:
		return fmt.Errorf("unknown export format %q", f)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode geojson: %w", err)
	}
	return nil
}
