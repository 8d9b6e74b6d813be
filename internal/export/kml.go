// ABOUTME: KML document generation for saved areas
// ABOUTME: One placemark per area with its boundary as an outer ring

package export

import (
	"fmt"
	"io"

	"github.com/harper/acreage/internal/geometry"
	"github.com/harper/acreage/internal/models"
	"github.com/twpayne/go-kml"
)

// ToKML builds a KML document with a polygon placemark for every record.
func ToKML(records []*models.AreaRecord) *kml.CompoundElement {
	placemarks := make([]kml.Element, 0, len(records)+1)
	placemarks = append(placemarks, kml.Name("acreage"))

	for _, rec := range records {
		if len(rec.Vertices) < geometry.MinVertices {
			continue
		}
		ring := Ring(rec.Vertices)
		coords := make([]kml.Coordinate, len(ring))
		for i, p := range ring {
			coords[i] = kml.Coordinate{Lon: p.Lon(), Lat: p.Lat()}
		}
		placemarks = append(placemarks, kml.Placemark(
			kml.Name(rec.Name),
			kml.Description(fmt.Sprintf("%.4f ha, perimeter %.1f m", rec.Hectares, geometry.Perimeter(rec.Vertices))),
			kml.Polygon(
				kml.OuterBoundaryIs(
					kml.LinearRing(kml.Coordinates(coords...)),
				),
			),
		))
	}

	return kml.KML(kml.Document(placemarks...))
}

// WriteKML writes an indented KML document for records.
func WriteKML(w io.Writer, records []*models.AreaRecord) error {
	if err := ToKML(records).WriteIndent(w, "", "  "); err != nil {
		return fmt.Errorf("failed to write kml: %w", err)
	}
	return nil
}
