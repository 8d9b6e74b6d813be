// ABOUTME: Line-oriented area exports: encoded polylines and WKT
// ABOUTME: Each record is written as its name, a tab, then the encoded boundary

package export

import (
	"fmt"
	"io"

	"github.com/harper/acreage/internal/models"
	"github.com/harper/acreage/internal/storage"
	"github.com/twpayne/go-geom/encoding/wkt"
	"github.com/twpayne/go-polyline"
)

// EncodePolyline encodes a closed boundary as a Google encoded polyline.
func EncodePolyline(vs []models.Vertex) string {
	if len(vs) == 0 {
		return ""
	}
	coords := make([][]float64, 0, len(vs)+1)
	for _, v := range vs {
		coords = append(coords, []float64{v.Latitude, v.Longitude})
	}
	coords = append(coords, []float64{vs[0].Latitude, vs[0].Longitude})
	return string(polyline.EncodeCoords(coords))
}

// EncodeWKT renders a boundary as a WKT POLYGON.
func EncodeWKT(vs []models.Vertex) (string, error) {
	poly, err := storage.BoundaryPolygon(vs)
	if err != nil {
		return "", err
	}
	s, err := wkt.Marshal(poly)
	if err != nil {
		return "", fmt.Errorf("marshal wkt: %w", err)
	}
	return s, nil
}

// WritePolylines writes one "name<TAB>polyline" line per record.
func WritePolylines(w io.Writer, records []*models.AreaRecord) error {
	for _, rec := range records {
		if _, err := fmt.Fprintf(w, "%s\t%s\n", rec.Name, EncodePolyline(rec.Vertices)); err != nil {
			return err
		}
	}
	return nil
}

// WriteWKT writes one "name<TAB>POLYGON (...)" line per record.
func WriteWKT(w io.Writer, records []*models.AreaRecord) error {
	for _, rec := range records {
		s, err := EncodeWKT(rec.Vertices)
		if err != nil {
			return fmt.Errorf("area %q: %w", rec.Name, err)
		}
		if _, err := fmt.Fprintf(w, "%s\t%s\n", rec.Name, s); err != nil {
			return err
		}
	}
	return nil
}
