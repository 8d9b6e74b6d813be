// ABOUTME: Well-known-binary encoding of area boundaries
// ABOUTME: Open vertex lists become closed go-geom polygons and back

package storage

import (
	"errors"
	"fmt"

	"github.com/harper/acreage/internal/models"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/wkb"
)

// BoundaryPolygon converts an open vertex list into a closed XY polygon (x = lng, y = lat).
func BoundaryPolygon(vs []models.Vertex) (*geom.Polygon, error) {
	if len(vs) == 0 {
		return nil, errors.New("empty boundary")
	}
	ring := make([]geom.Coord, 0, len(vs)+1)
	for _, v := range vs {
		ring = append(ring, geom.Coord{v.Longitude, v.Latitude})
	}
	ring = append(ring, geom.Coord{vs[0].Longitude, vs[0].Latitude})

	poly, err := geom.NewPolygon(geom.XY).SetCoords([][]geom.Coord{ring})
	if err != nil {
		return nil, fmt.Errorf("build polygon: %w", err)
	}
	return poly, nil
}

// EncodeBoundary serializes vs as little-endian WKB.
func EncodeBoundary(vs []models.Vertex) ([]byte, error) {
	poly, err := BoundaryPolygon(vs)
	if err != nil {
		return nil, err
	}
	data, err := wkb.Marshal(poly, wkb.NDR)
	if err != nil {
		return nil, fmt.Errorf("marshal wkb: %w", err)
	}
	return data, nil
}

// DecodeBoundary parses WKB written by EncodeBoundary, dropping the closing vertex.
func DecodeBoundary(data []byte) ([]models.Vertex, error) {
	g, err := wkb.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("unmarshal wkb: %w", err)
	}
	poly, ok := g.(*geom.Polygon)
	if !ok {
		return nil, fmt.Errorf("boundary is %T, not a polygon", g)
	}
	if poly.NumLinearRings() == 0 {
		return nil, errors.New("boundary has no rings")
	}

	coords := poly.LinearRing(0).Coords()
	if n := len(coords); n > 1 && coords[0].Equal(geom.XY, coords[n-1]) {
		coords = coords[:n-1]
	}
	out := make([]models.Vertex, len(coords))
	for i, c := range coords {
		out[i] = models.Vertex{Latitude: c.Y(), Longitude: c.X()}
	}
	return out, nil
}
