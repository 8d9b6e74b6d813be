// ABOUTME: Loads recorded walking tracks for replay
// ABOUTME: Accepts GeoJSON line geometries or Google encoded polylines

package locate

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/harper/acreage/internal/models"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/twpayne/go-polyline"
)

// ErrEmptyTrack is returned when a track file contains no positions.
var ErrEmptyTrack = errors.New("track has no positions")

// LoadTrack reads a track file. Files ending in .geojson or .json are parsed as
// GeoJSON; anything else is treated as an encoded polyline.
func LoadTrack(path string) ([]models.Vertex, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read track: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".geojson", ".json":
		return ParseGeoJSONTrack(data)
	default:
		return ParsePolylineTrack(data)
	}
}

// ParseGeoJSONTrack extracts positions from a FeatureCollection, Feature or bare
// geometry. The first line-like geometry found wins.
func ParseGeoJSONTrack(data []byte) ([]models.Vertex, error) {
	var geoms []orb.Geometry
	if fc, err := geojson.UnmarshalFeatureCollection(data); err == nil && fc.Type == "FeatureCollection" {
		for _, f := range fc.Features {
			geoms = append(geoms, f.Geometry)
		}
	} else if f, err := geojson.UnmarshalFeature(data); err == nil && f.Type == "Feature" {
		geoms = append(geoms, f.Geometry)
	} else {
		g, err := geojson.UnmarshalGeometry(data)
		if err != nil {
			return nil, fmt.Errorf("invalid geojson track: %w", err)
		}
		geoms = append(geoms, g.Geometry())
	}

	for _, g := range geoms {
		if vs := trackVertices(g); len(vs) > 0 {
			return vs, nil
		}
	}
	return nil, ErrEmptyTrack
}

func trackVertices(g orb.Geometry) []models.Vertex {
	var pts []orb.Point
	switch geom := g.(type) {
	case orb.LineString:
		pts = geom
	case orb.MultiPoint:
		pts = geom
	case orb.Ring:
		pts = geom
	case orb.Polygon:
		if len(geom) > 0 {
			pts = geom[0]
		}
	case orb.MultiLineString:
		for _, ls := range geom {
			pts = append(pts, ls...)
		}
	}
	out := make([]models.Vertex, 0, len(pts))
	for _, p := range pts {
		out = append(out, models.Vertex{Latitude: p.Lat(), Longitude: p.Lon()})
	}
	return out
}

// ParsePolylineTrack decodes a Google encoded polyline.
func ParsePolylineTrack(data []byte) ([]models.Vertex, error) {
	encoded := bytes.TrimSpace(data)
	if len(encoded) == 0 {
		return nil, ErrEmptyTrack
	}
	coords, rest, err := polyline.DecodeCoords(encoded)
	if err != nil {
		return nil, fmt.Errorf("invalid polyline track: %w", err)
	}
	if len(rest) > 0 {
		return nil, fmt.Errorf("invalid polyline track: %d trailing bytes", len(rest))
	}
	out := make([]models.Vertex, 0, len(coords))
	for _, c := range coords {
		out = append(out, models.Vertex{Latitude: c[0], Longitude: c[1]})
	}
	if len(out) == 0 {
		return nil, ErrEmptyTrack
	}
	return out, nil
}
