// ABOUTME: GeoJSON generation for saved areas
// ABOUTME: Builds polygon and centroid FeatureCollections with orb

package export

import (
	"time"

	"github.com/harper/acreage/internal/geometry"
	"github.com/harper/acreage/internal/models"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Ring converts an open vertex list to a closed orb ring in [lng, lat] order.
func Ring(vs []models.Vertex) orb.Ring {
	r := make(orb.Ring, 0, len(vs)+1)
	for _, v := range vs {
		r = append(r, orb.Point{v.Longitude, v.Latitude})
	}
	if len(vs) > 0 {
		r = append(r, r[0])
	}
	return r
}

func properties(rec *models.AreaRecord) geojson.Properties {
	return geojson.Properties{
		"id":          rec.ID.String(),
		"name":        rec.Name,
		"hectares":    rec.Hectares,
		"perimeter_m": geometry.Perimeter(rec.Vertices),
		"updated_at":  rec.UpdatedAt.Format(time.RFC3339),
	}
}

// ToPolygonFeatureCollection converts records to a FeatureCollection of Polygons.
// Records with fewer than three vertices are skipped.
func ToPolygonFeatureCollection(records []*models.AreaRecord) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, rec := range records {
		if len(rec.Vertices) < geometry.MinVertices {
			continue
		}
		f := geojson.NewFeature(orb.Polygon{Ring(rec.Vertices)})
		f.ID = rec.ID.String()
		f.Properties = properties(rec)
		fc.Append(f)
	}
	return fc
}

// ToCentroidFeatureCollection converts records to a FeatureCollection of Points,
// one per area centroid.
func ToCentroidFeatureCollection(records []*models.AreaRecord) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, rec := range records {
		c, ok := geometry.Centroid(rec.Vertices)
		if !ok {
			continue
		}
		f := geojson.NewFeature(orb.Point{c.Longitude, c.Latitude})
		f.ID = rec.ID.String()
		f.Properties = properties(rec)
		fc.Append(f)
	}
	return fc
}
