// ABOUTME: Geometry engine for measured polygons
// ABOUTME: Spherical-earth distance, projected shoelace area, centroid and side lengths

// Package geometry computes area, centroid, and side lengths of an ordered,
// implicitly closed ring of vertices. All functions are pure.
//
// Area uses a planar shoelace formula over a local equirectangular projection
// on a sphere of mean radius 6,371 km. It is accurate to well under one percent
// for farm-sized parcels and is not a geodesic (ellipsoidal) computation.
package geometry

import (
	"math"

	"github.com/harper/acreage/internal/models"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// EarthRadius is the mean Earth radius in meters.
const EarthRadius = 6371000.0

// MinVertices is the smallest vertex count with a defined area.
const MinVertices = 3

func radians(deg float64) float64 { return deg * math.Pi / 180 }

// Distance returns the great-circle (haversine) distance in meters.
func Distance(a, b models.Vertex) float64 {
	if a == b {
		return 0
	}
	lat1 := radians(a.Latitude)
	lat2 := radians(b.Latitude)
	dlat := lat2 - lat1
	dlon := radians(b.Longitude - a.Longitude)

	h := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dlon/2)*math.Sin(dlon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadius * c
}

// Area returns the enclosed area in square meters, or 0 for fewer than 3 vertices.
func Area(vs []models.Vertex) float64 {
	n := len(vs)
	if n < MinVertices {
		return 0
	}

	// Project around the first vertex; the mean latitude sets the east-west scale.
	var meanLat float64
	for _, v := range vs {
		meanLat += v.Latitude
	}
	meanLat /= float64(n)
	kx := EarthRadius * math.Cos(radians(meanLat))
	ref := vs[0]

	project := func(v models.Vertex) (float64, float64) {
		return kx * radians(v.Longitude-ref.Longitude), EarthRadius * radians(v.Latitude-ref.Latitude)
	}

	var sum float64
	for i := range vs {
		x1, y1 := project(vs[i])
		x2, y2 := project(vs[(i+1)%n])
		sum += x1*y2 - x2*y1
	}
	return math.Abs(sum) / 2
}

// ring converts vertices to a closed orb ring in (lng, lat) order.
func ring(vs []models.Vertex) orb.Ring {
	r := make(orb.Ring, 0, len(vs)+1)
	for _, v := range vs {
		r = append(r, orb.Point{v.Longitude, v.Latitude})
	}
	if len(vs) > 0 && vs[0] != vs[len(vs)-1] {
		r = append(r, r[0])
	}
	return r
}

// Centroid returns the centroid of the closed ring. ok is false for fewer than 3 vertices.
// Degenerate rings with no enclosed area fall back to the mean of the vertices.
func Centroid(vs []models.Vertex) (c models.Vertex, ok bool) {
	if len(vs) < MinVertices {
		return models.Vertex{}, false
	}

	p, area := planar.CentroidArea(ring(vs))
	if area == 0 || math.IsNaN(p[0]) || math.IsNaN(p[1]) {
		return meanVertex(vs), true
	}
	return models.Vertex{Latitude: p.Lat(), Longitude: p.Lon()}, true
}

func meanVertex(vs []models.Vertex) models.Vertex {
	var lat, lng float64
	for _, v := range vs {
		lat += v.Latitude
		lng += v.Longitude
	}
	n := float64(len(vs))
	return models.Vertex{Latitude: lat / n, Longitude: lng / n}
}

// SideLengths returns one haversine length in meters per edge i -> (i+1) mod n.
// It is empty for fewer than 3 vertices.
func SideLengths(vs []models.Vertex) []float64 {
	n := len(vs)
	if n < MinVertices {
		return []float64{}
	}
	lengths := make([]float64, n)
	for i := range vs {
		lengths[i] = Distance(vs[i], vs[(i+1)%n])
	}
	return lengths
}

// Perimeter is the sum of the side lengths in meters.
func Perimeter(vs []models.Vertex) float64 {
	var total float64
	for _, l := range SideLengths(vs) {
		total += l
	}
	return total
}

// Bounds returns a region that covers every vertex. ok is false for an empty polygon.
func Bounds(vs []models.Vertex) (models.Region, bool) {
	if len(vs) == 0 {
		return models.Region{}, false
	}
	b := ring(vs).Bound()
	center := b.Center()
	r := models.Region{
		Latitude:       center.Lat(),
		Longitude:      center.Lon(),
		LatitudeDelta:  b.Top() - b.Bottom(),
		LongitudeDelta: b.Right() - b.Left(),
	}
	if r.LatitudeDelta < models.DefaultSpan {
		r.LatitudeDelta = models.DefaultSpan
	}
	if r.LongitudeDelta < models.DefaultSpan {
		r.LongitudeDelta = models.DefaultSpan
	}
	return r, true
}

// Result holds the derived figures for one polygon, expressed in the chosen units.
type Result struct {
	Area        float64        `json:"area"`
	AreaUnit    AreaUnit       `json:"areaUnit"`
	Centroid    *models.Vertex `json:"areaCenter"`
	SideLengths []float64      `json:"sideLengths"`
	LengthUnit  LengthUnit     `json:"lengthUnit"`
}

// Empty reports whether the result carries no geometry.
func (r Result) Empty() bool {
	return r.Centroid == nil && len(r.SideLengths) == 0 && r.Area == 0
}

// Compute recomputes every figure from scratch in the requested units.
func Compute(vs []models.Vertex, areaUnit AreaUnit, lengthUnit LengthUnit) Result {
	res := Result{
		AreaUnit:    areaUnit,
		LengthUnit:  lengthUnit,
		SideLengths: []float64{},
	}
	if len(vs) < MinVertices {
		return res
	}

	res.Area = ConvertArea(Area(vs), SquareMeters, areaUnit)
	if c, ok := Centroid(vs); ok {
		res.Centroid = &c
	}
	res.SideLengths = ConvertLengths(SideLengths(vs), Meters, lengthUnit)
	return res
}

// Convert re-expresses an existing result in other units without recomputing it.
func (r Result) Convert(areaUnit AreaUnit, lengthUnit LengthUnit) Result {
	out := Result{
		Area:        ConvertArea(r.Area, r.AreaUnit, areaUnit),
		AreaUnit:    areaUnit,
		Centroid:    r.Centroid,
		SideLengths: ConvertLengths(r.SideLengths, r.LengthUnit, lengthUnit),
		LengthUnit:  lengthUnit,
	}
	return out
}
