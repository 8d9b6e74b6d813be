// ABOUTME: Core data models for measured areas
// ABOUTME: Vertices, map regions, area records and their validators

package models

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxNameLength bounds the display name of an area record.
const MaxNameLength = 255

// ValidateCoordinates checks if latitude and longitude are within valid ranges.
func ValidateCoordinates(lat, lng float64) error {
	if math.IsNaN(lat) || math.IsNaN(lng) {
		return fmt.Errorf("coordinates cannot be NaN")
	}
	if math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return fmt.Errorf("coordinates cannot be infinite")
	}
	if lat < -90 || lat > 90 {
		return fmt.Errorf("latitude must be between -90 and 90")
	}
	if lng < -180 || lng > 180 {
		return fmt.Errorf("longitude must be between -180 and 180")
	}
	return nil
}

// ValidateName checks if a name is valid (non-empty, within length limits).
// Note: This validates the raw input - callers should trim whitespace themselves if needed.
func ValidateName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return fmt.Errorf("name cannot be empty or whitespace")
	}
	if len(name) > MaxNameLength {
		return fmt.Errorf("name too long (max %d characters)", MaxNameLength)
	}
	return nil
}

// Vertex is a single latitude/longitude point in decimal degrees.
type Vertex struct {
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`
}

// Validate reports whether the vertex lies within the WGS84 coordinate ranges.
func (v Vertex) Validate() error {
	return ValidateCoordinates(v.Latitude, v.Longitude)
}

func (v Vertex) String() string {
	return fmt.Sprintf("(%.6f, %.6f)", v.Latitude, v.Longitude)
}

// Region is a map viewport: a center plus latitude/longitude spans.
type Region struct {
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	LatitudeDelta  float64 `json:"latitudeDelta"`
	LongitudeDelta float64 `json:"longitudeDelta"`
}

// DefaultSpan is the span used for regions centered on a single point.
const DefaultSpan = 0.01

// RegionAround returns a region centered on v with the default span.
func RegionAround(v Vertex) Region {
	return Region{
		Latitude:       v.Latitude,
		Longitude:      v.Longitude,
		LatitudeDelta:  DefaultSpan,
		LongitudeDelta: DefaultSpan,
	}
}

// Center returns the region center as a vertex.
func (r Region) Center() Vertex {
	return Vertex{Latitude: r.Latitude, Longitude: r.Longitude}
}

// AreaRecord is a persisted, named, owner-scoped polygon.
type AreaRecord struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	OwnerID   string    `json:"owner"`
	Vertices  []Vertex  `json:"coords"`
	Hectares  float64   `json:"area"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewAreaRecord creates a record with a generated UUID and the current timestamp.
// The vertex slice is copied so later edits to the caller's polygon do not leak in.
func NewAreaRecord(name, owner string, vertices []Vertex, hectares float64) *AreaRecord {
	return &AreaRecord{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(name),
		OwnerID:   owner,
		Vertices:  CopyVertices(vertices),
		Hectares:  hectares,
		UpdatedAt: time.Now(),
	}
}

// CopyVertices returns an independent copy of vs. A nil input yields nil.
func CopyVertices(vs []Vertex) []Vertex {
	if vs == nil {
		return nil
	}
	out := make([]Vertex, len(vs))
	copy(out, vs)
	return out
}
