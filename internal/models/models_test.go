// ABOUTME: Unit tests for data models
// ABOUTME: Tests constructors, validators, and model methods

package models

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewAreaRecord(t *testing.T) {
	vs := []Vertex{{1, 1}, {1, 2}, {2, 2}}
	rec := NewAreaRecord("  north field ", "owner-1", vs, 3.5)

	if rec.Name != "north field" {
		t.Errorf("expected trimmed name, got %q", rec.Name)
	}
	if rec.ID == uuid.Nil {
		t.Error("expected non-nil UUID")
	}
	if rec.OwnerID != "owner-1" {
		t.Errorf("expected owner-1, got %q", rec.OwnerID)
	}
	if rec.UpdatedAt.IsZero() {
		t.Error("expected non-zero UpdatedAt")
	}
	if len(rec.Vertices) != 3 {
		t.Fatalf("expected 3 vertices, got %d", len(rec.Vertices))
	}

	vs[0].Latitude = 50
	if rec.Vertices[0].Latitude != 1 {
		t.Error("record vertices should not alias the caller slice")
	}
}

func TestNewAreaRecord_UniqueIDs(t *testing.T) {
	a := NewAreaRecord("a", "o", nil, 0)
	b := NewAreaRecord("b", "o", nil, 0)
	if a.ID == b.ID {
		t.Error("expected unique IDs for different records")
	}
}

func TestNewAreaRecord_SetsTimestamp(t *testing.T) {
	before := time.Now()
	rec := NewAreaRecord("a", "o", nil, 0)
	after := time.Now()

	if rec.UpdatedAt.Before(before) || rec.UpdatedAt.After(after) {
		t.Error("UpdatedAt should be between before and after test times")
	}
}

func TestCopyVertices_Nil(t *testing.T) {
	if CopyVertices(nil) != nil {
		t.Error("expected nil copy for nil input")
	}
}

func TestRegionAround(t *testing.T) {
	r := RegionAround(Vertex{Latitude: -23.5, Longitude: -46.6})
	if r.LatitudeDelta != DefaultSpan || r.LongitudeDelta != DefaultSpan {
		t.Errorf("unexpected span %v x %v", r.LatitudeDelta, r.LongitudeDelta)
	}
	if r.Center() != (Vertex{Latitude: -23.5, Longitude: -46.6}) {
		t.Errorf("unexpected center %v", r.Center())
	}
}

func TestValidateCoordinates(t *testing.T) {
	tests := []struct {
		name    string
		lat     float64
		lng     float64
		wantErr bool
	}{
		{"valid origin", 0, 0, false},
		{"valid extremes", 90, 180, false},
		{"valid negative extremes", -90, -180, false},
		{"lat too high", 90.0001, 0, true},
		{"lat too low", -91, 0, true},
		{"lng too high", 0, 181, true},
		{"lng too low", 0, -180.5, true},
		{"NaN lat", math.NaN(), 0, true},
		{"NaN lng", 0, math.NaN(), true},
		{"Inf lat", math.Inf(1), 0, true},
		{"Inf lng", 0, math.Inf(-1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCoordinates(tt.lat, tt.lng)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateCoordinates(%v, %v) error = %v, wantErr %v", tt.lat, tt.lng, err, tt.wantErr)
			}
		})
	}
}

func TestVertexValidate(t *testing.T) {
	if err := (Vertex{Latitude: 45, Longitude: 10}).Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := (Vertex{Latitude: 100, Longitude: 10}).Validate(); err == nil {
		t.Error("expected error for out-of-range latitude")
	}
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "north field", false},
		{"empty", "", true},
		{"whitespace", "   \t ", true},
		{"max length", strings.Repeat("a", MaxNameLength), false},
		{"too long", strings.Repeat("a", MaxNameLength+1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
