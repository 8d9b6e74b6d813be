// ABOUTME: Area and length units with pure conversion helpers
// ABOUTME: Conversions go through square meters and meters as the base units

package geometry

import (
	"fmt"
	"strings"
)

// AreaUnit names a unit of area.
type AreaUnit string

// LengthUnit names a unit of length.
type LengthUnit string

const (
	Hectares         AreaUnit = "ha"
	SquareMeters     AreaUnit = "m2"
	SquareKilometers AreaUnit = "km2"

	Meters     LengthUnit = "m"
	Kilometers LengthUnit = "km"
)

// DefaultAreaUnit and DefaultLengthUnit are used when nothing else is selected.
const (
	DefaultAreaUnit   = Hectares
	DefaultLengthUnit = Meters
)

// squareMetersPer returns how many square meters one unit holds.
func (u AreaUnit) squareMetersPer() (float64, error) {
	switch u {
	case Hectares:
		return 1e4, nil
	case SquareMeters:
		return 1, nil
	case SquareKilometers:
		return 1e6, nil
	default:
		return 0, fmt.Errorf("unknown area unit %q", string(u))
	}
}

// Label is the human-readable symbol for the unit.
func (u AreaUnit) Label() string {
	switch u {
	case SquareMeters:
		return "m²"
	case SquareKilometers:
		return "km²"
	default:
		return "ha"
	}
}

// Valid reports whether u is a known area unit.
func (u AreaUnit) Valid() bool {
	_, err := u.squareMetersPer()
	return err == nil
}

func (u LengthUnit) metersPer() (float64, error) {
	switch u {
	case Meters:
		return 1, nil
	case Kilometers:
		return 1000, nil
	default:
		return 0, fmt.Errorf("unknown length unit %q", string(u))
	}
}

// Valid reports whether u is a known length unit.
func (u LengthUnit) Valid() bool {
	_, err := u.metersPer()
	return err == nil
}

// ParseAreaUnit accepts short symbols and spelled-out names.
func ParseAreaUnit(s string) (AreaUnit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ha", "hectare", "hectares":
		return Hectares, nil
	case "m2", "m²", "sqm", "square-meters":
		return SquareMeters, nil
	case "km2", "km²", "sqkm", "square-kilometers":
		return SquareKilometers, nil
	default:
		return "", fmt.Errorf("unknown area unit %q (use ha, m2, or km2)", s)
	}
}

// ParseLengthUnit accepts short symbols and spelled-out names.
func ParseLengthUnit(s string) (LengthUnit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "m", "meter", "meters", "metre", "metres":
		return Meters, nil
	case "km", "kilometer", "kilometers", "kilometre", "kilometres":
		return Kilometers, nil
	default:
		return "", fmt.Errorf("unknown length unit %q (use m or km)", s)
	}
}

// ConvertArea converts value between area units. Unknown units leave the value unchanged.
func ConvertArea(value float64, from, to AreaUnit) float64 {
	if from == to {
		return value
	}
	f, err := from.squareMetersPer()
	if err != nil {
		return value
	}
	t, err := to.squareMetersPer()
	if err != nil {
		return value
	}
	return value * f / t
}

// ConvertLength converts a single length between units.
func ConvertLength(value float64, from, to LengthUnit) float64 {
	if from == to {
		return value
	}
	f, err := from.metersPer()
	if err != nil {
		return value
	}
	t, err := to.metersPer()
	if err != nil {
		return value
	}
	return value * f / t
}

// ConvertLengths converts every value and returns a new slice.
func ConvertLengths(values []float64, from, to LengthUnit) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = ConvertLength(v, from, to)
	}
	return out
}
