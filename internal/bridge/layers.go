// ABOUTME: Static table of base map layers handed to the surface on init
// ABOUTME: Names, tile URL templates, zoom limits and attribution

package bridge

import (
	"errors"
	"fmt"
	"strings"
)

// Built-in layer names.
const (
	LayerStreet    = "street"
	LayerSatellite = "satellite"
)

// DefaultMaxZoom is the tile zoom ceiling for the built-in layers.
const DefaultMaxZoom = 19

// Layer is one base tile layer.
type Layer struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	MaxZoom     int    `json:"maxZoom"`
	Attribution string `json:"attribution,omitempty"`
}

// LayerTable is an ordered set of layers. The first entry is the default.
type LayerTable []Layer

// DefaultLayers returns the street and satellite layers.
func DefaultLayers() LayerTable {
	return LayerTable{
		{
			Name:        LayerStreet,
			URL:         "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png",
			MaxZoom:     DefaultMaxZoom,
			Attribution: "&copy; OpenStreetMap contributors",
		},
		{
			Name:        LayerSatellite,
			URL:         "https://services.arcgisonline.com/arcgis/rest/services/World_Imagery/MapServer/tile/{z}/{y}/{x}",
			MaxZoom:     DefaultMaxZoom,
			Attribution: "Tiles &copy; Esri",
		},
	}
}

// Validate checks the table has unique, non-empty names and URLs.
func (t LayerTable) Validate() error {
	if len(t) == 0 {
		return errors.New("layer table is empty")
	}
	seen := make(map[string]bool, len(t))
	for i, l := range t {
		if strings.TrimSpace(l.Name) == "" {
			return fmt.Errorf("layer %d has no name", i)
		}
		if strings.TrimSpace(l.URL) == "" {
			return fmt.Errorf("layer %q has no tile url", l.Name)
		}
		if l.MaxZoom <= 0 {
			return fmt.Errorf("layer %q has invalid max zoom %d", l.Name, l.MaxZoom)
		}
		if seen[l.Name] {
			return fmt.Errorf("duplicate layer %q", l.Name)
		}
		seen[l.Name] = true
	}
	return nil
}

// Lookup finds a layer by name.
func (t LayerTable) Lookup(name string) (Layer, bool) {
	for _, l := range t {
		if l.Name == name {
			return l, true
		}
	}
	return Layer{}, false
}

// Default is the name of the first layer.
func (t LayerTable) Default() string {
	if len(t) == 0 {
		return ""
	}
	return t[0].Name
}

// Next returns the layer after current, wrapping around.
func (t LayerTable) Next(current string) string {
	for i, l := range t {
		if l.Name == current {
			return t[(i+1)%len(t)].Name
		}
	}
	return t.Default()
}

// Names lists the layer names in table order.
func (t LayerTable) Names() []string {
	out := make([]string, len(t))
	for i, l := range t {
		out[i] = l.Name
	}
	return out
}
