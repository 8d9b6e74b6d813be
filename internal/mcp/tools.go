// ABOUTME: MCP tool definitions and handlers
// ABOUTME: Provides polygon measurement and saved-area CRUD for AI agents

package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/harper/acreage/internal/export"
	"github.com/harper/acreage/internal/geometry"
	"github.com/harper/acreage/internal/models"
	"github.com/harper/acreage/internal/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerTools() {
	s.registerMeasurePolygonTool()
	s.registerSaveAreaTool()
	s.registerGetAreaTool()
	s.registerListAreasTool()
	s.registerDeleteAreaTool()
	s.registerExportAreaTool()
}

var coordsSchema = map[string]interface{}{
	"type":        "array",
	"description": "Polygon vertices in drawing order; the ring closes automatically",
	"items": map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"latitude":  map[string]interface{}{"type": "number", "description": "Latitude (-90 to 90)"},
			"longitude": map[string]interface{}{"type": "number", "description": "Longitude (-180 to 180)"},
		},
		"required": []string{"latitude", "longitude"},
	},
}

var unitProperties = map[string]interface{}{
	"area_unit": map[string]interface{}{
		"type":        "string",
		"description": "Area unit: ha (default), m2 or km2",
	},
	"length_unit": map[string]interface{}{
		"type":        "string",
		"description": "Length unit: m (default) or km",
	},
}

func textResult(output any) *mcp.CallToolResult {
	jsonBytes, _ := json.MarshalIndent(output, "", "  ") //nolint:errchkjson // output is always serializable
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(jsonBytes)}},
	}
}

func parseUnits(areaUnit, lengthUnit string) (geometry.AreaUnit, geometry.LengthUnit, error) {
	au, lu := geometry.DefaultAreaUnit, geometry.DefaultLengthUnit
	var err error
	if areaUnit != "" {
		if au, err = geometry.ParseAreaUnit(areaUnit); err != nil {
			return "", "", err
		}
	}
	if lengthUnit != "" {
		if lu, err = geometry.ParseLengthUnit(lengthUnit); err != nil {
			return "", "", err
		}
	}
	return au, lu, nil
}

func validateCoords(coords []models.Vertex) error {
	for i, v := range coords {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("vertex %d: %w", i+1, err)
		}
	}
	return nil
}

// MeasurementOutput is the derived geometry of a polygon.
type MeasurementOutput struct {
	Points      int            `json:"points"`
	Area        float64        `json:"area"`
	AreaUnit    string         `json:"area_unit"`
	Perimeter   float64        `json:"perimeter"`
	SideLengths []float64      `json:"side_lengths"`
	LengthUnit  string         `json:"length_unit"`
	Center      *models.Vertex `json:"center,omitempty"`
}

func measure(coords []models.Vertex, au geometry.AreaUnit, lu geometry.LengthUnit) MeasurementOutput {
	res := geometry.Compute(coords, au, lu)
	var perimeter float64
	for _, l := range res.SideLengths {
		perimeter += l
	}
	return MeasurementOutput{
		Points:      len(coords),
		Area:        res.Area,
		AreaUnit:    string(res.AreaUnit),
		Perimeter:   perimeter,
		SideLengths: res.SideLengths,
		LengthUnit:  string(res.LengthUnit),
		Center:      res.Centroid,
	}
}

// MeasurePolygonInput defines input for measure_polygon tool.
type MeasurePolygonInput struct {
	Coords     []models.Vertex `json:"coords"`
	AreaUnit   string          `json:"area_unit,omitempty"`
	LengthUnit string          `json:"length_unit,omitempty"`
}

func (s *Server) registerMeasurePolygonTool() {
	props := map[string]interface{}{"coords": coordsSchema}
	for k, v := range unitProperties {
		props[k] = v
	}
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "measure_polygon",
		Description: "Compute the area, side lengths, perimeter and centroid of a polygon on the Earth's surface. Nothing is saved.",
		InputSchema: map[string]interface{}{
			"type":       "object",
			"properties": props,
			"required":   []string{"coords"},
		},
	}, s.handleMeasurePolygon)
}

func (s *Server) handleMeasurePolygon(_ context.Context, req *mcp.CallToolRequest, input MeasurePolygonInput) (*mcp.CallToolResult, MeasurementOutput, error) {
	if err := validateCoords(input.Coords); err != nil {
		return nil, MeasurementOutput{}, err
	}
	au, lu, err := parseUnits(input.AreaUnit, input.LengthUnit)
	if err != nil {
		return nil, MeasurementOutput{}, err
	}

	output := measure(input.Coords, au, lu)
	return textResult(output), output, nil
}

// AreaOutput defines output for area tools.
type AreaOutput struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Hectares    float64           `json:"hectares"`
	Coords      []models.Vertex   `json:"coords"`
	UpdatedAt   time.Time         `json:"updated_at"`
	Measurement MeasurementOutput `json:"measurement"`
}

func toAreaOutput(rec *models.AreaRecord, au geometry.AreaUnit, lu geometry.LengthUnit) AreaOutput {
	if au == "" {
		au = geometry.DefaultAreaUnit
	}
	if lu == "" {
		lu = geometry.DefaultLengthUnit
	}
	return AreaOutput{
		ID:          rec.ID.String(),
		Name:        rec.Name,
		Hectares:    rec.Hectares,
		Coords:      rec.Vertices,
		UpdatedAt:   rec.UpdatedAt,
		Measurement: measure(rec.Vertices, au, lu),
	}
}

// SaveAreaInput defines input for save_area tool.
type SaveAreaInput struct {
	Name   string          `json:"name"`
	Coords []models.Vertex `json:"coords"`
}

func (s *Server) registerSaveAreaTool() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "save_area",
		Description: "Save a named polygon. Saving under an existing name replaces that area's boundary.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Name of the area (e.g., 'north field')",
				},
				"coords": coordsSchema,
			},
			"required": []string{"name", "coords"},
		},
	}, s.handleSaveArea)
}

func (s *Server) handleSaveArea(ctx context.Context, req *mcp.CallToolRequest, input SaveAreaInput) (*mcp.CallToolResult, AreaOutput, error) {
	name := strings.TrimSpace(input.Name)
	if err := models.ValidateName(name); err != nil {
		return nil, AreaOutput{}, err
	}
	if len(input.Coords) < geometry.MinVertices {
		return nil, AreaOutput{}, fmt.Errorf("need at least %d points, have %d", geometry.MinVertices, len(input.Coords))
	}
	if err := validateCoords(input.Coords); err != nil {
		return nil, AreaOutput{}, err
	}

	rec := models.NewAreaRecord(name, s.owner, input.Coords, geometry.Compute(input.Coords, geometry.Hectares, geometry.Meters).Area)
	existing, err := s.repo.GetAreaByName(ctx, s.owner, name)
	switch {
	case err == nil:
		rec.ID = existing.ID
	case !errors.Is(err, storage.ErrNotFound):
		return nil, AreaOutput{}, fmt.Errorf("failed to look up area: %w", err)
	}

	if err := s.repo.SaveArea(ctx, rec); err != nil {
		return nil, AreaOutput{}, fmt.Errorf("failed to save area: %w", err)
	}

	output := toAreaOutput(rec, "", "")
	return textResult(output), output, nil
}

// GetAreaInput defines input for get_area tool.
type GetAreaInput struct {
	Name       string `json:"name"`
	AreaUnit   string `json:"area_unit,omitempty"`
	LengthUnit string `json:"length_unit,omitempty"`
}

func (s *Server) registerGetAreaTool() {
	props := map[string]interface{}{
		"name": map[string]interface{}{
			"type":        "string",
			"description": "Name of the area",
		},
	}
	for k, v := range unitProperties {
		props[k] = v
	}
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get_area",
		Description: "Get a saved area with its boundary and measurements.",
		InputSchema: map[string]interface{}{
			"type":       "object",
			"properties": props,
			"required":   []string{"name"},
		},
	}, s.handleGetArea)
}

func (s *Server) handleGetArea(ctx context.Context, req *mcp.CallToolRequest, input GetAreaInput) (*mcp.CallToolResult, AreaOutput, error) {
	au, lu, err := parseUnits(input.AreaUnit, input.LengthUnit)
	if err != nil {
		return nil, AreaOutput{}, err
	}
	rec, err := s.repo.GetAreaByName(ctx, s.owner, strings.TrimSpace(input.Name))
	if err != nil {
		return nil, AreaOutput{}, fmt.Errorf("area '%s' not found", input.Name)
	}

	output := toAreaOutput(rec, au, lu)
	return textResult(output), output, nil
}

// ListAreasOutput defines output for list_areas tool.
type ListAreasOutput struct {
	Areas []AreaOutput `json:"areas"`
	Count int          `json:"count"`
}

// ListAreasInput optionally filters by name.
type ListAreasInput struct {
	Search string `json:"search,omitempty"`
}

func (s *Server) registerListAreasTool() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "list_areas",
		Description: "List saved areas, most recently updated first.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"search": map[string]interface{}{
					"type":        "string",
					"description": "Optional case-insensitive name filter",
				},
			},
		},
	}, s.handleListAreas)
}

func (s *Server) handleListAreas(ctx context.Context, req *mcp.CallToolRequest, input ListAreasInput) (*mcp.CallToolResult, ListAreasOutput, error) {
	areas, err := s.repo.ListAreas(ctx, s.owner)
	if err != nil {
		return nil, ListAreasOutput{}, fmt.Errorf("failed to list areas: %w", err)
	}
	areas = storage.FilterByName(areas, input.Search)

	outputs := make([]AreaOutput, len(areas))
	for i, rec := range areas {
		outputs[i] = toAreaOutput(rec, "", "")
	}
	output := ListAreasOutput{
		Areas: outputs,
		Count: len(outputs),
	}
	return textResult(output), output, nil
}

// DeleteAreaInput defines input for delete_area tool.
type DeleteAreaInput struct {
	Name string `json:"name"`
}

// DeleteAreaOutput defines output for delete_area tool.
type DeleteAreaOutput struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (s *Server) registerDeleteAreaTool() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "delete_area",
		Description: "Delete a saved area. This cannot be undone.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Name of the area to delete",
				},
			},
			"required": []string{"name"},
		},
	}, s.handleDeleteArea)
}

func (s *Server) handleDeleteArea(ctx context.Context, req *mcp.CallToolRequest, input DeleteAreaInput) (*mcp.CallToolResult, DeleteAreaOutput, error) {
	rec, err := s.repo.GetAreaByName(ctx, s.owner, strings.TrimSpace(input.Name))
	if err != nil {
		return nil, DeleteAreaOutput{}, fmt.Errorf("area '%s' not found", input.Name)
	}

	if err := s.repo.DeleteArea(ctx, rec.ID); err != nil {
		return nil, DeleteAreaOutput{}, fmt.Errorf("failed to delete area: %w", err)
	}

	output := DeleteAreaOutput{
		Success: true,
		Message: fmt.Sprintf("Deleted '%s'", rec.Name),
	}
	return textResult(output), output, nil
}

// ExportAreaInput defines input for export_area tool.
type ExportAreaInput struct {
	Name   string `json:"name"`
	Format string `json:"format"`
}

// ExportAreaOutput carries the encoded document.
type ExportAreaOutput struct {
	Format   string `json:"format"`
	Document string `json:"document"`
}

func (s *Server) registerExportAreaTool() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "export_area",
		Description: "Export a saved area as geojson, centroids, kml, polyline or wkt.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Name of the area to export",
				},
				"format": map[string]interface{}{
					"type":        "string",
					"description": "Export format (default geojson)",
				},
			},
			"required": []string{"name"},
		},
	}, s.handleExportArea)
}

func (s *Server) handleExportArea(ctx context.Context, req *mcp.CallToolRequest, input ExportAreaInput) (*mcp.CallToolResult, ExportAreaOutput, error) {
	format := export.GeoJSON
	if input.Format != "" {
		f, err := export.ParseFormat(input.Format)
		if err != nil {
			return nil, ExportAreaOutput{}, err
		}
		format = f
	}
	rec, err := s.repo.GetAreaByName(ctx, s.owner, strings.TrimSpace(input.Name))
	if err != nil {
		return nil, ExportAreaOutput{}, fmt.Errorf("area '%s' not found", input.Name)
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, format, []*models.AreaRecord{rec}); err != nil {
		return nil, ExportAreaOutput{}, err
	}
	output := ExportAreaOutput{
		Format:   string(format),
		Document: buf.String(),
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: output.Document}},
	}, output, nil
}
