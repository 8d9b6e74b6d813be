package bridge

import (
	"encoding/json"
	"testing"

	"github.com/harper/acreage/internal/geometry"
	"github.com/harper/acreage/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeFlattensEnvelope(t *testing.T) {
	data, err := Encode(CenterMap{Region: models.Region{Latitude: 1, Longitude: 2, LatitudeDelta: 0.01, LongitudeDelta: 0.01}})
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "centerMap", raw["type"])
	region, ok := raw["region"].(map[string]any)
	require.True(t, ok, "region should be a top-level member")
	assert.Equal(t, 1.0, region["latitude"])
}

func TestEncodeEmptyPayload(t *testing.T) {
	data, err := Encode(ClearPolygon{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"clearPolygon"}`, string(data))

	data, err = Encode(Ready{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"ready"}`, string(data))
}

func TestEncodeUpdatePolygonFields(t *testing.T) {
	vs := []models.Vertex{{Latitude: 0, Longitude: 0}, {Latitude: 0, Longitude: 0.001}, {Latitude: 0.001, Longitude: 0.001}}
	res := geometry.Compute(vs, geometry.Hectares, geometry.Meters)
	data, err := Encode(UpdatePolygon{PolygonCoords: vs, Result: res})
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	for _, key := range []string{"type", "polygonCoords", "area", "areaUnit", "areaCenter", "sideLengths", "lengthUnit"} {
		assert.Contains(t, raw, key)
	}
	assert.Len(t, raw["sideLengths"], 3)
}

func TestDecodeEachVariant(t *testing.T) {
	vs := []models.Vertex{{Latitude: 1, Longitude: 1}, {Latitude: 1, Longitude: 2}, {Latitude: 2, Longitude: 2}}
	msgs := []Message{
		Init{Region: models.RegionAround(vs[0]), MapLayer: LayerSatellite, Layers: DefaultLayers()},
		UpdatePolygon{PolygonCoords: vs, Result: geometry.Compute(vs, geometry.SquareKilometers, geometry.Kilometers)},
		ClearPolygon{},
		CenterMap{Region: models.RegionAround(vs[1])},
		ToggleMapLayer{MapLayer: LayerStreet},
		MapClick{Coordinate: vs[2]},
		Ready{},
	}
	for _, m := range msgs {
		t.Run(string(m.Type()), func(t *testing.T) {
			data, err := Encode(m)
			require.NoError(t, err)
			got, err := Decode(data)
			require.NoError(t, err)
			assert.Equal(t, m.Type(), got.Type())
		})
	}
}

func TestDecodeMapClickCoordinate(t *testing.T) {
	m, err := Decode([]byte(`{"type":"mapClick","coordinate":{"latitude":-23.5,"longitude":-46.6}}`))
	require.NoError(t, err)
	click, ok := m.(MapClick)
	require.True(t, ok)
	assert.Equal(t, models.Vertex{Latitude: -23.5, Longitude: -46.6}, click.Coordinate)
}

func TestDecodeRejectsUnknownType(t *testing.T) {
	_, err := Decode([]byte(`{"type":"zoomIn","level":3}`))
	assert.ErrorIs(t, err, ErrUnknownMessage)

	_, err = Decode([]byte(`{"level":3}`))
	assert.ErrorIs(t, err, ErrUnknownMessage)
}

func TestDecodeMalformed(t *testing.T) {
	_, err := Decode([]byte(`not json`))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnknownMessage)

	_, err = Decode([]byte(`{"type":"mapClick","coordinate":"here"}`))
	require.Error(t, err)
}

func TestMessageDirection(t *testing.T) {
	assert.True(t, TypeInit.Outbound())
	assert.True(t, TypeToggleMapLayer.Outbound())
	assert.False(t, TypeMapClick.Outbound())
	assert.False(t, TypeReady.Outbound())
}

func TestLayerTable(t *testing.T) {
	layers := DefaultLayers()
	require.NoError(t, layers.Validate())
	assert.Equal(t, LayerStreet, layers.Default())
	assert.Equal(t, LayerSatellite, layers.Next(LayerStreet))
	assert.Equal(t, LayerStreet, layers.Next(LayerSatellite))
	assert.Equal(t, LayerStreet, layers.Next("bogus"))
	assert.Equal(t, []string{LayerStreet, LayerSatellite}, layers.Names())

	sat, ok := layers.Lookup(LayerSatellite)
	require.True(t, ok)
	assert.Equal(t, DefaultMaxZoom, sat.MaxZoom)
	assert.Contains(t, sat.URL, "arcgisonline")

	dup := LayerTable{layers[0], layers[0]}
	assert.Error(t, dup.Validate())
	assert.Error(t, LayerTable{}.Validate())
	assert.Error(t, LayerTable{{Name: "x", MaxZoom: 3}}.Validate())
}
