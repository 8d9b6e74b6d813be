// ABOUTME: Render bridge wire protocol: tagged-union messages in a JSON envelope
// ABOUTME: Encode flattens {type, ...payload}; Decode rejects unknown types

package bridge

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/harper/acreage/internal/geometry"
	"github.com/harper/acreage/internal/models"
)

// MessageType names a protocol variant.
type MessageType string

// Protocol variants.
const (
	TypeInit           MessageType = "init"
	TypeUpdatePolygon  MessageType = "updatePolygon"
	TypeClearPolygon   MessageType = "clearPolygon"
	TypeCenterMap      MessageType = "centerMap"
	TypeToggleMapLayer MessageType = "toggleMapLayer"
	TypeMapClick       MessageType = "mapClick"
	TypeReady          MessageType = "ready"
)

// ErrUnknownMessage is returned by Decode for a type outside the protocol.
var ErrUnknownMessage = errors.New("unknown bridge message type")

// Message is one protocol variant.
type Message interface {
	Type() MessageType
}

// Init (re)initializes the surface. Safe to send repeatedly.
type Init struct {
	Region   models.Region `json:"region"`
	MapLayer string        `json:"mapLayer"`
	Layers   LayerTable    `json:"layers,omitempty"`
}

// UpdatePolygon is a full redraw of the polygon and its labels.
type UpdatePolygon struct {
	PolygonCoords []models.Vertex `json:"polygonCoords"`
	geometry.Result
}

// ClearPolygon removes the polygon and every derived marker.
type ClearPolygon struct{}

// CenterMap moves the view without touching the polygon.
type CenterMap struct {
	Region models.Region `json:"region"`
}

// ToggleMapLayer swaps the base tile layer.
type ToggleMapLayer struct {
	MapLayer string `json:"mapLayer"`
}

// MapClick is sent by the surface when the user taps the map.
type MapClick struct {
	Coordinate models.Vertex `json:"coordinate"`
}

// Ready is sent by the surface once it has (re)loaded and can accept init.
type Ready struct{}

func (Init) Type() MessageType           { return TypeInit }
func (UpdatePolygon) Type() MessageType  { return TypeUpdatePolygon }
func (ClearPolygon) Type() MessageType   { return TypeClearPolygon }
func (CenterMap) Type() MessageType      { return TypeCenterMap }
func (ToggleMapLayer) Type() MessageType { return TypeToggleMapLayer }
func (MapClick) Type() MessageType       { return TypeMapClick }
func (Ready) Type() MessageType          { return TypeReady }

// Outbound reports whether t travels host to surface.
func (t MessageType) Outbound() bool {
	switch t {
	case TypeInit, TypeUpdatePolygon, TypeClearPolygon, TypeCenterMap, TypeToggleMapLayer:
		return true
	}
	return false
}

// Encode serializes m as a flat JSON object with a leading "type" member.
func Encode(m Message) ([]byte, error) {
	if m == nil {
		return nil, errors.New("nil bridge message")
	}
	body, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", m.Type(), err)
	}
	typ, err := json.Marshal(string(m.Type()))
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(body)+len(typ)+10)
	out = append(out, `{"type":`...)
	out = append(out, typ...)
	if len(body) > 2 {
		out = append(out, ',')
		out = append(out, body[1:]...)
	} else {
		out = append(out, '}')
	}
	return out, nil
}

// Decode parses one envelope into its variant.
func Decode(data []byte) (Message, error) {
	var env struct {
		Type MessageType `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to decode bridge message: %w", err)
	}

	var m Message
	switch env.Type {
	case TypeInit:
		var v Init
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, decodeErr(env.Type, err)
		}
		m = v
	case TypeUpdatePolygon:
		var v UpdatePolygon
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, decodeErr(env.Type, err)
		}
		m = v
	case TypeClearPolygon:
		m = ClearPolygon{}
	case TypeCenterMap:
		var v CenterMap
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, decodeErr(env.Type, err)
		}
		m = v
	case TypeToggleMapLayer:
		var v ToggleMapLayer
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, decodeErr(env.Type, err)
		}
		m = v
	case TypeMapClick:
		var v MapClick
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, decodeErr(env.Type, err)
		}
		m = v
	case TypeReady:
		m = Ready{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMessage, string(env.Type))
	}
	return m, nil
}

func decodeErr(t MessageType, err error) error {
	return fmt.Errorf("failed to decode %s: %w", t, err)
}
