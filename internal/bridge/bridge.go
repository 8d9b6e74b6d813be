// ABOUTME: Host-side bridge endpoint: typed commands out, click and ready events in
// ABOUTME: Holds no state beyond the last message sent

package bridge

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/harper/acreage/internal/geometry"
	"github.com/harper/acreage/internal/logging"
	"github.com/harper/acreage/internal/models"
	"github.com/harper/acreage/internal/observability"
)

// Commands is the set of imperative controls the host exposes over the surface.
type Commands interface {
	Init(ctx context.Context, region models.Region, layer string) error
	UpdatePolygon(ctx context.Context, coords []models.Vertex, res geometry.Result) error
	ClearPolygon(ctx context.Context) error
	CenterMap(ctx context.Context, region models.Region) error
	ToggleMapLayer(ctx context.Context, layer string) error
}

// Handler receives inbound surface events.
type Handler interface {
	MapClick(v models.Vertex)
	SurfaceReady()
}

// ErrUnknownLayer is returned when a command names a layer outside the table.
var ErrUnknownLayer = errors.New("unknown map layer")

// Options configures a Bridge.
type Options struct {
	Logger  *log.Logger
	Metrics *observability.Metrics
}

// Bridge is the host endpoint.
type Bridge struct {
	transport Transport
	layers    LayerTable
	logger    *log.Logger
	metrics   *observability.Metrics

	sendMu sync.Mutex
	last   Message

	mu      sync.RWMutex
	handler Handler
}

var _ Commands = (*Bridge)(nil)

// New wires a bridge onto t and starts listening for inbound messages.
func New(t Transport, layers LayerTable, opts Options) *Bridge {
	if len(layers) == 0 {
		layers = DefaultLayers()
	}
	b := &Bridge{
		transport: t,
		layers:    layers,
		logger:    logging.OrDiscard(opts.Logger).WithPrefix("bridge"),
		metrics:   opts.Metrics,
	}
	t.Listen(b.receive)
	return b
}

// Layers returns the configured layer table.
func (b *Bridge) Layers() LayerTable {
	return b.layers
}

// SetHandler registers the receiver of inbound events.
func (b *Bridge) SetHandler(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handler = h
}

// Last returns the most recent message sent, or nil.
func (b *Bridge) Last() Message {
	b.sendMu.Lock()
	defer b.sendMu.Unlock()
	return b.last
}

// Init sends the full initialization message including the layer table.
func (b *Bridge) Init(ctx context.Context, region models.Region, layer string) error {
	if _, ok := b.layers.Lookup(layer); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownLayer, layer)
	}
	return b.send(ctx, Init{Region: region, MapLayer: layer, Layers: b.layers})
}

// UpdatePolygon sends a full polygon redraw.
func (b *Bridge) UpdatePolygon(ctx context.Context, coords []models.Vertex, res geometry.Result) error {
	return b.send(ctx, UpdatePolygon{PolygonCoords: models.CopyVertices(coords), Result: res})
}

// ClearPolygon removes the polygon from the surface.
func (b *Bridge) ClearPolygon(ctx context.Context) error {
	return b.send(ctx, ClearPolygon{})
}

// CenterMap moves the surface view.
func (b *Bridge) CenterMap(ctx context.Context, region models.Region) error {
	return b.send(ctx, CenterMap{Region: region})
}

// ToggleMapLayer selects a base layer on the surface.
func (b *Bridge) ToggleMapLayer(ctx context.Context, layer string) error {
	if _, ok := b.layers.Lookup(layer); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownLayer, layer)
	}
	return b.send(ctx, ToggleMapLayer{MapLayer: layer})
}

// Close shuts the transport down.
func (b *Bridge) Close() error {
	return b.transport.Close()
}

func (b *Bridge) send(ctx context.Context, m Message) error {
	data, err := Encode(m)
	if err != nil {
		return err
	}

	b.sendMu.Lock()
	defer b.sendMu.Unlock()
	if err := b.transport.Send(ctx, data); err != nil {
		return fmt.Errorf("failed to send %s: %w", m.Type(), err)
	}
	b.last = m
	b.metrics.BridgeMessage(observability.DirectionOut, string(m.Type()))
	b.logger.Debug("sent", "type", m.Type())
	return nil
}

func (b *Bridge) receive(data []byte) {
	m, err := Decode(data)
	if err != nil {
		b.metrics.BridgeMessage(observability.DirectionIn, "invalid")
		b.logger.Warn("rejected inbound message", "err", err)
		return
	}
	b.metrics.BridgeMessage(observability.DirectionIn, string(m.Type()))

	b.mu.RLock()
	h := b.handler
	b.mu.RUnlock()

	switch msg := m.(type) {
	case MapClick:
		if h != nil {
			h.MapClick(msg.Coordinate)
		}
	case Ready:
		b.logger.Debug("surface ready")
		if h != nil {
			h.SurfaceReady()
		}
	default:
		b.logger.Warn("ignoring host-bound copy of outbound message", "type", m.Type())
	}
}
