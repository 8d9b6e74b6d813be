// ABOUTME: Map-surface-side interpreter that applies bridge messages to a scene
// ABOUTME: Mirrors the Leaflet page; used as the headless renderer and in tests

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
)

// DefaultZoom is the view zoom used by init and centerMap.
const DefaultZoom = 17

// ErrNotInitialized is returned for draw messages that arrive before init.
var ErrNotInitialized = errors.New("surface not initialized")

// Label is a permanent text marker on the map.
type Label struct {
	Position models.Vertex
	Text     string
}

// Scene is everything the surface currently shows.
type Scene struct {
	Initialized bool
	BaseLayer   string
	TileURL     string
	Center      models.Vertex
	Zoom        int
	Ring        []models.Vertex
	Markers     []models.Vertex
	AreaLabel   *Label
	EdgeLabels  []Label
}

// HasPolygon reports whether a polygon ring is drawn.
func (s Scene) HasPolygon() bool {
	return len(s.Ring) > 0
}

func (s Scene) clone() Scene {
	out := s
	out.Ring = models.CopyVertices(s.Ring)
	out.Markers = models.CopyVertices(s.Markers)
	if s.AreaLabel != nil {
		l := *s.AreaLabel
		out.AreaLabel = &l
	}
	out.EdgeLabels = append([]Label(nil), s.EdgeLabels...)
	return out
}

// Surface interprets outbound messages arriving on a transport.
type Surface struct {
	transport Transport
	logger    *log.Logger

	mu      sync.Mutex
	scene   Scene
	layers  LayerTable
	applied int
	changed chan struct{}
}

// NewSurface attaches an interpreter to the surface end of a transport.
func NewSurface(t Transport, logger *log.Logger) *Surface {
	s := &Surface{
		transport: t,
		logger:    logging.OrDiscard(logger).WithPrefix("surface"),
		changed:   make(chan struct{}),
	}
	t.Listen(s.receive)
	return s
}

// Scene returns a copy of the current scene.
func (s *Surface) Scene() Scene {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scene.clone()
}

// Applied counts messages applied since creation.
func (s *Surface) Applied() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applied
}

// Changed returns a channel closed on the next applied message.
func (s *Surface) Changed() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.changed
}

// Reload drops all scene state, as a page reload would, and announces readiness.
func (s *Surface) Reload(ctx context.Context) error {
	s.mu.Lock()
	s.scene = Scene{}
	s.layers = nil
	s.mu.Unlock()
	return s.post(ctx, Ready{})
}

// Click reports a tap at v to the host.
func (s *Surface) Click(ctx context.Context, v models.Vertex) error {
	return s.post(ctx, MapClick{Coordinate: v})
}

func (s *Surface) post(ctx context.Context, m Message) error {
	data, err := Encode(m)
	if err != nil {
		return err
	}
	return s.transport.Send(ctx, data)
}

func (s *Surface) receive(data []byte) {
	m, err := Decode(data)
	if err != nil {
		s.logger.Warn("rejected message", "err", err)
		return
	}
	if err := s.Apply(m); err != nil {
		s.logger.Warn("could not apply message", "type", m.Type(), "err", err)
	}
}

// Apply updates the scene for one message.
func (s *Surface) Apply(m Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	switch msg := m.(type) {
	case Init:
		err = s.applyInit(msg)
	case UpdatePolygon:
		err = s.applyUpdate(msg)
	case ClearPolygon:
		if !s.scene.Initialized {
			err = ErrNotInitialized
			break
		}
		s.clearPolygon()
	case CenterMap:
		if !s.scene.Initialized {
			err = ErrNotInitialized
			break
		}
		s.scene.Center = msg.Region.Center()
		s.scene.Zoom = DefaultZoom
	case ToggleMapLayer:
		if !s.scene.Initialized {
			err = ErrNotInitialized
			break
		}
		err = s.selectLayer(msg.MapLayer)
	default:
		err = fmt.Errorf("surface cannot apply %s", m.Type())
	}
	if err != nil {
		return err
	}

	s.applied++
	close(s.changed)
	s.changed = make(chan struct{})
	return nil
}

func (s *Surface) applyInit(msg Init) error {
	if len(msg.Layers) > 0 {
		s.layers = msg.Layers
	} else if s.layers == nil {
		s.layers = DefaultLayers()
	}
	if err := s.selectLayer(msg.MapLayer); err != nil {
		// Unknown layer names fall back to the first one, as the page does.
		if err := s.selectLayer(s.layers.Default()); err != nil {
			return err
		}
	}
	s.scene.Initialized = true
	s.scene.Center = msg.Region.Center()
	s.scene.Zoom = DefaultZoom
	return nil
}

func (s *Surface) selectLayer(name string) error {
	l, ok := s.layers.Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownLayer, name)
	}
	s.scene.BaseLayer = l.Name
	s.scene.TileURL = l.URL
	return nil
}

func (s *Surface) clearPolygon() {
	s.scene.Ring = nil
	s.scene.Markers = nil
	s.scene.AreaLabel = nil
	s.scene.EdgeLabels = nil
}

func (s *Surface) applyUpdate(msg UpdatePolygon) error {
	if !s.scene.Initialized {
		return ErrNotInitialized
	}
	s.clearPolygon()
	coords := msg.PolygonCoords
	if len(coords) == 0 {
		return nil
	}

	s.scene.Ring = models.CopyVertices(coords)
	s.scene.Markers = models.CopyVertices(coords)

	if msg.Area != 0 && msg.Centroid != nil {
		s.scene.AreaLabel = &Label{
			Position: *msg.Centroid,
			Text:     fmt.Sprintf("Area: %.4f %s", msg.Area, msg.AreaUnit.Label()),
		}
	}

	if len(coords) > 1 {
		unit := msg.LengthUnit
		if unit == "" {
			unit = geometry.DefaultLengthUnit
		}
		for i := range coords {
			start := coords[i]
			end := coords[(i+1)%len(coords)]
			length := geometry.ConvertLength(geometry.Distance(start, end), geometry.Meters, unit)
			if i < len(msg.SideLengths) {
				length = msg.SideLengths[i]
			}
			mid := models.Vertex{
				Latitude:  (start.Latitude + end.Latitude) / 2,
				Longitude: (start.Longitude + end.Longitude) / 2,
			}
			s.scene.EdgeLabels = append(s.scene.EdgeLabels, Label{
				Position: mid,
				Text:     fmt.Sprintf("Side %d: %.2f %s", i+1, length, unit),
			})
		}
	}
	return nil
}
