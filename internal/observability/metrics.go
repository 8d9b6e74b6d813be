// ABOUTME: Prometheus collectors for measurement sessions
// ABOUTME: Counts vertices, bridge traffic, dropped tracking samples and saves

package observability

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Vertex sources.
const (
	SourceTap      = "tap"
	SourceTracking = "tracking"
	SourceManual   = "manual"
)

// Bridge directions.
const (
	DirectionOut = "out"
	DirectionIn  = "in"
)

// Metrics bundles the counters shared by the session, bridge and tracking controller.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	gatherer prometheus.Gatherer

	VerticesAdded  *prometheus.CounterVec
	BridgeMessages *prometheus.CounterVec
	SamplesDropped prometheus.Counter
	Saves          *prometheus.CounterVec
}

// New registers the collectors against reg, defaulting to the global registry when nil.
func New(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	vertices, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "acreage_vertices_added_total",
		Help: "Vertices appended to measured polygons, labeled by source.",
	}, []string{"source"}))
	if err != nil {
		return nil, err
	}

	messages, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "acreage_bridge_messages_total",
		Help: "Render bridge messages, labeled by direction and message type.",
	}, []string{"direction", "type"}))
	if err != nil {
		return nil, err
	}

	dropped, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "acreage_tracking_samples_dropped_total",
		Help: "Position samples delivered after live tracking was disarmed.",
	}))
	if err != nil {
		return nil, err
	}

	saves, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "acreage_saves_total",
		Help: "Area record saves, labeled by result (ok, invalid, failed).",
	}, []string{"result"}))
	if err != nil {
		return nil, err
	}

	return &Metrics{
		gatherer:       gatherer,
		VerticesAdded:  vertices,
		BridgeMessages: messages,
		SamplesDropped: dropped,
		Saves:          saves,
	}, nil
}

// Gatherer returns the gatherer paired with the registerer used at construction.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	if m == nil {
		return prometheus.DefaultGatherer
	}
	return m.gatherer
}

// VertexAdded records one appended vertex.
func (m *Metrics) VertexAdded(source string) {
	if m == nil {
		return
	}
	m.VerticesAdded.WithLabelValues(source).Inc()
}

// BridgeMessage records one bridge message.
func (m *Metrics) BridgeMessage(direction, msgType string) {
	if m == nil {
		return
	}
	m.BridgeMessages.WithLabelValues(direction, msgType).Inc()
}

// SampleDropped records a late tracking sample.
func (m *Metrics) SampleDropped() {
	if m == nil {
		return
	}
	m.SamplesDropped.Inc()
}

// SaveResult records the outcome of a save.
func (m *Metrics) SaveResult(result string) {
	if m == nil {
		return
	}
	m.Saves.WithLabelValues(result).Inc()
}

func registerCounterVec(reg prometheus.Registerer, c *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			existing, ok := are.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				return nil, fmt.Errorf("collector type mismatch: %T", are.ExistingCollector)
			}
			return existing, nil
		}
		return nil, err
	}
	return c, nil
}

func registerCounter(reg prometheus.Registerer, c prometheus.Counter) (prometheus.Counter, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			existing, ok := are.ExistingCollector.(prometheus.Counter)
			if !ok {
				return nil, fmt.Errorf("collector type mismatch: %T", are.ExistingCollector)
			}
			return existing, nil
		}
		return nil, err
	}
	return c, nil
}
