// ABOUTME: Measurement session actor owning the polygon, geometry and map region
// ABOUTME: Taps, tracking samples and commands run one at a time on a single goroutine

package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/harper/acreage/internal/bridge"
	"github.com/harper/acreage/internal/geometry"
	"github.com/harper/acreage/internal/locate"
	"github.com/harper/acreage/internal/logging"
	"github.com/harper/acreage/internal/models"
	"github.com/harper/acreage/internal/observability"
	"github.com/harper/acreage/internal/storage"
	"github.com/harper/acreage/internal/tracking"
)

// DefaultRegion is shown when no device position is available.
func DefaultRegion() models.Region {
	return models.Region{
		Latitude:       37.78825,
		Longitude:      -122.4324,
		LatitudeDelta:  0.0922,
		LongitudeDelta: 0.0421,
	}
}

// Refresher is told about every successful save, e.g. to reload a saved-areas list.
type Refresher interface {
	Refresh(ctx context.Context, rec *models.AreaRecord)
}

// RefresherFunc adapts a function to Refresher.
type RefresherFunc func(ctx context.Context, rec *models.AreaRecord)

// Refresh calls f.
func (f RefresherFunc) Refresh(ctx context.Context, rec *models.AreaRecord) { f(ctx, rec) }

// Options configures a Session. Bridge is required.
type Options struct {
	Bridge        bridge.Commands
	Source        locate.Source
	Repo          storage.AreaRepository
	Owner         string
	Layers        bridge.LayerTable
	DefaultRegion *models.Region
	Watch         locate.WatchOptions
	Refresher     Refresher
	Logger        *log.Logger
	Metrics       *observability.Metrics
	Now           func() time.Time
}

// State is a copy of everything a session displays.
type State struct {
	Vertices    []models.Vertex
	Result      geometry.Result
	Region      models.Region
	Layer       string
	AreaUnit    geometry.AreaUnit
	LengthUnit  geometry.LengthUnit
	EditingID   uuid.UUID
	EditingName string
	Tracking    bool
}

// Editing reports whether the polygon belongs to a saved record.
func (s State) Editing() bool {
	return s.EditingID != uuid.Nil
}

// Session is one editing session. All mutable fields below the actor block are
// only touched from the actor goroutine.
type Session struct {
	bridge    bridge.Commands
	source    locate.Source
	repo      storage.AreaRepository
	owner     string
	layers    bridge.LayerTable
	refresher Refresher
	tracker   *tracking.Controller
	logger    *log.Logger
	metrics   *observability.Metrics
	now       func() time.Time

	ctx       context.Context
	cancel    context.CancelFunc
	ops       chan func()
	done      chan struct{}
	closeOnce sync.Once

	// actor state
	vertices    []models.Vertex
	raw         geometry.Result
	region      models.Region
	layer       string
	areaUnit    geometry.AreaUnit
	lengthUnit  geometry.LengthUnit
	editingID   uuid.UUID
	editingName string
}

var _ bridge.Handler = (*Session)(nil)

// New creates a session and starts its actor. Nothing is sent to the surface
// until Open or SurfaceReady.
func New(opts Options) (*Session, error) {
	if opts.Bridge == nil {
		return nil, errors.New("session requires a bridge")
	}
	layers := opts.Layers
	if len(layers) == 0 {
		layers = bridge.DefaultLayers()
	}
	region := DefaultRegion()
	if opts.DefaultRegion != nil {
		region = *opts.DefaultRegion
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	logger := logging.OrDiscard(opts.Logger).WithPrefix("session")

	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		bridge:    opts.Bridge,
		source:    opts.Source,
		repo:      opts.Repo,
		owner:     opts.Owner,
		layers:    layers,
		refresher: opts.Refresher,
		logger:    logger,
		metrics:   opts.Metrics,
		now:       now,

		ctx:    ctx,
		cancel: cancel,
		ops:    make(chan func(), 32),
		done:   make(chan struct{}),

		raw:        geometry.Compute(nil, geometry.Hectares, geometry.Meters),
		region:     region,
		layer:      layers.Default(),
		areaUnit:   geometry.DefaultAreaUnit,
		lengthUnit: geometry.DefaultLengthUnit,
	}
	if opts.Source != nil {
		s.tracker = tracking.New(opts.Source, tracking.Options{
			Watch:   opts.Watch,
			Logger:  opts.Logger,
			Metrics: opts.Metrics,
		})
	}

	go s.run()
	return s, nil
}

func (s *Session) run() {
	defer close(s.done)
	for {
		select {
		case fn := <-s.ops:
			fn()
		case <-s.ctx.Done():
			return
		}
	}
}

// call runs fn on the actor and waits for its result.
func (s *Session) call(ctx context.Context, fn func() error) error {
	result := make(chan error, 1)
	op := func() { result <- fn() }

	select {
	case s.ops <- op:
	case <-s.done:
		return ErrClosed
	case <-s.ctx.Done():
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-result:
		return err
	case <-s.done:
		return ErrClosed
	}
}

// post queues fn on the actor without waiting. Dropped after Close.
func (s *Session) post(fn func()) {
	select {
	case s.ops <- fn:
	case <-s.ctx.Done():
	}
}

// scoped returns a context cancelled by either ctx or session Close.
func (s *Session) scoped(ctx context.Context) (context.Context, context.CancelFunc) {
	merged, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(s.ctx, cancel)
	return merged, func() {
		stop()
		cancel()
	}
}

// Close cancels in-flight location calls, releases tracking and stops the actor.
// Any unsaved polygon is discarded. Safe to call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		if s.tracker != nil {
			s.tracker.Close()
		}
		s.cancel()
		<-s.done
		s.logger.Debug("session closed")
	})
}

// Snapshot returns a copy of the session state.
func (s *Session) Snapshot(ctx context.Context) (State, error) {
	var st State
	err := s.call(ctx, func() error {
		st = State{
			Vertices:    models.CopyVertices(s.vertices),
			Result:      s.display(),
			Region:      s.region,
			Layer:       s.layer,
			AreaUnit:    s.areaUnit,
			LengthUnit:  s.lengthUnit,
			EditingID:   s.editingID,
			EditingName: s.editingName,
			Tracking:    s.tracker != nil && s.tracker.Armed(),
		}
		st.Result.SideLengths = append([]float64{}, st.Result.SideLengths...)
		return nil
	})
	return st, err
}

// display is the raw result expressed in the chosen units.
func (s *Session) display() geometry.Result {
	return s.raw.Convert(s.areaUnit, s.lengthUnit)
}

// recompute rebuilds the raw figures from scratch.
func (s *Session) recompute() {
	s.raw = geometry.Compute(s.vertices, geometry.Hectares, geometry.Meters)
}

// pushPolygon sends the full polygon state. Failures are logged; the surface
// resynchronizes on its next ready signal.
func (s *Session) pushPolygon() {
	if err := s.bridge.UpdatePolygon(s.ctx, s.vertices, s.display()); err != nil {
		s.logger.Warn("could not push polygon", "err", err)
	}
}

func (s *Session) pushInit() {
	if err := s.bridge.Init(s.ctx, s.region, s.layer); err != nil {
		s.logger.Warn("could not initialize surface", "err", err)
	}
}
