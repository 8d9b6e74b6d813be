// ABOUTME: Live tracking controller that turns a position stream into polygon vertices
// ABOUTME: Two states, armed and disarmed; late samples from a stopped watch are dropped

package tracking

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/harper/acreage/internal/locate"
	"github.com/harper/acreage/internal/logging"
	"github.com/harper/acreage/internal/models"
	"github.com/harper/acreage/internal/observability"
)

// Options configures a Controller.
type Options struct {
	Watch   locate.WatchOptions
	Logger  *log.Logger
	Metrics *observability.Metrics
}

// ErrClosed is returned by Start once the controller has been closed.
var ErrClosed = errors.New("tracking closed")

// Handler receives an accepted sample with the generation of the watch that
// produced it. See Controller.Live.
type Handler func(gen uint64, v models.Vertex)

// Controller owns at most one live subscription at a time.
type Controller struct {
	source  locate.Source
	watch   locate.WatchOptions
	logger  *log.Logger
	metrics *observability.Metrics

	mu     sync.Mutex
	armed  bool
	closed bool
	gen    uint64
	sub    locate.Subscription
}

// New creates a disarmed controller over source.
func New(source locate.Source, opts Options) *Controller {
	watch := opts.Watch
	if watch == (locate.WatchOptions{}) {
		watch = locate.DefaultWatchOptions()
	}
	return &Controller{
		source:  source,
		watch:   watch,
		logger:  logging.OrDiscard(opts.Logger).WithPrefix("tracking"),
		metrics: opts.Metrics,
	}
}

// Armed reports whether tracking is on.
func (c *Controller) Armed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.armed
}

// Live reports whether gen is the generation of the current armed watch.
// Consumers that queue samples check it again before applying one.
func (c *Controller) Live(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.armed && c.gen == gen
}

// Start arms the controller and subscribes to the source. Each accepted sample is
// passed to fn. Starting an armed controller does nothing. If the subscription
// cannot be opened the controller rolls back to disarmed and the error wraps
// locate.ErrUnavailable. After Close, Start returns ErrClosed.
func (c *Controller) Start(ctx context.Context, fn Handler) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.armed {
		c.mu.Unlock()
		return nil
	}
	c.armed = true
	c.gen++
	gen := c.gen
	c.mu.Unlock()

	sub, err := c.source.Watch(ctx, c.watch, func(v models.Vertex) {
		c.deliver(gen, v, fn)
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		if c.gen == gen {
			c.armed = false
		}
		c.logger.Warn("could not start tracking", "err", err)
		if !errors.Is(err, locate.ErrUnavailable) {
			err = fmt.Errorf("%w: %v", locate.ErrUnavailable, err)
		}
		return err
	}
	if c.gen != gen {
		// Stopped while the watch was opening.
		sub.Remove()
		return nil
	}
	c.sub = sub
	c.logger.Info("tracking armed",
		"min_interval", c.watch.MinInterval,
		"min_distance_m", c.watch.MinDistance)
	return nil
}

// Stop disarms the controller and releases the subscription. Safe to call repeatedly.
func (c *Controller) Stop() {
	c.mu.Lock()
	if !c.armed {
		c.mu.Unlock()
		return
	}
	c.armed = false
	c.gen++
	sub := c.sub
	c.sub = nil
	c.mu.Unlock()

	if sub != nil {
		sub.Remove()
	}
	c.logger.Info("tracking disarmed")
}

// Close stops tracking and refuses further starts.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.Stop()
}

func (c *Controller) deliver(gen uint64, v models.Vertex, fn Handler) {
	c.mu.Lock()
	live := c.armed && c.gen == gen
	c.mu.Unlock()
	if !live {
		c.metrics.SampleDropped()
		c.logger.Debug("dropped late sample", "vertex", v.String())
		return
	}
	fn(gen, v)
}
