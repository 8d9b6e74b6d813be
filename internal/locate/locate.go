// ABOUTME: Positioning source interfaces and the sample filter
// ABOUTME: One-shot position fetch plus cancellable continuous watches

package locate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/harper/acreage/internal/geometry"
	"github.com/harper/acreage/internal/models"
)

// ErrUnavailable is returned when no position can be obtained.
var ErrUnavailable = errors.New("location unavailable")

// ErrPermissionDenied is returned when the user refused location access.
var ErrPermissionDenied = fmt.Errorf("%w: permission denied", ErrUnavailable)

// Default sampling policy for continuous watches.
const (
	DefaultMinInterval = time.Second
	DefaultMinDistance = 1.0
)

// WatchOptions governs which samples a watch delivers.
type WatchOptions struct {
	// MinInterval is the minimum time between accepted samples.
	MinInterval time.Duration
	// MinDistance is the minimum displacement in meters between accepted samples.
	MinDistance float64
}

// DefaultWatchOptions returns the standard 1 s / 1 m policy.
func DefaultWatchOptions() WatchOptions {
	return WatchOptions{MinInterval: DefaultMinInterval, MinDistance: DefaultMinDistance}
}

// Subscription is a cancellable watch. Remove may be called more than once.
type Subscription interface {
	Remove()
}

// Source provides device positions.
type Source interface {
	// Current returns a one-shot position fix.
	Current(ctx context.Context) (models.Vertex, error)
	// Watch delivers accepted samples to fn until the subscription is removed.
	Watch(ctx context.Context, opts WatchOptions, fn func(models.Vertex)) (Subscription, error)
}

// Filter applies the interval and displacement thresholds of a watch.
// It is not safe for concurrent use; each watch owns one.
type Filter struct {
	opts     WatchOptions
	last     models.Vertex
	lastTime time.Time
	seen     bool
}

// NewFilter creates a filter for opts.
func NewFilter(opts WatchOptions) *Filter {
	return &Filter{opts: opts}
}

// Accept reports whether a sample taken at t should be delivered, and records it if so.
func (f *Filter) Accept(v models.Vertex, t time.Time) bool {
	if f.seen {
		if t.Sub(f.lastTime) < f.opts.MinInterval {
			return false
		}
		if geometry.Distance(f.last, v) < f.opts.MinDistance {
			return false
		}
	}
	f.last = v
	f.lastTime = t
	f.seen = true
	return true
}

// SubscriptionFunc adapts a function to Subscription.
type SubscriptionFunc func()

// Remove calls f.
func (f SubscriptionFunc) Remove() { f() }
