// ABOUTME: Concrete positioning sources: static fix, manual feed and track replay
// ABOUTME: All sources apply the watch filter themselves before delivering samples

package locate

import (
	"context"
	"sync"
	"time"

	"github.com/harper/acreage/internal/models"
)

// Static always reports the same fix, or always fails with Err.
type Static struct {
	Position models.Vertex
	Err      error
}

// Current returns the configured fix.
func (s *Static) Current(ctx context.Context) (models.Vertex, error) {
	if err := ctx.Err(); err != nil {
		return models.Vertex{}, err
	}
	if s.Err != nil {
		return models.Vertex{}, s.Err
	}
	return s.Position, nil
}

// Watch never delivers samples; it fails with Err when one is configured.
func (s *Static) Watch(ctx context.Context, _ WatchOptions, _ func(models.Vertex)) (Subscription, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return SubscriptionFunc(func() {}), nil
}

// Feed is a source driven by explicit Push calls, e.g. NMEA lines read from a
// receiver or positions typed at a prompt.
type Feed struct {
	mu       sync.Mutex
	current  *models.Vertex
	watchers map[int]*feedWatch
	nextID   int
	err      error
	now      func() time.Time
}

type feedWatch struct {
	filter *Filter
	fn     func(models.Vertex)
}

// NewFeed creates an empty feed. Until the first Push, Current fails with ErrUnavailable.
func NewFeed() *Feed {
	return &Feed{watchers: make(map[int]*feedWatch), now: time.Now}
}

// SetClock overrides the clock used to timestamp pushed samples.
func (f *Feed) SetClock(now func() time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = now
}

// Fail makes Current and Watch return err until cleared with Fail(nil).
func (f *Feed) Fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

// Current returns the most recent pushed position.
func (f *Feed) Current(ctx context.Context) (models.Vertex, error) {
	if err := ctx.Err(); err != nil {
		return models.Vertex{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return models.Vertex{}, f.err
	}
	if f.current == nil {
		return models.Vertex{}, ErrUnavailable
	}
	return *f.current, nil
}

// Watch registers fn for filtered samples.
func (f *Feed) Watch(ctx context.Context, opts WatchOptions, fn func(models.Vertex)) (Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	id := f.nextID
	f.nextID++
	f.watchers[id] = &feedWatch{filter: NewFilter(opts), fn: fn}

	var once sync.Once
	return SubscriptionFunc(func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.watchers, id)
			f.mu.Unlock()
		})
	}), nil
}

// Watchers returns the number of active watches.
func (f *Feed) Watchers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.watchers)
}

// Push records a new position and delivers it to every watch whose filter accepts it.
// Callbacks run on the caller's goroutine, outside the feed lock.
func (f *Feed) Push(v models.Vertex) {
	f.mu.Lock()
	f.current = &v
	now := f.now()
	var deliver []func(models.Vertex)
	for _, w := range f.watchers {
		if w.filter.Accept(v, now) {
			deliver = append(deliver, w.fn)
		}
	}
	f.mu.Unlock()

	for _, fn := range deliver {
		fn(v)
	}
}

// Replay plays back a recorded track as if walked by the device.
// Samples are spaced Step apart on the track clock and paced in real time by Pace.
type Replay struct {
	Track []models.Vertex
	// Step is the nominal time between recorded samples, used by the filter.
	Step time.Duration
	// Pace is the real delay between deliveries. Zero delivers as fast as possible.
	Pace time.Duration
}

// Current returns the first point of the track.
func (r *Replay) Current(ctx context.Context) (models.Vertex, error) {
	if err := ctx.Err(); err != nil {
		return models.Vertex{}, err
	}
	if len(r.Track) == 0 {
		return models.Vertex{}, ErrUnavailable
	}
	return r.Track[0], nil
}

// Watch starts delivering the track in a background goroutine.
func (r *Replay) Watch(ctx context.Context, opts WatchOptions, fn func(models.Vertex)) (Subscription, error) {
	if len(r.Track) == 0 {
		return nil, ErrUnavailable
	}
	step := r.Step
	if step <= 0 {
		step = time.Second
	}

	ctx, cancel := context.WithCancel(ctx)
	go func() {
		defer cancel()
		filter := NewFilter(opts)
		start := time.Unix(0, 0)
		for i, v := range r.Track {
			if ctx.Err() != nil {
				return
			}
			if !filter.Accept(v, start.Add(time.Duration(i)*step)) {
				continue
			}
			fn(v)
			if r.Pace > 0 {
				select {
				case <-ctx.Done():
					return
				case <-time.After(r.Pace):
				}
			}
		}
	}()

	var once sync.Once
	return SubscriptionFunc(func() { once.Do(cancel) }), nil
}
