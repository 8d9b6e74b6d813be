// ABOUTME: Transport abstraction for bridge messages plus in-memory implementations
// ABOUTME: Pipe connects a host and a surface; Recorder captures traffic headlessly

package bridge

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned when sending on a closed transport.
var ErrClosed = errors.New("transport closed")

// Transport carries encoded messages. Send preserves order; Listen registers the
// single inbound callback, which is invoked from one goroutine at a time.
type Transport interface {
	Send(ctx context.Context, msg []byte) error
	Listen(fn func([]byte))
	Close() error
}

const pipeBuffer = 64

type pipe struct {
	done chan struct{}
	once sync.Once
}

func (p *pipe) close() {
	p.once.Do(func() { close(p.done) })
}

type pipeEnd struct {
	p       *pipe
	inbox   chan []byte
	peer    *pipeEnd
	mu      sync.Mutex
	started bool
}

// Pipe returns two connected in-memory transports. Messages sent on one end are
// delivered in order to the other end's listener. Messages queue until a listener
// is registered. Closing either end closes both.
func Pipe() (host, surface Transport) {
	p := &pipe{done: make(chan struct{})}
	a := &pipeEnd{p: p, inbox: make(chan []byte, pipeBuffer)}
	b := &pipeEnd{p: p, inbox: make(chan []byte, pipeBuffer)}
	a.peer, b.peer = b, a
	return a, b
}

func (e *pipeEnd) Send(ctx context.Context, msg []byte) error {
	select {
	case <-e.p.done:
		return ErrClosed
	default:
	}
	cp := append([]byte(nil), msg...)
	select {
	case e.peer.inbox <- cp:
		return nil
	case <-e.p.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *pipeEnd) Listen(fn func([]byte)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started {
		return
	}
	e.started = true
	go func() {
		for {
			select {
			case <-e.p.done:
				return
			case msg := <-e.inbox:
				fn(msg)
			}
		}
	}()
}

func (e *pipeEnd) Close() error {
	e.p.close()
	return nil
}

// Recorder is a Transport that keeps every outbound message in memory and lets the
// caller inject inbound ones. Inject runs the listener on the caller's goroutine.
type Recorder struct {
	mu       sync.Mutex
	sent     [][]byte
	listener func([]byte)
	closed   bool
	failWith error
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Send(ctx context.Context, msg []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}
	if r.failWith != nil {
		return r.failWith
	}
	r.sent = append(r.sent, append([]byte(nil), msg...))
	return nil
}

func (r *Recorder) Listen(fn func([]byte)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listener = fn
}

func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

// FailSends makes every following Send return err. Pass nil to recover.
func (r *Recorder) FailSends(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failWith = err
}

// Inject delivers msg to the registered listener.
func (r *Recorder) Inject(msg []byte) {
	r.mu.Lock()
	fn := r.listener
	r.mu.Unlock()
	if fn != nil {
		fn(msg)
	}
}

// Sent returns the raw outbound messages so far.
func (r *Recorder) Sent() [][]byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([][]byte, len(r.sent))
	copy(out, r.sent)
	return out
}

// Messages decodes every outbound message, skipping any that fail to decode.
func (r *Recorder) Messages() []Message {
	var out []Message
	for _, raw := range r.Sent() {
		if m, err := Decode(raw); err == nil {
			out = append(out, m)
		}
	}
	return out
}

// Types lists the type of every outbound message in send order.
func (r *Recorder) Types() []MessageType {
	msgs := r.Messages()
	out := make([]MessageType, len(msgs))
	for i, m := range msgs {
		out[i] = m.Type()
	}
	return out
}

// Reset forgets recorded messages.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = nil
}
