// ABOUTME: HTTP transport serving the Leaflet page with server-sent events
// ABOUTME: Outbound messages stream on /events; the page posts inbound ones to /messages

package bridge

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/harper/acreage/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

//go:embed web/index.html
var indexPage []byte

const streamBuffer = 64

type stream struct {
	ch   chan []byte
	done chan struct{}
	once sync.Once
}

func (s *stream) stop() {
	s.once.Do(func() { close(s.done) })
}

// HTTPTransport carries bridge traffic to a browser. One page is served at a time;
// a new page load replaces the previous event stream. Messages sent while no page is
// connected are dropped; the page announces ready on connect and gets a full resync.
type HTTPTransport struct {
	engine *gin.Engine
	logger *log.Logger

	deliverMu sync.Mutex

	mu       sync.Mutex
	listener func([]byte)
	current  *stream
	server   *http.Server
	closed   bool
}

// NewHTTPTransport builds the router. Pass a nil gatherer to skip /metrics.
func NewHTTPTransport(gatherer prometheus.Gatherer, logger *log.Logger) *HTTPTransport {
	gin.SetMode(gin.ReleaseMode)
	h := &HTTPTransport{
		engine: gin.New(),
		logger: logging.OrDiscard(logger).WithPrefix("http"),
	}
	h.engine.Use(gin.Recovery(), h.logRequests())
	h.RegisterRoutes(h.engine, gatherer)
	return h
}

// RegisterRoutes mounts the page, event stream, inbound endpoint and metrics.
func (h *HTTPTransport) RegisterRoutes(router *gin.Engine, gatherer prometheus.Gatherer) {
	router.GET("/", h.page)
	router.GET("/events", h.events)
	router.POST("/messages", h.messages)
	if gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}
}

// Handler exposes the router, e.g. for httptest.
func (h *HTTPTransport) Handler() http.Handler {
	return h.engine
}

// Serve accepts connections on ln until Close.
func (h *HTTPTransport) Serve(ln net.Listener) error {
	srv := &http.Server{Handler: h.engine, ReadHeaderTimeout: 10 * time.Second}
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return ErrClosed
	}
	h.server = srv
	h.mu.Unlock()

	h.logger.Info("serving map surface", "addr", ln.Addr().String())
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Connected reports whether a page is currently streaming.
func (h *HTTPTransport) Connected() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current != nil
}

func (h *HTTPTransport) Send(ctx context.Context, msg []byte) error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return ErrClosed
	}
	s := h.current
	h.mu.Unlock()
	if s == nil {
		h.logger.Debug("no surface connected, dropping message")
		return nil
	}

	cp := append([]byte(nil), msg...)
	select {
	case s.ch <- cp:
		return nil
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *HTTPTransport) Listen(fn func([]byte)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.listener = fn
}

func (h *HTTPTransport) Close() error {
	h.mu.Lock()
	h.closed = true
	if h.current != nil {
		h.current.stop()
		h.current = nil
	}
	srv := h.server
	h.mu.Unlock()

	if srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

func (h *HTTPTransport) page(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", indexPage)
}

func (h *HTTPTransport) events(c *gin.Context) {
	s := &stream{ch: make(chan []byte, streamBuffer), done: make(chan struct{})}
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		c.Status(http.StatusServiceUnavailable)
		return
	}
	if h.current != nil {
		h.current.stop()
	}
	h.current = s
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		if h.current == s {
			h.current = nil
		}
		h.mu.Unlock()
		s.stop()
	}()

	h.logger.Info("surface connected", "remote", c.ClientIP())
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Writer.WriteHeader(http.StatusOK)
	c.Writer.Flush()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case msg := <-s.ch:
			c.SSEvent("message", string(msg))
			return true
		case <-s.done:
			return false
		case <-ctx.Done():
			return false
		}
	})
	h.logger.Info("surface disconnected")
}

func (h *HTTPTransport) messages(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil || !json.Valid(body) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	h.mu.Lock()
	fn := h.listener
	h.mu.Unlock()
	if fn != nil {
		h.deliverMu.Lock()
		fn(body)
		h.deliverMu.Unlock()
	}
	c.Status(http.StatusAccepted)
}

func (h *HTTPTransport) logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if c.FullPath() == "/events" {
			return
		}
		h.logger.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"took", time.Since(start))
	}
}
