package bridge

import (
	"bufio"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPTransportServesPage(t *testing.T) {
	h := NewHTTPTransport(nil, nil)
	srv := httptest.NewServer(h.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "EventSource('/events')")
}

func TestHTTPTransportInbound(t *testing.T) {
	h := NewHTTPTransport(nil, nil)
	srv := httptest.NewServer(h.Handler())
	defer srv.Close()

	got := make(chan string, 1)
	h.Listen(func(msg []byte) { got <- string(msg) })

	resp, err := http.Post(srv.URL+"/messages", "application/json", strings.NewReader(`{"type":"ready"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Equal(t, `{"type":"ready"}`, <-got)

	resp, err = http.Post(srv.URL+"/messages", "application/json", strings.NewReader(`{nope`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHTTPTransportStreamsOutbound(t *testing.T) {
	h := NewHTTPTransport(nil, nil)
	srv := httptest.NewServer(h.Handler())
	defer srv.Close()

	// Nothing connected yet: dropped without error.
	require.NoError(t, h.Send(context.Background(), []byte(`{"type":"clearPolygon"}`)))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/event-stream")

	require.Eventually(t, h.Connected, time.Second, 5*time.Millisecond)
	require.NoError(t, h.Send(context.Background(), []byte(`{"type":"toggleMapLayer","mapLayer":"satellite"}`)))

	scanner := bufio.NewScanner(resp.Body)
	var data string
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "data:") {
			data = strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			break
		}
	}
	assert.JSONEq(t, `{"type":"toggleMapLayer","mapLayer":"satellite"}`, data)
}

func TestHTTPTransportMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "acreage_test_total", Help: "test"})
	reg.MustRegister(counter)
	counter.Inc()

	h := NewHTTPTransport(reg, nil)
	srv := httptest.NewServer(h.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "acreage_test_total 1")
}

func TestHTTPTransportClosed(t *testing.T) {
	h := NewHTTPTransport(nil, nil)
	require.NoError(t, h.Close())
	assert.ErrorIs(t, h.Send(context.Background(), []byte(`{}`)), ErrClosed)
}
