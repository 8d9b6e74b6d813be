package locate

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/harper/acreage/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-polyline"
)

func TestFilterAccept(t *testing.T) {
	f := NewFilter(DefaultWatchOptions())
	t0 := time.Unix(1000, 0)
	origin := models.Vertex{Latitude: 0, Longitude: 0}
	far := models.Vertex{Latitude: 0.0001, Longitude: 0} // ~11 m

	assert.True(t, f.Accept(origin, t0), "first sample is always accepted")
	assert.False(t, f.Accept(far, t0.Add(500*time.Millisecond)), "too soon")
	assert.False(t, f.Accept(origin, t0.Add(2*time.Second)), "too close")
	assert.True(t, f.Accept(far, t0.Add(2*time.Second)))
}

func TestStatic(t *testing.T) {
	ctx := context.Background()
	pos := models.Vertex{Latitude: 10, Longitude: 20}

	s := &Static{Position: pos}
	got, err := s.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, pos, got)

	sub, err := s.Watch(ctx, DefaultWatchOptions(), func(models.Vertex) {})
	require.NoError(t, err)
	sub.Remove()

	failing := &Static{Err: ErrPermissionDenied}
	_, err = failing.Current(ctx)
	assert.ErrorIs(t, err, ErrUnavailable)
	_, err = failing.Watch(ctx, DefaultWatchOptions(), nil)
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestFeedDeliversFilteredSamples(t *testing.T) {
	ctx := context.Background()
	feed := NewFeed()
	clock := time.Unix(0, 0)
	feed.SetClock(func() time.Time { return clock })

	_, err := feed.Current(ctx)
	assert.ErrorIs(t, err, ErrUnavailable)

	var got []models.Vertex
	sub, err := feed.Watch(ctx, DefaultWatchOptions(), func(v models.Vertex) {
		got = append(got, v)
	})
	require.NoError(t, err)
	assert.Equal(t, 1, feed.Watchers())

	feed.Push(models.Vertex{Latitude: 1, Longitude: 1})
	feed.Push(models.Vertex{Latitude: 1.001, Longitude: 1}) // same instant
	clock = clock.Add(2 * time.Second)
	feed.Push(models.Vertex{Latitude: 1.001, Longitude: 1})

	require.Len(t, got, 2)
	cur, err := feed.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.Vertex{Latitude: 1.001, Longitude: 1}, cur)

	sub.Remove()
	sub.Remove()
	assert.Equal(t, 0, feed.Watchers())

	clock = clock.Add(time.Minute)
	feed.Push(models.Vertex{Latitude: 2, Longitude: 2})
	assert.Len(t, got, 2, "removed watch receives nothing")
}

func TestFeedFail(t *testing.T) {
	feed := NewFeed()
	feed.Fail(ErrPermissionDenied)
	_, err := feed.Watch(context.Background(), DefaultWatchOptions(), func(models.Vertex) {})
	assert.True(t, errors.Is(err, ErrPermissionDenied))
	feed.Fail(nil)
	feed.Push(models.Vertex{Latitude: 3, Longitude: 4})
	_, err = feed.Current(context.Background())
	assert.NoError(t, err)
}

func TestReplayDeliversTrack(t *testing.T) {
	track := []models.Vertex{
		{Latitude: 0, Longitude: 0},
		{Latitude: 0, Longitude: 0.0000001}, // sub-meter jitter, filtered
		{Latitude: 0.001, Longitude: 0},
		{Latitude: 0.001, Longitude: 0.001},
	}
	r := &Replay{Track: track, Step: time.Second}

	cur, err := r.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, track[0], cur)

	var mu sync.Mutex
	var got []models.Vertex
	done := make(chan struct{})
	sub, err := r.Watch(context.Background(), DefaultWatchOptions(), func(v models.Vertex) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, v)
		if len(got) == 3 {
			close(done)
		}
	})
	require.NoError(t, err)
	defer sub.Remove()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("replay did not finish")
	}
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []models.Vertex{track[0], track[2], track[3]}, got)
}

func TestReplayEmpty(t *testing.T) {
	r := &Replay{}
	_, err := r.Current(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
	_, err = r.Watch(context.Background(), DefaultWatchOptions(), func(models.Vertex) {})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestLoadTrackGeoJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "walk.geojson")
	doc := `{"type":"FeatureCollection","features":[
		{"type":"Feature","properties":{},"geometry":{"type":"Point","coordinates":[1,2]}},
		{"type":"Feature","properties":{},"geometry":{"type":"LineString","coordinates":[[-122.1,37.1],[-122.2,37.2]]}}
	]}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	vs, err := LoadTrack(path)
	require.NoError(t, err)
	assert.Equal(t, []models.Vertex{
		{Latitude: 37.1, Longitude: -122.1},
		{Latitude: 37.2, Longitude: -122.2},
	}, vs)
}

func TestParseGeoJSONTrackBareGeometry(t *testing.T) {
	vs, err := ParseGeoJSONTrack([]byte(`{"type":"LineString","coordinates":[[5,6],[7,8]]}`))
	require.NoError(t, err)
	assert.Equal(t, models.Vertex{Latitude: 6, Longitude: 5}, vs[0])

	_, err = ParseGeoJSONTrack([]byte(`{"type":"Point","coordinates":[5,6]}`))
	assert.ErrorIs(t, err, ErrEmptyTrack)
}

func TestLoadTrackPolyline(t *testing.T) {
	encoded := polyline.EncodeCoords([][]float64{{38.5, -120.2}, {40.7, -120.95}, {43.252, -126.453}})
	path := filepath.Join(t.TempDir(), "walk.polyline")
	require.NoError(t, os.WriteFile(path, append(encoded, '\n'), 0o600))

	vs, err := LoadTrack(path)
	require.NoError(t, err)
	require.Len(t, vs, 3)
	assert.InDelta(t, 43.252, vs[2].Latitude, 1e-5)
	assert.InDelta(t, -126.453, vs[2].Longitude, 1e-5)

	_, err = ParsePolylineTrack([]byte("   "))
	assert.ErrorIs(t, err, ErrEmptyTrack)
}
