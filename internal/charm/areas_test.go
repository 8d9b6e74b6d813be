// ABOUTME: Tests for area CRUD operations on the Charm KV backend
// ABOUTME: Runs against a local KV in a temp CHARM_DATA_DIR without syncing

package charm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/harper/acreage/internal/models"
	"github.com/harper/acreage/internal/storage"
)

func testClient(t *testing.T, name string) *Client {
	t.Helper()
	t.Setenv("CHARM_DATA_DIR", t.TempDir())
	client, err := NewTestClient(name)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func testArea(name, owner string, updated time.Time) *models.AreaRecord {
	rec := models.NewAreaRecord(name, owner, []models.Vertex{
		{Latitude: 41.8781, Longitude: -87.6298},
		{Latitude: 41.8781, Longitude: -87.6288},
		{Latitude: 41.8791, Longitude: -87.6288},
	}, 0.42)
	rec.UpdatedAt = updated
	return rec
}

func TestSaveArea_RoundTrip(t *testing.T) {
	client := testClient(t, "test-areas")
	ctx := context.Background()

	rec := testArea("corn", "me", time.Now())
	if err := client.SaveArea(ctx, rec); err != nil {
		t.Fatalf("failed to save area: %v", err)
	}

	got, err := client.GetArea(ctx, rec.ID)
	if err != nil {
		t.Fatalf("failed to get area: %v", err)
	}
	if got.Name != "corn" || len(got.Vertices) != 3 || got.Hectares != 0.42 {
		t.Errorf("unexpected record %+v", got)
	}
}

func TestSaveArea_UpdatesSameKey(t *testing.T) {
	client := testClient(t, "test-areas")
	ctx := context.Background()

	rec := testArea("beans", "me", time.Now())
	if err := client.SaveArea(ctx, rec); err != nil {
		t.Fatalf("failed to save: %v", err)
	}
	rec.Hectares = 9
	if err := client.SaveArea(ctx, rec); err != nil {
		t.Fatalf("failed to update: %v", err)
	}

	areas, err := client.ListAreas(ctx, "me")
	if err != nil {
		t.Fatalf("failed to list: %v", err)
	}
	if len(areas) != 1 || areas[0].Hectares != 9 {
		t.Errorf("expected one updated area, got %+v", areas)
	}
}

func TestSaveArea_InvalidLeavesExisting(t *testing.T) {
	client := testClient(t, "test-areas")
	ctx := context.Background()

	rec := testArea("wheat", "me", time.Now())
	if err := client.SaveArea(ctx, rec); err != nil {
		t.Fatalf("failed to save: %v", err)
	}
	bad := *rec
	bad.Name = ""
	if err := client.SaveArea(ctx, &bad); !errors.Is(err, storage.ErrInvalidRecord) {
		t.Errorf("expected ErrInvalidRecord, got %v", err)
	}
	got, err := client.GetArea(ctx, rec.ID)
	if err != nil {
		t.Fatalf("failed to get: %v", err)
	}
	if got.Name != "wheat" {
		t.Errorf("existing record modified: %q", got.Name)
	}
}

func TestListAreas_OwnerScopedNewestFirst(t *testing.T) {
	client := testClient(t, "test-areas")
	ctx := context.Background()
	now := time.Now()

	for _, r := range []*models.AreaRecord{
		testArea("old", "me", now.Add(-time.Hour)),
		testArea("new", "me", now),
		testArea("theirs", "you", now),
	} {
		if err := client.SaveArea(ctx, r); err != nil {
			t.Fatalf("failed to save: %v", err)
		}
	}

	areas, err := client.ListAreas(ctx, "me")
	if err != nil {
		t.Fatalf("failed to list: %v", err)
	}
	if len(areas) != 2 {
		t.Fatalf("expected 2 areas, got %d", len(areas))
	}
	if areas[0].Name != "new" {
		t.Errorf("expected newest first, got %s", areas[0].Name)
	}

	byName, err := client.GetAreaByName(ctx, "me", "old")
	if err != nil {
		t.Fatalf("failed to get by name: %v", err)
	}
	if byName.Name != "old" {
		t.Errorf("unexpected area %s", byName.Name)
	}
	if _, err := client.GetAreaByName(ctx, "me", "theirs"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound across owners, got %v", err)
	}
}

func TestDeleteArea(t *testing.T) {
	client := testClient(t, "test-areas")
	ctx := context.Background()

	rec := testArea("fallow", "me", time.Now())
	if err := client.SaveArea(ctx, rec); err != nil {
		t.Fatalf("failed to save: %v", err)
	}
	if err := client.DeleteArea(ctx, rec.ID); err != nil {
		t.Fatalf("failed to delete: %v", err)
	}
	if _, err := client.GetArea(ctx, rec.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := client.DeleteArea(ctx, uuid.New()); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown id, got %v", err)
	}
}

func TestMigrateSQLiteToCharm(t *testing.T) {
	ctx := context.Background()
	src, err := storage.NewSQLiteDB(t.TempDir() + "/src.db")
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	defer src.Close()
	if err := src.SaveArea(ctx, testArea("migrated", "me", time.Now())); err != nil {
		t.Fatalf("failed to seed: %v", err)
	}

	dst := testClient(t, "test-migrate")
	summary, err := storage.MigrateData(ctx, src, dst, "me")
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	if summary.Areas != 1 {
		t.Errorf("expected 1 area migrated, got %d", summary.Areas)
	}
	got, err := dst.GetAreaByName(ctx, "me", "migrated")
	if err != nil {
		t.Fatalf("migrated area missing: %v", err)
	}
	if len(got.Vertices) != 3 {
		t.Errorf("expected 3 vertices, got %d", len(got.Vertices))
	}
}
