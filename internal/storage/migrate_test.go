// ABOUTME: Tests for migrating areas between repositories
// ABOUTME: Also covers name filtering and directory checks

package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/harper/acreage/internal/models"
)

func TestMigrateData(t *testing.T) {
	ctx := context.Background()
	src := testDB(t)
	base := time.Now().Add(-time.Hour)
	for i, name := range []string{"first", "second", "third"} {
		if err := src.SaveArea(ctx, testRecord(name, base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("failed to seed: %v", err)
		}
	}

	dst := testDB(t)
	summary, err := MigrateData(ctx, src, dst, testOwner)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	if summary.Areas != 3 || summary.Vertices != 12 {
		t.Errorf("unexpected summary %+v", summary)
	}

	want, _ := src.ListAreas(ctx, testOwner)
	got, err := dst.ListAreas(ctx, testOwner)
	if err != nil {
		t.Fatalf("failed to list: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d areas, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i].ID != want[i].ID || got[i].Name != want[i].Name {
			t.Errorf("area %d: expected %s, got %s", i, want[i].Name, got[i].Name)
		}
	}
}

func TestMigrateData_EmptySource(t *testing.T) {
	summary, err := MigrateData(context.Background(), testDB(t), testDB(t), testOwner)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	if summary.Areas != 0 {
		t.Errorf("expected nothing migrated, got %d", summary.Areas)
	}
}

func TestFilterByName(t *testing.T) {
	areas := []*models.AreaRecord{
		{Name: "North Pasture"},
		{Name: "south pasture"},
		{Name: "Orchard"},
	}
	if got := FilterByName(areas, "PASTURE"); len(got) != 2 {
		t.Errorf("expected 2 matches, got %d", len(got))
	}
	if got := FilterByName(areas, "  "); len(got) != 3 {
		t.Errorf("expected all areas for blank query, got %d", len(got))
	}
	if got := FilterByName(areas, "vineyard"); got == nil || len(got) != 0 {
		t.Errorf("expected empty slice, got %v", got)
	}
}

func TestSortByUpdated(t *testing.T) {
	now := time.Now()
	areas := []*models.AreaRecord{
		{Name: "b", UpdatedAt: now.Add(-time.Hour)},
		{Name: "c", UpdatedAt: now},
		{Name: "a", UpdatedAt: now},
	}
	SortByUpdated(areas)
	if areas[0].Name != "a" || areas[1].Name != "c" || areas[2].Name != "b" {
		t.Errorf("unexpected order %s %s %s", areas[0].Name, areas[1].Name, areas[2].Name)
	}
}

func TestIsDirNonEmpty(t *testing.T) {
	dir := t.TempDir()
	if ok, err := IsDirNonEmpty(dir); err != nil || ok {
		t.Errorf("empty dir: got %v, %v", ok, err)
	}
	if err := os.WriteFile(filepath.Join(dir, "f"), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	if ok, err := IsDirNonEmpty(dir); err != nil || !ok {
		t.Errorf("non-empty dir: got %v, %v", ok, err)
	}
	if ok, err := IsDirNonEmpty(filepath.Join(dir, "missing")); err != nil || ok {
		t.Errorf("missing dir: got %v, %v", ok, err)
	}
}
