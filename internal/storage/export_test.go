// ABOUTME: Tests for backup, restore and markdown export
// ABOUTME: Uses real SQLite databases in temp directories

package storage

import (
	"context"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestExportToYAML(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	rec := testRecord("north field", time.Now())
	if err := db.SaveArea(ctx, rec); err != nil {
		t.Fatalf("failed to save: %v", err)
	}

	data, err := ExportToYAML(ctx, db, testOwner)
	if err != nil {
		t.Fatalf("failed to export: %v", err)
	}

	var backup Backup
	if err := yaml.Unmarshal(data, &backup); err != nil {
		t.Fatalf("failed to parse backup: %v", err)
	}
	if backup.Version != BackupVersion || backup.Tool != BackupTool {
		t.Errorf("unexpected header %s/%s", backup.Version, backup.Tool)
	}
	if len(backup.Areas) != 1 {
		t.Fatalf("expected 1 area, got %d", len(backup.Areas))
	}
	if backup.Areas[0].Name != "north field" || len(backup.Areas[0].Boundary) != 4 {
		t.Errorf("unexpected area %+v", backup.Areas[0])
	}
	if !strings.Contains(string(data), "latitude:") {
		t.Error("expected vertex fields in yaml")
	}
}

func TestRoundTripYAML(t *testing.T) {
	src := testDB(t)
	ctx := context.Background()
	for _, name := range []string{"one", "two"} {
		if err := src.SaveArea(ctx, testRecord(name, time.Now())); err != nil {
			t.Fatalf("failed to save: %v", err)
		}
	}
	data, err := ExportBackup(ctx, src, testOwner)
	if err != nil {
		t.Fatalf("failed to export: %v", err)
	}

	dst := testDB(t)
	n, err := ImportBackup(ctx, dst, data, "")
	if err != nil {
		t.Fatalf("failed to import: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 imported, got %d", n)
	}

	// Importing again updates in place.
	if _, err := ImportBackup(ctx, dst, data, ""); err != nil {
		t.Fatalf("failed to re-import: %v", err)
	}
	areas, err := dst.ListAreas(ctx, testOwner)
	if err != nil {
		t.Fatalf("failed to list: %v", err)
	}
	if len(areas) != 2 {
		t.Errorf("expected 2 areas after double import, got %d", len(areas))
	}
}

func TestImportFromYAML_OwnerOverride(t *testing.T) {
	src := testDB(t)
	ctx := context.Background()
	if err := src.SaveArea(ctx, testRecord("mine", time.Now())); err != nil {
		t.Fatalf("failed to save: %v", err)
	}
	data, err := ExportToYAML(ctx, src, testOwner)
	if err != nil {
		t.Fatalf("failed to export: %v", err)
	}

	dst := testDB(t)
	if _, err := ImportFromYAML(ctx, dst, data, "new-owner"); err != nil {
		t.Fatalf("failed to import: %v", err)
	}
	areas, _ := dst.ListAreas(ctx, "new-owner")
	if len(areas) != 1 {
		t.Errorf("expected area under new owner, got %d", len(areas))
	}
}

func TestImportFromYAML_InvalidVersion(t *testing.T) {
	db := testDB(t)
	data := []byte("version: \"9.9\"\ntool: acreage\nareas: []\n")
	if _, err := ImportFromYAML(context.Background(), db, data, ""); err == nil {
		t.Error("expected error for unsupported version")
	}
}

func TestImportFromYAML_WrongTool(t *testing.T) {
	db := testDB(t)
	data := []byte("version: \"1.0\"\ntool: position\nareas: []\n")
	if _, err := ImportFromYAML(context.Background(), db, data, ""); err == nil {
		t.Error("expected error for wrong tool")
	}
}

func TestImportFromYAML_InvalidAreaWritesNothing(t *testing.T) {
	db := testDB(t)
	data := []byte(`version: "1.0"
tool: acreage
owner: owner-1
areas:
  - id: 3f1c1a5e-8f0e-4a51-9b6e-0c1b2d3e4f50
    name: good
    hectares: 1
    boundary:
      - {latitude: 0, longitude: 0}
      - {latitude: 0, longitude: 1}
      - {latitude: 1, longitude: 1}
  - id: 3f1c1a5e-8f0e-4a51-9b6e-0c1b2d3e4f51
    name: bad
    hectares: 1
    boundary:
      - {latitude: 0, longitude: 0}
`)
	if _, err := ImportFromYAML(context.Background(), db, data, ""); err == nil {
		t.Fatal("expected error for two-vertex area")
	}
	areas, _ := db.ListAreas(context.Background(), testOwner)
	if len(areas) != 0 {
		t.Errorf("expected nothing written, got %d areas", len(areas))
	}
}

func TestExportToMarkdown(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	if err := db.SaveArea(ctx, testRecord("Back forty", time.Now())); err != nil {
		t.Fatalf("failed to save: %v", err)
	}

	data, err := ExportToMarkdown(ctx, db, testOwner)
	if err != nil {
		t.Fatalf("failed to export: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, "# Area Export") {
		t.Error("missing header")
	}
	if !strings.Contains(out, "| Back forty | 1.2300 | 4 |") {
		t.Errorf("missing row in:\n%s", out)
	}
	if !strings.Contains(out, "Total: 1.2300 ha across 1 areas") {
		t.Errorf("missing total in:\n%s", out)
	}
}

func TestExportToMarkdown_Empty(t *testing.T) {
	db := testDB(t)
	data, err := ExportToMarkdown(context.Background(), db, testOwner)
	if err != nil {
		t.Fatalf("failed to export: %v", err)
	}
	if !strings.Contains(string(data), "No areas saved.") {
		t.Error("expected empty message")
	}
}
