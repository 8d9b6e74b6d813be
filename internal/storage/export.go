// ABOUTME: Export and import functionality for saved areas
// ABOUTME: Supports YAML backup format and markdown export

package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harper/acreage/internal/models"
	"gopkg.in/yaml.v3"
)

// BackupVersion is the current backup format version.
const BackupVersion = "1.0"

// BackupTool identifies backups written by this program.
const BackupTool = "acreage"

// Backup represents the YAML backup format.
type Backup struct {
	Version    string       `yaml:"version"`
	ExportedAt time.Time    `yaml:"exported_at"`
	Tool       string       `yaml:"tool"`
	Owner      string       `yaml:"owner"`
	Areas      []AreaBackup `yaml:"areas"`
}

// AreaBackup represents one area in the backup format.
type AreaBackup struct {
	ID        string          `yaml:"id"`
	Name      string          `yaml:"name"`
	Hectares  float64         `yaml:"hectares"`
	UpdatedAt time.Time       `yaml:"updated_at"`
	Boundary  []models.Vertex `yaml:"boundary"`
}

// ExportToYAML exports every area of owner to YAML format.
func ExportToYAML(ctx context.Context, repo Repository, owner string) ([]byte, error) {
	areas, err := repo.ListAreas(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("list areas: %w", err)
	}

	backup := Backup{
		Version:    BackupVersion,
		ExportedAt: time.Now().UTC(),
		Tool:       BackupTool,
		Owner:      owner,
		Areas:      make([]AreaBackup, len(areas)),
	}

	for i, a := range areas {
		backup.Areas[i] = AreaBackup{
			ID:        a.ID.String(),
			Name:      a.Name,
			Hectares:  a.Hectares,
			UpdatedAt: a.UpdatedAt.UTC(),
			Boundary:  models.CopyVertices(a.Vertices),
		}
	}

	return yaml.Marshal(backup)
}

// ImportFromYAML restores areas from a backup. Records keep their ids, so importing
// the same backup twice updates in place. When owner is non-empty it replaces the
// owner recorded in the backup. Returns the number of areas written.
func ImportFromYAML(ctx context.Context, repo Repository, data []byte, owner string) (int, error) {
	var backup Backup
	if err := yaml.Unmarshal(data, &backup); err != nil {
		return 0, fmt.Errorf("parse yaml: %w", err)
	}

	if backup.Version != BackupVersion {
		return 0, fmt.Errorf("unsupported backup version: %s (expected %s)", backup.Version, BackupVersion)
	}

	if backup.Tool != BackupTool {
		return 0, fmt.Errorf("wrong tool: %s (expected %s)", backup.Tool, BackupTool)
	}

	if owner == "" {
		owner = backup.Owner
	}

	// Validate everything before the first write.
	records := make([]*models.AreaRecord, 0, len(backup.Areas))
	for _, ab := range backup.Areas {
		id, err := uuid.Parse(ab.ID)
		if err != nil {
			return 0, fmt.Errorf("invalid area ID %s: %w", ab.ID, err)
		}
		rec := &models.AreaRecord{
			ID:        id,
			Name:      ab.Name,
			OwnerID:   owner,
			Vertices:  models.CopyVertices(ab.Boundary),
			Hectares:  ab.Hectares,
			UpdatedAt: ab.UpdatedAt,
		}
		if err := CheckRecord(rec); err != nil {
			return 0, fmt.Errorf("area %q: %w", ab.Name, err)
		}
		records = append(records, rec)
	}

	for i, rec := range records {
		if err := repo.SaveArea(ctx, rec); err != nil {
			return i, fmt.Errorf("save area %s: %w", rec.Name, err)
		}
	}

	return len(records), nil
}

// ExportToMarkdown renders owner's areas as a markdown report.
func ExportToMarkdown(ctx context.Context, repo Repository, owner string) ([]byte, error) {
	areas, err := repo.ListAreas(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("list areas: %w", err)
	}

	var sb strings.Builder

	now := time.Now().UTC()
	sb.WriteString(fmt.Sprintf("# Area Export - %s\n\n", now.Format("2006-01-02")))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", now.Format(time.RFC3339)))

	if len(areas) == 0 {
		sb.WriteString("No areas saved.\n")
		return []byte(sb.String()), nil
	}

	sb.WriteString("| Name | Hectares | Vertices | Updated |\n")
	sb.WriteString("|------|----------|----------|---------|\n")
	var total float64
	for _, a := range areas {
		total += a.Hectares
		sb.WriteString(fmt.Sprintf("| %s | %.4f | %d | %s |\n",
			a.Name, a.Hectares, len(a.Vertices), a.UpdatedAt.Format("2006-01-02 15:04")))
	}
	sb.WriteString(fmt.Sprintf("\nTotal: %.4f ha across %d areas\n", total, len(areas)))

	return []byte(sb.String()), nil
}

// ExportBackup creates a YAML backup (alias for ExportToYAML).
func ExportBackup(ctx context.Context, repo Repository, owner string) ([]byte, error) {
	return ExportToYAML(ctx, repo, owner)
}

// ImportBackup restores from a YAML backup (alias for ImportFromYAML).
func ImportBackup(ctx context.Context, repo Repository, data []byte, owner string) (int, error) {
	return ImportFromYAML(ctx, repo, data, owner)
}
