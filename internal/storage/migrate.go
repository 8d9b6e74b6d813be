// ABOUTME: Data migration between area storage backends
// ABOUTME: Copies every record of an owner from source to destination repository

package storage

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/harper/acreage/internal/models"
)

// MigrateSummary holds counts of migrated entities.
type MigrateSummary struct {
	Areas    int
	Vertices int
}

// MigrateData copies all of owner's areas from src to dst, oldest first so the
// destination ends up with the same ordering. Ids are preserved, which makes a
// repeated migration overwrite rather than duplicate.
func MigrateData(ctx context.Context, src, dst Repository, owner string) (*MigrateSummary, error) {
	summary := &MigrateSummary{}

	areas, err := src.ListAreas(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("list source areas: %w", err)
	}

	for i := len(areas) - 1; i >= 0; i-- {
		a := areas[i]
		if err := dst.SaveArea(ctx, a); err != nil {
			return summary, fmt.Errorf("save area %q: %w", a.Name, err)
		}
		summary.Areas++
		summary.Vertices += len(a.Vertices)
	}

	return summary, nil
}

// FilterByName keeps areas whose name contains query, case-insensitively.
// An empty query keeps everything.
func FilterByName(areas []*models.AreaRecord, query string) []*models.AreaRecord {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return areas
	}
	out := []*models.AreaRecord{}
	for _, a := range areas {
		if strings.Contains(strings.ToLower(a.Name), query) {
			out = append(out, a)
		}
	}
	return out
}

// SortByUpdated orders areas most recent first; ties break on name.
func SortByUpdated(areas []*models.AreaRecord) {
	sort.SliceStable(areas, func(i, j int) bool {
		if !areas[i].UpdatedAt.Equal(areas[j].UpdatedAt) {
			return areas[i].UpdatedAt.After(areas[j].UpdatedAt)
		}
		return areas[i].Name < areas[j].Name
	})
}

// IsDirNonEmpty checks whether a directory exists and contains any files or subdirectories.
// Returns false if the directory does not exist or is empty.
func IsDirNonEmpty(path string) (bool, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("read directory %q: %w", path, err)
	}
	return len(entries) > 0, nil
}
