// ABOUTME: SQLite storage implementation for measured areas
// ABOUTME: Provides local-only persistence using pure Go SQLite driver

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/harper/acreage/internal/models"
	_ "modernc.org/sqlite"
)

// SQLiteDB implements Repository with a local SQLite database.
type SQLiteDB struct {
	db   *sql.DB
	path string
}

// Compile-time check that SQLiteDB implements Repository.
var _ Repository = (*SQLiteDB)(nil)

// DefaultDBPath returns the default database path.
func DefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".local", "share", "acreage", "acreage.db")
}

// NewSQLiteDB creates a new SQLite database at the given path.
// Creates the directory and database file if they don't exist.
func NewSQLiteDB(path string) (*SQLiteDB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil { //nolint:gosec // 0750 is appropriate for user data directory
		return nil, fmt.Errorf("create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &SQLiteDB{db: db, path: path}

	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

// Path returns the database file location.
func (s *SQLiteDB) Path() string {
	return s.path
}

// migrate creates or updates the database schema.
func (s *SQLiteDB) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS areas (
			id TEXT PRIMARY KEY,
			owner TEXT NOT NULL,
			name TEXT NOT NULL,
			boundary BLOB NOT NULL,
			hectares REAL NOT NULL,
			updated_at DATETIME NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_areas_owner ON areas(owner, updated_at);
		CREATE INDEX IF NOT EXISTS idx_areas_name ON areas(owner, name);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

// Sync is a no-op for local SQLite (no cloud sync).
func (s *SQLiteDB) Sync() error {
	return nil
}

// Reset clears all data from the database.
func (s *SQLiteDB) Reset() error {
	_, err := s.db.Exec("DELETE FROM areas")
	return err
}

// SaveArea inserts a record or replaces the one with the same id in a single statement.
func (s *SQLiteDB) SaveArea(ctx context.Context, rec *models.AreaRecord) error {
	if err := CheckRecord(rec); err != nil {
		return err
	}
	boundary, err := EncodeBoundary(rec.Vertices)
	if err != nil {
		return fmt.Errorf("encode boundary: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO areas (id, owner, name, boundary, hectares, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   owner = excluded.owner,
		   name = excluded.name,
		   boundary = excluded.boundary,
		   hectares = excluded.hectares,
		   updated_at = excluded.updated_at`,
		rec.ID.String(), rec.OwnerID, rec.Name, boundary, rec.Hectares, rec.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("save area: %w", err)
	}
	return nil
}

// GetArea retrieves a record by its UUID.
func (s *SQLiteDB) GetArea(ctx context.Context, id uuid.UUID) (*models.AreaRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, owner, name, boundary, hectares, updated_at FROM areas WHERE id = ?`,
		id.String(),
	)
	return scanArea(row)
}

// GetAreaByName retrieves the most recently updated record with the given name.
func (s *SQLiteDB) GetAreaByName(ctx context.Context, owner, name string) (*models.AreaRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, owner, name, boundary, hectares, updated_at FROM areas
		 WHERE owner = ? AND name = ? ORDER BY updated_at DESC LIMIT 1`,
		owner, name,
	)
	return scanArea(row)
}

// ListAreas returns all records for owner, newest first.
func (s *SQLiteDB) ListAreas(ctx context.Context, owner string) ([]*models.AreaRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, owner, name, boundary, hectares, updated_at FROM areas
		 WHERE owner = ? ORDER BY updated_at DESC`,
		owner,
	)
	if err != nil {
		return nil, fmt.Errorf("query areas: %w", err)
	}
	defer func() { _ = rows.Close() }()

	areas := []*models.AreaRecord{}
	for rows.Next() {
		rec, err := scanArea(rows)
		if err != nil {
			return nil, err
		}
		areas = append(areas, rec)
	}
	return areas, rows.Err()
}

// DeleteArea removes a record. Deleting a missing record returns ErrNotFound.
func (s *SQLiteDB) DeleteArea(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM areas WHERE id = ?", id.String())
	if err != nil {
		return fmt.Errorf("delete area: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete area: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArea(row rowScanner) (*models.AreaRecord, error) {
	var idStr string
	var boundary []byte
	var rec models.AreaRecord
	err := row.Scan(&idStr, &rec.OwnerID, &rec.Name, &boundary, &rec.Hectares, &rec.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan area: %w", err)
	}
	rec.ID, err = uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("parse area id: %w", err)
	}
	rec.Vertices, err = DecodeBoundary(boundary)
	if err != nil {
		return nil, fmt.Errorf("decode boundary for %s: %w", idStr, err)
	}
	return &rec, nil
}
