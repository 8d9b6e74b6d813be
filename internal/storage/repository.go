// ABOUTME: Repository interfaces for measured area storage
// ABOUTME: Enables testability and storage backend swapping

package storage

import (
	"context"

	"github.com/google/uuid"
	"github.com/harper/acreage/internal/models"
)

// AreaRepository defines operations on saved area records.
type AreaRepository interface {
	// SaveArea inserts or replaces the record with rec.ID. All or nothing.
	SaveArea(ctx context.Context, rec *models.AreaRecord) error
	GetArea(ctx context.Context, id uuid.UUID) (*models.AreaRecord, error)
	// GetAreaByName returns the most recently updated record with this name.
	GetAreaByName(ctx context.Context, owner, name string) (*models.AreaRecord, error)
	// ListAreas returns an owner's records, most recently updated first.
	ListAreas(ctx context.Context, owner string) ([]*models.AreaRecord, error)
	DeleteArea(ctx context.Context, id uuid.UUID) error
}

// Repository combines area operations with lifecycle management.
type Repository interface {
	AreaRepository
	Close() error
	Sync() error
	Reset() error
}

// Compile-time interface implementation check for the KV backend is in the charm package:
// var _ storage.Repository = (*charm.Client)(nil)
