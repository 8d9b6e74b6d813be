// ABOUTME: Common storage errors and record checks shared by every backend
// ABOUTME: Enables consistent error handling across storage implementations

package storage

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/harper/acreage/internal/geometry"
	"github.com/harper/acreage/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// ErrInvalidRecord is returned when a record fails validation before a write.
var ErrInvalidRecord = errors.New("invalid area record")

// CheckRecord rejects records that must never reach a backend.
func CheckRecord(rec *models.AreaRecord) error {
	if rec == nil {
		return fmt.Errorf("%w: nil record", ErrInvalidRecord)
	}
	if rec.ID == uuid.Nil {
		return fmt.Errorf("%w: missing id", ErrInvalidRecord)
	}
	if err := models.ValidateName(rec.Name); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	if rec.OwnerID == "" {
		return fmt.Errorf("%w: missing owner", ErrInvalidRecord)
	}
	if len(rec.Vertices) < geometry.MinVertices {
		return fmt.Errorf("%w: need at least %d vertices, got %d", ErrInvalidRecord, geometry.MinVertices, len(rec.Vertices))
	}
	for i, v := range rec.Vertices {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("%w: vertex %d: %v", ErrInvalidRecord, i, err)
		}
	}
	return nil
}
