// ABOUTME: Measurement session operations: vertices, view, units, editing and saving
// ABOUTME: Blocking calls run off the actor; state changes only after they succeed

package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/harper/acreage/internal/geometry"
	"github.com/harper/acreage/internal/models"
	"github.com/harper/acreage/internal/observability"
	"github.com/harper/acreage/internal/storage"
	"github.com/harper/acreage/internal/tracking"
)

// fetchLocation makes a one-shot fix outside the actor.
func (s *Session) fetchLocation(ctx context.Context) (models.Vertex, error) {
	if s.source == nil {
		return models.Vertex{}, ErrLocationUnavailable
	}
	ctx, cancel := s.scoped(ctx)
	defer cancel()

	v, err := s.source.Current(ctx)
	if err != nil {
		return models.Vertex{}, locationErr(err)
	}
	if err := v.Validate(); err != nil {
		return models.Vertex{}, locationErr(err)
	}
	return v, nil
}

// Open centers the session on the device and initializes the surface. When no
// fix is available the default region is used and the returned error wraps
// ErrLocationUnavailable; the session is still usable.
func (s *Session) Open(ctx context.Context) error {
	v, locErr := s.fetchLocation(ctx)
	if locErr != nil {
		s.logger.Warn("using default region", "err", locErr)
	}

	err := s.call(ctx, func() error {
		if locErr == nil {
			s.region = models.RegionAround(v)
		}
		s.pushInit()
		if len(s.vertices) > 0 {
			s.pushPolygon()
		}
		return nil
	})
	if err != nil {
		return err
	}
	return locErr
}

// AddVertex appends a vertex, recomputes and redraws.
func (s *Session) AddVertex(ctx context.Context, v models.Vertex) error {
	if err := v.Validate(); err != nil {
		return &ValidationError{Field: "coordinate", Reason: err.Error()}
	}
	return s.call(ctx, func() error {
		s.appendVertex(v, observability.SourceManual)
		return nil
	})
}

func (s *Session) appendVertex(v models.Vertex, source string) {
	s.vertices = append(s.vertices, v)
	s.recompute()
	s.metrics.VertexAdded(source)
	s.logger.Debug("vertex added", "source", source, "vertex", v.String(), "count", len(s.vertices))
	s.pushPolygon()
}

// Clear removes every vertex and zeroes the geometry. The session leaves
// editing mode, so the next Save creates a new record.
func (s *Session) Clear(ctx context.Context) error {
	return s.call(ctx, func() error {
		s.vertices = nil
		s.editingID = uuid.Nil
		s.editingName = ""
		s.recompute()
		if err := s.bridge.ClearPolygon(s.ctx); err != nil {
			s.logger.Warn("could not clear surface polygon", "err", err)
		}
		return nil
	})
}

// Recenter moves the view to the current device position. On failure the
// region is unchanged and the error wraps ErrLocationUnavailable.
func (s *Session) Recenter(ctx context.Context) error {
	v, err := s.fetchLocation(ctx)
	if err != nil {
		return err
	}
	return s.call(ctx, func() error {
		s.region = models.RegionAround(v)
		if err := s.bridge.CenterMap(s.ctx, s.region); err != nil {
			s.logger.Warn("could not center surface", "err", err)
		}
		return nil
	})
}

// ToggleLayer switches to the next base layer and returns its name.
func (s *Session) ToggleLayer(ctx context.Context) (string, error) {
	var layer string
	err := s.call(ctx, func() error {
		layer = s.layers.Next(s.layer)
		return s.selectLayer(layer)
	})
	return layer, err
}

// SelectLayer switches to a named base layer.
func (s *Session) SelectLayer(ctx context.Context, name string) error {
	if _, ok := s.layers.Lookup(name); !ok {
		return &ValidationError{Field: "layer", Reason: fmt.Sprintf("unknown layer %q (have %s)", name, strings.Join(s.layers.Names(), ", "))}
	}
	return s.call(ctx, func() error {
		return s.selectLayer(name)
	})
}

func (s *Session) selectLayer(name string) error {
	s.layer = name
	if err := s.bridge.ToggleMapLayer(s.ctx, name); err != nil {
		s.logger.Warn("could not switch surface layer", "err", err)
	}
	return nil
}

// ConvertUnits changes the display units. Empty units keep the current choice.
// The stored raw figures are untouched, and later recomputation keeps these units.
func (s *Session) ConvertUnits(ctx context.Context, areaUnit geometry.AreaUnit, lengthUnit geometry.LengthUnit) error {
	if areaUnit != "" && !areaUnit.Valid() {
		return &ValidationError{Field: "area unit", Reason: fmt.Sprintf("unknown unit %q", areaUnit)}
	}
	if lengthUnit != "" && !lengthUnit.Valid() {
		return &ValidationError{Field: "length unit", Reason: fmt.Sprintf("unknown unit %q", lengthUnit)}
	}
	return s.call(ctx, func() error {
		if areaUnit != "" {
			s.areaUnit = areaUnit
		}
		if lengthUnit != "" {
			s.lengthUnit = lengthUnit
		}
		if len(s.vertices) > 0 {
			s.pushPolygon()
		}
		return nil
	})
}

// OpenForEdit replaces the polygon with a saved record and centers on its first vertex.
// A later Save updates that record in place.
func (s *Session) OpenForEdit(ctx context.Context, rec *models.AreaRecord) error {
	if rec == nil || len(rec.Vertices) == 0 {
		return &ValidationError{Field: "record", Reason: "record has no vertices"}
	}
	return s.call(ctx, func() error {
		s.vertices = models.CopyVertices(rec.Vertices)
		s.recompute()
		s.region = models.RegionAround(rec.Vertices[0])
		s.editingID = rec.ID
		s.editingName = rec.Name
		s.logger.Debug("editing area", "name", rec.Name, "id", rec.ID)
		if err := s.bridge.CenterMap(s.ctx, s.region); err != nil {
			s.logger.Warn("could not center surface", "err", err)
		}
		s.pushPolygon()
		return nil
	})
}

// Edit loads the owner's record called name and opens it for editing.
func (s *Session) Edit(ctx context.Context, name string) (*models.AreaRecord, error) {
	if s.repo == nil {
		return nil, &PersistenceError{Op: "load", Err: ErrNoRepository}
	}
	loadCtx, cancel := s.scoped(ctx)
	rec, err := s.repo.GetAreaByName(loadCtx, s.owner, strings.TrimSpace(name))
	cancel()
	if err != nil {
		return nil, &PersistenceError{Op: "load", Err: err}
	}
	if err := s.OpenForEdit(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Save persists the polygon under name. Editing sessions update their record;
// otherwise a new id is generated. Nothing changes in the session on failure.
func (s *Session) Save(ctx context.Context, name string) (*models.AreaRecord, error) {
	name = strings.TrimSpace(name)

	var rec *models.AreaRecord
	err := s.call(ctx, func() error {
		if name == "" {
			return &ValidationError{Field: "name", Reason: "name cannot be empty"}
		}
		if err := models.ValidateName(name); err != nil {
			return &ValidationError{Field: "name", Reason: err.Error()}
		}
		if len(s.vertices) < geometry.MinVertices {
			return &ValidationError{
				Field:  "vertices",
				Reason: fmt.Sprintf("need at least %d points, have %d", geometry.MinVertices, len(s.vertices)),
			}
		}
		rec = models.NewAreaRecord(name, s.owner, s.vertices, s.raw.Area)
		if s.editingID != uuid.Nil {
			rec.ID = s.editingID
		}
		rec.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			s.metrics.SaveResult("invalid")
		}
		return nil, err
	}

	if s.repo == nil {
		s.metrics.SaveResult("failed")
		return nil, &PersistenceError{Op: "save", Err: ErrNoRepository}
	}
	saveCtx, cancel := s.scoped(ctx)
	err = s.repo.SaveArea(saveCtx, rec)
	cancel()
	if err != nil {
		s.metrics.SaveResult("failed")
		s.logger.Warn("save failed", "name", name, "err", err)
		if errors.Is(err, storage.ErrInvalidRecord) {
			return nil, &ValidationError{Field: "record", Reason: err.Error()}
		}
		return nil, &PersistenceError{Op: "save", Err: err}
	}

	if err := s.call(ctx, func() error {
		s.editingID = rec.ID
		s.editingName = rec.Name
		return nil
	}); err != nil {
		return rec, err
	}

	s.metrics.SaveResult("ok")
	s.logger.Info("area saved", "name", rec.Name, "id", rec.ID, "hectares", rec.Hectares)
	if s.refresher != nil {
		s.refresher.Refresh(ctx, rec)
	}
	return rec, nil
}

// StartTracking arms live tracking; each accepted sample becomes a vertex.
// On failure tracking stays off and the error wraps ErrLocationUnavailable.
// After Close it returns ErrClosed.
func (s *Session) StartTracking(ctx context.Context) error {
	if s.ctx.Err() != nil {
		return ErrClosed
	}
	if s.tracker == nil {
		return ErrLocationUnavailable
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.tracker.Start(s.ctx, func(gen uint64, v models.Vertex) {
		s.post(func() {
			// Stopped or restarted since the sample was queued.
			if !s.tracker.Live(gen) {
				s.metrics.SampleDropped()
				return
			}
			if err := v.Validate(); err != nil {
				s.logger.Warn("ignoring invalid sample", "err", err)
				return
			}
			s.appendVertex(v, observability.SourceTracking)
		})
	})
	if errors.Is(err, tracking.ErrClosed) {
		return ErrClosed
	}
	if err != nil {
		return locationErr(err)
	}
	return nil
}

// StopTracking disarms live tracking. Safe to call when not tracking.
func (s *Session) StopTracking(ctx context.Context) error {
	if s.tracker == nil {
		return nil
	}
	s.tracker.Stop()
	return ctx.Err()
}

// SurfaceReady resends the full state after the surface (re)loads.
func (s *Session) SurfaceReady() {
	s.post(func() {
		s.logger.Debug("surface ready, resyncing", "vertices", len(s.vertices))
		s.pushInit()
		if len(s.vertices) > 0 {
			s.pushPolygon()
		}
	})
}

// MapClick treats a tap on the surface as a new vertex.
func (s *Session) MapClick(v models.Vertex) {
	if err := v.Validate(); err != nil {
		s.logger.Warn("ignoring tap outside coordinate range", "err", err)
		return
	}
	s.post(func() {
		s.appendVertex(v, observability.SourceTap)
	})
}
