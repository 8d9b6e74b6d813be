// ABOUTME: Area record CRUD operations using Charm KV
// ABOUTME: Records are JSON values keyed by id; name and owner lookups scan the prefix

package charm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/charmbracelet/charm/kv"
	"github.com/google/uuid"
	"github.com/harper/acreage/internal/models"
	"github.com/harper/acreage/internal/storage"
)

// Compile-time check that Client implements storage.Repository.
var _ storage.Repository = (*Client)(nil)

func areaKey(id uuid.UUID) []byte {
	return []byte(AreaPrefix + id.String())
}

// SaveArea writes the record as a single key, so the save is all or nothing.
func (c *Client) SaveArea(ctx context.Context, rec *models.AreaRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := storage.CheckRecord(rec); err != nil {
		return err
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal area: %w", err)
	}
	return c.write(func(k *kv.KV) error {
		if err := k.Set(areaKey(rec.ID), data); err != nil {
			return fmt.Errorf("set area: %w", err)
		}
		return nil
	})
}

// GetArea retrieves a record by its UUID.
func (c *Client) GetArea(ctx context.Context, id uuid.UUID) (*models.AreaRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var data []byte
	err := c.read(func(k *kv.KV) error {
		var err error
		data, err = k.Get(areaKey(id))
		return err
	})
	if err != nil {
		if errors.Is(err, kv.ErrMissingKey) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get area: %w", err)
	}

	var rec models.AreaRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal area: %w", err)
	}
	return &rec, nil
}

// GetAreaByName retrieves the most recently updated record with the given name.
// This requires a full scan since we're filtering by name.
func (c *Client) GetAreaByName(ctx context.Context, owner, name string) (*models.AreaRecord, error) {
	areas, err := c.ListAreas(ctx, owner)
	if err != nil {
		return nil, err
	}
	for _, a := range areas {
		if a.Name == name {
			return a, nil
		}
	}
	return nil, storage.ErrNotFound
}

// ListAreas returns owner's records, most recently updated first.
func (c *Client) ListAreas(ctx context.Context, owner string) ([]*models.AreaRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	areas := []*models.AreaRecord{}
	prefix := []byte(AreaPrefix)

	err := c.read(func(k *kv.KV) error {
		keys, err := k.Keys()
		if err != nil {
			return fmt.Errorf("list keys: %w", err)
		}

		for _, key := range keys {
			if !bytes.HasPrefix(key, prefix) {
				continue
			}

			data, err := k.Get(key)
			if err != nil {
				return fmt.Errorf("get area %s: %w", key, err)
			}

			var rec models.AreaRecord
			if err := json.Unmarshal(data, &rec); err != nil {
				return fmt.Errorf("unmarshal area: %w", err)
			}
			if rec.OwnerID == owner {
				areas = append(areas, &rec)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	storage.SortByUpdated(areas)
	return areas, nil
}

// DeleteArea removes a record. Deleting a missing record returns storage.ErrNotFound.
func (c *Client) DeleteArea(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.write(func(k *kv.KV) error {
		if _, err := k.Get(areaKey(id)); err != nil {
			if errors.Is(err, kv.ErrMissingKey) {
				return storage.ErrNotFound
			}
			return fmt.Errorf("get area: %w", err)
		}
		if err := k.Delete(areaKey(id)); err != nil {
			return fmt.Errorf("delete area: %w", err)
		}
		return nil
	})
}
