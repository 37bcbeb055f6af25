package collections

import (
	"context"
	"encoding/json"
	"fmt"
)

// Load decodes the collection stored under key into dst. A collection that
// was never written leaves dst untouched, so callers pass a ready empty map.
func Load[T any](ctx context.Context, r Repository, key string, dst *T) error {
	raw, err := r.Get(ctx, key)
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("failed to decode collection[%s]: %w", key, err)
	}
	return nil
}

// Save encodes v and writes it under key, replacing the whole collection.
func Save[T any](ctx context.Context, r Repository, key string, v T) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode collection[%s]: %w", key, err)
	}
	return r.Set(ctx, key, raw)
}
