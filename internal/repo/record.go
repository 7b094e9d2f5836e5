package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shaiso/Conveyor/internal/kv"
)

// getJSON читает ключ и разбирает JSON в v.
func getJSON(ctx context.Context, store kv.Store, key string, v any) error {
	data, err := store.Get(ctx, key)
	if errors.Is(err, kv.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return fmt.Errorf("get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCorrupt, key, err)
	}
	return nil
}

// setJSON сериализует v и записывает под ключом.
func setJSON(ctx context.Context, store kv.Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if err := store.Set(ctx, key, data); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}
