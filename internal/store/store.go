// Package store is the durable key-value layer backing session state and
// screen caches. Values are opaque byte slices; callers own serialization.
package store

import (
	"context"
	"errors"
	"fmt"

	"vidyalink/app/internal/config"
)

var ErrNotFound = errors.New("store: key not found")

type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes a key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	Close() error
}

// Open builds the store backend selected by config.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Backend {
	case "sqlite", "":
		return OpenSQLite(cfg.Path)
	case "redis":
		return OpenRedis(ctx, cfg.Redis)
	case "memory":
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
