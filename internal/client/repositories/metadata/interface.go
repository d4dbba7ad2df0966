// Package metadata is a small key-value store inside the local SQLite
// database. It backs the client's preferences: tag order and visibility,
// label overrides, the sync cursor and the device id.
//
// Keys are flat strings; callers group related keys under a common prefix
// ("entry/<id>/...") so they can be dropped together.
package metadata

import "context"

type Repository interface {
	// Get returns (nil, nil) when key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	// DeletePrefix removes every key starting with prefix and reports how
	// many were removed.
	DeletePrefix(ctx context.Context, prefix string) (int64, error)
}
