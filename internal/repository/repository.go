package repository

import (
	"context"
)

// KeyValueStore is the persistence boundary for session state. Values are
// opaque serialized blobs; every Set overwrites the whole value.
type KeyValueStore interface {
	// Get returns the value stored under key, or an apperrors.ErrNotFound
	// error when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set overwrites the value stored under key.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes the key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error
}

// Storage drivers selectable via configuration.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)
