// Package sqlite persists session state in a local SQLite file. It is the
// default driver for the shopctl CLI.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/utafrali/storefront/pkg/database"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

const (
	createTableSQL = `CREATE TABLE IF NOT EXISTS kv (
		key        TEXT PRIMARY KEY,
		value      BLOB NOT NULL,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`
	selectSQL = `SELECT value FROM kv WHERE key = ?`
	upsertSQL = `INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	deleteSQL = `DELETE FROM kv WHERE key = ?`
)

// Store implements repository.KeyValueStore on a *sql.DB.
type Store struct {
	db *sql.DB
}

// NewStore ensures the kv table exists and returns a store bound to db.
func NewStore(ctx context.Context, db *sql.DB) (*Store, error) {
	if _, err := db.ExecContext(ctx, createTableSQL); err != nil {
		return nil, fmt.Errorf("create kv table: %w", err)
	}
	return &Store{db: db}, nil
}

// Get returns the value stored under key.
func (s *Store) Get(ctx context.Context, key string) (_ []byte, err error) {
	ctx, end := database.TraceQuery(ctx, "sqlite", "kv.get", selectSQL)
	defer func() { end(err) }()

	var value []byte
	if err := s.db.QueryRowContext(ctx, selectSQL, key).Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("key", key)
		}
		return nil, fmt.Errorf("sqlite get %s: %w", key, err)
	}
	return value, nil
}

// Set upserts value under key.
func (s *Store) Set(ctx context.Context, key string, value []byte) (err error) {
	ctx, end := database.TraceQuery(ctx, "sqlite", "kv.set", upsertSQL)
	defer func() { end(err) }()

	if _, err := s.db.ExecContext(ctx, upsertSQL, key, value); err != nil {
		return fmt.Errorf("sqlite set %s: %w", key, err)
	}
	return nil
}

// Delete removes key.
func (s *Store) Delete(ctx context.Context, key string) (err error) {
	ctx, end := database.TraceQuery(ctx, "sqlite", "kv.delete", deleteSQL)
	defer func() { end(err) }()

	if _, err := s.db.ExecContext(ctx, deleteSQL, key); err != nil {
		return fmt.Errorf("sqlite delete %s: %w", key, err)
	}
	return nil
}

// Ping checks the database handle.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
