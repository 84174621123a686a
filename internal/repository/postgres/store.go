package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/storefront/pkg/database"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

const (
	selectSQL = `SELECT value FROM session_kv WHERE key = $1`
	upsertSQL = `INSERT INTO session_kv (key, value, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`
	deleteSQL = `DELETE FROM session_kv WHERE key = $1`
	pingSQL   = `SELECT 1`
)

// Store implements repository.KeyValueStore on PostgreSQL.
type Store struct {
	db database.DBTX
}

// NewStore returns a store bound to db. Call Migrate before first use.
func NewStore(db database.DBTX) *Store {
	return &Store{db: db}
}

// Migrate applies the embedded schema migrations.
func Migrate(ctx context.Context, db database.DBTX, logger *slog.Logger) error {
	sub, err := fs.Sub(migrationFS, "migrations")
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}
	return database.RunMigrations(ctx, db, sub, logger)
}

// Get returns the value stored under key.
func (s *Store) Get(ctx context.Context, key string) (_ []byte, err error) {
	ctx, end := database.TraceQuery(ctx, "postgresql", "kv.get", selectSQL)
	defer func() { end(err) }()

	var value []byte
	if err := s.db.QueryRow(ctx, selectSQL, key).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("key", key)
		}
		return nil, fmt.Errorf("postgres get %s: %w", key, err)
	}
	return value, nil
}

// Set upserts value under key.
func (s *Store) Set(ctx context.Context, key string, value []byte) (err error) {
	ctx, end := database.TraceQuery(ctx, "postgresql", "kv.set", upsertSQL)
	defer func() { end(err) }()

	if _, err := s.db.Exec(ctx, upsertSQL, key, value); err != nil {
		return fmt.Errorf("postgres set %s: %w", key, err)
	}
	return nil
}

// Delete removes key.
func (s *Store) Delete(ctx context.Context, key string) (err error) {
	ctx, end := database.TraceQuery(ctx, "postgresql", "kv.delete", deleteSQL)
	defer func() { end(err) }()

	if _, err := s.db.Exec(ctx, deleteSQL, key); err != nil {
		return fmt.Errorf("postgres delete %s: %w", key, err)
	}
	return nil
}

// Ping runs a trivial query.
func (s *Store) Ping(ctx context.Context) error {
	var one int
	return s.db.QueryRow(ctx, pingSQL).Scan(&one)
}
