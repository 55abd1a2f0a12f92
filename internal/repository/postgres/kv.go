package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/dtroode/homescout/internal/model"
)

var _ model.KVStore = (*KVRepository)(nil)

// KVRepository stores values in the kv_entries table.
type KVRepository struct {
	db *Connection
}

func NewKVRepository(db *Connection) *KVRepository {
	return &KVRepository{
		db: db,
	}
}

func (r *KVRepository) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	query := `SELECT value FROM kv_entries WHERE key = $1`

	err := r.db.QueryRow(ctx, query, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrKeyNotFound
		}
		return nil, fmt.Errorf("failed to get value by key: %w", err)
	}

	return value, nil
}

func (r *KVRepository) Put(ctx context.Context, key string, value []byte) error {
	query := `INSERT INTO kv_entries (key, value, updated_at)
			  VALUES ($1, $2, now())
			  ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	// Rollback after a successful Commit is a no-op.
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to put value: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit value: %w", err)
	}
	return nil
}

func (r *KVRepository) Delete(ctx context.Context, key string) error {
	query := `DELETE FROM kv_entries WHERE key = $1`

	_, err := r.db.Exec(ctx, query, key)
	if err != nil {
		return fmt.Errorf("failed to delete value: %w", err)
	}

	return nil
}

// Close releases the underlying pool.
func (r *KVRepository) Close() error {
	return r.db.Close()
}
