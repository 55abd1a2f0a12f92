package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dtroode/homescout/internal/model"
)

var _ model.KVStore = (*KVRepository)(nil)

// KVRepository stores values in the kv_entries table.
type KVRepository struct {
	db *sql.DB
}

func NewKVRepository(db *sql.DB) *KVRepository {
	return &KVRepository{db: db}
}

func (r *KVRepository) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	query := `SELECT value FROM kv_entries WHERE key = ?`

	err := r.db.QueryRowContext(ctx, query, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrKeyNotFound
		}
		return nil, fmt.Errorf("failed to get value by key: %w", err)
	}

	return value, nil
}

func (r *KVRepository) Put(ctx context.Context, key string, value []byte) (err error) {
	query := `INSERT INTO kv_entries (key, value, updated_at)
			  VALUES (?, ?, CURRENT_TIMESTAMP)
			  ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to put value: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit value: %w", err)
	}
	return nil
}

func (r *KVRepository) Delete(ctx context.Context, key string) error {
	query := `DELETE FROM kv_entries WHERE key = ?`

	if _, err := r.db.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("failed to delete value: %w", err)
	}
	return nil
}

func (r *KVRepository) Close() error {
	return r.db.Close()
}
