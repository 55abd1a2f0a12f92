// Package database holds the SQL schema migrations for the key-value tables.
package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io"
	"log"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	"github.com/pressly/goose/v3"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrations embed.FS

// Dialect names a goose SQL dialect.
type Dialect string

const (
	// Postgres is the PostgreSQL dialect.
	Postgres Dialect = "postgres"
	// SQLite is the SQLite dialect.
	SQLite Dialect = "sqlite3"
)

// goose keeps its base FS and dialect in package state.
var gooseMu sync.Mutex

// Migrate opens a short-lived database/sql handle on the postgres DSN and applies all migrations.
func Migrate(ctx context.Context, dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("failed to open migration connection: %w", err)
	}
	defer db.Close()

	return MigrateDB(ctx, db, Postgres)
}

// MigrateDB applies the migrations for dialect to db.
func MigrateDB(ctx context.Context, db *sql.DB, dialect Dialect) error {
	dir, err := migrationDir(dialect)
	if err != nil {
		return err
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations)
	goose.SetLogger(log.New(io.Discard, "", 0))
	if err := goose.SetDialect(string(dialect)); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, dir); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

func migrationDir(dialect Dialect) (string, error) {
	switch dialect {
	case Postgres:
		return "migrations/postgres", nil
	case SQLite:
		return "migrations/sqlite", nil
	default:
		return "", fmt.Errorf("unsupported dialect %q", dialect)
	}
}
