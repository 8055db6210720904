package repository

import (
	"context"
	"embed"
	"fmt"

	"github.com/segyhp/emi-ledger/internal/config"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Open connects to the configured database and applies the pool settings.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, cfg.Driver, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", cfg.Driver, err)
	}

	if cfg.Driver == config.DriverSQLite {
		// sqlite has a single writer; an in-memory database also lives and dies with its connection
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
		return db, nil
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	return db, nil
}

// Migrate creates the schema for the connection's driver. It is safe to run repeatedly.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	script, err := migrations.ReadFile("migrations/" + db.DriverName() + ".sql")
	if err != nil {
		return fmt.Errorf("no migration for driver %q: %w", db.DriverName(), err)
	}

	if _, err := db.ExecContext(ctx, string(script)); err != nil {
		return fmt.Errorf("applying %s schema: %w", db.DriverName(), err)
	}
	return nil
}

// forUpdate appends a row lock clause for drivers that support it.
func forUpdate(q sqlx.ExtContext, query string) string {
	if q.DriverName() == config.DriverPostgres {
		return query + " FOR UPDATE"
	}
	return query
}
