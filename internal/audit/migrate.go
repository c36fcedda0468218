package audit

import (
	"database/sql"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver

	"github.com/shraw06/docsplusplus/internal/audit/migrations"
	"github.com/shraw06/docsplusplus/internal/logger"
)

// runPostgresMigrations applies the audit_records schema to a Postgres
// database, using golang-migrate's advisory-lock-backed Up. SQLite uses
// GORM AutoMigrate instead (see Logger's New): golang-migrate's value here
// is concurrent-instance safety against a shared Postgres server, which a
// per-process embedded SQLite file does not need.
func runPostgresMigrations(dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("open audit database for migration: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{
		MigrationsTable: "audit_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("create postgres migration driver: %w", err)
	}

	sourceDriver, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply audit migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return fmt.Errorf("read audit schema version: %w", err)
	}
	if dirty {
		logger.Warn("audit database schema is in a dirty state", "version", version)
	}

	return nil
}
