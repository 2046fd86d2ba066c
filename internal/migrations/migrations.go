// Package migrations holds the database schema as goose migrations, one directory per SQL
// dialect, embedded into the binaries.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
	"gitlab.com/dirk.krummacker/contact-form/internal/config"
)

// Migrations contains the SQL files of all dialects.
//
//go:embed postgres/*.sql mysql/*.sql
var Migrations embed.FS

// gooseUpContext and gooseDownContext are seams for tests.
var (
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string) error {
		return goose.UpContext(ctx, db, dir)
	}
	gooseDownContext = func(ctx context.Context, db *sql.DB, dir string) error {
		return goose.DownContext(ctx, db, dir)
	}
)

// dialect returns the goose dialect and the migrations directory for a DB_DRIVER value.
func dialect(driver string) (string, string, error) {
	switch driver {
	case config.DriverPostgres:
		return "pgx", "postgres", nil
	case config.DriverMySQL:
		return "mysql", "mysql", nil
	default:
		return "", "", fmt.Errorf("no migrations for database driver %q", driver)
	}
}

func prepare(driver string) (string, error) {
	gooseDialect, dir, err := dialect(driver)
	if err != nil {
		return "", err
	}
	goose.SetBaseFS(Migrations)
	if err := goose.SetDialect(gooseDialect); err != nil {
		return "", err
	}
	return dir, nil
}

// Up applies all pending migrations.
func Up(ctx context.Context, db *sql.DB, driver string) error {
	dir, err := prepare(driver)
	if err != nil {
		return err
	}
	if err := gooseUpContext(ctx, db, dir); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// Down rolls back the most recent migration.
func Down(ctx context.Context, db *sql.DB, driver string) error {
	dir, err := prepare(driver)
	if err != nil {
		return err
	}
	if err := gooseDownContext(ctx, db, dir); err != nil {
		return fmt.Errorf("roll back migration: %w", err)
	}
	return nil
}
