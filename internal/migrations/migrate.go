package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

//go:embed sql/*.sql
var embedded embed.FS

// Dialect maps a store driver name to the goose dialect.
func Dialect(driver string) (goose.Dialect, error) {
	switch driver {
	case "postgres", "pgx":
		return goose.DialectPostgres, nil
	case "sqlite", "sqlite3":
		return goose.DialectSQLite3, nil
	default:
		return "", fmt.Errorf("no migration dialect for driver %q", driver)
	}
}

// Up applies every pending embedded migration and returns how many ran.
func Up(ctx context.Context, db *sql.DB, driver string) (int, error) {
	dialect, err := Dialect(driver)
	if err != nil {
		return 0, err
	}
	fsys, err := fs.Sub(embedded, "sql")
	if err != nil {
		return 0, fmt.Errorf("open embedded migrations: %w", err)
	}
	provider, err := goose.NewProvider(dialect, db, fsys)
	if err != nil {
		return 0, fmt.Errorf("create goose provider: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return 0, fmt.Errorf("run goose up migrations: %w", err)
	}
	return len(results), nil
}
