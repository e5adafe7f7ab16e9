package repository

import (
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate applies the embedded migrations. steps of 0 means all.
func Migrate(d *DB, direction string, steps int, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("migrations source: %w", err)
	}

	var drv database.Driver
	switch d.Dialect {
	case DialectPostgres:
		drv, err = migratepgx.WithInstance(d.SQL, &migratepgx.Config{})
	default:
		drv, err = migratesqlite.WithInstance(d.SQL, &migratesqlite.Config{})
	}
	if err != nil {
		return fmt.Errorf("migrations driver: %w", err)
	}

	// m.Close would close d.SQL, which the caller owns.
	m, err := migrate.NewWithInstance("iofs", src, string(d.Dialect), drv)
	if err != nil {
		return fmt.Errorf("migrate init: %w", err)
	}

	switch direction {
	case "up", "":
		if steps > 0 {
			err = m.Steps(steps)
		} else {
			err = m.Up()
		}
	case "down":
		if steps > 0 {
			err = m.Steps(-steps)
		} else {
			err = m.Down()
		}
	default:
		return fmt.Errorf("unknown direction: %s", direction)
	}
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("db.migrate.no_change", "direction", direction)
		return nil
	}
	if err != nil {
		return fmt.Errorf("migrate %s: %w", direction, err)
	}
	version, dirty, _ := m.Version()
	logger.Info("db.migrate.ok", "direction", direction, "version", version, "dirty", dirty)
	return nil
}
