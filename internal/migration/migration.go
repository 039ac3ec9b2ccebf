package migration

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	migratepostgres "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"

	"github.com/rl1809/inventory-records/internal/logger"
)

//go:embed mysql/*.sql postgres/*.sql
var files embed.FS

// Migrate applies the embedded schema for one SQL dialect ("mysql" or "postgres").
// The migrator is never closed: closing it would close DB as well.
type Migrate struct {
	DB      *sql.DB
	Dialect string
}

func (m *Migrate) MigrateUp() error {
	mig, err := m.migrator()
	if err != nil {
		return err
	}

	version, dirty, _ := mig.Version()
	logger.L().Info("starting migration",
		zap.String("dialect", m.Dialect),
		zap.Uint("version", version),
		zap.Bool("dirty", dirty),
	)

	if err := mig.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}

	logger.L().Info("migration finished", zap.String("dialect", m.Dialect))
	return nil
}

func (m *Migrate) MigrateDown() error {
	mig, err := m.migrator()
	if err != nil {
		return err
	}
	if err := mig.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate down: %w", err)
	}
	return nil
}

func (m *Migrate) migrator() (*migrate.Migrate, error) {
	src, err := iofs.New(files, m.Dialect)
	if err != nil {
		return nil, fmt.Errorf("migration source %q: %w", m.Dialect, err)
	}

	var driver database.Driver
	switch m.Dialect {
	case "mysql":
		driver, err = migratemysql.WithInstance(m.DB, &migratemysql.Config{})
	case "postgres":
		driver, err = migratepostgres.WithInstance(m.DB, &migratepostgres.Config{})
	default:
		return nil, fmt.Errorf("unsupported migration dialect %q", m.Dialect)
	}
	if err != nil {
		return nil, fmt.Errorf("migration driver: %w", err)
	}

	return migrate.NewWithInstance("iofs", src, m.Dialect, driver)
}
