// Package database opens the GORM connection and prepares the schema.
package database

import (
	"embed"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"estoque/internal/models"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Config selects the driver and connection string.
type Config struct {
	Driver string
	URL    string
	Debug  bool
}

// Open connects to the configured database. Driver errors are translated to
// GORM sentinels such as gorm.ErrDuplicatedKey.
func Open(cfg Config, logger *slog.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case DriverPostgres:
		dialector = postgres.Open(cfg.URL)
	case DriverSQLite:
		dialector = sqlite.Open(cfg.URL)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         newSlogGormLogger(logger, cfg.Debug),
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", cfg.Driver, err)
	}
	return db, nil
}

// Migrate brings the schema up to date. PostgreSQL uses the embedded SQL
// migrations; SQLite is auto-migrated from the models.
func Migrate(db *gorm.DB, cfg Config, logger *slog.Logger) error {
	if cfg.Driver == DriverSQLite {
		if err := db.AutoMigrate(&models.User{}, &models.Product{}); err != nil {
			return fmt.Errorf("failed to auto-migrate database: %w", err)
		}
		return nil
	}
	return runMigrations(cfg.URL, logger)
}

func runMigrations(databaseURL string, logger *slog.Logger) error {
	if !strings.HasPrefix(databaseURL, "postgres://") && !strings.HasPrefix(databaseURL, "postgresql://") {
		return fmt.Errorf("migrations need a postgres:// URL")
	}

	source, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", source, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to initialize migrations: %w", err)
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			logger.Warn("closing migrator", slog.Any("source_error", srcErr), slog.Any("db_error", dbErr))
		}
	}()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		logger.Warn("could not read migration version", slog.Any("error", err))
		return nil
	}
	if dirty {
		return fmt.Errorf("database migration state is dirty at version %d", version)
	}
	logger.Info("database schema up to date", slog.Uint64("version", uint64(version)))
	return nil
}
