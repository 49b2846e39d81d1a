package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"activityhub/internal/config"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver
	"go.uber.org/zap"
	_ "modernc.org/sqlite" // SQLite driver, used by tests and local runs
)

//go:embed migrations/*.sql
var migrationFS embed.FS

func init() {
	// sqlx only knows "sqlite3" out of the box.
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

func Connect(cfg *config.Config, logger *zap.Logger) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	logger.Info("connected to database",
		zap.String("host", cfg.DBHost),
		zap.String("database", cfg.DBName))
	return db, nil
}

// Migrate applies the embedded schema migrations to the database at dsn.
// driverName is "postgres" or "sqlite". A dedicated connection is opened and
// closed, so the caller's pool is unaffected.
func Migrate(driverName, dsn string) error {
	sqlDB, err := sql.Open(driverName, dsn)
	if err != nil {
		return fmt.Errorf("open %s for migrations: %w", driverName, err)
	}

	var driver migratedb.Driver
	switch driverName {
	case "postgres":
		driver, err = postgres.WithInstance(sqlDB, &postgres.Config{})
	case "sqlite":
		driver, err = sqlite.WithInstance(sqlDB, &sqlite.Config{})
	default:
		_ = sqlDB.Close()
		return fmt.Errorf("unsupported migration driver %q", driverName)
	}
	if err != nil {
		_ = sqlDB.Close()
		return fmt.Errorf("create migration driver: %w", err)
	}

	source, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		_ = driver.Close()
		return fmt.Errorf("open migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, driverName, driver)
	if err != nil {
		_ = driver.Close()
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}
