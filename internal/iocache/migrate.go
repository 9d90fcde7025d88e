package iocache

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/huangsam/kpiboard/internal/contract"
	"github.com/huangsam/kpiboard/schema"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// migrationsTable tracks the applied schema version.
const migrationsTable = "kpiboard_schema_migrations"

// MigrationResult describes what a migration run did.
type MigrationResult struct {
	From    uint
	To      uint
	Changed bool
}

// newMigrator opens a dedicated connection and wraps it in a migrate instance.
// Closing the instance closes the connection.
func newMigrator(backend schema.DatabaseBackend, connStr string) (*migrate.Migrate, error) {
	if backend == schema.NoneBackend {
		return nil, errors.New("migrations are not supported for NoneBackend")
	}

	db, err := openDB(backend, connStr, contract.GetStoreDBFilePath())
	if err != nil {
		return nil, err
	}

	var driver database.Driver
	switch backend {
	case schema.SQLiteBackend:
		driver, err = sqlite.WithInstance(db, &sqlite.Config{MigrationsTable: migrationsTable})
	case schema.MySQLBackend:
		driver, err = mysql.WithInstance(db, &mysql.Config{MigrationsTable: migrationsTable})
	case schema.PostgreSQLBackend:
		driver, err = pgxmigrate.WithInstance(db, &pgxmigrate.Config{MigrationsTable: migrationsTable})
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create %s migrate driver: %w", backend, err)
	}

	migrationFS, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to access migrations directory: %w", err)
	}
	sourceDriver, err := iofs.New(migrationFS, ".")
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "kpiboard", driver)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return m, nil
}

// ApplyMigrations moves the record store schema to targetVersion.
// - If targetVersion < 0, it migrates to the latest version.
// - If targetVersion == 0, it rolls back all migrations (to initial state).
// - If targetVersion > 0, it migrates to the specified version.
func ApplyMigrations(backend schema.DatabaseBackend, connStr string, targetVersion int) (MigrationResult, error) {
	var result MigrationResult

	m, err := newMigrator(backend, connStr)
	if err != nil {
		return result, err
	}
	defer func() { _, _ = m.Close() }()

	currentVersion, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return result, fmt.Errorf("failed to get current migration version: %w", err)
	}
	if dirty {
		return result, fmt.Errorf("database is in a dirty state at version %d. Please fix manually or force version", currentVersion)
	}
	result.From = currentVersion

	switch {
	case targetVersion < 0:
		err = m.Up()
	case targetVersion == 0:
		err = m.Down()
	default:
		err = m.Migrate(uint(targetVersion))
	}
	if errors.Is(err, migrate.ErrNoChange) {
		result.To = currentVersion
		return result, nil
	}
	if err != nil {
		return result, fmt.Errorf("failed to migrate from version %d: %w", currentVersion, err)
	}

	newVersion, _, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return result, fmt.Errorf("failed to read migrated version: %w", err)
	}
	result.To = newVersion
	result.Changed = true
	return result, nil
}

// MigrateRecords runs migrations and reports the outcome on stdout.
func MigrateRecords(backend schema.DatabaseBackend, connStr string, targetVersion int) error {
	result, err := ApplyMigrations(backend, connStr, targetVersion)
	if err != nil {
		return err
	}
	if !result.Changed {
		fmt.Printf("No migration needed. Database is already at version %d\n", result.To)
		return nil
	}
	fmt.Printf("Successfully migrated from version %d to version %d\n", result.From, result.To)
	return nil
}

// schemaVersion reads the applied version straight from the tracking table.
func schemaVersion(db *sql.DB) uint {
	var version int64
	query := fmt.Sprintf("SELECT version FROM %s LIMIT 1", migrationsTable)
	if err := db.QueryRow(query).Scan(&version); err != nil || version < 0 {
		return 0
	}
	return uint(version)
}
