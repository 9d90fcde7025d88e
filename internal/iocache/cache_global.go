package iocache

import (
	"database/sql"
	"fmt"
	"os"
	"sync"

	"github.com/huangsam/kpiboard/schema"
)

// rosterTable is the name of the table for roster caching.
const rosterTable = "kpi_roster_cache"

// Global Manager instance for main logic.
var (
	Manager   = &CacheStoreManager{}
	initOnce  sync.Once
	closeOnce sync.Once
)

// InitStores initializes the global manager with the record store and the roster cache.
func InitStores(storeBackend schema.DatabaseBackend, storeConnStr string, cacheBackend schema.DatabaseBackend, cacheConnStr string) error {
	var initErr error

	initOnce.Do(func() {
		recordStore, err := NewRecordStore(storeBackend, storeConnStr)
		if err != nil {
			initErr = fmt.Errorf("failed to initialize record store: %w", err)
			return
		}

		rosterCache, err := NewCacheStore(rosterTable, cacheBackend, cacheConnStr)
		if err != nil {
			_ = recordStore.Close()
			initErr = fmt.Errorf("failed to initialize roster cache: %w", err)
			return
		}

		Manager.mu.Lock()
		defer Manager.mu.Unlock()
		Manager.record = recordStore
		Manager.roster = rosterCache
	})

	return initErr
}

// CloseStores should be called on application shutdown.
func CloseStores() { // called in main defer
	closeOnce.Do(func() {
		Manager.mu.Lock()
		defer Manager.mu.Unlock()
		if Manager.roster != nil {
			_ = Manager.roster.Close()
		}
		if Manager.record != nil {
			_ = Manager.record.Close()
		}
	})
}

// ClearRecords drops the record store.
// For SQLite, it deletes the database file.
// For SQL backends (MySQL/PostgreSQL), it drops the record tables and the migration table.
// For NoneBackend, it does nothing.
func ClearRecords(backend schema.DatabaseBackend, dbFilePath, connStr string) error {
	tables := append([]string{migrationsTable}, recordTables...)
	return clearBackend(backend, dbFilePath, connStr, tables)
}

// ClearRosterCache drops the roster cache.
func ClearRosterCache(backend schema.DatabaseBackend, dbFilePath, connStr string) error {
	return clearBackend(backend, dbFilePath, connStr, []string{rosterTable})
}

func clearBackend(backend schema.DatabaseBackend, dbFilePath, connStr string, tables []string) error {
	switch backend {
	case schema.SQLiteBackend:
		if connStr != "" {
			dbFilePath = connStr
		}
		if dbFilePath == "" {
			return fmt.Errorf("dbFilePath cannot be empty for SQLite backend")
		}
		// Remove the file; ignore if it doesn't exist
		if err := os.Remove(dbFilePath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove SQLite database file %s: %w", dbFilePath, err)
		}
		return nil

	case schema.MySQLBackend, schema.PostgreSQLBackend:
		driver, _ := driverName(backend)
		for _, table := range tables {
			if err := clearSQLTable(driver, connStr, table); err != nil {
				return err
			}
		}
		return nil

	case schema.NoneBackend:
		return nil

	default:
		return fmt.Errorf("unsupported backend for clearing: %s", backend)
	}
}

// clearSQLTable connects to the SQL database and drops the table if it exists.
func clearSQLTable(driverName, connStr, tableName string) error {
	if err := validateTableName(tableName); err != nil {
		return err
	}
	db, err := sql.Open(driverName, connStr)
	if err != nil {
		return fmt.Errorf("failed to connect to %s database: %w", driverName, err)
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping %s database: %w", driverName, err)
	}

	query := fmt.Sprintf("DROP TABLE IF EXISTS %s", tableName)
	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("failed to drop table %s: %w", tableName, err)
	}

	return nil
}
