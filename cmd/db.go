package cmd

import (
	"fmt"

	"github.com/huangsam/kpiboard/internal/contract"
	"github.com/huangsam/kpiboard/internal/iocache"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// dbConfigSetup loads only the backend settings, without opening any store.
// Migrations and clearing must work on databases the stores cannot open yet.
func dbConfigSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	storeBackend, err := contract.ParseBackend(viper.GetString("store-backend"))
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}
	storeConn := viper.GetString("store-db-connect")
	if err := contract.ValidateDatabaseConnectionString(storeBackend, storeConn); err != nil {
		return err
	}

	cacheBackend, err := contract.ParseBackend(viper.GetString("cache-backend"))
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	cacheConn := viper.GetString("cache-db-connect")
	if err := contract.ValidateDatabaseConnectionString(cacheBackend, cacheConn); err != nil {
		return err
	}

	cfg.StoreBackend = storeBackend
	cfg.StoreDBConnect = storeConn
	cfg.CacheBackend = cacheBackend
	cfg.CacheDBConnect = cacheConn
	return nil
}

// dbSetup loads the backend settings and opens both stores.
func dbSetup() error {
	if err := dbConfigSetup(); err != nil {
		return err
	}
	if err := iocache.InitStores(cfg.StoreBackend, cfg.StoreDBConnect, cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return fmt.Errorf("failed to initialize persistence: %w", err)
	}
	return nil
}

// dbCmd focused on database management.
//
// Note: db subcommands use minimal initialization instead of the full
// sharedSetup, so they work without a valid month or output configuration.
var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the record store and roster cache databases",
	Long: `Manage the databases behind kpiboard.

The record store holds operators, KPI templates, monthly inputs and saved
history. The roster cache holds the serialized roster between syncs.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (disabled)

Subcommands:
  migrate - Run record store schema migrations
  status  - Show record store and roster cache statistics
  clear   - Remove all stored data`,
}

// dbMigrateCmd runs database migrations for the record store.
var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run record store schema migrations (upgrades/downgrades)",
	Long: `Manage schema versions of the record store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  kpiboard db migrate

  # Migrate to specific version
  kpiboard db migrate --target-version 2

  # Rollback everything
  kpiboard db migrate --target-version 0`,
	PreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := bindCommandFlags(cmd); err != nil {
			return err
		}
		return dbConfigSetup()
	},
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := iocache.MigrateRecords(cfg.StoreBackend, cfg.StoreDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}

// dbStatusCmd shows store status.
var dbStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display record store and roster cache statistics",
	Long: `Show backend, connection state, schema version, row counts and the last save
time of the record store, followed by the roster cache entry count and age.

Examples:
  kpiboard db status`,
	PreRunE: func(_ *cobra.Command, _ []string) error {
		return dbSetup()
	},
	Run: func(_ *cobra.Command, _ []string) {
		recordStatus, err := iocache.Manager.GetRecordStore().GetStatus(rootCtx)
		if err != nil {
			contract.LogFatal("Failed to get record store status", err)
		}
		iocache.PrintRecordStatus(recordStatus)

		fmt.Println()
		cacheStatus, err := iocache.Manager.GetRosterCache().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get roster cache status", err)
		}
		iocache.PrintCacheStatus(cacheStatus)
	},
}

// dbClearCmd removes all stored data.
var dbClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all stored records and the cached roster",
	Long: `Delete the record store and the roster cache.

For SQLite: Deletes the database files
For MySQL/PostgreSQL: Drops the tables

WARNING: This action cannot be undone. Consider 'kpiboard history export' first.

Examples:
  kpiboard history export --output-file backup
  kpiboard db clear`,
	PreRunE: func(_ *cobra.Command, _ []string) error {
		return dbConfigSetup()
	},
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ClearRecords(cfg.StoreBackend, contract.GetStoreDBFilePath(), cfg.StoreDBConnect); err != nil {
			contract.LogFatal("Failed to clear record store", err)
		}
		if err := iocache.ClearRosterCache(cfg.CacheBackend, contract.GetCacheDBFilePath(), cfg.CacheDBConnect); err != nil {
			contract.LogFatal("Failed to clear roster cache", err)
		}
		fmt.Println("Record store and roster cache cleared successfully.")
	},
}
