package iocache

import (
	"database/sql"
	"strings"
	"testing"

	"github.com/huangsam/kpiboard/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateTableName(t *testing.T) {
	tests := []struct {
		name      string
		tableName string
		wantErr   bool
	}{
		{"valid simple name", "kpi_roster_cache", false},
		{"valid name with numbers", "test_table_123", false},
		{"valid name starting with underscore", "_test_table", false},
		{"valid mixed case", "TestTable_123", false},
		{"empty name", "", true},
		{"starts with number", "123_table", true},
		{"contains dash", "test-table", true},
		{"contains space", "test table", true},
		{"sql injection attempt", "test'; DROP TABLE users; --", true},
		{"contains dot", "test.table", true},
		{"too long", strings.Repeat("t", 65), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTableName(tt.tableName)
			if tt.wantErr {
				assert.Error(t, err, "validateTableName should error for %q", tt.tableName)
			} else {
				assert.NoError(t, err, "validateTableName should not error for %q", tt.tableName)
			}
		})
	}
}

func TestQuoteTableName(t *testing.T) {
	tests := []struct {
		backend schema.DatabaseBackend
		want    string
	}{
		{schema.SQLiteBackend, `"t"`},
		{schema.MySQLBackend, "`t`"},
		{schema.PostgreSQLBackend, `"t"`},
		{schema.NoneBackend, `"t"`},
	}
	for _, tt := range tests {
		t.Run(string(tt.backend), func(t *testing.T) {
			assert.Equal(t, tt.want, quoteTableName("t", tt.backend))
		})
	}
}

func TestRebind(t *testing.T) {
	query := "SELECT a FROM t WHERE b = ? AND c = ?"
	assert.Equal(t, query, rebind(schema.SQLiteBackend, query))
	assert.Equal(t, query, rebind(schema.MySQLBackend, query))
	assert.Equal(t, "SELECT a FROM t WHERE b = $1 AND c = $2", rebind(schema.PostgreSQLBackend, query))
	assert.Equal(t, "SELECT 1", rebind(schema.PostgreSQLBackend, "SELECT 1"))
}

func TestDriverName(t *testing.T) {
	for backend, want := range map[schema.DatabaseBackend]string{
		schema.SQLiteBackend:     "sqlite",
		schema.MySQLBackend:      "mysql",
		schema.PostgreSQLBackend: "pgx",
	} {
		got, err := driverName(backend)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := driverName(schema.NoneBackend)
	assert.Error(t, err)
}

func TestGetCreateTableQuery(t *testing.T) {
	assert.Contains(t, getCreateTableQuery("c", schema.MySQLBackend), "LONGBLOB")
	assert.Contains(t, getCreateTableQuery("c", schema.PostgreSQLBackend), "BYTEA")
	assert.Contains(t, getCreateTableQuery("c", schema.SQLiteBackend), "BLOB")
	assert.Contains(t, getCreateTableQuery("c", schema.SQLiteBackend), `"c"`)
}

func TestGetUpsertQuery(t *testing.T) {
	mysqlStore := &CacheStoreImpl{tableName: "c", backend: schema.MySQLBackend}
	assert.Contains(t, mysqlStore.getUpsertQuery(), "ON DUPLICATE KEY UPDATE")

	pgStore := &CacheStoreImpl{tableName: "c", backend: schema.PostgreSQLBackend}
	assert.Contains(t, pgStore.getUpsertQuery(), "ON CONFLICT (cache_key)")
	assert.Contains(t, pgStore.getUpsertQuery(), "$4")

	sqliteStore := &CacheStoreImpl{tableName: "c", backend: schema.SQLiteBackend}
	assert.Contains(t, sqliteStore.getUpsertQuery(), "INSERT OR REPLACE")
}

func TestSQLiteCacheStore(t *testing.T) {
	t.Run("set get delete", func(t *testing.T) {
		store, err := NewCacheStore(rosterTable, schema.SQLiteBackend, ":memory:")
		require.NoError(t, err)
		defer func() { _ = store.Close() }()

		require.NoError(t, store.Set("roster", []byte(`[{"operator_name":"Alice"}]`), 1, 1000))

		value, version, ts, err := store.Get("roster")
		require.NoError(t, err)
		assert.Equal(t, `[{"operator_name":"Alice"}]`, string(value))
		assert.Equal(t, 1, version)
		assert.Equal(t, int64(1000), ts)

		require.NoError(t, store.Delete("roster"))
		_, _, _, err = store.Get("roster")
		assert.ErrorIs(t, err, sql.ErrNoRows)

		assert.NoError(t, store.Delete("roster"), "deleting a missing key is fine")
	})

	t.Run("upsert", func(t *testing.T) {
		store, err := NewCacheStore(rosterTable, schema.SQLiteBackend, ":memory:")
		require.NoError(t, err)
		defer func() { _ = store.Close() }()

		require.NoError(t, store.Set("k", []byte("a"), 1, 1000))
		require.NoError(t, store.Set("k", []byte("b"), 2, 2000))

		value, version, ts, err := store.Get("k")
		require.NoError(t, err)
		assert.Equal(t, "b", string(value))
		assert.Equal(t, 2, version)
		assert.Equal(t, int64(2000), ts)
	})

	t.Run("status", func(t *testing.T) {
		store, err := NewCacheStore(rosterTable, schema.SQLiteBackend, ":memory:")
		require.NoError(t, err)
		defer func() { _ = store.Close() }()

		status, err := store.GetStatus()
		require.NoError(t, err)
		assert.True(t, status.Connected)
		assert.Equal(t, 0, status.TotalEntries)

		require.NoError(t, store.Set("a", []byte("1"), 1, 1000))
		require.NoError(t, store.Set("b", []byte("2"), 1, 3000))

		status, err = store.GetStatus()
		require.NoError(t, err)
		assert.Equal(t, "sqlite", status.Backend)
		assert.Equal(t, 2, status.TotalEntries)
		assert.Equal(t, int64(3000), status.LastEntryTime.Unix())
		assert.Equal(t, int64(1000), status.OldestEntryTime.Unix())
		assert.Greater(t, status.TableSizeBytes, int64(0))
	})
}

func TestNoneCacheStore(t *testing.T) {
	store, err := NewCacheStore(rosterTable, schema.NoneBackend, "")
	require.NoError(t, err)

	assert.NoError(t, store.Set("k", []byte("v"), 1, 1))
	_, _, _, err = store.Get("k")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, store.Delete("k"))

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.False(t, status.Connected)
	assert.NoError(t, store.Close())
}

func TestNewCacheStoreErrors(t *testing.T) {
	_, err := NewCacheStore("bad-name", schema.SQLiteBackend, ":memory:")
	assert.Error(t, err)

	_, err = NewCacheStore(rosterTable, schema.DatabaseBackend("oracle"), "")
	assert.Error(t, err)
}
