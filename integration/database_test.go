//go:build database

package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestKpiboardWithMySQL tests the kpiboard CLI with a MySQL backend.
func TestKpiboardWithMySQL(t *testing.T) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "mysql:8",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret123",
			"MYSQL_DATABASE":      "kpiboard",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(60 * time.Second),
	}
	mysqlC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = mysqlC.Terminate(ctx) }()

	host, err := mysqlC.Host(ctx)
	require.NoError(t, err)
	port, err := mysqlC.MappedPort(ctx, "3306")
	require.NoError(t, err)

	connStr := fmt.Sprintf("root:secret123@tcp(%s:%s)/kpiboard?parseTime=true", host, port.Port())
	exerciseBackend(t, "mysql", connStr)
}

// TestKpiboardWithPostgres tests the kpiboard CLI with a PostgreSQL backend.
func TestKpiboardWithPostgres(t *testing.T) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_HOST_AUTH_METHOD": "trust",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = pgC.Terminate(ctx) }()

	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connStr := fmt.Sprintf("host=%s port=%s user=postgres dbname=postgres", host, port.Port())
	exerciseBackend(t, "postgresql", connStr)
}

// exerciseBackend runs the full CLI lifecycle against one server used for both
// the record store and the roster cache.
func exerciseBackend(t *testing.T, backend, connStr string) {
	env := map[string]string{
		"KPIBOARD_STORE_BACKEND":    backend,
		"KPIBOARD_STORE_DB_CONNECT": connStr,
		"KPIBOARD_CACHE_BACKEND":    backend,
		"KPIBOARD_CACHE_DB_CONNECT": connStr,
	}

	steps := [][]string{
		{"db", "clear"},
		{"db", "migrate"},
		{"import", seedPath(t)},
		{"sync"},
		{"operators"},
		{"save", "Alice", "--month", "2024-05", "--set", "sales_total=5000", "--coefficient", "1"},
		{"toggle", "Alice", "4", "--month", "2024-05"},
		{"db", "status"},
	}
	for _, args := range steps {
		_, err := runKpiboard(t, env, args...)
		require.NoError(t, err, "kpiboard %v", args)
	}

	out, err := runKpiboard(t, env, "history", "Alice", "--output", "csv")
	require.NoError(t, err)
	assert.Contains(t, out, "2024-05")

	_, err = runKpiboard(t, env, "db", "migrate", "--target-version", "0")
	require.NoError(t, err, "rollback to the initial state")
}
