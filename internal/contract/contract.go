// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"

	"github.com/huangsam/kpiboard/schema"
)

// AutoCalcWriter persists the calculation mode of an indicator.
// Rows are keyed by operator and indicator label, not by item id.
type AutoCalcWriter interface {
	SetAutoCalculate(ctx context.Context, person, indicator string, auto bool) error
}

// RecordWriter persists one scored month for an operator.
type RecordWriter interface {
	SaveRecord(ctx context.Context, payload schema.SavePayload) error
}

// DataSource supplies everything the scoring engine reads and writes.
// This allows the engine to be tested without a database.
type DataSource interface {
	AutoCalcWriter
	RecordWriter

	// ListOperators returns the full roster with upstream aggregates.
	ListOperators(ctx context.Context) ([]schema.Operator, error)

	// GetOperator returns a single roster entry.
	GetOperator(ctx context.Context, person string) (schema.Operator, error)

	// GetTemplate returns the operator's KPI template in display order.
	GetTemplate(ctx context.Context, person string) ([]schema.KpiTemplateItem, error)

	// GetRawInputs returns the values entered for a month. Missing months yield an empty map.
	GetRawInputs(ctx context.Context, person, month string) (schema.RawInputs, error)

	// GetHistory returns every saved month for the operator.
	GetHistory(ctx context.Context, person string) ([]schema.HistoryRecord, error)
}

// RecordStore is the durable DataSource plus the maintenance operations the CLI needs.
type RecordStore interface {
	DataSource

	// ImportOperators upserts roster entries.
	ImportOperators(ctx context.Context, operators []schema.Operator) error

	// ImportTemplate replaces the template of an operator.
	ImportTemplate(ctx context.Context, person string, items []schema.KpiTemplateItem) error

	// GetAllHistory returns the history of every operator, for export.
	GetAllHistory(ctx context.Context) ([]schema.HistoryRecord, error)

	// GetStatus returns status information about the record store.
	GetStatus(ctx context.Context) (schema.RecordStatus, error)

	// Close closes the underlying connection.
	Close() error
}

// CacheManager defines the interface for managing stores.
// This allows the persistence layer to be mocked for testing.
type CacheManager interface {
	GetRosterCache() CacheStore
	GetRecordStore() RecordStore
}

// CacheStore defines the interface for key-value cache storage.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	Delete(key string) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}
