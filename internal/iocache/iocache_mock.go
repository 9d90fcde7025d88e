package iocache

import (
	"context"

	"github.com/huangsam/kpiboard/internal/contract"
	"github.com/huangsam/kpiboard/schema"
	"github.com/stretchr/testify/mock"
)

// MockCacheManager is a mock implementation of CacheManager for testing.
type MockCacheManager struct {
	mock.Mock
}

var _ contract.CacheManager = &MockCacheManager{} // Compile-time check

// GetRosterCache implements the CacheManager interface.
func (m *MockCacheManager) GetRosterCache() contract.CacheStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.CacheStore)
	return store
}

// GetRecordStore implements the CacheManager interface.
func (m *MockCacheManager) GetRecordStore() contract.RecordStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.RecordStore)
	return store
}

// MockCacheStore is a mock implementation of CacheStore for testing.
type MockCacheStore struct {
	mock.Mock
}

var _ contract.CacheStore = &MockCacheStore{} // Compile-time check

// Get implements the CacheStore interface.
func (m *MockCacheStore) Get(key string) ([]byte, int, int64, error) {
	args := m.Called(key)
	data, _ := args.Get(0).([]byte)
	return data, args.Int(1), args.Get(2).(int64), args.Error(3)
}

// Set implements the CacheStore interface.
func (m *MockCacheStore) Set(key string, data []byte, version int, ts int64) error {
	args := m.Called(key, data, version, ts)
	return args.Error(0)
}

// Delete implements the CacheStore interface.
func (m *MockCacheStore) Delete(key string) error {
	args := m.Called(key)
	return args.Error(0)
}

// GetStatus implements the CacheStore interface.
func (m *MockCacheStore) GetStatus() (schema.CacheStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.CacheStatus), args.Error(1)
}

// Close implements the CacheStore interface.
func (m *MockCacheStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockRecordStore is a mock implementation of RecordStore for testing.
type MockRecordStore struct {
	mock.Mock
}

var _ contract.RecordStore = &MockRecordStore{} // Compile-time check

// ListOperators implements the DataSource interface.
func (m *MockRecordStore) ListOperators(ctx context.Context) ([]schema.Operator, error) {
	args := m.Called(ctx)
	ops, _ := args.Get(0).([]schema.Operator)
	return ops, args.Error(1)
}

// GetOperator implements the DataSource interface.
func (m *MockRecordStore) GetOperator(ctx context.Context, person string) (schema.Operator, error) {
	args := m.Called(ctx, person)
	return args.Get(0).(schema.Operator), args.Error(1)
}

// GetTemplate implements the DataSource interface.
func (m *MockRecordStore) GetTemplate(ctx context.Context, person string) ([]schema.KpiTemplateItem, error) {
	args := m.Called(ctx, person)
	items, _ := args.Get(0).([]schema.KpiTemplateItem)
	return items, args.Error(1)
}

// GetRawInputs implements the DataSource interface.
func (m *MockRecordStore) GetRawInputs(ctx context.Context, person, month string) (schema.RawInputs, error) {
	args := m.Called(ctx, person, month)
	raw, _ := args.Get(0).(schema.RawInputs)
	return raw, args.Error(1)
}

// GetHistory implements the DataSource interface.
func (m *MockRecordStore) GetHistory(ctx context.Context, person string) ([]schema.HistoryRecord, error) {
	args := m.Called(ctx, person)
	records, _ := args.Get(0).([]schema.HistoryRecord)
	return records, args.Error(1)
}

// SetAutoCalculate implements the DataSource interface.
func (m *MockRecordStore) SetAutoCalculate(ctx context.Context, person, indicator string, auto bool) error {
	args := m.Called(ctx, person, indicator, auto)
	return args.Error(0)
}

// SaveRecord implements the DataSource interface.
func (m *MockRecordStore) SaveRecord(ctx context.Context, payload schema.SavePayload) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}

// ImportOperators implements the RecordStore interface.
func (m *MockRecordStore) ImportOperators(ctx context.Context, operators []schema.Operator) error {
	args := m.Called(ctx, operators)
	return args.Error(0)
}

// ImportTemplate implements the RecordStore interface.
func (m *MockRecordStore) ImportTemplate(ctx context.Context, person string, items []schema.KpiTemplateItem) error {
	args := m.Called(ctx, person, items)
	return args.Error(0)
}

// GetAllHistory implements the RecordStore interface.
func (m *MockRecordStore) GetAllHistory(ctx context.Context) ([]schema.HistoryRecord, error) {
	args := m.Called(ctx)
	records, _ := args.Get(0).([]schema.HistoryRecord)
	return records, args.Error(1)
}

// GetStatus implements the RecordStore interface.
func (m *MockRecordStore) GetStatus(ctx context.Context) (schema.RecordStatus, error) {
	args := m.Called(ctx)
	return args.Get(0).(schema.RecordStatus), args.Error(1)
}

// Close implements the RecordStore interface.
func (m *MockRecordStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
