package core

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/huangsam/kpiboard/internal/iocache"
	"github.com/huangsam/kpiboard/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func rosterFixture() []schema.Operator {
	return []schema.Operator{
		{OperatorName: "Alice", GroupName: "North", StoreCount: 12},
		{OperatorName: "Bob", GroupName: "South", StoreCount: 3},
	}
}

func newRosterManager(store *iocache.MockRecordStore, roster *iocache.MockCacheStore) *iocache.MockCacheManager {
	mgr := &iocache.MockCacheManager{}
	mgr.On("GetRecordStore").Return(store)
	if roster == nil {
		mgr.On("GetRosterCache").Return(nil)
	} else {
		mgr.On("GetRosterCache").Return(roster)
	}
	return mgr
}

func TestLoadRosterHit(t *testing.T) {
	data, err := json.Marshal(rosterFixture())
	require.NoError(t, err)

	roster := &iocache.MockCacheStore{}
	roster.On("Get", rosterCacheKey).Return(data, currentRosterVersion, int64(1717200000), nil)
	store := &iocache.MockRecordStore{}

	ops, err := LoadRoster(context.Background(), newRosterManager(store, roster))
	require.NoError(t, err)
	assert.Equal(t, rosterFixture(), ops)
	store.AssertNotCalled(t, "ListOperators", mock.Anything)
}

func TestLoadRosterMiss(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		version int
		err     error
	}{
		{"absent", nil, 0, errors.New("not found")},
		{"stale version", []byte(`[]`), currentRosterVersion + 1, nil},
		{"corrupt", []byte(`{`), currentRosterVersion, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			roster := &iocache.MockCacheStore{}
			roster.On("Get", rosterCacheKey).Return(tt.data, tt.version, int64(0), tt.err)
			roster.On("Set", rosterCacheKey, mock.Anything, currentRosterVersion, mock.AnythingOfType("int64")).Return(nil).Once()
			store := &iocache.MockRecordStore{}
			store.On("ListOperators", mock.Anything).Return(rosterFixture(), nil).Once()

			ops, err := LoadRoster(context.Background(), newRosterManager(store, roster))
			require.NoError(t, err)
			assert.Len(t, ops, 2)
			store.AssertExpectations(t)
			roster.AssertExpectations(t)
		})
	}
}

func TestLoadRosterWithoutCache(t *testing.T) {
	store := &iocache.MockRecordStore{}
	store.On("ListOperators", mock.Anything).Return(rosterFixture(), nil).Twice()
	mgr := newRosterManager(store, nil)

	for range 2 {
		ops, err := LoadRoster(context.Background(), mgr)
		require.NoError(t, err)
		assert.Len(t, ops, 2)
	}
	store.AssertExpectations(t)
}

func TestLoadRosterErrors(t *testing.T) {
	roster := &iocache.MockCacheStore{}
	roster.On("Get", rosterCacheKey).Return(nil, 0, int64(0), errors.New("not found"))
	store := &iocache.MockRecordStore{}
	store.On("ListOperators", mock.Anything).Return(nil, errors.New("connection refused"))

	_, err := LoadRoster(context.Background(), newRosterManager(store, roster))
	assert.ErrorContains(t, err, "connection refused")
	roster.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	_, err = LoadRoster(context.Background(), nil)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestInvalidateRoster(t *testing.T) {
	roster := &iocache.MockCacheStore{}
	roster.On("Delete", rosterCacheKey).Return(nil).Once()
	require.NoError(t, InvalidateRoster(newRosterManager(nil, roster)))
	roster.AssertExpectations(t)

	failing := &iocache.MockCacheStore{}
	failing.On("Delete", rosterCacheKey).Return(errors.New("locked"))
	assert.ErrorContains(t, InvalidateRoster(newRosterManager(nil, failing)), "locked")

	assert.NoError(t, InvalidateRoster(newRosterManager(nil, nil)))
}

func TestExecuteSync(t *testing.T) {
	roster := &iocache.MockCacheStore{}
	roster.On("Delete", rosterCacheKey).Return(nil).Once()
	roster.On("Get", rosterCacheKey).Return(nil, 0, int64(0), errors.New("not found"))
	roster.On("Set", rosterCacheKey, mock.Anything, currentRosterVersion, mock.AnythingOfType("int64")).Return(nil)
	store := &iocache.MockRecordStore{}
	store.On("ListOperators", mock.Anything).Return(rosterFixture(), nil).Once()

	require.NoError(t, ExecuteSync(context.Background(), newTestConfig(t), newRosterManager(store, roster)))
	roster.AssertExpectations(t)
	store.AssertExpectations(t)
}
