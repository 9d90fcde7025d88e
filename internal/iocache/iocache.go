// Package iocache holds the durable stores: the SQL record store behind the
// scoring engine and the roster cache in front of it.
package iocache

import (
	"sync"

	"github.com/huangsam/kpiboard/internal/contract"
)

// CacheStoreManager hands out the two stores opened by InitStores. Both are
// nil until then.
type CacheStoreManager struct {
	mu     sync.RWMutex
	roster contract.CacheStore
	record contract.RecordStore
}

var _ contract.CacheManager = (*CacheStoreManager)(nil)

// GetRosterCache returns the roster cache.
func (mgr *CacheStoreManager) GetRosterCache() contract.CacheStore {
	mgr.mu.RLock()
	defer mgr.mu.RUnlock()
	return mgr.roster
}

// GetRecordStore returns the store for operators, templates, inputs and history.
func (mgr *CacheStoreManager) GetRecordStore() contract.RecordStore {
	mgr.mu.RLock()
	defer mgr.mu.RUnlock()
	return mgr.record
}
