package core

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/kpiboard/internal/contract"
	"github.com/huangsam/kpiboard/schema"
	"go.uber.org/zap"
)

// currentRosterVersion defines the version of the cached roster schema
const currentRosterVersion = 1

// rosterCacheKey is the single key the roster is cached under.
const rosterCacheKey = "roster"

// LoadRoster returns the operator roster, serving it from the roster cache
// when a valid entry exists. Entries never expire on their own; they are
// replaced only after InvalidateRoster.
func LoadRoster(ctx context.Context, mgr contract.CacheManager) ([]schema.Operator, error) {
	store, err := recordStore(mgr)
	if err != nil {
		return nil, err
	}
	roster := mgr.GetRosterCache()
	if roster == nil {
		// Fallback to direct reads
		return store.ListOperators(ctx)
	}

	// Check for cache hit
	if ops := checkRosterHit(roster); ops != nil {
		return ops, nil
	}

	// Cache miss: fetch and store
	ops, err := store.ListOperators(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list operators: %w", err)
	}
	if data, err := json.Marshal(ops); err == nil {
		if err := roster.Set(rosterCacheKey, data, currentRosterVersion, time.Now().Unix()); err != nil {
			LoggerFromContext(ctx).Warn("roster cache write failed", zap.Error(err))
		}
	}
	return ops, nil
}

// checkRosterHit attempts to retrieve and validate the cached roster
func checkRosterHit(roster contract.CacheStore) []schema.Operator {
	data, version, _, err := roster.Get(rosterCacheKey)
	if err != nil || version != currentRosterVersion {
		return nil // Cache miss
	}
	var ops []schema.Operator
	if err := json.Unmarshal(data, &ops); err != nil || ops == nil {
		return nil
	}
	return ops
}

// InvalidateRoster drops the cached roster so the next read refetches it.
func InvalidateRoster(mgr contract.CacheManager) error {
	roster := mgr.GetRosterCache()
	if roster == nil {
		return nil
	}
	if err := roster.Delete(rosterCacheKey); err != nil {
		return fmt.Errorf("failed to invalidate roster cache: %w", err)
	}
	return nil
}
