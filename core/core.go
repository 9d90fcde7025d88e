// Package core has core logic for scoring, validation, mode toggling and history.
package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/huangsam/kpiboard/core/formula"
	"github.com/huangsam/kpiboard/internal/contract"
	"github.com/huangsam/kpiboard/internal/fixture"
	"github.com/huangsam/kpiboard/internal/iocache"
	"github.com/huangsam/kpiboard/internal/outwriter"
	"github.com/huangsam/kpiboard/schema"
	"go.uber.org/zap"
)

// ErrStoreUnavailable is returned when no record store has been initialized.
var ErrStoreUnavailable = errors.New("record store is not initialized")

// recordStore returns the initialized record store of mgr.
func recordStore(mgr contract.CacheManager) (contract.RecordStore, error) {
	if mgr == nil {
		return nil, ErrStoreUnavailable
	}
	store := mgr.GetRecordStore()
	if store == nil {
		return nil, ErrStoreUnavailable
	}
	return store, nil
}

// EngineFor builds an engine from the configured vocabulary and the logger carried by ctx.
func EngineFor(ctx context.Context, cfg *contract.Config) *Engine {
	return NewEngine(WithVocabulary(cfg.Vocabulary), WithLogger(LoggerFromContext(ctx)))
}

// GetSession opens the configured operator's month and applies the command
// line edits, remarks and coefficient on top of what the store holds.
func GetSession(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (*Session, error) {
	if cfg.Person == "" {
		return nil, errors.New("an operator name is required")
	}
	store, err := recordStore(mgr)
	if err != nil {
		return nil, err
	}

	s, err := EngineFor(ctx, cfg).OpenSession(ctx, store, cfg.Person, cfg.Month)
	if err != nil {
		return nil, err
	}
	return ApplyConfigEdits(s, cfg)
}

// ApplyConfigEdits layers the configured edits onto a session in a fixed
// order: raw values, then remarks, then the coefficient.
func ApplyConfigEdits(s *Session, cfg *contract.Config) (*Session, error) {
	s = s.EditMany(cfg.Edits)

	ids := make([]schema.ItemID, 0, len(cfg.Remarks))
	for id := range cfg.Remarks {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		next, err := s.SetRemark(id, cfg.Remarks[id])
		if err != nil {
			return nil, err
		}
		s = next
	}

	if cfg.Coefficient != nil {
		next, err := s.SetCoefficient(*cfg.Coefficient)
		if err != nil {
			return nil, err
		}
		s = next
	}
	return s, nil
}

// ExecuteOperators prints the roster.
func ExecuteOperators(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	ops, err := LoadRoster(ctx, mgr)
	if err != nil {
		return err
	}
	return outwriter.WriteOperators(ops, cfg)
}

// ExecuteScore computes and prints the score sheet without saving it.
func ExecuteScore(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	s, err := GetSession(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.WriteScoreSheet(s.Sheet(), cfg)
}

// ExecuteSave computes the score sheet, persists it and prints it.
func ExecuteSave(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	s, err := GetSession(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	store, err := recordStore(mgr)
	if err != nil {
		return err
	}
	if err := s.Save(ctx, store); err != nil {
		return err
	}
	LoggerFromContext(ctx).Info("performance record saved",
		zap.String("operator", s.Operator.OperatorName),
		zap.String("month", s.Month),
		zap.Float64("final_score", s.Result.FinalScore))

	if err := outwriter.WriteScoreSheet(s.Sheet(), cfg); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(os.Stderr, "💾 Saved %s for %s\n", s.Month, s.Operator.OperatorName)
	return nil
}

// SetIndicatorMode flips the AUTO/MANUAL mode of the configured item and
// returns the rescored session.
func SetIndicatorMode(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (*Session, error) {
	if cfg.ItemID == "" {
		return nil, errors.New("an indicator id is required")
	}
	s, err := GetSession(ctx, cfg, mgr)
	if err != nil {
		return nil, err
	}
	store, err := recordStore(mgr)
	if err != nil {
		return nil, err
	}
	return s.engine.Toggle(ctx, store, s, cfg.ItemID)
}

// ExecuteToggle flips an indicator's mode and prints the rescored sheet.
func ExecuteToggle(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	s, err := SetIndicatorMode(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.WriteScoreSheet(s.Sheet(), cfg)
}

// GetHistoryViews returns the operator's saved months, newest first.
func GetHistoryViews(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) ([]schema.HistoryView, error) {
	if cfg.Person == "" {
		return nil, errors.New("an operator name is required")
	}
	store, err := recordStore(mgr)
	if err != nil {
		return nil, err
	}
	records, err := store.GetHistory(ctx, cfg.Person)
	if err != nil {
		return nil, fmt.Errorf("failed to load history for %q: %w", cfg.Person, err)
	}
	return ReadHistory(records), nil
}

// ExecuteHistory prints the operator's saved months.
func ExecuteHistory(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	views, err := GetHistoryViews(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.WriteHistory(cfg.Person, views, cfg)
}

// ExecuteHistoryExport writes all saved history to Parquet files.
func ExecuteHistoryExport(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	store, err := recordStore(mgr)
	if err != nil {
		return err
	}
	return iocache.ExportHistory(ctx, store, cfg.OutputFile)
}

// ExecuteImport loads a seed file into the record store and invalidates the
// cached roster.
func ExecuteImport(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	store, err := recordStore(mgr)
	if err != nil {
		return err
	}
	seed, err := fixture.LoadFile(cfg.InputFile)
	if err != nil {
		return err
	}
	if err := seed.Validate(); err != nil {
		return err
	}
	for _, problem := range seed.CheckFormulas(formula.Validate) {
		LoggerFromContext(ctx).Warn("template formula will score 0", zap.String("problem", problem))
	}

	if err := store.ImportOperators(ctx, seed.Operators); err != nil {
		return fmt.Errorf("failed to import operators: %w", err)
	}
	for _, person := range seed.People() {
		if err := store.ImportTemplate(ctx, person, seed.Templates[person]); err != nil {
			return fmt.Errorf("failed to import template of %s: %w", person, err)
		}
	}
	if err := InvalidateRoster(mgr); err != nil {
		return err
	}
	fmt.Printf("Imported %d operators and %d templates from %s\n", len(seed.Operators), len(seed.Templates), cfg.InputFile)
	return nil
}

// ExecuteSync drops the cached roster and reloads it from the record store.
func ExecuteSync(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	if err := InvalidateRoster(mgr); err != nil {
		return err
	}
	ops, err := LoadRoster(ctx, mgr)
	if err != nil {
		return err
	}
	fmt.Printf("Roster refreshed: %d operators (cache backend: %s)\n", len(ops), cfg.CacheBackend)
	return nil
}
