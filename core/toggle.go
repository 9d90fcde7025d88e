package core

import (
	"context"
	"fmt"
	"slices"

	"github.com/huangsam/kpiboard/internal/contract"
	"github.com/huangsam/kpiboard/schema"
	"go.uber.org/zap"
)

// ToggleMode returns a copy of the template with one item's AUTO/MANUAL flag
// flipped. The input template is never modified.
func ToggleMode(template []schema.KpiTemplateItem, id schema.ItemID) ([]schema.KpiTemplateItem, error) {
	idx := slices.IndexFunc(template, func(item schema.KpiTemplateItem) bool {
		return item.ID == id
	})
	if idx < 0 {
		return nil, fmt.Errorf("%w: id %s", ErrItemNotFound, id)
	}
	out := slices.Clone(template)
	out[idx].IsAutoCalculated = !out[idx].IsAutoCalculated
	return out, nil
}

// Toggle flips an indicator's mode for the session's operator. The new flag is
// persisted first; only after the write succeeds is a new session returned,
// rescored against the unchanged raw inputs. On failure the original session
// stays current and a *PersistenceError is returned.
func (e *Engine) Toggle(ctx context.Context, w contract.AutoCalcWriter, s *Session, id schema.ItemID) (*Session, error) {
	next, err := ToggleMode(s.Template, id)
	if err != nil {
		return nil, err
	}
	idx := slices.IndexFunc(next, func(item schema.KpiTemplateItem) bool { return item.ID == id })
	item := next[idx]

	if err := w.SetAutoCalculate(ctx, s.Operator.OperatorName, item.Indicator, bool(item.IsAutoCalculated)); err != nil {
		return nil, &PersistenceError{Op: fmt.Sprintf("mode of %q", item.Indicator), Err: err}
	}

	e.logger.Info("indicator mode changed",
		zap.String("operator", s.Operator.OperatorName),
		zap.String("indicator", item.Indicator),
		zap.String("mode", string(item.Mode())))
	return s.WithTemplate(next), nil
}
