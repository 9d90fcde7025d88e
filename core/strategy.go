package core

import (
	"github.com/huangsam/kpiboard/core/formula"
	"github.com/huangsam/kpiboard/schema"
	"go.uber.org/zap"
)

// Plan is a template item resolved to its scoring kind. Formulas are compiled
// once here and reused for every score of the same load.
type Plan struct {
	Item   schema.KpiTemplateItem
	Kind   schema.ScoringKind
	Family schema.CategoryFamily // subtotal bucket

	program    *formula.Program
	compileErr error
}

// ResolveKind picks the single scoring path of an item.
//
// Management items and process items without a formula read their editable
// field directly. Items with a formula are computed, with the verification
// total bound either to the operator aggregate (AUTO) or to the entered
// verification_total (MANUAL). Everything else is unscored.
func (e *Engine) ResolveKind(item schema.KpiTemplateItem) schema.ScoringKind {
	family := e.vocab.Family(item.Category)
	switch {
	case family == schema.ManagementFamily:
		return schema.DirectRead
	case family == schema.ProcessFamily && !item.HasFormula():
		return schema.DirectRead
	case item.HasFormula() && e.vocab.IsVerificationTotal(item):
		if item.IsAutoCalculated {
			return schema.AutoDerived
		}
		return schema.ManualOverride
	case item.HasFormula():
		return schema.FormulaComputed
	default:
		return schema.Unscored
	}
}

// PlanTemplate resolves every item of a template, preserving order.
func (e *Engine) PlanTemplate(template []schema.KpiTemplateItem) []Plan {
	plans := make([]Plan, 0, len(template))
	for _, item := range template {
		p := Plan{
			Item:   item,
			Kind:   e.ResolveKind(item),
			Family: e.vocab.SubtotalFamily(item.Category),
		}
		if p.usesFormula() {
			p.program, p.compileErr = formula.Compile(item.Formula)
		}
		plans = append(plans, p)
	}
	return plans
}

func (p Plan) usesFormula() bool {
	switch p.Kind {
	case schema.FormulaComputed, schema.AutoDerived, schema.ManualOverride:
		return true
	default:
		return false
	}
}

// variables binds the formula inputs for a plan.
func (p Plan) variables(raw schema.RawInputs, op schema.Operator) formula.Variables {
	vars := formula.Variables{
		Weight:         p.Item.Weight,
		AvgScore:       op.AvgScore,
		TotalSalary:    op.TotalSalary,
		QuitStoreCount: raw.Float(schema.QuitStoreCountKey),
		SalesTotal:     raw.Float(schema.SalesTotalKey),
	}
	if p.Kind == schema.ManualOverride {
		vars.TotalSalary = raw.Float(schema.VerificationTotalKey)
	}
	return vars
}

// score computes the item score. Formula failures are logged and score 0.
func (e *Engine) score(p Plan, raw schema.RawInputs, op schema.Operator) float64 {
	switch p.Kind {
	case schema.DirectRead:
		return raw.Float(p.Item.EditableFieldKey)
	case schema.FormulaComputed, schema.AutoDerived, schema.ManualOverride:
		if p.compileErr != nil {
			e.logFormulaError(p, p.compileErr)
			return 0
		}
		v, err := p.program.Run(p.variables(raw, op))
		if err != nil {
			e.logFormulaError(p, err)
			return 0
		}
		return v
	default:
		return 0
	}
}

func (e *Engine) logFormulaError(p Plan, err error) {
	fe := &FormulaError{ItemID: p.Item.ID, Indicator: p.Item.Indicator, Err: err}
	e.logger.Warn("formula evaluation failed, scoring 0",
		zap.String("item_id", string(p.Item.ID)),
		zap.String("indicator", p.Item.Indicator),
		zap.String("formula", p.Item.Formula),
		zap.Error(fe))
}

// DisplayValue returns the "last month" value shown next to an item. AUTO items
// show the aggregate they are bound to instead of an entered value.
func (e *Engine) DisplayValue(item schema.KpiTemplateItem, raw schema.RawInputs, op schema.Operator) string {
	verification := e.vocab.IsVerificationTotal(item)
	switch {
	case bool(item.IsAutoCalculated) && e.vocab.IsOperatingScore(item):
		return schema.FormatScore(op.AvgScore, 2)
	case bool(item.IsAutoCalculated) && verification:
		return schema.FormatScore(op.TotalSalary, 2)
	case verification && item.HasFormula():
		return raw.String(schema.VerificationTotalKey)
	default:
		return raw.String(item.EditableFieldKey)
	}
}
