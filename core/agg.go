package core

import (
	"fmt"

	"github.com/huangsam/kpiboard/schema"
)

// ComputeScores runs the full scoring pass over one snapshot: per-item scores,
// category totals, the final score and the validation list. It is pure and
// deterministic, so repeated calls with equal inputs return equal results.
func (e *Engine) ComputeScores(template []schema.KpiTemplateItem, raw schema.RawInputs, op schema.Operator) schema.ScoreResult {
	plans := e.PlanTemplate(template)
	result := schema.ScoreResult{
		Scores: make(schema.ScoreMap, len(plans)),
		Items:  make([]schema.ItemScore, 0, len(plans)),
	}

	for _, p := range plans {
		s := e.score(p, raw, op)
		result.Scores[p.Item.ID] = s
		result.Items = append(result.Items, schema.ItemScore{
			ID:        p.Item.ID,
			Indicator: p.Item.Indicator,
			Family:    p.Family,
			Kind:      p.Kind,
			Score:     s,
		})
		switch p.Family {
		case schema.ProcessFamily:
			result.ProcessTotal += s
		case schema.ManagementFamily:
			result.ManagementTotal += s
		}
	}
	result.TotalScore = result.ProcessTotal + result.ManagementTotal

	gaps := validatePlans(plans, raw)
	coef, gap := resolveCoefficient(raw)
	if gap != nil {
		gaps = append(gaps, *gap)
	}
	result.Coefficient = coef
	result.FinalScore = result.TotalScore * coef
	result.Gaps = gaps
	result.MissingFields = gapMessages(gaps)
	return result
}

// resolveCoefficient reads the coefficient control field. Absent means the
// default; a value outside the selectable set falls back to the default too.
func resolveCoefficient(raw schema.RawInputs) (float64, *schema.ValidationGap) {
	if !raw.Present(schema.CoefficientKey) {
		return schema.DefaultCoefficient, nil
	}
	c, ok := schema.ParseNumber(raw[schema.CoefficientKey])
	if ok && schema.IsValidCoefficient(c) {
		return c, nil
	}
	return schema.DefaultCoefficient, &schema.ValidationGap{
		Field:  schema.CoefficientKey,
		Reason: fmt.Sprintf("coefficient %q is not one of %v, using %v", raw.String(schema.CoefficientKey), schema.Coefficients, schema.DefaultCoefficient),
	}
}

// ApplyCoefficient changes only the final score of a result. Any earlier
// coefficient gap is dropped since the new value is known to be valid.
func ApplyCoefficient(result schema.ScoreResult, c float64) (schema.ScoreResult, error) {
	if !schema.IsValidCoefficient(c) {
		return result, fmt.Errorf("%w: %v is not one of %v", ErrInvalidCoefficient, c, schema.Coefficients)
	}
	out := result.WithCoefficient(c)
	gaps := make([]schema.ValidationGap, 0, len(result.Gaps))
	for _, g := range result.Gaps {
		if g.Field != schema.CoefficientKey {
			gaps = append(gaps, g)
		}
	}
	out.Gaps = gaps
	out.MissingFields = gapMessages(gaps)
	return out, nil
}
