package core

import "github.com/huangsam/kpiboard/schema"

// Gap reasons.
const (
	reasonLastMonth      = "last-month value"
	reasonVerification   = "manual verification total"
	reasonNoEditableKey  = "has no editable field for direct scoring"
	reasonNoScoringInput = "has neither a formula nor a category that can be scored"
)

// Validate lists the inputs still missing for a template, in template order.
// The list is advisory and never blocks scoring.
func (e *Engine) Validate(template []schema.KpiTemplateItem, raw schema.RawInputs) []schema.ValidationGap {
	return validatePlans(e.PlanTemplate(template), raw)
}

func validatePlans(plans []Plan, raw schema.RawInputs) []schema.ValidationGap {
	gaps := []schema.ValidationGap{}
	for _, p := range plans {
		item := p.Item
		gap := func(field, reason string) {
			gaps = append(gaps, schema.ValidationGap{
				ItemID:    item.ID,
				Indicator: item.Indicator,
				Field:     field,
				Reason:    reason,
			})
		}

		switch {
		case p.Kind == schema.Unscored:
			gap("", reasonNoScoringInput)
			continue
		case bool(item.IsAutoCalculated):
			// AUTO items read no entered values.
			continue
		case p.Kind == schema.DirectRead && item.EditableFieldKey == "":
			gap("", reasonNoEditableKey)
			continue
		}

		if item.EditableFieldKey != "" && !raw.Present(item.EditableFieldKey) {
			gap(item.EditableFieldKey, reasonLastMonth)
		}
		if p.Kind == schema.ManualOverride && item.EditableFieldKey != schema.VerificationTotalKey && !raw.Present(schema.VerificationTotalKey) {
			gap(schema.VerificationTotalKey, reasonVerification)
		}
	}
	return gaps
}

func gapMessages(gaps []schema.ValidationGap) []string {
	out := make([]string, 0, len(gaps))
	for _, g := range gaps {
		out = append(out, g.Message())
	}
	return out
}
