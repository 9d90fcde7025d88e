package core

import (
	"testing"

	"github.com/huangsam/kpiboard/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// sampleTemplate mixes every scoring path.
func sampleTemplate() []schema.KpiTemplateItem {
	return []schema.KpiTemplateItem{
		{ID: "1", Indicator: "Sales", Kpi: "Monthly sales", Category: "operating", Weight: 20, Formula: "weight*sales_total/10000"},
		{ID: "2", Indicator: "Store quality", Kpi: "Audit", Category: "过程指标", Weight: 10, EditableFieldKey: "quality_last_month"},
		{ID: "3", Indicator: "Team upkeep", Kpi: "Attendance", Category: "管理指标", Weight: 15, EditableFieldKey: "upkeep_last_month"},
		{ID: "4", Indicator: "核销总目标", Kpi: "Verification", Category: "经营指标", Weight: 30, Formula: "total_salary/10000*weight/10"},
		{ID: "5", Indicator: "Bonus", Kpi: "Extra", Category: "Bonus", Weight: 5, Formula: "weight"},
	}
}

func sampleOperator() schema.Operator {
	return schema.Operator{OperatorName: "Alice", GroupName: "North", StoreCount: 12, AvgScore: 80, TotalSalary: 100000}
}

func TestComputeScoresSalesExample(t *testing.T) {
	template := []schema.KpiTemplateItem{
		{ID: "1", Indicator: "Sales", Category: "operating", Weight: 20, Formula: "weight*sales_total/10000"},
	}

	t.Run("with sales total", func(t *testing.T) {
		got := ComputeScores(template, schema.RawInputs{"sales_total": "5000"}, schema.Operator{})
		assert.Equal(t, schema.ScoreMap{"1": 10}, got.Scores)
		assert.Equal(t, 10.0, got.ProcessTotal)
		assert.Equal(t, 0.0, got.ManagementTotal)
		assert.Equal(t, 10.0, got.TotalScore)
		assert.Equal(t, 10.0, got.FinalScore)
		assert.Equal(t, 1.0, got.Coefficient)
		assert.Empty(t, got.MissingFields)
	})

	t.Run("without inputs", func(t *testing.T) {
		got := ComputeScores(template, schema.RawInputs{}, schema.Operator{})
		assert.Equal(t, schema.ScoreMap{"1": 0}, got.Scores)
		assert.Empty(t, got.MissingFields, "formula items without an editable key are not validated")
	})
}

func TestComputeScoresManagementDirectRead(t *testing.T) {
	template := []schema.KpiTemplateItem{
		{ID: "m", Indicator: "Upkeep", Category: "管理", Weight: 10, EditableFieldKey: "upkeep"},
	}

	tests := []struct {
		name        string
		raw         schema.RawInputs
		wantScore   float64
		wantMissing bool
	}{
		{"numeric string", schema.RawInputs{"upkeep": "85"}, 85, false},
		{"zero is present", schema.RawInputs{"upkeep": "0"}, 0, false},
		{"numeric zero", schema.RawInputs{"upkeep": 0.0}, 0, false},
		{"empty string", schema.RawInputs{"upkeep": ""}, 0, true},
		{"absent", schema.RawInputs{}, 0, true},
		{"unparseable", schema.RawInputs{"upkeep": "n/a"}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeScores(template, tt.raw, schema.Operator{})
			assert.Equal(t, tt.wantScore, got.Scores["m"])
			assert.Equal(t, tt.wantScore, got.ManagementTotal)
			if tt.wantMissing {
				assert.Equal(t, []string{`"Upkeep" last-month value`}, got.MissingFields)
			} else {
				assert.Empty(t, got.MissingFields)
			}
		})
	}
}

func TestComputeScoresWeightFormula(t *testing.T) {
	for _, w := range []float64{0, 1, 12.5, 100} {
		template := []schema.KpiTemplateItem{{ID: "w", Indicator: "W", Category: "process", Weight: w, Formula: "weight"}}
		got := ComputeScores(template, schema.RawInputs{}, schema.Operator{})
		assert.Equal(t, w, got.Scores["w"])
	}
}

func TestComputeScoresFullTemplate(t *testing.T) {
	raw := schema.RawInputs{
		"sales_total":        "5000",
		"quality_last_month": "8",
		"upkeep_last_month":  "12.5",
	}
	got := ComputeScores(sampleTemplate(), raw, sampleOperator())

	assert.Equal(t, 10.0, got.Scores["1"])
	assert.Equal(t, 8.0, got.Scores["2"])
	assert.Equal(t, 12.5, got.Scores["3"])
	assert.Equal(t, 0.0, got.Scores["4"], "manual verification total without a value scores 0")
	assert.Equal(t, 5.0, got.Scores["5"])

	assert.Equal(t, 18.0, got.ProcessTotal)
	assert.Equal(t, 12.5, got.ManagementTotal)
	assert.Equal(t, 30.5, got.TotalScore, "categories outside both families do not count")
	assert.Equal(t, 30.5, got.FinalScore)
	assert.Equal(t, []string{`"核销总目标" manual verification total`}, got.MissingFields)

	require.Len(t, got.Items, 5)
	assert.Equal(t, schema.FormulaComputed, got.Items[0].Kind)
	assert.Equal(t, schema.DirectRead, got.Items[1].Kind)
	assert.Equal(t, schema.DirectRead, got.Items[2].Kind)
	assert.Equal(t, schema.ManualOverride, got.Items[3].Kind)
	assert.Equal(t, schema.OtherFamily, got.Items[4].Family)
}

func TestComputeScoresMixedCategory(t *testing.T) {
	template := []schema.KpiTemplateItem{
		{ID: "x", Indicator: "Mixed", Category: "经营管理指标", Weight: 10, EditableFieldKey: "mixed"},
	}
	got := ComputeScores(template, schema.RawInputs{"mixed": "7"}, schema.Operator{})

	require.Len(t, got.Items, 1)
	assert.Equal(t, schema.DirectRead, got.Items[0].Kind, "management keywords pick the scoring path")
	assert.Equal(t, schema.ProcessFamily, got.Items[0].Family)
	assert.Equal(t, 7.0, got.ProcessTotal, "process keywords pick the subtotal")
	assert.Equal(t, 0.0, got.ManagementTotal)
	assert.Equal(t, 7.0, got.TotalScore)
}

func TestComputeScoresVerificationTotal(t *testing.T) {
	template := sampleTemplate()[3:4]
	raw := schema.RawInputs{"verification_total": "50000"}

	t.Run("manual uses entered total", func(t *testing.T) {
		got := ComputeScores(template, raw, sampleOperator())
		assert.Equal(t, 15.0, got.Scores["4"])
		assert.Empty(t, got.MissingFields)
	})

	t.Run("auto uses aggregate", func(t *testing.T) {
		auto, err := ToggleMode(template, "4")
		require.NoError(t, err)
		got := ComputeScores(auto, raw, sampleOperator())
		assert.Equal(t, 30.0, got.Scores["4"])
		assert.Equal(t, schema.AutoDerived, got.Items[0].Kind)
	})
}

func TestComputeScoresIdempotent(t *testing.T) {
	raw := schema.RawInputs{"sales_total": "1234.5", "quality_last_month": "7", "egp_score": "0.8"}
	first := ComputeScores(sampleTemplate(), raw, sampleOperator())
	for range 3 {
		assert.Equal(t, first, ComputeScores(sampleTemplate(), raw, sampleOperator()))
	}
}

func TestComputeScoresCoefficient(t *testing.T) {
	template := []schema.KpiTemplateItem{
		{ID: "p", Indicator: "P", Category: "process", EditableFieldKey: "p"},
		{ID: "m", Indicator: "M", Category: "management", EditableFieldKey: "m"},
	}
	base := schema.RawInputs{"p": "40", "m": "5.5"}

	tests := []struct {
		name      string
		coef      any
		wantCoef  float64
		wantFinal float64
		wantGap   bool
	}{
		{"absent", nil, 1, 45.5, false},
		{"high", "1.2", 1.2, 45.5 * 1.2, false},
		{"low", 0.8, 0.8, 45.5 * 0.8, false},
		{"zero", "0", 0, 0, false},
		{"outside set", "0.5", 1, 45.5, true},
		{"garbage", "abc", 1, 45.5, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := base.Clone()
			if tt.coef != nil {
				raw[schema.CoefficientKey] = tt.coef
			}
			got := ComputeScores(template, raw, schema.Operator{})
			assert.Equal(t, 45.5, got.TotalScore)
			assert.Equal(t, tt.wantCoef, got.Coefficient)
			assert.InDelta(t, tt.wantFinal, got.FinalScore, 1e-9)
			if tt.wantGap {
				require.Len(t, got.Gaps, 1)
				assert.Equal(t, schema.CoefficientKey, got.Gaps[0].Field)
			} else {
				assert.Empty(t, got.Gaps)
			}
		})
	}
}

func TestApplyCoefficient(t *testing.T) {
	result := schema.ScoreResult{
		ProcessTotal:    40,
		ManagementTotal: 5.5,
		TotalScore:      45.5,
		Coefficient:     1,
		FinalScore:      45.5,
		Gaps:            []schema.ValidationGap{{Field: schema.CoefficientKey, Reason: "bad"}, {Indicator: "X", Field: "x", Reason: "last-month value"}},
	}

	got, err := ApplyCoefficient(result, 0.8)
	require.NoError(t, err)
	assert.InDelta(t, 36.4, got.FinalScore, 1e-9)
	assert.Equal(t, 45.5, got.TotalScore)
	assert.Equal(t, 40.0, got.ProcessTotal)
	assert.Equal(t, []string{`"X" last-month value`}, got.MissingFields)

	_, err = ApplyCoefficient(result, 0.9)
	assert.ErrorIs(t, err, ErrInvalidCoefficient)
}

func TestComputeScoresFormulaErrorIsolated(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	engine := NewEngine(WithLogger(zap.New(core)))

	template := []schema.KpiTemplateItem{
		{ID: "bad", Indicator: "Broken", Category: "process", Weight: 10, Formula: "weight / 0"},
		{ID: "unknown", Indicator: "Unknown var", Category: "process", Weight: 10, Formula: "bonus * 2"},
		{ID: "ok", Indicator: "Fine", Category: "process", Weight: 10, Formula: "weight"},
	}
	got := engine.ComputeScores(template, schema.RawInputs{}, schema.Operator{})

	assert.Equal(t, 0.0, got.Scores["bad"])
	assert.Equal(t, 0.0, got.Scores["unknown"])
	assert.Equal(t, 10.0, got.Scores["ok"])
	assert.Equal(t, 10.0, got.TotalScore)

	entries := logs.FilterMessage("formula evaluation failed, scoring 0").All()
	require.Len(t, entries, 2)
	assert.Equal(t, "Broken", entries[0].ContextMap()["indicator"])
	assert.Equal(t, "Unknown var", entries[1].ContextMap()["indicator"])
}

func TestComputeScoresEmptyTemplate(t *testing.T) {
	got := ComputeScores(nil, schema.RawInputs{"egp_score": "1.2"}, schema.Operator{})
	assert.Empty(t, got.Scores)
	assert.Zero(t, got.TotalScore)
	assert.Zero(t, got.FinalScore)
	assert.Equal(t, 1.2, got.Coefficient)
	assert.NotNil(t, got.MissingFields)
}

func BenchmarkComputeScores(b *testing.B) {
	template := sampleTemplate()
	raw := schema.RawInputs{"sales_total": "5000", "quality_last_month": "8", "upkeep_last_month": "12"}
	op := sampleOperator()
	for b.Loop() {
		_ = ComputeScores(template, raw, op)
	}
}
