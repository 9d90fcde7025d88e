package core

import (
	"fmt"
	"testing"

	"github.com/huangsam/kpiboard/schema"
)

// largeTemplate repeats the sample template n times with unique ids and labels.
func largeTemplate(n int) []schema.KpiTemplateItem {
	base := sampleTemplate()
	items := make([]schema.KpiTemplateItem, 0, n*len(base))
	for i := range n {
		for _, item := range base {
			item.ID = schema.ItemID(fmt.Sprintf("%s-%d", item.ID, i))
			item.Indicator = fmt.Sprintf("%s %d", item.Indicator, i)
			items = append(items, item)
		}
	}
	return items
}

// BenchmarkComputeScoresLarge benchmarks scoring of a template with hundreds of items.
func BenchmarkComputeScoresLarge(b *testing.B) {
	template := largeTemplate(100)
	raw := schema.RawInputs{"sales_total": "5000", "quality_last_month": "8", "upkeep_last_month": "12"}
	op := sampleOperator()
	e := NewEngine()

	for b.Loop() {
		_ = e.ComputeScores(template, raw, op)
	}
}

// BenchmarkSessionEdit benchmarks the recompute triggered by a single edit.
func BenchmarkSessionEdit(b *testing.B) {
	s := NewEngine().NewSession(sampleOperator(), "2024-05", sampleTemplate(), schema.RawInputs{})

	for i := 0; b.Loop(); i++ {
		s = s.Edit("sales_total", fmt.Sprint(i))
	}
}

// BenchmarkReadHistory benchmarks decoding of saved label-keyed score maps.
func BenchmarkReadHistory(b *testing.B) {
	records := make([]schema.HistoryRecord, 24)
	for i := range records {
		records[i] = schema.HistoryRecord{
			PersonName:       "Alice",
			PerformanceMonth: fmt.Sprintf("2023-%02d", i%12+1),
			Scores:           `{"Sales":10,"Store quality":8,"Team upkeep":12.5,"核销总目标":30,"Bonus":5}`,
		}
	}

	for b.Loop() {
		_ = ReadHistory(records)
	}
}
