package outwriter

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/huangsam/kpiboard/internal/contract"
	"github.com/huangsam/kpiboard/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConfig() *contract.Config {
	return &contract.Config{
		Precision: 2,
		Output:    schema.TextOut,
		Width:     160,
		UseColors: false,
	}
}

func sampleSheet() schema.ScoreSheet {
	return schema.ScoreSheet{
		Operator: schema.Operator{OperatorName: "Alice", GroupName: "North", StoreCount: 12, AvgScore: 80, TotalSalary: 100000},
		Month:    "2024-05",
		Rows: []schema.SheetRow{
			{
				Item:  schema.KpiTemplateItem{ID: "1", Indicator: "Sales", Kpi: "Monthly sales", Category: "经营指标", Weight: 20},
				Kind:  schema.FormulaComputed,
				Mode:  schema.ManualMode,
				Score: 10,
			},
			{
				Item:       schema.KpiTemplateItem{ID: "4", Indicator: "核销总目标", Category: "经营指标", Weight: 30},
				Kind:       schema.AutoDerived,
				Mode:       schema.AutoMode,
				Toggleable: true,
				LastMonth:  "100000",
				Score:      30,
			},
			{
				Item:      schema.KpiTemplateItem{ID: "3", Indicator: "Team upkeep", Category: "管理指标", EditableFieldKey: "upkeep_last_month"},
				Kind:      schema.DirectRead,
				Mode:      schema.ManualMode,
				LastMonth: "12.5",
				Score:     12.5,
				Remarks:   "steady",
			},
		},
		Result: schema.ScoreResult{
			ProcessTotal:    40,
			ManagementTotal: 12.5,
			TotalScore:      52.5,
			Coefficient:     0.8,
			FinalScore:      42,
			MissingFields:   []string{`"Store quality" last-month value`},
		},
	}
}

func sampleViews() []schema.HistoryView {
	return []schema.HistoryView{
		{
			HistoryRecord: schema.HistoryRecord{PersonName: "Alice", PerformanceMonth: "2024-05", TotalScore: 80, FinalScore: 96, EgpScore: 1.2, SavedAt: 1717200000},
			LabelScores:   []schema.LabelScore{{Label: "Sales", Score: 30}, {Label: "Team upkeep", Score: 50}},
			HasDetail:     true,
		},
		{
			HistoryRecord: schema.HistoryRecord{PersonName: "Alice", PerformanceMonth: "2024-04", TotalScore: 70, FinalScore: 70, EgpScore: 1},
		},
	}
}

func TestWriteScoreSheetTable(t *testing.T) {
	cfg := newTestConfig()
	fmtFloat, _ := createFormatters(cfg.Precision)

	var buf bytes.Buffer
	require.NoError(t, writeScoreSheetTable(sampleSheet(), cfg, fmtFloat, &buf))
	out := buf.String()

	assert.Contains(t, out, "Alice (North) 2024-05")
	assert.Less(t, strings.Index(out, "[经营指标]"), strings.Index(out, "[管理指标]"), "categories keep first-seen order")
	assert.Contains(t, out, "AUTO")
	assert.Contains(t, out, "Total: 52.50")
	assert.Contains(t, out, "Coefficient: 0.8")
	assert.Contains(t, out, "Final score: 42.00")
	assert.Contains(t, out, "Rating: Poor")
	assert.Contains(t, out, "Missing inputs (1):")
	assert.Contains(t, out, `"Store quality" last-month value`)
}

func TestWriteScoreSheetTableComplete(t *testing.T) {
	cfg := newTestConfig()
	fmtFloat, _ := createFormatters(cfg.Precision)
	sheet := sampleSheet()
	sheet.Result.MissingFields = nil

	var buf bytes.Buffer
	require.NoError(t, writeScoreSheetTable(sheet, cfg, fmtFloat, &buf))
	assert.NotContains(t, buf.String(), "Missing inputs")
}

func TestWriteCSVScoreSheet(t *testing.T) {
	fmtFloat, _ := createFormatters(2)

	var buf bytes.Buffer
	require.NoError(t, writeCSVScoreSheet(&buf, sampleSheet(), fmtFloat))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4) // header + 3 rows
	assert.True(t, strings.HasPrefix(lines[0], "operator,month,category,id"))
	assert.Equal(t, "Alice,2024-05,经营指标,4,核销总目标,,30,auto_derived,AUTO,100000,30.00,", lines[2])
	assert.Equal(t, "Alice,2024-05,管理指标,3,Team upkeep,,0,direct_read,-,12.5,12.50,steady", lines[3])
}

func TestWriteJSONScoreSheet(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeJSONScoreSheet(&buf, sampleSheet()))

	var result map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &result))
	assert.Equal(t, "Poor", result["label"])
	assert.Equal(t, "2024-05", result["month"])
	rows, ok := result["rows"].([]any)
	require.True(t, ok)
	assert.Len(t, rows, 3)
}

func TestWriteScoreSheetToFile(t *testing.T) {
	tests := []struct {
		output schema.OutputMode
		check  func(t *testing.T, content string)
	}{
		{schema.JSONOut, func(t *testing.T, content string) { assert.True(t, json.Valid([]byte(content))) }},
		{schema.CSVOut, func(t *testing.T, content string) { assert.True(t, strings.HasPrefix(content, "operator,")) }},
		{schema.TextOut, func(t *testing.T, content string) { assert.Contains(t, content, "Final score") }},
	}
	for _, tt := range tests {
		t.Run(string(tt.output), func(t *testing.T) {
			cfg := newTestConfig()
			cfg.Output = tt.output
			cfg.OutputFile = filepath.Join(t.TempDir(), "sheet.out")

			require.NoError(t, WriteScoreSheet(sampleSheet(), cfg))
			content, err := os.ReadFile(cfg.OutputFile)
			require.NoError(t, err)
			tt.check(t, string(content))
		})
	}
}

func TestWriteHistoryTable(t *testing.T) {
	cfg := newTestConfig()
	fmtFloat, _ := createFormatters(cfg.Precision)

	var buf bytes.Buffer
	require.NoError(t, writeHistoryTable("Alice", sampleViews(), cfg, fmtFloat, &buf))
	out := buf.String()
	assert.Contains(t, out, "Sales=30, Team upkeep=50")
	assert.Contains(t, out, "(no detail)")
	assert.Contains(t, out, "Excellent")
	assert.Contains(t, out, "Showing 2 saved months for Alice")

	buf.Reset()
	require.NoError(t, writeHistoryTable("Bob", nil, cfg, fmtFloat, &buf))
	assert.Equal(t, "No saved history for Bob\n", buf.String())
}

func TestWriteCSVHistory(t *testing.T) {
	fmtFloat, _ := createFormatters(2)

	var buf bytes.Buffer
	require.NoError(t, writeCSVHistory(&buf, sampleViews(), fmtFloat))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasSuffix(lines[1], ",Sales=30|Team upkeep=50"))
	assert.True(t, strings.HasSuffix(lines[2], ",Fair,-,"))
}

func TestFormatLabelScores(t *testing.T) {
	entries := []schema.LabelScore{{Label: "a", Score: 1.26}, {Label: "b", Score: 2}}
	assert.Equal(t, "a=1.26;b=2", formatLabelScores(entries, 2, ";"))
	assert.Equal(t, "a=1.3;b=2", formatLabelScores(entries, 1, ";"))
	assert.Equal(t, "", formatLabelScores(nil, 2, ";"))
}

func TestWriteOperators(t *testing.T) {
	ops := []schema.Operator{
		{OperatorName: "Alice", GroupName: "North", StoreCount: 12, AvgScore: 80, TotalSalary: 100000},
		{OperatorName: "Bob", GroupName: "South", StoreCount: 3, AvgScore: 70.5, TotalSalary: 5000},
	}
	fmtFloat, intFmt := createFormatters(1)

	var buf bytes.Buffer
	require.NoError(t, writeOperatorsTable(ops, fmtFloat, intFmt, &buf))
	assert.Contains(t, buf.String(), "Bob")
	assert.Contains(t, buf.String(), "Showing 2 operators")

	buf.Reset()
	require.NoError(t, writeCSVOperators(&buf, ops, fmtFloat, intFmt))
	assert.Equal(t, "operator_name,group_name,store_count,avg_score,total_salary\n"+
		"Alice,North,12,80.0,100000.0\n"+
		"Bob,South,3,70.5,5000.0\n", buf.String())
}

func TestScoreLabel(t *testing.T) {
	cfg := newTestConfig()
	assert.Equal(t, "Good", scoreLabel(80, cfg))
	cfg.UseColors = true
	assert.Contains(t, scoreLabel(80, cfg), "Good")
}
