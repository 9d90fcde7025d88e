package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/huangsam/kpiboard/internal/contract"
	"github.com/huangsam/kpiboard/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteScoreSheet outputs a score sheet, dispatching based on the output format configured.
func WriteScoreSheet(sheet schema.ScoreSheet, cfg *contract.Config) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	return writeFormatted(cfg, formatWriters{
		json:  func(w io.Writer) error { return writeJSONScoreSheet(w, sheet) },
		csv:   func(w io.Writer) error { return writeCSVScoreSheet(w, sheet, fmtFloat) },
		table: func(w io.Writer) error { return writeScoreSheetTable(sheet, cfg, fmtFloat, w) },
	})
}

// modeText renders the calculation mode of a row. Only toggleable rows carry one.
func modeText(row schema.SheetRow) string {
	if !row.Toggleable {
		return "-"
	}
	return string(row.Mode)
}

// writeScoreSheetTable writes one table per category followed by the totals
// and the list of missing inputs.
func writeScoreSheetTable(sheet schema.ScoreSheet, cfg *contract.Config, fmtFloat func(float64) string, w io.Writer) error {
	op := sheet.Operator
	if _, err := fmt.Fprintf(w, "%s (%s) %s: %d stores, avg score %s, total salary %s\n",
		op.OperatorName, op.GroupName, sheet.Month, op.StoreCount, fmtFloat(op.AvgScore), fmtFloat(op.TotalSalary)); err != nil {
		return err
	}

	kpiWidth := getMaxTextWidth(cfg, 70) // ID + Indicator + Weight + Last Month + Mode + Score
	for _, group := range sheet.GroupByCategory() {
		if _, err := fmt.Fprintf(w, "\n[%s]\n", group.Category); err != nil {
			return err
		}
		table := tablewriter.NewWriter(w)
		table.Header([]string{"ID", "Indicator", "KPI", "Weight", "Last Month", "Mode", "Score"})
		table.Configure(func(cfg *tablewriter.Config) {
			cfg.Row.Alignment.Global = tw.AlignRight
		})

		var data [][]string
		for _, row := range group.Rows {
			data = append(data, []string{
				string(row.Item.ID),
				row.Item.Indicator,
				contract.TruncateText(row.Item.Kpi, kpiWidth),
				schema.FormatScore(row.Item.Weight, cfg.Precision),
				row.LastMonth,
				modeText(row),
				fmtFloat(row.Score),
			})
		}
		if err := table.Bulk(data); err != nil {
			return err
		}
		if err := table.Render(); err != nil {
			return err
		}
	}

	r := sheet.Result
	if _, err := fmt.Fprintf(w, "\nProcess total: %s  Management total: %s  Total: %s\n",
		fmtFloat(r.ProcessTotal), fmtFloat(r.ManagementTotal), fmtFloat(r.TotalScore)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Coefficient: %s  Final score: %s  Rating: %s\n",
		schema.FormatScore(r.Coefficient, 2), fmtFloat(r.FinalScore), scoreLabel(r.FinalScore, cfg)); err != nil {
		return err
	}

	if len(r.MissingFields) == 0 {
		return nil
	}
	header := fmt.Sprintf("\nMissing inputs (%d):\n", len(r.MissingFields))
	if cfg.UseColors {
		header = contract.WarnColor.Sprint(header)
	}
	if _, err := fmt.Fprint(w, header); err != nil {
		return err
	}
	for _, msg := range r.MissingFields {
		if _, err := fmt.Fprintf(w, "  - %s\n", msg); err != nil {
			return err
		}
	}
	return nil
}

// writeCSVScoreSheet writes one record per template item.
func writeCSVScoreSheet(w io.Writer, sheet schema.ScoreSheet, fmtFloat func(float64) string) error {
	header := []string{
		"operator",
		"month",
		"category",
		"id",
		"indicator",
		"kpi",
		"weight",
		"kind",
		"mode",
		"last_month",
		"score",
		"remarks",
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, row := range sheet.Rows {
			rec := []string{
				sheet.Operator.OperatorName,
				sheet.Month,
				row.Item.Category,
				string(row.Item.ID),
				row.Item.Indicator,
				row.Item.Kpi,
				schema.FormatScore(row.Item.Weight, 4),
				string(row.Kind),
				modeText(row),
				row.LastMonth,
				fmtFloat(row.Score),
				row.Remarks,
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeJSONScoreSheet writes the sheet with its rating label added.
func writeJSONScoreSheet(w io.Writer, sheet schema.ScoreSheet) error {
	type JSONScoreSheet struct {
		Label string `json:"label"`
		schema.ScoreSheet
	}
	return writeJSON(w, JSONScoreSheet{
		Label:      contract.GetPlainLabel(sheet.Result.FinalScore),
		ScoreSheet: sheet,
	})
}
