package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/huangsam/kpiboard/internal/contract"
	"github.com/huangsam/kpiboard/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteHistory outputs saved months, dispatching based on the output format configured.
func WriteHistory(person string, views []schema.HistoryView, cfg *contract.Config) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	return writeFormatted(cfg, formatWriters{
		json:  func(w io.Writer) error { return writeJSON(w, views) },
		csv:   func(w io.Writer) error { return writeCSVHistory(w, views, fmtFloat) },
		table: func(w io.Writer) error { return writeHistoryTable(person, views, cfg, fmtFloat, w) },
	})
}

// formatLabelScores renders decoded scores as "label=score" pairs joined by sep.
func formatLabelScores(entries []schema.LabelScore, precision int, sep string) string {
	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		parts = append(parts, fmt.Sprintf("%s=%s", e.Label, schema.FormatScore(e.Score, precision)))
	}
	return strings.Join(parts, sep)
}

// savedAt renders the save timestamp, or "-" when none was recorded.
func savedAt(ts int64) string {
	if ts <= 0 {
		return "-"
	}
	return time.Unix(ts, 0).Format(contract.DateTimeFormat)
}

// writeHistoryTable generates and writes the human-readable table.
func writeHistoryTable(person string, views []schema.HistoryView, cfg *contract.Config, fmtFloat func(float64) string, w io.Writer) error {
	if len(views) == 0 {
		_, err := fmt.Fprintf(w, "No saved history for %s\n", person)
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Month", "Total", "Coefficient", "Final", "Label", "Saved", "Scores"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	scoresWidth := getMaxTextWidth(cfg, 75) // Month + Total + Coefficient + Final + Label + Saved
	var data [][]string
	for _, v := range views {
		scores := "(no detail)"
		if v.HasDetail {
			scores = contract.TruncateText(formatLabelScores(v.LabelScores, cfg.Precision, ", "), scoresWidth)
		}
		data = append(data, []string{
			v.PerformanceMonth,
			fmtFloat(v.TotalScore),
			schema.FormatScore(v.EgpScore, 2),
			fmtFloat(v.FinalScore),
			scoreLabel(v.FinalScore, cfg),
			savedAt(v.SavedAt),
			scores,
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Showing %d saved months for %s\n", len(views), person)
	return err
}

// writeCSVHistory writes one record per saved month.
func writeCSVHistory(w io.Writer, views []schema.HistoryView, fmtFloat func(float64) string) error {
	header := []string{
		"person_name",
		"performance_month",
		"total_score",
		"egp_score",
		"final_score",
		"label",
		"saved_at",
		"scores",
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, v := range views {
			rec := []string{
				v.PersonName,
				v.PerformanceMonth,
				fmtFloat(v.TotalScore),
				schema.FormatScore(v.EgpScore, 4),
				fmtFloat(v.FinalScore),
				contract.GetPlainLabel(v.FinalScore),
				savedAt(v.SavedAt),
				formatLabelScores(v.LabelScores, 4, "|"),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}
