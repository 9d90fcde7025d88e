// Package parquet provides data structures and functions for exporting saved
// KPI history to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/huangsam/kpiboard/schema"
	"github.com/parquet-go/parquet-go"
)

// PerformanceRecord is one saved month of one operator.
// This struct maps to the kpi_performance_history database table.
type PerformanceRecord struct {
	// PersonName is the operator the month belongs to
	PersonName string `parquet:"person_name,snappy,dict"`

	// PerformanceMonth is the YYYY-MM month that was scored
	PerformanceMonth string `parquet:"performance_month,snappy,dict"`

	TotalScore float64 `parquet:"total_score,snappy"`
	FinalScore float64 `parquet:"final_score,snappy"`

	// EgpScore is the coefficient applied to the total
	EgpScore float64 `parquet:"egp_score,snappy"`

	// SavedAt is when the month was last saved (stored as TIMESTAMP with nanosecond precision)
	SavedAt time.Time `parquet:"saved_at,snappy"`

	// Scores is the label-keyed JSON score map as stored (nullable)
	Scores *string `parquet:"scores,optional,snappy"`
}

// IndicatorScore is one indicator score of a saved month, flattened out of
// the JSON score map for columnar analysis.
type IndicatorScore struct {
	PersonName       string `parquet:"person_name,snappy,dict"`
	PerformanceMonth string `parquet:"performance_month,snappy,dict"`

	// Indicator is the label the score was saved under
	Indicator string `parquet:"indicator,snappy,dict"`

	// Position is the order of the label in the saved map
	Position int32 `parquet:"position,snappy"`

	Score float64 `parquet:"score,snappy"`
}

// writeParquet writes rows to a Parquet file, inferring the schema from the
// struct tags of T.
func writeParquet[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// WritePerformanceRecordsParquet writes history records to a Parquet file.
func WritePerformanceRecordsParquet(data []PerformanceRecord, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteIndicatorScoresParquet writes flattened indicator scores to a Parquet file.
func WriteIndicatorScoresParquet(data []IndicatorScore, outputPath string) error {
	return writeParquet(data, outputPath)
}

// ConvertHistoryRecords converts stored history rows into Parquet rows. Score
// maps that cannot be decoded are kept verbatim on the record and produce no
// indicator rows.
func ConvertHistoryRecords(records []schema.HistoryRecord) ([]PerformanceRecord, []IndicatorScore) {
	performance := make([]PerformanceRecord, 0, len(records))
	var indicators []IndicatorScore

	for _, r := range records {
		pr := PerformanceRecord{
			PersonName:       r.PersonName,
			PerformanceMonth: r.PerformanceMonth,
			TotalScore:       r.TotalScore,
			FinalScore:       r.FinalScore,
			EgpScore:         r.EgpScore,
			SavedAt:          time.Unix(r.SavedAt, 0).UTC(),
		}
		if r.Scores != "" {
			scores := r.Scores
			pr.Scores = &scores
		}
		performance = append(performance, pr)

		entries, err := schema.ParseLabelScores(r.Scores)
		if err != nil {
			continue
		}
		for i, e := range entries {
			indicators = append(indicators, IndicatorScore{
				PersonName:       r.PersonName,
				PerformanceMonth: r.PerformanceMonth,
				Indicator:        e.Label,
				Position:         int32(i),
				Score:            e.Score,
			})
		}
	}
	return performance, indicators
}
