package iocache

import (
	"context"
	"errors"
	"fmt"

	"github.com/huangsam/kpiboard/internal/contract"
	"github.com/huangsam/kpiboard/internal/parquet"
)

// ExportHistory writes every saved month to Parquet files next to outputFile.
func ExportHistory(ctx context.Context, store contract.RecordStore, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}

	status, err := store.GetStatus(ctx)
	if err != nil {
		return fmt.Errorf("failed to get record store status: %w", err)
	}
	if status.HistoryRecords == 0 {
		return errors.New("no saved history found to export")
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)
	fmt.Printf("Total history records: %d\n", status.HistoryRecords)

	records, err := store.GetAllHistory(ctx)
	if err != nil {
		return fmt.Errorf("failed to retrieve history: %w", err)
	}
	performance, indicators := parquet.ConvertHistoryRecords(records)

	historyFile := outputFile + ".history.parquet"
	if err := parquet.WritePerformanceRecordsParquet(performance, historyFile); err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}
	fmt.Printf("Exported %d history records to: %s\n", len(performance), historyFile)

	indicatorFile := outputFile + ".indicator_scores.parquet"
	if err := parquet.WriteIndicatorScoresParquet(indicators, indicatorFile); err != nil {
		return fmt.Errorf("failed to write indicator scores: %w", err)
	}
	fmt.Printf("Exported %d indicator scores to: %s\n", len(indicators), indicatorFile)

	fmt.Println("\nExport complete! The Parquet files can be used with:")
	fmt.Println("  - DuckDB")
	fmt.Println("  - Pandas (via pyarrow)")
	fmt.Println("  - Apache Spark")
	fmt.Println("  - Any other Parquet-compatible tool")

	return nil
}
