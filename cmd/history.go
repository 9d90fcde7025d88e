package cmd

import (
	"github.com/huangsam/kpiboard/core"
	"github.com/huangsam/kpiboard/internal/contract"
	"github.com/spf13/cobra"
)

// historyCmd shows saved months.
var historyCmd = &cobra.Command{
	Use:   "history <person>",
	Short: "Show an operator's saved months, newest first.",
	Long: `Show every saved month for the operator with total, coefficient, final score,
rating and the per-indicator scores recorded at save time.

Months saved without indicator detail are listed as "(no detail)".

Examples:
  kpiboard history Alice
  kpiboard history Alice --output json`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteHistory(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot show history", err)
		}
	},
}

// historyExportCmd exports all saved months to Parquet files.
var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all saved history to Parquet for BI tools and analytics",
	Long: `Export the saved history of every operator to Parquet.

Exports two datasets:
- <output-file>.history.parquet - one row per operator and month
- <output-file>.indicator_scores.parquet - one row per saved indicator score

Requires: --output-file parameter

Examples:
  kpiboard history export --output-file kpi
  duckdb -c "SELECT * FROM read_parquet('kpi.history.parquet') LIMIT 10"`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteHistoryExport(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Failed to export history", err)
		}
	},
}
