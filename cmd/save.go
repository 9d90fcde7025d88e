package cmd

import (
	"github.com/huangsam/kpiboard/core"
	"github.com/huangsam/kpiboard/internal/contract"
	"github.com/spf13/cobra"
)

// saveCmd computes a month and persists it.
var saveCmd = &cobra.Command{
	Use:   "save <person>",
	Short: "Compute and save an operator's monthly KPI sheet.",
	Long: `Score the month exactly like 'kpiboard score', then save the raw inputs and
the history row (total, coefficient, final score and per-indicator scores).

Saving the same month again overwrites it.

Examples:
  kpiboard save Alice --month 2024-05 --set sales_total=12000 --set upkeep_last_month=8`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteSave(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot save performance record", err)
		}
	},
}
