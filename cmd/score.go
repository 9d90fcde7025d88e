package cmd

import (
	"github.com/huangsam/kpiboard/core"
	"github.com/huangsam/kpiboard/internal/contract"
	"github.com/spf13/cobra"
)

// scoreCmd computes a month without saving it.
var scoreCmd = &cobra.Command{
	Use:   "score <person>",
	Short: "Compute an operator's monthly KPI sheet without saving it.",
	Long: `Load the operator's KPI template and the inputs saved for the month, apply
any command line edits, and print the scored sheet.

Each item is scored by kind:
- direct read: the entered last-month value
- formula: the item's formula over weight and the operator's inputs
- auto derived: verification totals bound to the operator's salary total
- manual override: verification totals entered by hand

Nothing is written. Use 'kpiboard save' to persist the result.

Examples:
  # Score last month
  kpiboard score Alice

  # Try a sales figure and a coefficient before saving
  kpiboard score Alice --month 2024-05 --set sales_total=12000 --coefficient 0.8

  # Attach a remark to item 3
  kpiboard score Alice --remark 3="short staffed in week 2"`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteScore(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot compute scores", err)
		}
	},
}
