package cmd

import (
	"github.com/huangsam/kpiboard/core"
	"github.com/huangsam/kpiboard/internal/contract"
	"github.com/spf13/cobra"
)

// importCmd loads operators and templates from a YAML seed file.
var importCmd = &cobra.Command{
	Use:   "import <file.yaml>",
	Short: "Load operators and KPI templates from a YAML seed file.",
	Long: `Upsert roster entries and replace KPI templates from a YAML file, then drop the
cached roster.

The file has two top-level keys:

  operators:
    - operator_name: Alice
      group_name: North
      store_count: 12
      avg_score: 80
      total_salary: 100000
  templates:
    Alice:
      - id: 1
        indicator: Sales
        category: 经营指标
        weight: 20
        formula: weight*sales_total/10000

Unknown keys are rejected. Formulas that cannot be parsed are reported and score 0.

Examples:
  kpiboard import seed.yaml`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteImport(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot import seed file", err)
		}
	},
}
