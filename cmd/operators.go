package cmd

import (
	"github.com/huangsam/kpiboard/core"
	"github.com/huangsam/kpiboard/internal/contract"
	"github.com/spf13/cobra"
)

// operatorsCmd lists the roster.
var operatorsCmd = &cobra.Command{
	Use:   "operators",
	Short: "List operators with their group and store aggregates.",
	Long: `List every operator on the roster with group, store count, average
operating score and total salary.

The roster is served from the roster cache when it holds a valid entry. Run
'kpiboard sync' after the upstream roster changes.

Examples:
  # Show the roster as a table
  kpiboard operators

  # Export the roster for a spreadsheet
  kpiboard operators --output csv --output-file roster.csv`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteOperators(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot list operators", err)
		}
	},
}
