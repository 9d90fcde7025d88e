package cmd

import (
	"github.com/huangsam/kpiboard/core"
	"github.com/huangsam/kpiboard/internal/contract"
	"github.com/spf13/cobra"
)

// toggleCmd flips an indicator between AUTO and MANUAL.
var toggleCmd = &cobra.Command{
	Use:   "toggle <person> <indicator-id>",
	Short: "Flip a verification indicator between AUTO and MANUAL.",
	Long: `Flip the calculation mode of one template item and print the rescored month.

The new mode is saved first. The sheet is only rescored once the write succeeds.

Examples:
  kpiboard toggle Alice 4`,
	Args:    cobra.ExactArgs(2),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteToggle(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot change indicator mode", err)
		}
	},
}
