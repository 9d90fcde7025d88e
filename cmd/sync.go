package cmd

import (
	"github.com/huangsam/kpiboard/core"
	"github.com/huangsam/kpiboard/internal/contract"
	"github.com/spf13/cobra"
)

// syncCmd refreshes the roster cache.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Drop the cached roster and reload it from the record store.",
	Long: `The roster cache never expires on its own. Run this after the upstream roster
or its aggregates change.

Examples:
  kpiboard sync`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteSync(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot refresh roster", err)
		}
	},
}
