package cmd

import (
	"os/signal"
	"syscall"

	"github.com/huangsam/kpiboard/internal/api"
	"github.com/huangsam/kpiboard/internal/contract"
	"github.com/spf13/cobra"
)

// serveCmd runs the HTTP API.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the scoring engine over HTTP for the dashboard",
	Long: `Start the JSON HTTP API used by the browser dashboard.

Routes:
  GET  /operators             roster ({"data": [...]})
  POST /update                drop the cached roster and reload it
  GET  /kpi-template          ?person=
  GET  /performance           ?person=&month=
  POST /performance           compute and save a month
  POST /scores                compute a month without saving
  POST /auto-calculate        flip an indicator between AUTO and MANUAL
  GET  /performance-history   ?person=
  GET  /health

Errors are returned as {"error": "..."}.

Examples:
  kpiboard serve --listen :8080 --allow-origins http://localhost:3000`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		ctx, stop := signal.NotifyContext(rootCtx, syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		if err := api.Serve(ctx, cfg, cacheManager, logger); err != nil {
			contract.LogFatal("HTTP API stopped", err)
		}
	},
}
