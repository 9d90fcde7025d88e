package cmd

import (
	"github.com/huangsam/kpiboard/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the kpiboard MCP server",
	Long: `Launch an MCP server over stdio so AI agents can list operators, compute and
inspect scores, and flip indicator modes via standard tools.

Logs go to stderr so stdout stays reserved for the protocol.`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, cacheManager)
	},
}
