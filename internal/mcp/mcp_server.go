// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/kpiboard/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the kpiboard MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.CacheManager) *server.MCPServer {
	s := server.NewMCPServer(
		"KPI Scoring Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: list_operators ---
	s.AddTool(mcp.NewTool("list_operators",
		mcp.WithDescription("List every operator on the roster with group, store count and salary aggregates."),
	), h.handleListOperators)

	// --- 2. Tool: compute_scores ---
	s.AddTool(mcp.NewTool("compute_scores",
		mcp.WithDescription("Score an operator's month from the stored inputs plus any overrides, without saving."),
		mcp.WithString("person", mcp.Description("Operator name as it appears on the roster."), mcp.Required()),
		mcp.WithString("month", mcp.Description("Performance month as YYYY-MM (defaults to the configured month).")),
		mcp.WithObject("inputs", mcp.Description("Raw input overrides keyed by field name, e.g. {\"sales_total\": \"5000\"}.")),
		mcp.WithNumber("coefficient", mcp.Description("Coefficient applied to the total: 1.2, 1, 0.8 or 0.")),
	), h.handleComputeScores)

	// --- 3. Tool: get_history ---
	s.AddTool(mcp.NewTool("get_history",
		mcp.WithDescription("Return an operator's saved months, newest first, with decoded indicator scores."),
		mcp.WithString("person", mcp.Description("Operator name."), mcp.Required()),
	), h.handleGetHistory)

	// --- 4. Tool: set_auto_calculate ---
	s.AddTool(mcp.NewTool("set_auto_calculate",
		mcp.WithDescription("Flip a verification indicator between AUTO and MANUAL and return the rescored month."),
		mcp.WithString("person", mcp.Description("Operator name."), mcp.Required()),
		mcp.WithString("id", mcp.Description("Template item id of the indicator."), mcp.Required()),
		mcp.WithString("month", mcp.Description("Performance month as YYYY-MM.")),
	), h.handleSetAutoCalculate)

	return s
}

// StartMCPServer starts the kpiboard MCP server.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.CacheManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
