package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/huangsam/kpiboard/core"
	"github.com/huangsam/kpiboard/internal/contract"
	"github.com/huangsam/kpiboard/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.CacheManager
}

// sessionConfig clones the base config and applies the person and month arguments.
func (h *toolHandler) sessionConfig(request mcp.CallToolRequest) (*contract.Config, error) {
	cfg := h.baseCfg.Clone()
	person, err := request.RequireString("person")
	if err != nil || person == "" {
		return nil, fmt.Errorf("person is required")
	}
	cfg.Person = person
	if m := request.GetString("month", ""); m != "" {
		if _, err := contract.ParseMonth(m); err != nil {
			return nil, err
		}
		cfg.Month = m
	}
	return cfg, nil
}

// stringInputs converts loosely typed JSON arguments to raw input strings.
func stringInputs(args map[string]any) (map[string]string, error) {
	out := make(map[string]string, len(args))
	for key, v := range args {
		switch val := v.(type) {
		case string:
			out[key] = val
		case float64:
			out[key] = strconv.FormatFloat(val, 'f', -1, 64)
		case nil:
			out[key] = ""
		default:
			return nil, fmt.Errorf("input %q must be a string or number", key)
		}
	}
	return out, nil
}

func jsonResult(v any) *mcp.CallToolResult {
	jsonData, _ := json.MarshalIndent(v, "", "  ")
	return mcp.NewToolResultText(string(jsonData))
}

func (h *toolHandler) handleListOperators(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ops, err := core.LoadRoster(ctx, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list operators: %v", err)), nil
	}
	return jsonResult(ops), nil
}

func (h *toolHandler) handleComputeScores(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.sessionConfig(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}

	if raw, ok := request.GetArguments()["inputs"].(map[string]any); ok {
		edits, err := stringInputs(raw)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
		}
		cfg.Edits = edits
	}
	if _, ok := request.GetArguments()["coefficient"]; ok {
		c := request.GetFloat("coefficient", 1)
		cfg.Coefficient = &c
	}

	s, err := core.GetSession(ctx, cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("scoring failed: %v", err)), nil
	}
	return jsonResult(s.Sheet()), nil
}

func (h *toolHandler) handleGetHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.sessionConfig(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}

	views, err := core.GetHistoryViews(ctx, cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("history lookup failed: %v", err)), nil
	}
	if views == nil {
		views = []schema.HistoryView{}
	}
	return jsonResult(views), nil
}

func (h *toolHandler) handleSetAutoCalculate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.sessionConfig(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	cfg.ItemID = schema.ItemID(request.GetString("id", ""))

	s, err := core.SetIndicatorMode(ctx, cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("mode change failed: %v", err)), nil
	}
	return jsonResult(s.Sheet()), nil
}
