package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/subhasish12345/SHOPSAGE/internal/audit"
	"github.com/subhasish12345/SHOPSAGE/internal/flow"
)

type flowSummary struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// handleListFlows returns the registered flow names and descriptions.
func (s *Server) handleListFlows(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	defs := s.runner.Registry().List()
	out := make([]flowSummary, len(defs))
	for i, def := range defs {
		out[i] = flowSummary{Name: def.Name, Description: def.Description}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding flows: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// flowHandler runs the named flow with the tool arguments as input. A
// Failure is reported as a tool error carrying the full result.
func (s *Server) flowHandler(name string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		if args == nil {
			args = map[string]any{}
		}

		res := s.runner.Invoke(ctx, name, args)
		s.record(ctx, name, args, res)

		if !res.OK() {
			data, err := json.Marshal(res)
			if err != nil {
				return mcp.NewToolResultError(res.Err().Error()), nil
			}
			return mcp.NewToolResultError(string(data)), nil
		}

		output, _ := res.Output()
		data, err := json.MarshalIndent(output, "", "  ")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("encoding output: %v", err)), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	}
}

func (s *Server) record(ctx context.Context, name string, args map[string]any, res flow.Result) {
	if s.journal == nil {
		return
	}
	entry, err := audit.NewEntry(audit.SourceMCP, name, args, res)
	if err == nil {
		_, err = s.journal.Log(context.WithoutCancel(ctx), entry)
	}
	if err != nil {
		s.logger.Error("journal write failed", zap.String("flow", name), zap.Error(err))
	}
}
