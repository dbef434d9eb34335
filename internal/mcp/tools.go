package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/subhasish12345/SHOPSAGE/internal/flow"
	"github.com/subhasish12345/SHOPSAGE/internal/prompt"
)

// listFlowsTool defines the list_flows MCP tool.
var listFlowsTool = mcp.NewTool("list_flows",
	mcp.WithDescription("List the decision flows this server can run, with their input and output fields."),
)

// flowTool defines the tool for one flow. Its input schema is the flow's
// input schema, so clients see the same fields the validator enforces.
func flowTool(def flow.Definition) (mcp.Tool, error) {
	raw, err := prompt.Shape(def.Input).MarshalJSONSchema()
	if err != nil {
		return mcp.Tool{}, err
	}
	desc := def.Description
	if desc == "" {
		desc = "Run the " + def.Name + " flow."
	}
	return mcp.NewToolWithRawSchema(def.Name, desc, raw), nil
}
