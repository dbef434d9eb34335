package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/subhasish12345/SHOPSAGE/internal/audit"
	"github.com/subhasish12345/SHOPSAGE/internal/db"
	"github.com/subhasish12345/SHOPSAGE/internal/flow"
	"github.com/subhasish12345/SHOPSAGE/internal/flows"
	"github.com/subhasish12345/SHOPSAGE/internal/model"
)

func newTestServer(t *testing.T, inv model.Invoker) (*Server, *audit.Store) {
	t.Helper()
	reg, err := flows.NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	journal := audit.NewStore(database)
	srv, err := NewServer(flow.NewRunner(reg, inv), journal, nil)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return srv, journal
}

func textOf(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) != 1 {
		t.Fatalf("content has %d items", len(result.Content))
	}
	tc, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T, want mcp.TextContent", result.Content[0])
	}
	return tc.Text
}

func recommendations(ids ...string) model.Invoker {
	return model.InvokerFunc(func(ctx context.Context, req model.Request) (*model.Response, error) {
		out := make([]any, len(ids))
		for i, id := range ids {
			out[i] = id
		}
		return &model.Response{Payload: map[string]any{"recommendedProductIds": out}}, nil
	})
}

func TestToolDefinitions(t *testing.T) {
	if listFlowsTool.Name != "list_flows" || listFlowsTool.Description == "" {
		t.Errorf("list_flows tool = %+v", listFlowsTool)
	}

	for _, def := range flows.Definitions() {
		t.Run(def.Name, func(t *testing.T) {
			tool, err := flowTool(def)
			if err != nil {
				t.Fatalf("flowTool: %v", err)
			}
			if tool.Name != def.Name {
				t.Errorf("tool name = %q, want %q", tool.Name, def.Name)
			}
			if tool.Description == "" {
				t.Error("tool description should not be empty")
			}

			var schema struct {
				Type       string                     `json:"type"`
				Properties map[string]json.RawMessage `json:"properties"`
				Required   []string                   `json:"required"`
			}
			if err := json.Unmarshal(tool.RawInputSchema, &schema); err != nil {
				t.Fatalf("input schema: %v", err)
			}
			if schema.Type != "object" {
				t.Errorf("schema type = %q", schema.Type)
			}
			if len(schema.Properties) != def.Input.Len() {
				t.Errorf("schema has %d properties, want %d", len(schema.Properties), def.Input.Len())
			}
		})
	}
}

func TestRecommendationToolSchemaMarksOptionalFields(t *testing.T) {
	for _, def := range flows.Definitions() {
		if def.Name != flows.ProductRecommendations {
			continue
		}
		tool, err := flowTool(def)
		if err != nil {
			t.Fatalf("flowTool: %v", err)
		}
		var schema struct {
			Required []string `json:"required"`
		}
		if err := json.Unmarshal(tool.RawInputSchema, &schema); err != nil {
			t.Fatalf("input schema: %v", err)
		}
		if len(schema.Required) != 1 || schema.Required[0] != "userId" {
			t.Errorf("required = %v, want [userId]", schema.Required)
		}
	}
}

func TestHandleListFlows(t *testing.T) {
	srv, _ := newTestServer(t, recommendations())
	result, err := srv.handleListFlows(context.Background(), mcp.CallToolRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %v", result.Content)
	}

	var got []flowSummary
	if err := json.Unmarshal([]byte(textOf(t, result)), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("got %d flows, want 5", len(got))
	}
	for _, f := range got {
		if f.Description == "" {
			t.Errorf("%s has no description", f.Name)
		}
	}
}

func TestFlowHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		srv, journal := newTestServer(t, recommendations("p4", "p7"))
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{
			"userId":          "u1",
			"browsingHistory": []any{"p3", "p9"},
		}

		result, err := srv.flowHandler(flows.ProductRecommendations)(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.IsError {
			t.Fatalf("unexpected tool error: %v", result.Content)
		}
		if text := textOf(t, result); !strings.Contains(text, `"p4"`) || !strings.Contains(text, `"p7"`) {
			t.Errorf("output = %s", text)
		}

		entries, err := journal.Query(ctx, audit.QueryFilter{Source: audit.SourceMCP})
		if err != nil {
			t.Fatalf("Query: %v", err)
		}
		if len(entries) != 1 || entries[0].Status != "success" {
			t.Errorf("journal = %+v", entries)
		}
	})

	t.Run("invalid input", func(t *testing.T) {
		srv, _ := newTestServer(t, recommendations("p1"))
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{"browsingHistory": "p3"}

		result, err := srv.flowHandler(flows.ProductRecommendations)(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsError {
			t.Fatal("expected tool error for invalid input")
		}

		var res struct {
			Status string `json:"status"`
			Error  struct {
				Kind   string `json:"kind"`
				Fields []struct {
					Path string `json:"path"`
				} `json:"fields"`
			} `json:"error"`
		}
		if err := json.Unmarshal([]byte(textOf(t, result)), &res); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if res.Status != "failure" || res.Error.Kind != "input_validation" {
			t.Errorf("result = %+v", res)
		}
		if len(res.Error.Fields) != 2 || res.Error.Fields[0].Path != "userId" || res.Error.Fields[1].Path != "browsingHistory" {
			t.Errorf("fields = %+v", res.Error.Fields)
		}
	})

	t.Run("model failure", func(t *testing.T) {
		failing := model.InvokerFunc(func(ctx context.Context, req model.Request) (*model.Response, error) {
			return nil, model.FromStatus("google", 503, "overloaded")
		})
		srv, _ := newTestServer(t, failing)
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{"userId": "u1"}

		result, err := srv.flowHandler(flows.ProductRecommendations)(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsError || !strings.Contains(textOf(t, result), "model_invocation") {
			t.Errorf("result = %+v", result)
		}
	})
}

func TestNewServer(t *testing.T) {
	srv, journal := newTestServer(t, recommendations())
	if srv.mcp == nil {
		t.Fatal("MCP server not initialized")
	}
	if srv.journal != journal {
		t.Error("journal not set correctly")
	}
	if srv.runner.Registry().Len() != 5 {
		t.Errorf("runner has %d flows, want 5", srv.runner.Registry().Len())
	}
}
