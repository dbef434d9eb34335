// Package mcp exposes registered flows as Model Context Protocol tools.
package mcp

import (
	"fmt"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/subhasish12345/SHOPSAGE/internal/audit"
	"github.com/subhasish12345/SHOPSAGE/internal/flow"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server with one tool per registered flow.
type Server struct {
	runner  *flow.Runner
	journal *audit.Store
	logger  *zap.Logger
	mcp     *server.MCPServer
}

// NewServer creates an MCP server over runner. The journal may be nil.
func NewServer(runner *flow.Runner, journal *audit.Store, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		runner:  runner,
		journal: journal,
		logger:  logger,
	}

	s.mcp = server.NewMCPServer(
		"shopsage",
		Version,
		server.WithToolCapabilities(false),
	)

	if err := s.registerTools(); err != nil {
		return nil, err
	}
	return s, nil
}

// registerTools adds the catalog tool and one tool per flow.
func (s *Server) registerTools() error {
	s.mcp.AddTool(listFlowsTool, s.handleListFlows)
	for _, def := range s.runner.Registry().List() {
		tool, err := flowTool(def)
		if err != nil {
			return fmt.Errorf("tool for %s: %w", def.Name, err)
		}
		s.mcp.AddTool(tool, s.flowHandler(def.Name))
	}
	return nil
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
