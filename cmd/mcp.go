package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/subhasish12345/SHOPSAGE/internal/audit"
	"github.com/subhasish12345/SHOPSAGE/internal/db"
	"github.com/subhasish12345/SHOPSAGE/internal/mcp"
)

var mcpJournal bool

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve flows as MCP tools over stdio",
	Long: `Starts a Model Context Protocol server on stdin/stdout. Each registered
flow becomes a tool whose input schema mirrors the flow's input fields.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		// Stdout carries the protocol, so logs stay on stderr.
		logger, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		runner, err := buildRunner(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}

		var journal *audit.Store
		if mcpJournal {
			database, err := db.Open(cfg.Server.JournalPath)
			if err != nil {
				return err
			}
			defer database.Close()
			journal = audit.NewStore(database)
		}

		srv, err := mcp.NewServer(runner, journal, logger)
		if err != nil {
			return err
		}
		logger.Info("mcp server ready", zap.Int("flows", runner.Registry().Len()))
		return srv.Serve()
	},
}

func init() {
	mcpCmd.Flags().BoolVar(&mcpJournal, "journal", true, "record invocations in the journal")
	rootCmd.AddCommand(mcpCmd)
}
