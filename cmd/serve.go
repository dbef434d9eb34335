package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/subhasish12345/SHOPSAGE/internal/audit"
	"github.com/subhasish12345/SHOPSAGE/internal/db"
	"github.com/subhasish12345/SHOPSAGE/internal/flow"
	"github.com/subhasish12345/SHOPSAGE/internal/server"
	"github.com/subhasish12345/SHOPSAGE/internal/telemetry"
)

var (
	servePort      int
	serveNoJournal bool
	serveRetention time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the flow HTTP API",
	Long: `Starts an HTTP server exposing every registered flow under /api/flows,
the invocation journal under /api/journal and Prometheus metrics at /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			cfg.Server.Port = servePort
		}
		if cmd.Flags().Changed("journal-retention") {
			cfg.Server.JournalRetention = serveRetention
		}
		logger, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		metrics := telemetry.NewMetrics()
		runner, err := buildRunner(ctx, cfg, logger, flow.WithObserver(metrics))
		if err != nil {
			return err
		}

		opts := []server.Option{server.WithLogger(logger), server.WithMetrics(metrics)}
		if !serveNoJournal {
			database, err := db.Open(cfg.Server.JournalPath)
			if err != nil {
				return err
			}
			defer database.Close()
			journal := audit.NewStore(database)
			go journal.Retain(ctx, cfg.Server.JournalRetention, audit.DefaultRetentionInterval, logger)
			opts = append(opts, server.WithJournal(journal))
		}

		srv := server.New(server.Config{
			Port:     cfg.Server.Port,
			AllowAll: cfg.Server.AllowAllOrigins,
			Timeout:  cfg.Timeout,
		}, runner, opts...)

		errCh := make(chan error, 1)
		go func() { errCh <- srv.Start() }()

		logger.Info("serving flows",
			zap.Int("port", cfg.Server.Port),
			zap.Strings("flows", runner.Registry().Names()),
			zap.String("provider", string(cfg.Provider)),
			zap.String("model", cfg.Model))

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
		}

		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8080, "port to listen on")
	serveCmd.Flags().BoolVar(&serveNoJournal, "no-journal", false, "do not record invocations")
	serveCmd.Flags().DurationVar(&serveRetention, "journal-retention", 0, "prune journal entries older than this (0 keeps all)")
	rootCmd.AddCommand(serveCmd)
}
