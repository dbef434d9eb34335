package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/subhasish12345/SHOPSAGE/internal/audit"
	"github.com/subhasish12345/SHOPSAGE/internal/batch"
	"github.com/subhasish12345/SHOPSAGE/internal/db"
	"github.com/subhasish12345/SHOPSAGE/internal/flow"
	"github.com/subhasish12345/SHOPSAGE/internal/progress"
)

var (
	batchInput       string
	batchOutput      string
	batchConcurrency int
	batchJournal     bool
)

var batchCmd = &cobra.Command{
	Use:   "batch <flow>",
	Short: "Run a flow once per line of a JSON Lines file",
	Long: `Reads one JSON input per line, invokes the flow on each with bounded
concurrency and writes one result per line, in input order.`,
	Example: `  shopsage batch fraud-refund-detection --input refunds.jsonl --output verdicts.jsonl`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		in, closeIn, err := openBatchInput(batchInput, cmd.InOrStdin())
		if err != nil {
			return err
		}
		defer closeIn()

		var out io.Writer = cmd.OutOrStdout()
		if batchOutput != "" && batchOutput != "-" {
			f, err := os.Create(batchOutput)
			if err != nil {
				return fmt.Errorf("creating output: %w", err)
			}
			defer f.Close()
			out = f
		}

		ctx := cmd.Context()
		runner, err := buildRunner(ctx, cfg, logger)
		if err != nil {
			return err
		}
		if _, err := runner.Registry().Get(name); err != nil {
			return err
		}

		opts := batch.Options{
			Concurrency: batchConcurrency,
			Reporter:    progress.NewReporter(os.Stderr),
		}
		if batchJournal {
			database, err := db.Open(cfg.Server.JournalPath)
			if err != nil {
				return err
			}
			defer database.Close()
			opts.OnResult = journalBatch(ctx, audit.NewStore(database), name, logger)
		}

		summary, err := batch.Run(ctx, runner, name, in, out, opts)
		fmt.Fprintf(os.Stderr, "%d inputs: %d succeeded, %d failed\n", summary.Total, summary.Succeeded, summary.Failed)
		if err != nil {
			return err
		}
		if summary.Failed > 0 {
			return errFlowFailed
		}
		return nil
	},
}

func openBatchInput(path string, stdin io.Reader) (io.Reader, func(), error) {
	if path == "" || path == "-" {
		return stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening input: %w", err)
	}
	return f, func() { f.Close() }, nil
}

// journalBatch records each batch result; journal failures are logged and
// never fail the run.
func journalBatch(ctx context.Context, store *audit.Store, name string, logger *zap.Logger) func(int, any, flow.Result) {
	return func(line int, input any, res flow.Result) {
		entry, err := audit.NewEntry(audit.SourceBatch, name, input, res)
		if err == nil {
			_, err = store.Log(context.WithoutCancel(ctx), entry)
		}
		if err != nil {
			logger.Warn("journal write failed", zap.Int("line", line), zap.Error(err))
		}
	}
}

func init() {
	batchCmd.Flags().StringVarP(&batchInput, "input", "i", "-", "JSON Lines input file (- for stdin)")
	batchCmd.Flags().StringVarP(&batchOutput, "output", "o", "-", "JSON Lines output file (- for stdout)")
	batchCmd.Flags().IntVarP(&batchConcurrency, "concurrency", "c", batch.DefaultConcurrency, "parallel model calls")
	batchCmd.Flags().BoolVar(&batchJournal, "journal", false, "record results in the invocation journal")
	rootCmd.AddCommand(batchCmd)
}
