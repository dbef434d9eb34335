package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/subhasish12345/SHOPSAGE/internal/flow"
	"github.com/subhasish12345/SHOPSAGE/internal/llm"
)

var (
	invokeInput  string
	invokeData   string
	invokeDryRun bool
)

var invokeCmd = &cobra.Command{
	Use:   "invoke <flow>",
	Short: "Run one flow on a JSON input",
	Long: `Validates the input against the flow's input schema, renders the prompt,
calls the configured model and prints the validated result as JSON.

With --dry-run the rendered request and an estimated token count and cost
are printed instead, and the model is not called.`,
	Example: `  shopsage invoke product-recommendations --data '{"userId":"u1","browsingHistory":["p3"]}'
  shopsage invoke delivery-delay-prediction --input shipment.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		input, err := readInput(invokeInput, invokeData, cmd.InOrStdin())
		if err != nil {
			return err
		}
		logger, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		if invokeDryRun {
			reg, err := buildRegistry(cfg)
			if err != nil {
				return err
			}
			// Prepare never touches the invoker; a nil model keeps dry runs
			// working without API keys.
			runner := flow.NewRunner(reg, nil)
			req, detail := runner.Prepare(name, input)
			if detail != nil {
				_ = printJSON(cmd.OutOrStdout(), detail)
				return errFlowFailed
			}
			tokens := llm.EstimateRequestTokens(req)
			if err := printJSON(cmd.OutOrStdout(), map[string]any{
				"request":          req,
				"estimated_tokens": tokens,
			}); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "Estimated cost on %s (up to max_tokens output): $%.4f\n", cfg.Model, llm.EstimateCost(cfg.Model, tokens, cfg.MaxTokens))
			return nil
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeout)
		defer cancel()

		runner, err := buildRunner(ctx, cfg, logger)
		if err != nil {
			return err
		}
		res := runner.Invoke(ctx, name, input)
		if err := printJSON(cmd.OutOrStdout(), res); err != nil {
			return err
		}
		if !res.OK() {
			return errFlowFailed
		}
		if verbose {
			u := res.Meta.Usage
			fmt.Fprintf(os.Stderr, "Tokens: %d in / %d out, cost $%.4f, %s\n",
				u.InputTokens, u.OutputTokens, llm.UsageCost(u), res.Meta.Duration)
		}
		return nil
	},
}

func init() {
	invokeCmd.Flags().StringVarP(&invokeInput, "input", "i", "", "JSON input file (- for stdin)")
	invokeCmd.Flags().StringVarP(&invokeData, "data", "d", "", "inline JSON input")
	invokeCmd.Flags().BoolVar(&invokeDryRun, "dry-run", false, "render the request without calling the model")
	rootCmd.AddCommand(invokeCmd)
}
