package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/subhasish12345/SHOPSAGE/internal/config"
	"github.com/subhasish12345/SHOPSAGE/internal/flow"
	"github.com/subhasish12345/SHOPSAGE/internal/flows"
	"github.com/subhasish12345/SHOPSAGE/internal/llm"
	"github.com/subhasish12345/SHOPSAGE/internal/telemetry"
)

// errFlowFailed is returned after a Failure result has been printed.
var errFlowFailed = errors.New("flow failed")

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `shopsage init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

// newLogger builds the process logger; -v forces debug.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level := cfg.Log.Level
	if verbose {
		level = "debug"
	}
	return telemetry.NewLogger(level, cfg.Log.Format)
}

// buildRegistry registers the built-in flows plus any flow files matched by
// the config, resolved relative to the config file.
func buildRegistry(cfg *config.Config) (*flow.Registry, error) {
	defs, err := flows.LoadFiles(filepath.Dir(cfgFile), cfg.FlowFiles)
	if err != nil {
		return nil, fmt.Errorf("loading flow files: %w", err)
	}
	return flows.NewRegistry(defs...)
}

// createInvokerFromConfig creates the rate limited model invoker.
func createInvokerFromConfig(ctx context.Context, cfg *config.Config) (*llm.Invoker, error) {
	provider, err := llm.NewProvider(ctx, string(cfg.Provider), cfg.Model)
	if err != nil {
		return nil, fmt.Errorf("creating LLM provider: %w", err)
	}
	provider = llm.NewRateLimitedProvider(provider, cfg.RequestsPerMinute)
	return llm.NewInvoker(provider, llm.InvokerConfig{
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	}), nil
}

// buildRunner wires config, registry and model into a runner.
func buildRunner(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts ...flow.Option) (*flow.Runner, error) {
	reg, err := buildRegistry(cfg)
	if err != nil {
		return nil, err
	}
	inv, err := createInvokerFromConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	opts = append([]flow.Option{flow.WithLogger(logger)}, opts...)
	return flow.NewRunner(reg, inv, opts...), nil
}

// readInput returns the flow input from --data, or from the --input file
// ("-" for stdin).
func readInput(path, data string, stdin io.Reader) (any, error) {
	var raw []byte
	switch {
	case data != "" && path != "":
		return nil, errors.New("use either --data or --input, not both")
	case data != "":
		raw = []byte(data)
	case path == "-":
		b, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		raw = b
	case path != "":
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading input: %w", err)
		}
		raw = b
	default:
		return nil, errors.New("no input: pass --data '<json>' or --input <file>")
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("input is not valid JSON: %w", err)
	}
	return v, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
