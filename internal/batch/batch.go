// Package batch runs one flow over a stream of JSON Lines inputs.
package batch

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/subhasish12345/SHOPSAGE/internal/flow"
	"github.com/subhasish12345/SHOPSAGE/internal/progress"
)

// DefaultConcurrency is used when Options.Concurrency is not positive.
const DefaultConcurrency = 4

// maxLine bounds a single input line.
const maxLine = 4 << 20

// Options tune a batch run.
type Options struct {
	Concurrency int
	Reporter    progress.Reporter
	// OnResult, if set, is called once per line from the worker goroutine.
	OnResult func(line int, input any, res flow.Result)
}

// Summary counts batch outcomes.
type Summary struct {
	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// Outcome is one line of batch output.
type Outcome struct {
	Line   int         `json:"line"`
	Result flow.Result `json:"result"`
}

type item struct {
	line  int
	input any
	err   error
}

// Run invokes the named flow once per non-blank line of in and writes one
// Outcome per line to out, in input order. Lines that are not valid JSON
// fail with input_validation without reaching the model.
func Run(ctx context.Context, runner *flow.Runner, name string, in io.Reader, out io.Writer, opts Options) (Summary, error) {
	items, err := readItems(in)
	if err != nil {
		return Summary{}, err
	}

	limit := opts.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	reporter := opts.Reporter
	if reporter == nil {
		reporter = progress.Nop{}
	}

	results := make([]flow.Result, len(items))
	reporter.Start(len(items))

	done := make(chan string, len(items))
	go func() {
		var g errgroup.Group
		g.SetLimit(limit)
		for i, it := range items {
			g.Go(func() error {
				if it.err != nil {
					results[i] = flow.Failure(&flow.ErrorDetail{
						Kind:    flow.KindInputValidation,
						Flow:    name,
						Stage:   flow.StageValidating,
						Message: it.err.Error(),
					})
				} else {
					results[i] = runner.Invoke(ctx, name, it.input)
				}
				if opts.OnResult != nil {
					opts.OnResult(it.line, it.input, results[i])
				}
				done <- fmt.Sprintf("line %d %s", it.line, results[i].Status())
				return nil
			})
		}
		_ = g.Wait()
		close(done)
	}()

	n := 0
	for msg := range done {
		n++
		reporter.Update(n, msg)
	}
	reporter.Finish()

	var sum Summary
	enc := json.NewEncoder(out)
	for i, res := range results {
		sum.Total++
		if res.OK() {
			sum.Succeeded++
		} else {
			sum.Failed++
		}
		if err := enc.Encode(Outcome{Line: items[i].line, Result: res}); err != nil {
			return sum, fmt.Errorf("writing result for line %d: %w", items[i].line, err)
		}
	}
	return sum, ctx.Err()
}

func readItems(in io.Reader) ([]item, error) {
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)

	var items []item
	line := 0
	for sc.Scan() {
		line++
		text := bytes.TrimSpace(sc.Bytes())
		if len(text) == 0 {
			continue
		}
		it := item{line: line}
		dec := json.NewDecoder(bytes.NewReader(text))
		dec.UseNumber()
		if err := dec.Decode(&it.input); err != nil {
			it.err = fmt.Errorf("line %d: invalid JSON: %w", line, err)
			it.input = nil
		}
		items = append(items, it)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	return items, nil
}
