package flow

import (
	"encoding/json"
	"time"

	"github.com/subhasish12345/SHOPSAGE/internal/model"
	"github.com/subhasish12345/SHOPSAGE/internal/schema"
)

// Meta carries facts about an invocation that are not part of its output.
type Meta struct {
	Duration time.Duration
	Usage    model.Usage
}

// Result is the outcome of one invocation: either a validated output or an
// ErrorDetail, never both. Use Success and Failure to build one.
type Result struct {
	output schema.Value
	err    *ErrorDetail

	Meta Meta
}

// Success wraps a validated output.
func Success(output schema.Value) Result {
	if output == nil {
		output = schema.Value{}
	}
	return Result{output: output}
}

// Failure wraps an error detail.
func Failure(detail *ErrorDetail) Result {
	if detail == nil {
		detail = &ErrorDetail{Kind: KindModelInvocation, Message: "unknown failure"}
	}
	return Result{err: detail}
}

// OK reports whether the result is a Success.
func (r Result) OK() bool {
	return r.err == nil
}

// Output returns the validated output of a Success.
func (r Result) Output() (schema.Value, bool) {
	return r.output, r.err == nil
}

// Err returns the detail of a Failure, or nil for a Success.
func (r Result) Err() *ErrorDetail {
	return r.err
}

// Status is "success" or "failure".
func (r Result) Status() string {
	if r.err == nil {
		return "success"
	}
	return "failure"
}

type metaJSON struct {
	DurationMS   int64  `json:"duration_ms"`
	Model        string `json:"model,omitempty"`
	InputTokens  int    `json:"input_tokens,omitempty"`
	OutputTokens int    `json:"output_tokens,omitempty"`
	FinishReason string `json:"finish_reason,omitempty"`
}

type resultJSON struct {
	Status string       `json:"status"`
	Output schema.Value `json:"output,omitempty"`
	Error  *ErrorDetail `json:"error,omitempty"`
	Meta   metaJSON     `json:"meta"`
}

// MarshalJSON encodes the result in the tagged form used by the API, batch
// output and the journal.
func (r Result) MarshalJSON() ([]byte, error) {
	out := resultJSON{
		Status: r.Status(),
		Error:  r.err,
		Meta: metaJSON{
			DurationMS:   r.Meta.Duration.Milliseconds(),
			Model:        r.Meta.Usage.Model,
			InputTokens:  r.Meta.Usage.InputTokens,
			OutputTokens: r.Meta.Usage.OutputTokens,
			FinishReason: r.Meta.Usage.FinishReason,
		},
	}
	if r.err == nil {
		out.Output = r.output
	}
	return json.Marshal(out)
}
