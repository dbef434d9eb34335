// Package audit keeps a journal of flow invocations made through the
// server and tool surfaces.
package audit

import (
	"encoding/json"
	"time"

	"github.com/subhasish12345/SHOPSAGE/internal/flow"
)

// Source identifies the surface that made a call.
type Source string

const (
	SourceAPI   Source = "api"
	SourceMCP   Source = "mcp"
	SourceCLI   Source = "cli"
	SourceBatch Source = "batch"
)

// Entry is a single journal record.
type Entry struct {
	ID           string          `json:"id"`
	Timestamp    time.Time       `json:"timestamp"`
	Flow         string          `json:"flow"`
	Source       Source          `json:"source"`
	Status       string          `json:"status"`
	Kind         flow.ErrorKind  `json:"kind,omitempty"`
	Stage        flow.Stage      `json:"stage,omitempty"`
	Message      string          `json:"message,omitempty"`
	Model        string          `json:"model,omitempty"`
	InputTokens  int             `json:"input_tokens,omitempty"`
	OutputTokens int             `json:"output_tokens,omitempty"`
	DurationMS   int64           `json:"duration_ms"`
	Input        json.RawMessage `json:"input,omitempty"`
	Output       json.RawMessage `json:"output,omitempty"`
}

// NewEntry describes one invocation of name on input.
func NewEntry(source Source, name string, input any, res flow.Result) (Entry, error) {
	e := Entry{
		Flow:         name,
		Source:       source,
		Status:       res.Status(),
		Model:        res.Meta.Usage.Model,
		InputTokens:  res.Meta.Usage.InputTokens,
		OutputTokens: res.Meta.Usage.OutputTokens,
		DurationMS:   res.Meta.Duration.Milliseconds(),
	}
	if d := res.Err(); d != nil {
		e.Kind = d.Kind
		e.Stage = d.Stage
		e.Message = d.Message
	}

	var err error
	if input != nil {
		if e.Input, err = json.Marshal(input); err != nil {
			return Entry{}, err
		}
	}
	if out, ok := res.Output(); ok {
		if e.Output, err = json.Marshal(out); err != nil {
			return Entry{}, err
		}
	}
	return e, nil
}
