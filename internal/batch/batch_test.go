package batch

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/subhasish12345/SHOPSAGE/internal/flow"
	"github.com/subhasish12345/SHOPSAGE/internal/flows"
	"github.com/subhasish12345/SHOPSAGE/internal/model"
)

type outcomeLine struct {
	Line   int `json:"line"`
	Result struct {
		Status string         `json:"status"`
		Output map[string]any `json:"output"`
		Error  *struct {
			Kind string `json:"kind"`
		} `json:"error"`
	} `json:"result"`
}

func decodeOutcomes(t *testing.T, out *bytes.Buffer) []outcomeLine {
	t.Helper()
	var lines []outcomeLine
	dec := json.NewDecoder(out)
	for dec.More() {
		var l outcomeLine
		require.NoError(t, dec.Decode(&l))
		lines = append(lines, l)
	}
	return lines
}

// echoUser recommends the user's own ID back, sleeping longer for earlier
// lines so completion order differs from input order.
func echoUser(inFlight, peak *atomic.Int32) model.Invoker {
	return model.InvokerFunc(func(ctx context.Context, req model.Request) (*model.Response, error) {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		start := strings.Index(req.Prompt, "The user ID is: ") + len("The user ID is: ")
		user := req.Prompt[start : start+2]
		delay := time.Duration('9'-user[1]) * 2 * time.Millisecond
		time.Sleep(delay)
		return &model.Response{Payload: map[string]any{"recommendedProductIds": []any{user}}}, nil
	})
}

func newRunner(t *testing.T, inv model.Invoker) *flow.Runner {
	t.Helper()
	reg, err := flows.NewRegistry()
	require.NoError(t, err)
	return flow.NewRunner(reg, inv)
}

func TestRunKeepsInputOrder(t *testing.T) {
	defer goleak.VerifyNone(t)

	var inFlight, peak atomic.Int32
	runner := newRunner(t, echoUser(&inFlight, &peak))

	var in strings.Builder
	for i := 1; i <= 8; i++ {
		in.WriteString(`{"userId": "u` + string(rune('0'+i)) + `"}` + "\n")
	}

	var out bytes.Buffer
	sum, err := Run(context.Background(), runner, flows.ProductRecommendations, strings.NewReader(in.String()), &out, Options{Concurrency: 3})
	require.NoError(t, err)
	assert.Equal(t, Summary{Total: 8, Succeeded: 8}, sum)
	assert.LessOrEqual(t, peak.Load(), int32(3))

	lines := decodeOutcomes(t, &out)
	require.Len(t, lines, 8)
	for i, l := range lines {
		assert.Equal(t, i+1, l.Line)
		assert.Equal(t, "success", l.Result.Status)
		assert.Equal(t, []any{"u" + string(rune('1'+i))}, l.Result.Output["recommendedProductIds"])
	}
}

func TestRunReportsBadLines(t *testing.T) {
	defer goleak.VerifyNone(t)

	var inFlight, peak atomic.Int32
	runner := newRunner(t, echoUser(&inFlight, &peak))
	in := `{"userId": "u1"}

not json
{"browsingHistory": ["p1"]}
`
	var (
		out  bytes.Buffer
		mu   sync.Mutex
		seen []int
	)
	sum, err := Run(context.Background(), runner, flows.ProductRecommendations, strings.NewReader(in), &out, Options{
		OnResult: func(line int, _ any, _ flow.Result) {
			mu.Lock()
			seen = append(seen, line)
			mu.Unlock()
		},
	})
	require.NoError(t, err)
	assert.Equal(t, Summary{Total: 3, Succeeded: 1, Failed: 2}, sum)
	assert.ElementsMatch(t, []int{1, 3, 4}, seen)

	lines := decodeOutcomes(t, &out)
	require.Len(t, lines, 3)
	assert.Equal(t, []int{1, 3, 4}, []int{lines[0].Line, lines[1].Line, lines[2].Line})
	require.NotNil(t, lines[1].Result.Error)
	assert.Equal(t, "input_validation", lines[1].Result.Error.Kind)
	require.NotNil(t, lines[2].Result.Error)
	assert.Equal(t, "input_validation", lines[2].Result.Error.Kind)
	assert.Equal(t, int32(1), peak.Load())
}

func TestRunCanceled(t *testing.T) {
	defer goleak.VerifyNone(t)

	block := model.InvokerFunc(func(ctx context.Context, req model.Request) (*model.Response, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	runner := newRunner(t, block)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	in := strings.Repeat(`{"userId": "u1"}`+"\n", 5)
	var out bytes.Buffer
	sum, err := Run(ctx, runner, flows.ProductRecommendations, strings.NewReader(in), &out, Options{Concurrency: 2})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, Summary{Total: 5, Failed: 5}, sum)
	for _, l := range decodeOutcomes(t, &out) {
		require.NotNil(t, l.Result.Error)
		assert.Equal(t, "model_invocation", l.Result.Error.Kind)
	}
}

func TestRunEmptyInput(t *testing.T) {
	runner := newRunner(t, model.InvokerFunc(nil))
	var out bytes.Buffer
	sum, err := Run(context.Background(), runner, flows.ProductRecommendations, strings.NewReader("\n\n"), &out, Options{})
	require.NoError(t, err)
	assert.Equal(t, Summary{}, sum)
	assert.Zero(t, out.Len())
}
