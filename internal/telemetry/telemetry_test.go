package telemetry

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/subhasish12345/SHOPSAGE/internal/flow"
	"github.com/subhasish12345/SHOPSAGE/internal/model"
	"github.com/subhasish12345/SHOPSAGE/internal/schema"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"":      zapcore.InfoLevel,
		"debug": zapcore.DebugLevel,
		"WARN":  zapcore.WarnLevel,
		"error": zapcore.ErrorLevel,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		l, err := NewLogger("debug", format)
		require.NoError(t, err)
		assert.True(t, l.Core().Enabled(zapcore.DebugLevel), format)
	}
	l, err := NewLogger("warn", "json")
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))

	_, err = NewLogger("nope", "json")
	assert.Error(t, err)
}

func TestMetricsObserve(t *testing.T) {
	m := NewMetrics()

	ok := flow.Success(schema.Value{"isFraudulent": false})
	ok.Meta = flow.Meta{Duration: 300 * time.Millisecond, Usage: model.Usage{InputTokens: 120, OutputTokens: 30}}
	m.Observe("fraud-refund-detection", ok)
	m.Observe("fraud-refund-detection", ok)

	reg := flow.NewRegistry()
	runner := flow.NewRunner(reg, model.InvokerFunc(nil))
	miss := runner.Invoke(t.Context(), "nope", map[string]any{})
	m.Observe("nope", miss)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.invocations.WithLabelValues("fraud-refund-detection", "success", "")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.invocations.WithLabelValues("nope", "failure", "not_found")))
	assert.Equal(t, 240.0, testutil.ToFloat64(m.tokens.WithLabelValues("fraud-refund-detection", "input")))
	assert.Equal(t, 60.0, testutil.ToFloat64(m.tokens.WithLabelValues("fraud-refund-detection", "output")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.duration))
}

func TestMetricsHandler(t *testing.T) {
	m := NewMetrics()
	m.Observe("campaign-optimization", flow.Success(schema.Value{"rationale": "r"}))

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	text := string(body)
	assert.True(t, strings.Contains(text, `shopsage_flow_invocations_total{flow="campaign-optimization",kind="",status="success"} 1`), text)
	assert.Contains(t, text, "go_goroutines")
}
