package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_ObserveCall(t *testing.T) {
	m := New()

	m.ObserveCall(TargetModel, "symptoms", OutcomeSuccess, 2*time.Second)
	m.ObserveCall(TargetModel, "symptoms", OutcomeTimeout, 30*time.Second)
	m.ObserveCall(TargetModel, "symptoms", OutcomeTimeout, 30*time.Second)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.externalCalls.WithLabelValues(TargetModel, "symptoms", OutcomeSuccess)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.externalCalls.WithLabelValues(TargetModel, "symptoms", OutcomeTimeout)))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveCall(TargetOCR, "report", OutcomeFailure, time.Second)
		m.ObserveAnalysis("symptoms", "classifier", true)
		m.ObserveStoreDegraded("minimal")
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ObserveAnalysis("analyze-symptoms", "model", true)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "smarthealth_analyses_total"))
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, OutcomeSuccess, Outcome(nil, false))
	assert.Equal(t, OutcomeTimeout, Outcome(errors.New("x"), true))
	assert.Equal(t, OutcomeFailure, Outcome(errors.New("x"), false))
}
