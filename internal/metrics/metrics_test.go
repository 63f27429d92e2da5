package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveExtraction("pdf", "pdf-text", time.Second, nil)
		m.ObserveLLM("x", time.Second, errors.New("boom"))
		m.ObserveRelay(200)
		m.ObserveHTTP("/healthz", 200)
		m.SetSessions(3)
	})
	assert.Nil(t, m.Registry())
}

func TestMetrics_Counters(t *testing.T) {
	m := New()
	m.ObserveExtraction("pdf", "pdf-ocr", 2*time.Second, nil)
	m.ObserveExtraction("pdf", "pdf-ocr", time.Second, errors.New("boom"))
	m.ObserveRelay(405)
	m.SetSessions(2)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.extractions.WithLabelValues("pdf", "pdf-ocr", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.extractions.WithLabelValues("pdf", "pdf-ocr", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.relayResponses.WithLabelValues("405")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.sessions))
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ObserveLLM("deepseek/deepseek-chat", 300*time.Millisecond, nil)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `docexplain_llm_requests_total{model="deepseek/deepseek-chat",outcome="ok"} 1`)
}
