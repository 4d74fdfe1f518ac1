package telemetry

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openfroyo/muffler/pkg/engine"
)

func newTestMetrics(t *testing.T) *Metrics {
	t.Helper()
	m, err := NewMetrics(DefaultConfig().Metrics)
	require.NoError(t, err)
	require.True(t, m.Enabled())
	return m
}

func TestMetrics_ObserverSuccess(t *testing.T) {
	m := newTestMetrics(t)
	obs := m.Observer("bench")

	obs.ExpansionStarted(3)
	for i := 1; i <= 3; i++ {
		obs.CombinationRendered(i, time.Millisecond)
	}
	obs.ExpansionFinished(3, 5*time.Millisecond, nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.expansionsStarted.WithLabelValues("bench")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.combinationsRendered.WithLabelValues("bench")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.sweepSize.WithLabelValues("bench")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.expansionsCompleted.WithLabelValues("bench", "success")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.activeExpansions))
}

func TestMetrics_ObserverFailure(t *testing.T) {
	m := newTestMetrics(t)
	obs := m.Observer("bench")

	// Malformed templates fail without starting.
	obs.ExpansionFinished(0, time.Millisecond, engine.NewMalformedTemplateError("unclosed '{'", 3))

	obs.ExpansionStarted(2)
	obs.ExpansionFinished(0, time.Millisecond, errors.New("boom"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.renderErrors.WithLabelValues("bench", "MALFORMED_TEMPLATE")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.renderErrors.WithLabelValues("bench", "UNKNOWN")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.expansionsCompleted.WithLabelValues("bench", "failed")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.activeExpansions))
}

func TestMetrics_WithExpand(t *testing.T) {
	m := newTestMetrics(t)

	options := []optionStub{{"a", []any{1, 2}}}
	_, err := engine.Collect(engine.Expand(t.Context(), toOptions(options), "x {a}",
		engine.WithObserver(m.Observer("stub"))))
	require.NoError(t, err)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.combinationsRendered.WithLabelValues("stub")))
}

func TestMetrics_WriteTextfile(t *testing.T) {
	m := newTestMetrics(t)
	m.RecordExpansionStarted("bench", 4)

	path := filepath.Join(t.TempDir(), "muffler.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `muffler_sweep_size{sweep="bench"} 4`)
	assert.Contains(t, string(data), "muffler_expansions_started_total")
}

func TestMetrics_Handler(t *testing.T) {
	m := newTestMetrics(t)
	m.RecordExpansionStarted("bench", 1)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "muffler_active_expansions 1"))
}

func TestMetrics_Disabled(t *testing.T) {
	cfg := DefaultConfig().Metrics
	cfg.Enabled = false

	m, err := NewMetrics(cfg)
	require.NoError(t, err)
	assert.False(t, m.Enabled())
	assert.Nil(t, m.Registry())

	obs := m.Observer("bench")
	obs.ExpansionStarted(1)
	obs.CombinationRendered(1, time.Millisecond)
	obs.ExpansionFinished(1, time.Millisecond, nil)

	path := filepath.Join(t.TempDir(), "none.prom")
	require.NoError(t, m.WriteTextfile(path))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
