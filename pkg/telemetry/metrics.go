package telemetry

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/openfroyo/muffler/pkg/engine"
)

// Metrics provides Prometheus metrics for sweep expansions.
type Metrics struct {
	config MetricsConfig

	expansionsStarted   *prometheus.CounterVec
	expansionsCompleted *prometheus.CounterVec
	expansionDuration   *prometheus.HistogramVec

	combinationsRendered *prometheus.CounterVec
	renderDuration       *prometheus.HistogramVec
	renderErrors         *prometheus.CounterVec

	sweepSize        *prometheus.GaugeVec
	activeExpansions prometheus.Gauge

	registry *prometheus.Registry
}

// NewMetrics creates a new metrics collector with the given configuration.
// A disabled configuration yields a collector whose methods do nothing.
func NewMetrics(cfg MetricsConfig) (*Metrics, error) {
	if !cfg.Enabled {
		return &Metrics{config: cfg}, nil
	}

	namespace := cfg.Namespace
	buckets := cfg.DefaultHistogramBuckets
	if len(buckets) == 0 {
		buckets = prometheus.DefBuckets
	}

	registry := prometheus.NewRegistry()

	m := &Metrics{
		config:   cfg,
		registry: registry,

		expansionsStarted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "expansions_started_total",
				Help:      "Total number of sweep expansions started",
			},
			[]string{"sweep"},
		),
		expansionsCompleted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "expansions_completed_total",
				Help:      "Total number of sweep expansions finished, by status",
			},
			[]string{"sweep", "status"},
		),
		expansionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "expansion_duration_seconds",
				Help:      "Duration of sweep expansions in seconds",
				Buckets:   buckets,
			},
			[]string{"sweep", "status"},
		),

		combinationsRendered: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "combinations_rendered_total",
				Help:      "Total number of combinations rendered into commands",
			},
			[]string{"sweep"},
		),
		renderDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "render_duration_seconds",
				Help:      "Duration of rendering one combination in seconds",
				Buckets:   buckets,
			},
			[]string{"sweep"},
		),
		renderErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "render_errors_total",
				Help:      "Total number of failed expansions by error code",
			},
			[]string{"sweep", "code"},
		),

		sweepSize: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "sweep_size",
				Help:      "Number of combinations in the most recent expansion of a sweep",
			},
			[]string{"sweep"},
		),
		activeExpansions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "active_expansions",
				Help:      "Current number of expansions in progress",
			},
		),
	}

	registry.MustRegister(
		m.expansionsStarted,
		m.expansionsCompleted,
		m.expansionDuration,
		m.combinationsRendered,
		m.renderDuration,
		m.renderErrors,
		m.sweepSize,
		m.activeExpansions,
	)

	return m, nil
}

// Enabled reports whether the collector records anything.
func (m *Metrics) Enabled() bool {
	return m.registry != nil
}

// Registry returns the underlying registry, or nil when disabled.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordExpansionStarted records the start of an expansion over total
// combinations.
func (m *Metrics) RecordExpansionStarted(sweep string, total int) {
	if m.registry == nil {
		return
	}
	m.expansionsStarted.WithLabelValues(sweep).Inc()
	m.sweepSize.WithLabelValues(sweep).Set(float64(total))
	m.activeExpansions.Inc()
}

// RecordCombinationRendered records one rendered combination.
func (m *Metrics) RecordCombinationRendered(sweep string, duration time.Duration) {
	if m.registry == nil {
		return
	}
	m.combinationsRendered.WithLabelValues(sweep).Inc()
	m.renderDuration.WithLabelValues(sweep).Observe(duration.Seconds())
}

// RecordExpansionFinished records the end of an expansion. A nil err counts
// as success; otherwise the error code is recorded.
func (m *Metrics) RecordExpansionFinished(sweep string, duration time.Duration, err error) {
	if m.registry == nil {
		return
	}

	status := "success"
	if err != nil {
		status = "failed"
		code := string(engine.CodeOf(err))
		if code == "" {
			code = "UNKNOWN"
		}
		m.renderErrors.WithLabelValues(sweep, code).Inc()
	}

	m.expansionsCompleted.WithLabelValues(sweep, status).Inc()
	m.expansionDuration.WithLabelValues(sweep, status).Observe(duration.Seconds())
	m.activeExpansions.Dec()
}

// Observer returns an engine.Observer recording into m under the sweep label.
func (m *Metrics) Observer(sweep string) engine.Observer {
	return &sweepObserver{metrics: m, sweep: sweep}
}

// sweepObserver adapts Metrics to engine.Observer.
type sweepObserver struct {
	metrics *Metrics
	sweep   string
	mu      sync.Mutex
	started bool
}

func (o *sweepObserver) ExpansionStarted(total int) {
	o.mu.Lock()
	o.started = true
	o.mu.Unlock()
	o.metrics.RecordExpansionStarted(o.sweep, total)
}

func (o *sweepObserver) CombinationRendered(_ int, elapsed time.Duration) {
	o.metrics.RecordCombinationRendered(o.sweep, elapsed)
}

func (o *sweepObserver) ExpansionFinished(_ int, elapsed time.Duration, err error) {
	o.mu.Lock()
	started := o.started
	o.started = false
	o.mu.Unlock()

	// A malformed template fails before the expansion starts.
	if !started {
		o.metrics.RecordExpansionStarted(o.sweep, 0)
	}
	o.metrics.RecordExpansionFinished(o.sweep, elapsed, err)
}

// WriteTextfile writes the registry to path in the node exporter textfile
// format. It does nothing when metrics are disabled or path is empty.
func (m *Metrics) WriteTextfile(path string) error {
	if m.registry == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}

// Handler returns an HTTP handler for the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m.registry == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// Timer provides a convenient way to time operations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Duration returns the elapsed time since the timer was created.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
