package telemetry

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/openfroyo/muffler/pkg/engine"
)

// Telemetry bundles the logger, tracer and metrics of one process.
type Telemetry struct {
	Logger  *Logger
	Tracer  *Tracer
	Metrics *Metrics
	Config  *Config
}

// telemetryContextKey is the context key for telemetry instances.
type telemetryContextKey struct{}

// NewTelemetry creates a new telemetry instance from configuration.
func NewTelemetry(cfg *Config) (*Telemetry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	SetTimeFieldFormat(cfg.Logging.TimeFormat)

	logger, err := NewLogger(cfg.Logging)
	if err != nil {
		return nil, err
	}

	tracer, err := NewTracer(cfg.Tracing, cfg.ServiceName, cfg.ServiceVersion, cfg.Environment)
	if err != nil {
		return nil, err
	}

	metrics, err := NewMetrics(cfg.Metrics)
	if err != nil {
		return nil, err
	}

	return &Telemetry{
		Logger:  logger,
		Tracer:  tracer,
		Metrics: metrics,
		Config:  cfg,
	}, nil
}

// WithContext adds the telemetry instance and its logger to the context.
func (t *Telemetry) WithContext(ctx context.Context) context.Context {
	ctx = context.WithValue(ctx, telemetryContextKey{}, t)
	ctx = t.Logger.WithContext(ctx)
	return ctx
}

// FromTelemetryContext retrieves the telemetry instance from the context.
// If no telemetry is found, it returns nil.
func FromTelemetryContext(ctx context.Context) *Telemetry {
	if t, ok := ctx.Value(telemetryContextKey{}).(*Telemetry); ok {
		return t
	}
	return nil
}

// Shutdown flushes traces, writes the metrics textfile if configured and
// closes the log file.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	return errors.Join(
		t.Tracer.Shutdown(ctx),
		t.Metrics.WriteTextfile(t.Config.Metrics.Textfile),
		t.Logger.Close(),
	)
}

// RunContext carries the span and logger of one run over a sweep.
type RunContext struct {
	Ctx    context.Context
	Span   trace.Span
	Logger *Logger
	Timer  *Timer
	RunID  string
}

// StartRun begins an instrumented run over a sweep. Without telemetry in ctx
// the run gets a logger from the context and no span.
func StartRun(ctx context.Context, runID, sweep, source string) *RunContext {
	tel := FromTelemetryContext(ctx)
	if tel == nil {
		return &RunContext{
			Ctx:    ctx,
			Logger: FromContext(ctx).WithRunID(runID).WithSweep(sweep, source),
			Timer:  NewTimer(),
			RunID:  runID,
		}
	}

	spanCtx, span := tel.Tracer.StartRunSpan(ctx, runID, sweep)
	span.SetAttributes(AttrSweepSource.String(source))

	logger := tel.Logger.WithRunID(runID).WithSweep(sweep, source)
	if traceID := TraceID(spanCtx); traceID != "" {
		logger = logger.WithFields(map[string]any{
			"trace_id": traceID,
			"span_id":  span.SpanContext().SpanID().String(),
		})
	}
	spanCtx = logger.WithContext(spanCtx)

	return &RunContext{
		Ctx:    spanCtx,
		Span:   span,
		Logger: logger,
		Timer:  NewTimer(),
		RunID:  runID,
	}
}

// End finishes the run, recording success or failure on its span.
func (rc *RunContext) End(err error) {
	if rc.Span == nil {
		return
	}
	if err != nil {
		if code := engine.CodeOf(err); code != "" {
			rc.Span.SetAttributes(AttrErrorCode.String(string(code)))
		}
		RecordError(rc.Span, err)
	} else {
		RecordSuccess(rc.Span)
	}
	rc.Span.SetAttributes(attribute.Int64("run.duration_ms", rc.Timer.Duration().Milliseconds()))
	rc.Span.End()
}
