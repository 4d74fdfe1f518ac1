package telemetry

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracer_Disabled(t *testing.T) {
	tracer, err := NewTracer(TracingConfig{Enabled: false}, "muffler", "test", "test")
	require.NoError(t, err)

	ctx, span := tracer.StartRunSpan(context.Background(), "run-1", "bench")
	assert.False(t, span.IsRecording())
	assert.Empty(t, TraceID(ctx))
	span.End()

	assert.NoError(t, tracer.Shutdown(context.Background()))
}

func TestTracer_StdoutExporter(t *testing.T) {
	cfg := DefaultConfig().Tracing
	cfg.Enabled = true
	cfg.Exporter = "stdout"

	var buf bytes.Buffer
	tracer, err := newTracer(cfg, "muffler", "test", "test", &buf)
	require.NoError(t, err)

	ctx, span := tracer.StartRunSpan(context.Background(), "run-1", "bench")
	assert.NotEmpty(t, TraceID(ctx))
	RecordError(span, errors.New("boom"))
	span.End()

	require.NoError(t, tracer.Shutdown(context.Background()))
	out := buf.String()
	assert.Contains(t, out, "sweep.run")
	assert.Contains(t, out, "bench")
	assert.Contains(t, out, "boom")
}

func TestTracer_UnsupportedExporter(t *testing.T) {
	cfg := DefaultConfig().Tracing
	cfg.Enabled = true
	cfg.Exporter = "zipkin"

	_, err := NewTracer(cfg, "muffler", "test", "test")
	assert.ErrorContains(t, err, "unsupported trace exporter")
}
