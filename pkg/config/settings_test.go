package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openfroyo/muffler/pkg/telemetry"
)

func TestLoadSettings_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadSettings("")
	require.NoError(t, err)
	assert.Equal(t, telemetry.DefaultConfig(), cfg)
}

func TestLoadSettings_DefaultFileInWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultSettingsFile), []byte("environment: ci\n"), 0o644))

	cfg, err := LoadSettings("")
	require.NoError(t, err)
	assert.Equal(t, "ci", cfg.Environment)
}

func TestLoadSettings_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
environment: ci
logging:
  level: warn
  format: json
tracing:
  enabled: true
  exporter: otlp
  endpoint: collector:4317
  export_timeout: 5s
  headers:
    x-team: perf
metrics:
  textfile: /tmp/muffler.prom
  buckets: [0.1, 1]
resource_attributes:
  host: ci-1
`), 0o644))

	t.Setenv("MUFFLER_LOGGING__LEVEL", "debug")
	t.Setenv("MUFFLER_TRACING__SAMPLING_RATE", "0.25")

	cfg, err := LoadSettings(path)
	require.NoError(t, err)

	assert.Equal(t, "muffler", cfg.ServiceName)
	assert.Equal(t, "ci", cfg.Environment)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "stderr", cfg.Logging.Output)
	assert.True(t, cfg.Tracing.Enabled)
	assert.Equal(t, "otlp", cfg.Tracing.Exporter)
	assert.Equal(t, "collector:4317", cfg.Tracing.Endpoint)
	assert.Equal(t, 5*time.Second, cfg.Tracing.ExportTimeout)
	assert.Equal(t, 0.25, cfg.Tracing.SamplingRate)
	assert.Equal(t, map[string]string{"x-team": "perf"}, cfg.Tracing.Headers)
	assert.Equal(t, "/tmp/muffler.prom", cfg.Metrics.Textfile)
	assert.Equal(t, []float64{0.1, 1}, cfg.Metrics.DefaultHistogramBuckets)
	assert.Equal(t, map[string]string{"host": "ci-1"}, cfg.ResourceAttributes)
}

func TestLoadSettings_Errors(t *testing.T) {
	t.Run("missing explicit file", func(t *testing.T) {
		_, err := LoadSettings(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})

	t.Run("malformed file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("logging: [\n"), 0o644))
		_, err := LoadSettings(path)
		assert.Error(t, err)
	})

	t.Run("invalid level from env", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("MUFFLER_LOGGING__LEVEL", "loud")
		_, err := LoadSettings("")
		assert.Error(t, err)
	})

	t.Run("otlp without endpoint", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("MUFFLER_TRACING__ENABLED", "true")
		t.Setenv("MUFFLER_TRACING__EXPORTER", "otlp")
		_, err := LoadSettings("")
		assert.Error(t, err)
	})
}
