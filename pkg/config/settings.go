package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/openfroyo/muffler/pkg/telemetry"
)

// EnvPrefix prefixes environment variables that override settings. Nested
// keys are separated by a double underscore, e.g. MUFFLER_TRACING__ENABLED.
const EnvPrefix = "MUFFLER_"

// DefaultSettingsFile is read from the working directory when no settings
// path is given.
const DefaultSettingsFile = ".muffler.yaml"

// LoadSettings loads application settings. Later sources override earlier
// ones: built-in defaults, the settings file, then MUFFLER_* variables. A
// missing default settings file is not an error; an explicit path must exist.
func LoadSettings(path string) (*telemetry.Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaultSettings(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	settingsPath := path
	if settingsPath == "" {
		settingsPath = DefaultSettingsFile
	}
	if _, err := os.Stat(settingsPath); err == nil {
		if err := k.Load(file.Provider(settingsPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load settings from %s: %w", settingsPath, err)
		}
	} else if path != "" {
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}

	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	cfg := telemetry.DefaultConfig()
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", cfg, unmarshalConf); err != nil {
		return nil, fmt.Errorf("failed to unmarshal settings: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	return cfg, nil
}

// defaultSettings flattens telemetry.DefaultConfig into koanf keys.
func defaultSettings() map[string]any {
	d := telemetry.DefaultConfig()
	return map[string]any{
		"service_name":                  d.ServiceName,
		"service_version":               d.ServiceVersion,
		"environment":                   d.Environment,
		"logging.level":                 d.Logging.Level,
		"logging.format":                d.Logging.Format,
		"logging.output":                d.Logging.Output,
		"logging.enable_caller":         d.Logging.EnableCaller,
		"logging.time_format":           d.Logging.TimeFormat,
		"tracing.enabled":               d.Tracing.Enabled,
		"tracing.exporter":              d.Tracing.Exporter,
		"tracing.endpoint":              d.Tracing.Endpoint,
		"tracing.sampling_rate":         d.Tracing.SamplingRate,
		"tracing.max_export_batch_size": d.Tracing.MaxExportBatchSize,
		"tracing.export_timeout":        d.Tracing.ExportTimeout.String(),
		"tracing.insecure":              d.Tracing.Insecure,
		"metrics.enabled":               d.Metrics.Enabled,
		"metrics.namespace":             d.Metrics.Namespace,
		"metrics.textfile":              d.Metrics.Textfile,
	}
}
