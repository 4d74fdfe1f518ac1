// Package telemetry provides observability for muffler runs.
//
// The package combines structured logging (zerolog), distributed tracing
// (OpenTelemetry) and metrics (Prometheus). All three are configured from a
// single Config, usually loaded by config.LoadSettings.
//
// # Usage
//
// Initialize telemetry at startup and shut it down before exiting:
//
//	cfg := telemetry.DefaultConfig()
//	cfg.ServiceVersion = version
//
//	tel, err := telemetry.NewTelemetry(cfg)
//	if err != nil {
//	    return err
//	}
//	defer tel.Shutdown(context.Background())
//
//	ctx = tel.WithContext(ctx)
//
// # Runs
//
// A run is one CLI invocation over a sweep file. StartRun opens a root span
// and a logger carrying the run ID and sweep name:
//
//	rc := telemetry.StartRun(ctx, uuid.NewString(), sweep.Name, sweep.Source)
//	defer rc.End(err)
//
//	seq := engine.Expand(rc.Ctx, options, sweep.Command,
//	    engine.WithLogger(rc.Logger.Zerolog()),
//	    engine.WithObserver(tel.Metrics.Observer(sweep.Name)))
//
// The engine starts its own "sweep.expand" span from the global tracer
// provider, which NewTracer installs when tracing is enabled, so expansion
// spans nest under the run span.
//
// # Metrics
//
// Metrics live in a private registry:
//
//   - muffler_expansions_started_total{sweep}
//   - muffler_expansions_completed_total{sweep,status}
//   - muffler_expansion_duration_seconds{sweep,status}
//   - muffler_combinations_rendered_total{sweep}
//   - muffler_render_duration_seconds{sweep}
//   - muffler_render_errors_total{sweep,code}
//   - muffler_sweep_size{sweep}
//   - muffler_active_expansions
//
// A CLI run is short-lived, so the registry is written to a node exporter
// textfile (MetricsConfig.Textfile) on shutdown. Handler serves the same
// registry over HTTP while a sweep is watched.
//
// # Exporters
//
//   - "stdout": pretty-printed spans on stderr
//   - "otlp": OTLP/gRPC to TracingConfig.Endpoint
//   - "none": spans are created but not exported
package telemetry
