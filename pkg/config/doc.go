// Package config loads sweep definitions and application settings.
//
// # Sweep files
//
// A sweep names a command template and the options swept through it. Sweeps
// are written in CUE (.cue, or a directory holding a CUE package), JSON or
// YAML:
//
//	name:    "bench"
//	command: "run {Option} {Flag} --level {level}"
//	kinds: [{
//		name:    "Flag"
//		parents: ["Option"]
//		script: """
//			def format(name, value):
//			    return "--" + name
//			"""
//	}]
//	options: [
//		{name: "verbose", kind: "Quiet", values: [true, false]},
//		{name: "level", kind: "Placeholder", values: ["1", "2"]},
//		{name: "fast", kind: "Flag", values: [true, false], param: "is_fast"},
//	]
//
// Every sweep is checked against the #Sweep CUE schema held by a
// SchemaRegistry, then by struct validation (go-playground/validator) and a
// parse of the command template. Failures are reported as ValidationErrors
// with file positions where CUE provides them.
//
// Numbers decode to int when integral and float64 otherwise, whatever the
// source format, so the same sweep renders identically from CUE and YAML.
//
// # Kinds
//
// Kinds declared in a sweep are registered by SweepConfig.Build before any
// option is constructed. A kind's behaviour comes from an optional Starlark
// script (see ScriptedKind); entry points the script leaves out fall back to
// the first parent kind. Scripts run without print and with a bounded step
// count and wall time.
//
// # Settings
//
// LoadSettings reads telemetry settings with koanf: built-in defaults, then
// .muffler.yaml (or an explicit file), then MUFFLER_* environment variables.
//
//	logging:
//	  level: debug
//	tracing:
//	  enabled: true
//	  exporter: otlp
//	  endpoint: localhost:4317
//	metrics:
//	  textfile: /var/lib/node_exporter/muffler.prom
//
// # Watching
//
// Watch calls a function after the sweep file changes, which lets the CLI
// re-expand on save.
package config
