package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/openfroyo/muffler/pkg/config"
	"github.com/openfroyo/muffler/pkg/telemetry"
)

// globalOptions are the persistent flags and the telemetry built from them.
type globalOptions struct {
	settingsPath string
	logLevel     string
	verbose      bool
	trace        bool

	tel *telemetry.Telemetry
}

// Execute runs the root command
func Execute(ctx context.Context, version, commit, buildDate string) error {
	rootCmd, opts := newRootCommand(version, commit, buildDate)
	err := rootCmd.ExecuteContext(ctx)
	return errors.Join(err, opts.shutdown())
}

func newRootCommand(version, commit, buildDate string) (*cobra.Command, *globalOptions) {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "muffler",
		Short: "muffler - parameter sweep command generator",
		Long: `muffler expands a sweep definition into one command line per combination
of option values.

A sweep names a command template and a list of options. Every option has a
kind that decides how its value is rendered:
  - Placeholder values are substituted under the option's own name
  - Quiet values are recorded but render no text
  - Custom kinds, scripted in Starlark, fill the {Kind} placeholders

Sweeps are written in CUE, JSON or YAML.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd, version)
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.settingsPath, "settings", "", "settings file (default ./"+config.DefaultSettingsFile+" if present)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&opts.trace, "trace", false, "enable tracing with the configured exporter")

	rootCmd.AddCommand(newExpandCommand(opts))
	rootCmd.AddCommand(newNamesCommand())
	rootCmd.AddCommand(newCountCommand())
	rootCmd.AddCommand(newValidateCommand())
	rootCmd.AddCommand(newKindsCommand())
	rootCmd.AddCommand(newInitCommand())

	return rootCmd, opts
}

// setup loads settings, applies flag overrides and installs telemetry in the
// command context.
func (o *globalOptions) setup(cmd *cobra.Command, version string) error {
	cfg, err := config.LoadSettings(o.settingsPath)
	if err != nil {
		return err
	}

	cfg.ServiceVersion = version
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}
	if o.verbose {
		cfg.Logging.Level = "debug"
	}
	if o.trace {
		cfg.Tracing.Enabled = true
	}

	tel, err := telemetry.NewTelemetry(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	if cfg.Logging.Output == "stderr" && cmd.ErrOrStderr() != os.Stderr {
		tel.Logger = telemetry.NewLoggerTo(cfg.Logging, cmd.ErrOrStderr())
	}
	o.tel = tel

	zl := tel.Logger.Zerolog()
	zl.Debug().
		Str("command", cmd.Name()).
		Str("settings", o.settingsPath).
		Bool("tracing", cfg.Tracing.Enabled).
		Msg("Telemetry initialized")

	cmd.SetContext(tel.WithContext(cmd.Context()))
	return nil
}

// shutdown flushes telemetry. It runs after the command whether or not it
// failed.
func (o *globalOptions) shutdown() error {
	if o.tel == nil {
		return nil
	}
	return o.tel.Shutdown(context.Background())
}

