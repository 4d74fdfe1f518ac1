package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/openfroyo/muffler/pkg/config"
	"github.com/openfroyo/muffler/pkg/engine"
	"github.com/openfroyo/muffler/pkg/telemetry"
)

type expandOptions struct {
	template        string
	noProgress      bool
	withParams      bool
	limit           int
	watch           bool
	metricsTextfile string
	metricsAddr     string
}

func newExpandCommand(global *globalOptions) *cobra.Command {
	opts := &expandOptions{}

	cmd := &cobra.Command{
		Use:   "expand FILE",
		Short: "Print the command of every combination in a sweep",
		Long: `Expand a sweep into one command line per combination of option values.

Combinations are produced in order: the first option varies slowest and the
last option fastest. Expansion stops at the first error.`,
		Example: `  # Print every command
  muffler expand sweep.cue

  # Print parameters and commands as JSON lines
  muffler expand --with-params sweep.yaml

  # Try a different template against the same options
  muffler expand --template "bench {Option} --level {level}" sweep.cue

  # Re-expand whenever the file is saved
  muffler expand --watch sweep.cue`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			path := args[0]

			if opts.metricsAddr != "" && !opts.watch {
				return fmt.Errorf("--metrics-addr requires --watch")
			}
			if opts.metricsTextfile != "" && global.tel != nil {
				global.tel.Config.Metrics.Textfile = opts.metricsTextfile
			}

			err := opts.run(ctx, cmd.OutOrStdout(), path)
			if !opts.watch {
				return err
			}

			logger := telemetry.FromContext(ctx).NewComponentLogger("expand")
			if opts.metricsAddr != "" && global.tel != nil {
				_, stop, serr := serveMetrics(opts.metricsAddr, global.tel.Metrics.Handler(), logger)
				if serr != nil {
					return serr
				}
				defer stop()
			}
			if err != nil {
				logger.WithError(err).Error("Expansion failed, waiting for changes")
			}
			return config.Watch(ctx, path, telemetry.FromContext(ctx).Zerolog(), func() {
				if err := opts.run(ctx, cmd.OutOrStdout(), path); err != nil {
					logger.WithError(err).Error("Expansion failed, waiting for changes")
				}
			})
		},
	}

	cmd.Flags().StringVarP(&opts.template, "template", "t", "", "command template overriding the sweep's command")
	cmd.Flags().BoolVar(&opts.noProgress, "no-progress", false, "omit the [index/total] prefix")
	cmd.Flags().BoolVar(&opts.withParams, "with-params", false, "print each result as a JSON object with its parameters")
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 0, "stop after this many combinations (0 for all)")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "re-expand when the sweep file changes")
	cmd.Flags().StringVar(&opts.metricsTextfile, "metrics-textfile", "", "write metrics to this node exporter textfile on exit")
	cmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", "", "serve /metrics on this address while watching (e.g. :9090)")

	return cmd
}

// run expands the sweep at path once.
func (o *expandOptions) run(ctx context.Context, out io.Writer, path string) (err error) {
	sweep, err := loadSweep(ctx, path)
	if err != nil {
		return err
	}

	command := sweep.config.Command
	if o.template != "" {
		command = o.template
	}
	progress := sweep.config.ProgressEnabled() && !o.noProgress

	rc := telemetry.StartRun(ctx, uuid.NewString(), sweep.config.Name, sweep.config.Source)
	defer func() { rc.End(err) }()

	expandOpts := []engine.ExpandOption{
		engine.WithRegistry(sweep.reg),
		engine.WithProgress(progress),
		engine.WithLogger(rc.Logger.Zerolog()),
	}
	if tel := telemetry.FromTelemetryContext(ctx); tel != nil {
		expandOpts = append(expandOpts, engine.WithObserver(tel.Metrics.Observer(sweep.config.Name)))
	}

	printer := newResultPrinter(out, o.withParams, progress)
	rendered := 0
	for result, err := range engine.Expand(rc.Ctx, sweep.options, command, expandOpts...) {
		if err != nil {
			return err
		}
		if err := printer.Print(result); err != nil {
			return err
		}
		rendered++
		if o.limit > 0 && rendered >= o.limit {
			break
		}
	}

	zl := rc.Logger.Zerolog()
	zl.Debug().
		Int("rendered", rendered).
		Dur("duration", rc.Timer.Duration()).
		Msg("Expansion finished")

	return nil
}

// serveMetrics serves handler under /metrics on addr until the returned stop
// function is called. It returns the address actually listened on.
func serveMetrics(addr string, handler http.Handler, logger *telemetry.Logger) (string, func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, fmt.Errorf("failed to serve metrics on %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("Metrics server failed")
		}
	}()

	zl := logger.Zerolog()
	zl.Info().Str("addr", ln.Addr().String()).Msg("Serving metrics")

	return ln.Addr().String(), func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.WithError(err).Warn("Metrics server shutdown failed")
		}
	}, nil
}
