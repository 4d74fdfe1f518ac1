package engine

import (
	"context"
	"iter"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/openfroyo/muffler/pkg/option"
	"github.com/openfroyo/muffler/pkg/resolver"
)

const tracerName = "github.com/openfroyo/muffler/pkg/engine"

// expandConfig holds the settings of one Expand call.
type expandConfig struct {
	progress bool
	registry *option.Registry
	logger   zerolog.Logger
	observer Observer
}

// ExpandOption configures Expand.
type ExpandOption func(*expandConfig)

// WithProgress enables or disables the Index and Total fields of results.
// Progress is enabled by default.
func WithProgress(enabled bool) ExpandOption {
	return func(c *expandConfig) {
		c.progress = enabled
	}
}

// WithRegistry sets the kind registry the capability closure is computed
// from. The default is option.NewRegistry().
func WithRegistry(reg *option.Registry) ExpandOption {
	return func(c *expandConfig) {
		c.registry = reg
	}
}

// WithLogger sets the logger for expansion diagnostics.
func WithLogger(logger zerolog.Logger) ExpandOption {
	return func(c *expandConfig) {
		c.logger = logger
	}
}

// WithObserver sets an observer notified of expansion progress.
func WithObserver(o Observer) ExpandOption {
	return func(c *expandConfig) {
		if o != nil {
			c.observer = o
		}
	}
}

// Expand renders every combination of options into commandTemplate.
//
// The sequence is lazy: one combination is rendered per step. The first error
// is yielded once with a zero Result and ends the sequence; a malformed
// template fails before any combination is rendered. Ranging over the
// returned sequence again starts from the first combination.
func Expand(ctx context.Context, options []option.Option, commandTemplate string, opts ...ExpandOption) iter.Seq2[Result, error] {
	cfg := expandConfig{
		progress: true,
		logger:   zerolog.Nop(),
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.registry == nil {
		cfg.registry = option.NewRegistry()
	}
	logger := cfg.logger.With().Str("component", "engine").Logger()

	return func(yield func(Result, error) bool) {
		ctx, span := otel.Tracer(tracerName).Start(ctx, "sweep.expand")
		defer span.End()

		started := time.Now()
		rendered := 0
		finish := func(err error) {
			elapsed := time.Since(started)
			cfg.observer.ExpansionFinished(rendered, elapsed, err)
			span.SetAttributes(attribute.Int("sweep.rendered", rendered))
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				logger.Error().Err(err).Int("rendered", rendered).Msg("Expansion failed")
				return
			}
			span.SetStatus(codes.Ok, "")
			logger.Debug().Int("rendered", rendered).Dur("duration", elapsed).Msg("Expansion completed")
		}

		tmpl, err := ParseTemplate(commandTemplate)
		if err != nil {
			finish(err)
			yield(Result{}, err)
			return
		}

		renderer := NewRenderer(tmpl, resolver.New(cfg.registry))
		total := Count(options)

		span.SetAttributes(
			attribute.Int("sweep.options", len(options)),
			attribute.Int("sweep.total", total),
		)
		cfg.observer.ExpansionStarted(total)
		logger.Debug().
			Int("options", len(options)).
			Int("total", total).
			Str("template", tmpl.Source()).
			Strs("placeholders", tmpl.Placeholders()).
			Msg("Expanding sweep")

		index := 0
		for combination := range Combinations(options) {
			if err := ctx.Err(); err != nil {
				cerr := NewCancelledError(err).WithIndex(index + 1)
				finish(cerr)
				yield(Result{}, cerr)
				return
			}

			index++
			renderStart := time.Now()
			result, err := renderer.Render(index, combination)
			if err != nil {
				finish(err)
				yield(Result{}, err)
				return
			}
			if cfg.progress {
				result.Index = index
				result.Total = total
			}

			rendered++
			cfg.observer.CombinationRendered(index, time.Since(renderStart))
			logger.Trace().Int("index", index).Str("command", result.Command).Msg("Rendered combination")

			if !yield(result, nil) {
				finish(nil)
				return
			}
		}

		finish(nil)
	}
}

// Collect drains an expansion into a slice, stopping at the first error.
func Collect(seq iter.Seq2[Result, error]) ([]Result, error) {
	var results []Result
	for result, err := range seq {
		if err != nil {
			return results, err
		}
		results = append(results, result)
	}
	return results, nil
}
