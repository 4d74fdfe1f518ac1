package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/openfroyo/muffler/pkg/config"
	"github.com/openfroyo/muffler/pkg/option"
	"github.com/openfroyo/muffler/pkg/telemetry"
)

// loadedSweep is a parsed sweep with its options built against reg.
type loadedSweep struct {
	config  *config.SweepConfig
	options []option.Option
	reg     *option.Registry
}

// loadSweep parses the sweep at path and builds its options in a fresh
// registry holding the built-in kinds plus the kinds the sweep declares.
func loadSweep(ctx context.Context, path string) (*loadedSweep, error) {
	logger := telemetry.FromContext(ctx)

	sweep, err := config.NewLoader(logger.Zerolog()).Load(ctx, path)
	if err != nil {
		return nil, err
	}

	reg := option.NewRegistry()
	options, err := sweep.Build(ctx, reg)
	if err != nil {
		return nil, fmt.Errorf("failed to build sweep %s: %w", sweep.Name, err)
	}

	return &loadedSweep{config: sweep, options: options, reg: reg}, nil
}

// printValidationErrors writes one line per validation error. It reports
// whether err carried validation errors.
func printValidationErrors(w io.Writer, err error) bool {
	var verrs config.ValidationErrors
	if !errors.As(err, &verrs) {
		return false
	}
	for _, e := range verrs {
		fmt.Fprintf(w, "  %s\n", e.String())
	}
	return true
}
