package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openfroyo/muffler/pkg/policy"
	"github.com/openfroyo/muffler/pkg/telemetry"
)

// errValidationFailed is returned once the findings have been printed.
var errValidationFailed = errors.New("sweep validation failed")

func newValidateCommand() *cobra.Command {
	var (
		strict   bool
		policies []string
		disabled []string
		maxSize  int
	)

	cmd := &cobra.Command{
		Use:   "validate FILE",
		Short: "Validate a sweep file and lint it with policies",
		Long: `Validate a sweep file against the sweep schema and lint it with Rego
policies.

This command checks:
  - CUE, JSON or YAML syntax
  - Schema conformance and required fields
  - Command template syntax
  - Declared kinds and their scripts
  - Policy compliance (OPA/Rego): duplicate parameters, template keys
    without a provider, empty options, oversized sweeps

Findings of severity error fail validation. With --strict, warnings and
informational findings fail it too.`,
		Example: `  # Validate a sweep
  muffler validate sweep.cue

  # Add project policies and fail on warnings
  muffler validate --strict --policy ./policies sweep.cue

  # Allow large sweeps
  muffler validate --max-size 0 sweep.cue`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			logger := telemetry.FromContext(ctx)

			sweep, err := loadSweep(ctx, args[0])
			if err != nil {
				fmt.Fprintf(out, "%s: invalid\n", args[0])
				if printValidationErrors(out, err) {
					return errValidationFailed
				}
				return err
			}

			eng, err := policy.NewEngine(logger.Zerolog())
			if err != nil {
				return err
			}
			if len(policies) > 0 {
				if err := eng.LoadPolicies(ctx, policies); err != nil {
					return err
				}
			}
			for _, name := range disabled {
				if err := eng.DisablePolicy(name); err != nil {
					return err
				}
			}

			input, err := policy.NewSweepInput(sweep.config.Name, sweep.config.Command, sweep.options, sweep.reg)
			if err != nil {
				return err
			}
			input.Limits.MaxSize = maxSize

			result, err := eng.Evaluate(ctx, input)
			if err != nil {
				return err
			}

			zl := logger.NewComponentLogger("validate").Zerolog()
			zl.Debug().
				Strs("policies", result.EvaluatedPolicies).
				Dur("duration", result.Duration).
				Msg("Policies evaluated")

			if !result.Passed(strict) {
				fmt.Fprintf(out, "%s: invalid\n", args[0])
				printFindings(out, result.Findings())
				for _, e := range result.Errors {
					fmt.Fprintf(out, "  %s\n", e)
				}
				return errValidationFailed
			}

			printOK(out, "%s: ok (%d combinations)", args[0], input.Total)
			printFindings(out, result.Findings())
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "fail on warnings and informational findings")
	cmd.Flags().StringSliceVarP(&policies, "policy", "p", nil, "additional policy files or directories")
	cmd.Flags().StringSliceVar(&disabled, "disable", nil, "policies to skip")
	cmd.Flags().IntVar(&maxSize, "max-size", policy.DefaultMaxSweepSize, "combination count above which the sweep-size policy warns (0 disables)")

	return cmd
}
