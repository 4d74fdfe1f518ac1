// Package policy lints sweeps with Open Policy Agent (OPA) Rego policies.
//
// A policy is a Rego module defining a deny set. Each element is either a
// message string or an object:
//
//	{"message": "...", "severity": "error", "option": "level"}
//
// Blocking severities (error, critical) make Result.Allowed false; the others
// are reported as warnings.
//
// # Usage
//
//	eng, err := policy.NewEngine(logger)
//	if err != nil {
//	    return err
//	}
//	if err := eng.LoadPolicies(ctx, []string{"policies/"}); err != nil {
//	    return err
//	}
//
//	input, err := policy.NewSweepInput(sweep.Name, sweep.Command, options, reg)
//	if err != nil {
//	    return err
//	}
//	result, err := eng.Evaluate(ctx, input)
//
// # Input
//
// Policies see a SweepInput:
//
//	input.name          sweep name
//	input.command       command template
//	input.placeholders  template keys in order of appearance
//	input.options[_]    {name, kind, param, values, keys}
//	input.keys          every key the options provide
//	input.total         number of combinations
//	input.limits        {max_size}
//
// # Built-in policies
//
//   - duplicate-parameters (error): two options report the same parameter
//   - template-keys (error): a placeholder no option provides
//   - empty-values (warning): an option without values
//   - sweep-size (warning): more combinations than limits.max_size
//   - parameter-naming (warning): a parameter that is not an identifier
//   - unused-options (info): an option no placeholder references
//
// # Custom policies
//
// LoadPolicies reads .rego files (named after the file; a "# severity:"
// comment in the header sets the default severity) and .json files holding a
// serialized Policy. Directories are walked recursively.
//
//	# Sweeps must stay small on CI.
//	# severity: error
//	package muffler.policies.ci
//
//	import rego.v1
//
//	deny contains msg if {
//	    input.total > 100
//	    msg := sprintf("%v combinations is too many for CI", [input.total])
//	}
package policy
