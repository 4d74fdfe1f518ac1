package policy

import (
	"time"
)

// Severity represents the severity level of a policy violation.
type Severity string

const (
	// SeverityInfo is for informational messages.
	SeverityInfo Severity = "info"

	// SeverityWarning is for findings that should be reviewed.
	SeverityWarning Severity = "warning"

	// SeverityError is for findings that make the sweep unusable.
	SeverityError Severity = "error"

	// SeverityCritical is for findings that must be addressed immediately.
	SeverityCritical Severity = "critical"
)

// Blocking reports whether violations of severity s fail a sweep.
func (s Severity) Blocking() bool {
	return s == SeverityError || s == SeverityCritical
}

// DefaultMaxSweepSize is the combination count above which the sweep-size
// policy warns.
const DefaultMaxSweepSize = 10000

// Policy represents a policy rule with its Rego code.
type Policy struct {
	// Name is the unique name of the policy.
	Name string `json:"name"`

	// Description provides a human-readable description.
	Description string `json:"description"`

	// Rego contains the Rego policy code. It must define a deny set.
	Rego string `json:"rego"`

	// Severity is the default severity for violations that carry none.
	Severity Severity `json:"severity"`

	// Enabled indicates if the policy is active.
	Enabled bool `json:"enabled"`

	// Tags are labels for organizing policies.
	Tags []string `json:"tags,omitempty"`

	// Metadata contains additional policy metadata.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Violation represents a single policy finding.
type Violation struct {
	// Policy is the name of the policy that produced the finding.
	Policy string `json:"policy"`

	// Option is the option the finding is about, if any.
	Option string `json:"option,omitempty"`

	// Message is a human-readable message.
	Message string `json:"message"`

	// Severity is the finding severity level.
	Severity Severity `json:"severity"`
}

// Result represents the result of evaluating all enabled policies.
type Result struct {
	// Allowed is false when any violation is blocking.
	Allowed bool `json:"allowed"`

	// Violations lists blocking findings.
	Violations []Violation `json:"violations,omitempty"`

	// Warnings lists non-blocking findings.
	Warnings []Violation `json:"warnings,omitempty"`

	// Errors lists policies that failed to evaluate.
	Errors []string `json:"errors,omitempty"`

	// EvaluatedAt is when the policies were evaluated.
	EvaluatedAt time.Time `json:"evaluated_at"`

	// EvaluatedPolicies lists the names of policies that were evaluated.
	EvaluatedPolicies []string `json:"evaluated_policies"`

	// Duration is how long the evaluation took.
	Duration time.Duration `json:"duration"`
}

// Passed reports whether the sweep passes. In strict mode warnings and
// evaluation errors fail it too.
func (r *Result) Passed(strict bool) bool {
	if !r.Allowed {
		return false
	}
	if strict {
		return len(r.Warnings) == 0 && len(r.Errors) == 0
	}
	return true
}

// Findings returns violations followed by warnings.
func (r *Result) Findings() []Violation {
	out := make([]Violation, 0, len(r.Violations)+len(r.Warnings))
	out = append(out, r.Violations...)
	return append(out, r.Warnings...)
}

// SweepInput is the document policies are evaluated against.
type SweepInput struct {
	// Name is the sweep name.
	Name string `json:"name"`

	// Command is the command template.
	Command string `json:"command"`

	// Placeholders are the distinct template keys in order of appearance.
	Placeholders []string `json:"placeholders"`

	// Options describes each option of the sweep.
	Options []OptionInput `json:"options"`

	// Keys are all substitution keys the options provide.
	Keys []string `json:"keys"`

	// Total is the number of combinations the sweep expands to.
	Total int `json:"total"`

	// Limits holds thresholds read by the built-in policies.
	Limits Limits `json:"limits"`
}

// OptionInput describes one option to policies.
type OptionInput struct {
	Name string `json:"name"`
	Kind string `json:"kind"`

	// Param is the key the option is reported under in parameters.
	Param string `json:"param"`

	// Values is the number of candidate values.
	Values int `json:"values"`

	// Keys are the substitution keys this option contributes to.
	Keys []string `json:"keys"`
}

// Limits are thresholds for the built-in policies.
type Limits struct {
	MaxSize int `json:"max_size"`
}
