package config

import (
	"fmt"
	"strings"
	"time"
)

// SweepConfig is a parameter sweep definition loaded from a CUE, JSON or
// YAML file.
type SweepConfig struct {
	// Name identifies the sweep in logs and metrics.
	Name string `json:"name" yaml:"name" validate:"required"`

	// Description is free-form documentation.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Command is the command template (e.g., "run {Option} --level {level}").
	Command string `json:"command" yaml:"command" validate:"required"`

	// Progress controls the Index and Total fields of results. Nil means enabled.
	Progress *bool `json:"progress,omitempty" yaml:"progress,omitempty"`

	// Kinds declares additional option kinds, in registration order.
	Kinds []KindConfig `json:"kinds,omitempty" yaml:"kinds,omitempty" validate:"dive"`

	// Options lists the swept options in order. The last option varies fastest.
	Options []OptionConfig `json:"options" yaml:"options" validate:"required,min=1,dive"`

	// Source is the file the sweep was loaded from.
	Source string `json:"-" yaml:"-"`

	// LoadedAt is when the sweep was parsed.
	LoadedAt time.Time `json:"-" yaml:"-"`
}

// OptionConfig declares one swept option.
type OptionConfig struct {
	// Name is the option name and, for placeholder kinds, its template key.
	Name string `json:"name" yaml:"name" validate:"required"`

	// Kind is a registered or declared kind name (e.g., "Quiet", "Placeholder").
	Kind string `json:"kind" yaml:"kind" validate:"required"`

	// Values are the candidate values in sweep order.
	Values []any `json:"values,omitempty" yaml:"values,omitempty"`

	// Param overrides the key the value is reported under.
	Param string `json:"param,omitempty" yaml:"param,omitempty"`
}

// KindConfig declares an option kind.
type KindConfig struct {
	// Name is the kind name.
	Name string `json:"name" yaml:"name" validate:"required,kindname"`

	// Parents are the kinds this kind specializes. Empty means Option.
	Parents []string `json:"parents,omitempty" yaml:"parents,omitempty" validate:"dive,required"`

	// Description is shown by the kinds listing.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Joiner separates fragments of this kind. It takes precedence over a
	// joiner defined by the script.
	Joiner *string `json:"joiner,omitempty" yaml:"joiner,omitempty"`

	// Script is Starlark source defining the kind's behaviour.
	Script string `json:"script,omitempty" yaml:"script,omitempty"`
}

// ProgressEnabled reports whether results carry progress information.
func (s *SweepConfig) ProgressEnabled() bool {
	return s.Progress == nil || *s.Progress
}

// ValidationError represents a validation error with location information.
type ValidationError struct {
	// File is the source file path.
	File string `json:"file,omitempty"`

	// Line is the line number (1-indexed).
	Line int `json:"line,omitempty"`

	// Column is the column number (1-indexed).
	Column int `json:"column,omitempty"`

	// Path is the field path to the error (e.g., "options[1].kind").
	Path string `json:"path,omitempty"`

	// Message is the error message.
	Message string `json:"message"`
}

// String formats the error with its location.
func (e ValidationError) String() string {
	var b strings.Builder
	if e.File != "" {
		b.WriteString(e.File)
		if e.Line > 0 {
			fmt.Fprintf(&b, ":%d:%d", e.Line, e.Column)
		}
		b.WriteString(": ")
	}
	if e.Path != "" {
		b.WriteString(e.Path)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	return b.String()
}

// ValidationErrors is the set of problems found in a sweep definition.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (v ValidationErrors) Error() string {
	switch len(v) {
	case 0:
		return "invalid sweep"
	case 1:
		return "invalid sweep: " + v[0].String()
	}
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.String()
	}
	return fmt.Sprintf("invalid sweep: %d errors: %s", len(v), strings.Join(msgs, "; "))
}
