package engine

import (
	"time"

	"github.com/openfroyo/muffler/pkg/option"
)

// Assignment is one option bound to one of its values.
type Assignment struct {
	// Option is the axis being assigned.
	Option option.Option

	// Value is the chosen candidate value.
	Value any
}

// Combination assigns one value to every input option, in input order.
type Combination []Assignment

// Result is one rendered combination.
type Result struct {
	// Parameters maps each option's TransformName to its TransformValue.
	Parameters map[string]any `json:"parameters"`

	// Command is the rendered command line.
	Command string `json:"command"`

	// Index is the 1-based position of the combination. Zero when progress
	// reporting is disabled.
	Index int `json:"index,omitempty"`

	// Total is the number of combinations in the expansion. Zero when
	// progress reporting is disabled.
	Total int `json:"total,omitempty"`
}

// Observer is notified as an expansion progresses.
type Observer interface {
	// ExpansionStarted is called once the total is known.
	ExpansionStarted(total int)

	// CombinationRendered is called after each successful render.
	CombinationRendered(index int, elapsed time.Duration)

	// ExpansionFinished is called when the sequence ends, with the number of
	// results yielded and the error that ended it, if any. It is not called
	// when the consumer stops early.
	ExpansionFinished(rendered int, elapsed time.Duration, err error)
}

// nopObserver ignores every notification.
type nopObserver struct{}

func (nopObserver) ExpansionStarted(int)                        {}
func (nopObserver) CombinationRendered(int, time.Duration)      {}
func (nopObserver) ExpansionFinished(int, time.Duration, error) {}
