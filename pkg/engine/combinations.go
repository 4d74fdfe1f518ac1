package engine

import (
	"iter"
	"math"

	"github.com/openfroyo/muffler/pkg/option"
)

// Combinations yields the Cartesian product of the options' values. The
// first option varies slowest and each option keeps its declared value
// order. No options, or any option without values, yields nothing.
//
// Combinations are produced one at a time; a yielded Combination is owned by
// the caller.
func Combinations(options []option.Option) iter.Seq[Combination] {
	return func(yield func(Combination) bool) {
		if len(options) == 0 {
			return
		}

		values := make([][]any, len(options))
		for i, opt := range options {
			values[i] = opt.Values()
			if len(values[i]) == 0 {
				return
			}
		}

		cursor := make([]int, len(options))
		for {
			combination := make(Combination, len(options))
			for i, opt := range options {
				combination[i] = Assignment{Option: opt, Value: values[i][cursor[i]]}
			}
			if !yield(combination) {
				return
			}

			// Advance the last option first, carrying into earlier ones.
			pos := len(cursor) - 1
			for pos >= 0 {
				cursor[pos]++
				if cursor[pos] < len(values[pos]) {
					break
				}
				cursor[pos] = 0
				pos--
			}
			if pos < 0 {
				return
			}
		}
	}
}

// Count returns the number of combinations Combinations yields. A product
// that does not fit in an int saturates at math.MaxInt.
func Count(options []option.Option) int {
	if len(options) == 0 {
		return 0
	}
	total := 1
	for _, opt := range options {
		n := len(opt.Values())
		if n == 0 {
			return 0
		}
		if total > math.MaxInt/n {
			total = math.MaxInt
			continue
		}
		total *= n
	}
	return total
}

// ParameterNames returns the parameter key of every option, in input order.
func ParameterNames(options []option.Option) []string {
	names := make([]string, len(options))
	for i, opt := range options {
		names[i] = opt.TransformName()
	}
	return names
}
