// Package engine expands option sweeps into rendered commands.
//
// # Overview
//
// A sweep is an ordered list of options and a command template. Expand walks
// the Cartesian product of the option values and renders every combination:
//
//  1. Combinations yields one assignment per option, first option slowest.
//  2. For each assignment the option's joiner is registered under its kind.
//  3. Placeholder-capable options are stored under their own name.
//  4. Every other option appends its fragment to one bucket per capability
//     its kind satisfies. Falsy values append an absent fragment instead.
//  5. Each bucket is joined with the joiner registered for it, or the joiner
//     of the first kind related to it through the capability closure.
//  6. Buckets and placeholders are substituted into the template.
//
// # Usage Example
//
//	options := []option.Option{
//	    option.NewQuiet("verbose", true, false),
//	    option.NewPlaceholder("level", "1", "2"),
//	}
//
//	for result, err := range engine.Expand(ctx, options, "run {Option} --level {level}") {
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Println(result.Index, result.Total, result.Command)
//	}
//
// # Error Handling
//
// Rendering errors are *Error values with a code:
//
//   - UNRESOLVED_JOINER: a bucket has fragments but no joiner
//   - MISSING_PLACEHOLDER: the template names a key nothing provides
//   - MALFORMED_TEMPLATE: the template has an unmatched brace
//   - CANCELLED: the context ended during the expansion
//
// The first error ends the sequence. An option without values is not an
// error; it makes the whole product empty.
//
// # Thread Safety
//
// Expand has no shared state. Each range over its sequence is independent.
package engine
