// Package option defines the option model of a parameter sweep and the
// registry of option kinds.
//
// An Option is one named axis of variation with an ordered list of candidate
// values. Its kind decides how a value is rendered into the command template:
//
//   - Quiet options are recorded in the parameters but render no text.
//   - Placeholder options are substituted under their own name.
//   - Any other kind contributes fragments to one bucket per capability it
//     satisfies, joined with the option's joiner.
//
// Kinds form a hierarchy rooted at KindOption. A Registry holds the known
// kinds with their declared parents; custom kinds are added with Register,
// usually with a type that embeds Base:
//
//	type Flag struct{ option.Base }
//
//	func (f *Flag) Format(any) (string, bool) { return "--" + f.Name(), true }
//
//	reg := option.NewRegistry()
//	_ = reg.Register(option.KindSpec{
//	    Name: "Flag",
//	    New: func(name string, values []any) option.Option {
//	        return &Flag{Base: option.NewBase("Flag", name, values)}
//	    },
//	})
//
// Registries are safe for concurrent use.
package option
