package option

import (
	"fmt"
	"reflect"
)

// Kind names an option variant. A kind satisfies its own name plus every kind
// it specializes, transitively.
type Kind string

const (
	// KindOption is the base capability every variant specializes.
	KindOption Kind = "Option"

	// KindQuiet records its value in the parameters but renders no text.
	KindQuiet Kind = "Quiet"

	// KindPlaceholder is substituted into the template under the option's own name.
	KindPlaceholder Kind = "Placeholder"

	// KindValue is the earlier name of KindPlaceholder. It specializes
	// Placeholder and renders identically.
	KindValue Kind = "Value"
)

// DefaultJoiner separates fragments that share a bucket.
const DefaultJoiner = " "

// Option is one named axis of variation.
type Option interface {
	// Name is the unique identifier of the option.
	Name() string

	// Values are the candidate values in evaluation order.
	Values() []any

	// Kind is the concrete variant of the option.
	Kind() Kind

	// Format renders one value. ok is false when the option contributes no
	// fragment for the value.
	Format(value any) (fragment string, ok bool)

	// Joiner separates fragments of a bucket this option's kind contributes to.
	Joiner() string

	// TransformName is the key the value is reported under.
	TransformName() string

	// TransformValue is the value reported in the parameters.
	TransformValue(value any) any
}

// Base implements Option with the default behaviour of the base capability:
// no fragment, a single-space joiner and identity transforms. Variants embed
// it and override what they need.
type Base struct {
	kind   Kind
	name   string
	values []any
}

// NewBase creates the embeddable base of a variant.
func NewBase(kind Kind, name string, values []any) Base {
	return Base{kind: kind, name: name, values: values}
}

// Name returns the option name.
func (b Base) Name() string { return b.name }

// Values returns the candidate values.
func (b Base) Values() []any { return b.values }

// Kind returns the concrete kind.
func (b Base) Kind() Kind { return b.kind }

// Format omits the fragment.
func (b Base) Format(any) (string, bool) { return "", false }

// Joiner returns DefaultJoiner.
func (b Base) Joiner() string { return DefaultJoiner }

// TransformName returns the option name.
func (b Base) TransformName() string { return b.name }

// TransformValue returns the value unchanged.
func (b Base) TransformValue(value any) any { return value }

// String implements fmt.Stringer.
func (b Base) String() string {
	return fmt.Sprintf("%s(%s, %d values)", b.kind, b.name, len(b.values))
}

// Quiet formats every value as the empty string.
type Quiet struct {
	Base
}

// NewQuiet creates a Quiet option.
func NewQuiet(name string, values ...any) *Quiet {
	return &Quiet{Base: NewBase(KindQuiet, name, values)}
}

// Format returns an empty fragment.
func (q *Quiet) Format(any) (string, bool) { return "", true }

// Placeholder passes its value through to the template under its own name.
type Placeholder struct {
	Base
}

// NewPlaceholder creates a Placeholder option.
func NewPlaceholder(name string, values ...any) *Placeholder {
	return &Placeholder{Base: NewBase(KindPlaceholder, name, values)}
}

// Format renders the value unchanged.
func (p *Placeholder) Format(value any) (string, bool) {
	return Stringify(value), true
}

// Stringify renders a value the way it appears in a command line. Strings are
// returned as is and nil renders empty.
func Stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// Truthy reports whether a value counts as set. nil, false, numeric zero and
// empty strings, slices and maps are falsy.
func Truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case int:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() != 0
	case reflect.Complex64, reflect.Complex128:
		return rv.Complex() != 0
	case reflect.String, reflect.Slice, reflect.Map, reflect.Array, reflect.Chan:
		return rv.Len() != 0
	case reflect.Pointer, reflect.Interface:
		return !rv.IsNil()
	default:
		return true
	}
}
