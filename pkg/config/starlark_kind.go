package config

import (
	"context"
	"fmt"
	"reflect"
	"slices"

	"go.starlark.net/starlark"

	"github.com/openfroyo/muffler/pkg/option"
	"github.com/openfroyo/muffler/pkg/resolver"
)

// Script entry points recognised by scripted kinds.
const (
	scriptFormat         = "format"
	scriptTransformName  = "transform_name"
	scriptTransformValue = "transform_value"
	scriptJoiner         = "joiner"
)

// ScriptedKind is an option kind whose behaviour is defined by a Starlark
// script. A script may define:
//
//	def format(name, value): ...       # string, or None to omit the fragment
//	def transform_name(name): ...      # parameter key
//	def transform_value(value): ...    # reported parameter value
//	joiner = ", "
//
// Undefined entry points fall back to the first parent kind, or to the base
// option behaviour when the kind specializes Option directly.
type ScriptedKind struct {
	name        option.Kind
	parents     []option.Kind
	description string
	joiner      *string
	evaluator   *StarlarkEvaluator

	format         starlark.Callable
	transformName  starlark.Callable
	transformValue starlark.Callable
}

// NewScriptedKind executes the kind's script and resolves its entry points.
func NewScriptedKind(ctx context.Context, cfg KindConfig, evaluator *StarlarkEvaluator) (*ScriptedKind, error) {
	if evaluator == nil {
		evaluator = NewStarlarkEvaluator(0, 0)
	}

	k := &ScriptedKind{
		name:        option.Kind(cfg.Name),
		description: cfg.Description,
		joiner:      cfg.Joiner,
		evaluator:   evaluator,
	}
	for _, p := range cfg.Parents {
		k.parents = append(k.parents, option.Kind(p))
	}

	if cfg.Script == "" {
		return k, nil
	}

	globals, err := evaluator.Exec(ctx, cfg.Name+".star", cfg.Script)
	if err != nil {
		return nil, fmt.Errorf("kind %s: %w", cfg.Name, err)
	}

	for name, dst := range map[string]*starlark.Callable{
		scriptFormat:         &k.format,
		scriptTransformName:  &k.transformName,
		scriptTransformValue: &k.transformValue,
	} {
		v, ok := globals[name]
		if !ok {
			continue
		}
		fn, ok := v.(starlark.Callable)
		if !ok {
			return nil, fmt.Errorf("kind %s: %s must be a function, got %s", cfg.Name, name, v.Type())
		}
		*dst = fn
	}

	if v, ok := globals[scriptJoiner]; ok && k.joiner == nil {
		s, ok := v.(starlark.String)
		if !ok {
			return nil, fmt.Errorf("kind %s: joiner must be a string, got %s", cfg.Name, v.Type())
		}
		joiner := string(s)
		k.joiner = &joiner
	}

	return k, nil
}

// Name returns the kind name.
func (k *ScriptedKind) Name() option.Kind { return k.name }

// Spec returns the registry entry for the kind. Options constructed through
// the registry report script failures through their Err method.
func (k *ScriptedKind) Spec(reg *option.Registry) option.KindSpec {
	return option.KindSpec{
		Name:        k.name,
		Parents:     k.parents,
		Description: k.description,
		New: func(name string, values []any) option.Option {
			opt, err := k.NewOption(context.Background(), reg, name, values)
			if err != nil {
				base := option.NewBase(k.name, name, values)
				return &scriptedOption{
					Option: &base,
					kind:   k.name,
					param:  name,
					joiner: option.DefaultJoiner,
					err:    err,
				}
			}
			return opt
		},
	}
}

// NewOption constructs an option of this kind, evaluating the script for
// every value up front.
func (k *ScriptedKind) NewOption(ctx context.Context, reg *option.Registry, name string, values []any) (option.Option, error) {
	parent, err := k.parentOption(reg, name, values)
	if err != nil {
		return nil, err
	}

	opt := &scriptedOption{
		Option:    parent,
		kind:      k.name,
		param:     parent.TransformName(),
		joiner:    parent.Joiner(),
		evaluated: make([]evaluation, len(values)),
	}
	if k.joiner != nil {
		opt.joiner = *k.joiner
	}

	if k.transformName != nil {
		v, err := k.evaluator.Call(ctx, k.transformName, name)
		if err != nil {
			return nil, fmt.Errorf("option %s: %w", name, err)
		}
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("option %s: %s must return a string, got %T", name, scriptTransformName, v)
		}
		opt.param = s
	}

	placeholder := k.placeholderCapable(reg)
	for i, value := range values {
		e := evaluation{value: value}

		if placeholder || option.Truthy(value) {
			if k.format != nil {
				v, err := k.evaluator.Call(ctx, k.format, name, value)
				if err != nil {
					return nil, fmt.Errorf("option %s value %v: %w", name, value, err)
				}
				if v != nil {
					e.text, e.present = option.Stringify(v), true
				}
			} else {
				e.text, e.present = parent.Format(value)
			}
		}

		if k.transformValue != nil {
			v, err := k.evaluator.Call(ctx, k.transformValue, value)
			if err != nil {
				return nil, fmt.Errorf("option %s value %v: %w", name, value, err)
			}
			e.transformed = v
		} else {
			e.transformed = parent.TransformValue(value)
		}

		opt.evaluated[i] = e
	}

	return opt, nil
}

// placeholderCapable reports whether the kind specializes Placeholder. Such
// options are substituted by name for every value, falsy ones included;
// bucket kinds never format falsy values.
func (k *ScriptedKind) placeholderCapable(reg *option.Registry) bool {
	if reg == nil {
		return slices.Contains(k.parents, option.KindPlaceholder)
	}
	res := resolver.New(reg)
	for _, parent := range k.parents {
		if res.Satisfies(parent, option.KindPlaceholder) {
			return true
		}
	}
	return false
}

// parentOption builds the option that supplies behaviour the script does not
// define.
func (k *ScriptedKind) parentOption(reg *option.Registry, name string, values []any) (option.Option, error) {
	if len(k.parents) > 0 && k.parents[0] != option.KindOption && reg != nil {
		parent, err := reg.New(k.parents[0], name, values)
		if err != nil {
			return nil, fmt.Errorf("kind %s: %w", k.name, err)
		}
		if failed, ok := parent.(interface{ Err() error }); ok && failed.Err() != nil {
			return nil, fmt.Errorf("kind %s: parent %s: %w", k.name, k.parents[0], failed.Err())
		}
		return parent, nil
	}
	base := option.NewBase(k.name, name, values)
	return &base, nil
}

// evaluation is the precomputed script output for one value.
type evaluation struct {
	value       any
	text        string
	present     bool
	transformed any
}

// scriptedOption serves precomputed script results.
type scriptedOption struct {
	option.Option
	kind      option.Kind
	param     string
	joiner    string
	evaluated []evaluation
	err       error
}

func (o *scriptedOption) Kind() option.Kind { return o.kind }

func (o *scriptedOption) Format(value any) (string, bool) {
	if e, ok := o.lookup(value); ok {
		return e.text, e.present
	}
	return o.Option.Format(value)
}

func (o *scriptedOption) Joiner() string { return o.joiner }

func (o *scriptedOption) TransformName() string { return o.param }

func (o *scriptedOption) TransformValue(value any) any {
	if e, ok := o.lookup(value); ok {
		return e.transformed
	}
	return o.Option.TransformValue(value)
}

// Err reports a script failure during construction.
func (o *scriptedOption) Err() error { return o.err }

func (o *scriptedOption) lookup(value any) (evaluation, bool) {
	for _, e := range o.evaluated {
		if reflect.DeepEqual(e.value, value) {
			return e, true
		}
	}
	return evaluation{}, false
}

func (o *scriptedOption) String() string {
	return fmt.Sprintf("%s(%s, %d values)", o.kind, o.Name(), len(o.Values()))
}
