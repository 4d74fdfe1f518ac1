package config

import (
	"context"
	"fmt"
	"time"

	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
)

const (
	// DefaultMaxSteps bounds the Starlark computation steps of one script call.
	DefaultMaxSteps uint64 = 1_000_000

	// DefaultScriptTimeout bounds the wall time of one script call.
	DefaultScriptTimeout = 5 * time.Second
)

// StarlarkEvaluator runs kind scripts in a sandboxed Starlark thread.
type StarlarkEvaluator struct {
	maxSteps uint64
	timeout  time.Duration
}

// NewStarlarkEvaluator creates a new Starlark evaluator. Zero values select
// the defaults.
func NewStarlarkEvaluator(maxSteps uint64, timeout time.Duration) *StarlarkEvaluator {
	if maxSteps == 0 {
		maxSteps = DefaultMaxSteps
	}
	if timeout == 0 {
		timeout = DefaultScriptTimeout
	}
	return &StarlarkEvaluator{
		maxSteps: maxSteps,
		timeout:  timeout,
	}
}

// Exec executes a script and returns its frozen globals.
func (se *StarlarkEvaluator) Exec(ctx context.Context, filename, script string) (starlark.StringDict, error) {
	thread, done := se.newThread(ctx, filename)
	defer done()

	predeclared := starlark.StringDict{
		"struct": starlarkstruct.Default,
	}

	globals, err := starlark.ExecFile(thread, filename, script, predeclared)
	if err != nil {
		return nil, fmt.Errorf("starlark execution failed: %w", err)
	}
	globals.Freeze()

	return globals, nil
}

// Call invokes fn with Go arguments and converts the result back to Go.
// A None result is returned as nil.
func (se *StarlarkEvaluator) Call(ctx context.Context, fn starlark.Callable, args ...any) (any, error) {
	thread, done := se.newThread(ctx, fn.Name())
	defer done()

	sargs := make(starlark.Tuple, len(args))
	for i, arg := range args {
		v, err := toStarlarkValue(arg)
		if err != nil {
			return nil, fmt.Errorf("argument %d of %s: %w", i, fn.Name(), err)
		}
		sargs[i] = v
	}

	result, err := starlark.Call(thread, fn, sargs, nil)
	if err != nil {
		return nil, fmt.Errorf("%s failed: %w", fn.Name(), err)
	}

	return fromStarlarkValue(result)
}

// newThread creates a thread with print suppressed and a step budget. The
// thread is cancelled when ctx ends or the timeout elapses; done releases the
// cancellation hooks.
func (se *StarlarkEvaluator) newThread(ctx context.Context, name string) (*starlark.Thread, func()) {
	thread := &starlark.Thread{
		Name:  name,
		Print: func(*starlark.Thread, string) {},
	}
	thread.SetMaxExecutionSteps(se.maxSteps)

	evalCtx, cancel := context.WithTimeout(ctx, se.timeout)
	stop := context.AfterFunc(evalCtx, func() {
		thread.Cancel(evalCtx.Err().Error())
	})

	return thread, func() {
		stop()
		cancel()
	}
}

// toStarlarkValue converts a Go value to a Starlark value.
func toStarlarkValue(v any) (starlark.Value, error) {
	if v == nil {
		return starlark.None, nil
	}

	switch val := v.(type) {
	case bool:
		return starlark.Bool(val), nil
	case int:
		return starlark.MakeInt(val), nil
	case int64:
		return starlark.MakeInt64(val), nil
	case uint64:
		return starlark.MakeUint64(val), nil
	case float64:
		return starlark.Float(val), nil
	case string:
		return starlark.String(val), nil
	case []any:
		list := make([]starlark.Value, len(val))
		for i, item := range val {
			starlarkItem, err := toStarlarkValue(item)
			if err != nil {
				return nil, err
			}
			list[i] = starlarkItem
		}
		return starlark.NewList(list), nil
	case map[string]any:
		dict := starlark.NewDict(len(val))
		for k, v := range val {
			starlarkVal, err := toStarlarkValue(v)
			if err != nil {
				return nil, err
			}
			if err := dict.SetKey(starlark.String(k), starlarkVal); err != nil {
				return nil, err
			}
		}
		return dict, nil
	default:
		return nil, fmt.Errorf("unsupported type: %T", v)
	}
}

// fromStarlarkValue converts a Starlark value to a Go value. Integers become
// int, matching values decoded from sweep files.
func fromStarlarkValue(v starlark.Value) (any, error) {
	switch val := v.(type) {
	case starlark.NoneType:
		return nil, nil
	case starlark.Bool:
		return bool(val), nil
	case starlark.Int:
		i, ok := val.Int64()
		if !ok {
			return nil, fmt.Errorf("integer too large: %s", val)
		}
		return int(i), nil
	case starlark.Float:
		return float64(val), nil
	case starlark.String:
		return string(val), nil
	case starlark.Tuple:
		return fromStarlarkSequence(val)
	case *starlark.List:
		return fromStarlarkSequence(val)
	case *starlark.Dict:
		dict := make(map[string]any, val.Len())
		for _, item := range val.Items() {
			key, ok := item[0].(starlark.String)
			if !ok {
				return nil, fmt.Errorf("dict key must be string, got %s", item[0].Type())
			}
			value, err := fromStarlarkValue(item[1])
			if err != nil {
				return nil, err
			}
			dict[string(key)] = value
		}
		return dict, nil
	case *starlarkstruct.Struct:
		dict := make(map[string]any)
		for _, name := range val.AttrNames() {
			attr, err := val.Attr(name)
			if err != nil {
				continue
			}
			value, err := fromStarlarkValue(attr)
			if err != nil {
				return nil, err
			}
			dict[name] = value
		}
		return dict, nil
	default:
		return nil, fmt.Errorf("unsupported starlark type: %s", v.Type())
	}
}

func fromStarlarkSequence(seq starlark.Indexable) ([]any, error) {
	list := make([]any, seq.Len())
	for i := range list {
		item, err := fromStarlarkValue(seq.Index(i))
		if err != nil {
			return nil, err
		}
		list[i] = item
	}
	return list, nil
}
