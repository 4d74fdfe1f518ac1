package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openfroyo/muffler/pkg/engine"
	"github.com/openfroyo/muffler/pkg/option"
)

func strPtr(s string) *string { return &s }

func newKind(t *testing.T, reg *option.Registry, cfg KindConfig) *ScriptedKind {
	t.Helper()
	kind, err := NewScriptedKind(t.Context(), cfg, nil)
	require.NoError(t, err)
	require.NoError(t, reg.Register(kind.Spec(reg)))
	return kind
}

func TestScriptedKind_FormatNoneOmitsFragment(t *testing.T) {
	reg := option.NewRegistry()
	kind := newKind(t, reg, KindConfig{
		Name: "Flag",
		Script: `
def format(name, value):
    if value == "skip":
        return None
    return "--%s=%s" % (name, value)
`,
	})

	opt, err := kind.NewOption(t.Context(), reg, "mode", []any{"a", "skip"})
	require.NoError(t, err)

	text, ok := opt.Format("a")
	assert.True(t, ok)
	assert.Equal(t, "--mode=a", text)

	_, ok = opt.Format("skip")
	assert.False(t, ok)

	assert.Equal(t, option.Kind("Flag"), opt.Kind())
	assert.Equal(t, "mode", opt.TransformName())
	assert.Equal(t, option.DefaultJoiner, opt.Joiner())
}

func TestScriptedKind_FormatSkipsFalsyValues(t *testing.T) {
	reg := option.NewRegistry()
	kind := newKind(t, reg, KindConfig{
		Name: "Flag",
		Script: `
def format(name, value):
    if not value:
        fail("format called with a falsy value")
    return "--" + name

def transform_value(value):
    return 1 if value else 0
`,
	})

	opt, err := kind.NewOption(t.Context(), reg, "fast", []any{true, false})
	require.NoError(t, err)

	_, ok := opt.Format(false)
	assert.False(t, ok)
	assert.Equal(t, 1, opt.TransformValue(true))
	assert.Equal(t, 0, opt.TransformValue(false))
}

func TestScriptedKind_FallsBackToParent(t *testing.T) {
	reg := option.NewRegistry()
	kind := newKind(t, reg, KindConfig{
		Name:    "Upper",
		Parents: []string{"Placeholder"},
		Script: `
def transform_name(name):
    return name + "_upper"

def transform_value(value):
    return value.upper()
`,
	})

	opt, err := kind.NewOption(t.Context(), reg, "word", []any{"a", "b"})
	require.NoError(t, err)

	text, ok := opt.Format("a")
	assert.True(t, ok)
	assert.Equal(t, "a", text)
	assert.Equal(t, "A", opt.TransformValue("a"))
	assert.Equal(t, "word_upper", opt.TransformName())

	results, err := engine.Collect(engine.Expand(t.Context(), []option.Option{opt}, "say {word}",
		engine.WithRegistry(reg), engine.WithProgress(false)))
	require.NoError(t, err)
	assert.Equal(t, []engine.Result{
		{Parameters: map[string]any{"word_upper": "A"}, Command: "say a"},
		{Parameters: map[string]any{"word_upper": "B"}, Command: "say b"},
	}, results)
}

func TestScriptedKind_PlaceholderChildFormatsFalsyValues(t *testing.T) {
	tests := []struct {
		name string
		cfg  KindConfig
		want []string
	}{
		{
			name: "no script",
			cfg:  KindConfig{Name: "Level", Parents: []string{"Placeholder"}},
			want: []string{"run --level=0 --n=0", "run --level=0 --n=1", "run --level=1 --n=0", "run --level=1 --n=1"},
		},
		{
			name: "format script",
			cfg: KindConfig{Name: "Level", Parents: []string{"Placeholder"}, Script: `
def format(name, value):
    return "L%s" % value
`},
			want: []string{"run --level=L0 --n=0", "run --level=L0 --n=1", "run --level=L1 --n=0", "run --level=L1 --n=1"},
		},
		{
			name: "through Value",
			cfg:  KindConfig{Name: "Level", Parents: []string{"Value"}},
			want: []string{"run --level=0 --n=0", "run --level=0 --n=1", "run --level=1 --n=0", "run --level=1 --n=1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := option.NewRegistry()
			kind := newKind(t, reg, tt.cfg)

			opt, err := kind.NewOption(t.Context(), reg, "level", []any{0, 1})
			require.NoError(t, err)

			text, ok := opt.Format(0)
			assert.True(t, ok)
			assert.NotEmpty(t, text)

			options := []option.Option{opt, option.NewPlaceholder("n", 0, 1)}
			results, err := engine.Collect(engine.Expand(t.Context(), options, "run --level={level} --n={n}",
				engine.WithRegistry(reg), engine.WithProgress(false)))
			require.NoError(t, err)

			commands := make([]string, len(results))
			for i, r := range results {
				commands[i] = r.Command
			}
			assert.Equal(t, tt.want, commands)
			assert.Equal(t, map[string]any{"level": 0, "n": 0}, results[0].Parameters)
		})
	}
}

func TestScriptedKind_NoScriptBehavesLikeBase(t *testing.T) {
	reg := option.NewRegistry()
	kind := newKind(t, reg, KindConfig{Name: "Silent"})

	opt, err := kind.NewOption(t.Context(), reg, "x", []any{1})
	require.NoError(t, err)

	_, ok := opt.Format(1)
	assert.False(t, ok)
	assert.Equal(t, 1, opt.TransformValue(1))
}

func TestScriptedKind_Joiner(t *testing.T) {
	tests := []struct {
		name   string
		cfg    KindConfig
		joiner string
	}{
		{
			name:   "default",
			cfg:    KindConfig{Name: "K"},
			joiner: option.DefaultJoiner,
		},
		{
			name:   "script",
			cfg:    KindConfig{Name: "K", Script: `joiner = "|"`},
			joiner: "|",
		},
		{
			name:   "config wins over script",
			cfg:    KindConfig{Name: "K", Joiner: strPtr(","), Script: `joiner = "|"`},
			joiner: ",",
		},
		{
			name:   "empty joiner",
			cfg:    KindConfig{Name: "K", Joiner: strPtr("")},
			joiner: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := option.NewRegistry()
			kind := newKind(t, reg, tt.cfg)

			opt, err := kind.NewOption(t.Context(), reg, "x", nil)
			require.NoError(t, err)
			assert.Equal(t, tt.joiner, opt.Joiner())
		})
	}
}

func TestScriptedKind_ScriptErrors(t *testing.T) {
	tests := []struct {
		name   string
		script string
	}{
		{"syntax", "def format(:\n"},
		{"format not callable", "format = 3\n"},
		{"joiner not a string", "joiner = 3\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewScriptedKind(t.Context(), KindConfig{Name: "K", Script: tt.script}, nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "kind K")
		})
	}
}

func TestScriptedKind_EvaluationErrors(t *testing.T) {
	reg := option.NewRegistry()
	kind := newKind(t, reg, KindConfig{
		Name: "Bad",
		Script: `
def format(name, value):
    fail("cannot format " + str(value))

def transform_name(name):
    return 42
`,
	})

	_, err := kind.NewOption(t.Context(), reg, "x", []any{"v"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transform_name must return a string")

	opt, err := reg.New("Bad", "x", []any{"v"})
	require.NoError(t, err)
	failed, ok := opt.(interface{ Err() error })
	require.True(t, ok)
	assert.Error(t, failed.Err())
	assert.Equal(t, option.Kind("Bad"), opt.Kind())
}

func TestScriptedKind_ParentFailurePropagates(t *testing.T) {
	sweep := &SweepConfig{
		Name:    "x",
		Command: "run {Child}",
		Kinds: []KindConfig{
			{Name: "Parent", Script: "def format(name, value):\n    fail(\"boom\")\n"},
			{Name: "Child", Parents: []string{"Parent"}},
		},
		Options: []OptionConfig{{Name: "a", Kind: "Child", Values: []any{true}}},
	}

	_, err := sweep.Build(t.Context(), option.NewRegistry())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parent Parent")
	assert.Contains(t, err.Error(), "boom")
}

func TestScriptedKind_InheritsScriptedParent(t *testing.T) {
	sweep := &SweepConfig{
		Name:    "x",
		Command: "run {Flag}",
		Kinds: []KindConfig{
			{Name: "Flag", Joiner: strPtr(","), Script: "def format(name, value):\n    return \"--\" + name\n"},
			{Name: "LongFlag", Parents: []string{"Flag"}},
		},
		Options: []OptionConfig{
			{Name: "a", Kind: "Flag", Values: []any{true}},
			{Name: "b", Kind: "LongFlag", Values: []any{true}},
		},
	}

	reg := option.NewRegistry()
	options, err := sweep.Build(t.Context(), reg)
	require.NoError(t, err)

	results, err := engine.Collect(engine.Expand(t.Context(), options, sweep.Command, engine.WithRegistry(reg)))
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "run --a,--b", results[0].Command)
}
