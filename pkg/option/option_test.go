package option

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestQuiet(t *testing.T) {
	q := NewQuiet("verbose", true, false)

	assert.Equal(t, "verbose", q.Name())
	assert.Equal(t, KindQuiet, q.Kind())
	assert.Equal(t, []any{true, false}, q.Values())
	assert.Equal(t, DefaultJoiner, q.Joiner())

	for _, v := range []any{true, "text", 12} {
		text, present := q.Format(v)
		assert.True(t, present)
		assert.Empty(t, text)
	}
}

func TestPlaceholder(t *testing.T) {
	p := NewPlaceholder("level", "1", 2)

	assert.Equal(t, KindPlaceholder, p.Kind())

	text, present := p.Format(2)
	assert.True(t, present)
	assert.Equal(t, "2", text)

	assert.Equal(t, "level", p.TransformName())
	assert.Equal(t, "1", p.TransformValue("1"))
}

func TestBaseFormatOmits(t *testing.T) {
	b := NewBase("Custom", "x", []any{1})

	text, present := b.Format(1)
	assert.False(t, present)
	assert.Empty(t, text)
	assert.Equal(t, "Custom(x, 1 values)", b.String())
}

func TestStringify(t *testing.T) {
	tests := []struct {
		value any
		want  string
	}{
		{nil, ""},
		{"abc", "abc"},
		{42, "42"},
		{1.5, "1.5"},
		{true, "true"},
		{time.Second, "1s"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Stringify(tt.value), "Stringify(%#v)", tt.value)
	}
}

func TestTruthy(t *testing.T) {
	var nilPtr *int
	one := 1

	tests := []struct {
		name  string
		value any
		want  bool
	}{
		{"nil", nil, false},
		{"true", true, true},
		{"false", false, false},
		{"empty string", "", false},
		{"string", "x", true},
		{"zero int", 0, false},
		{"int", 3, true},
		{"zero int64", int64(0), false},
		{"uint8", uint8(1), true},
		{"zero float", 0.0, false},
		{"float32", float32(0.5), true},
		{"empty slice", []string{}, false},
		{"slice", []int{0}, true},
		{"empty map", map[string]int{}, false},
		{"nil pointer", nilPtr, false},
		{"pointer", &one, true},
		{"struct", struct{}{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Truthy(tt.value))
		})
	}
}

func TestRename(t *testing.T) {
	q := NewQuiet("verbose", true)

	r := Rename(q, "is_verbose")
	assert.Equal(t, "is_verbose", r.TransformName())
	assert.Equal(t, "verbose", r.Name())
	assert.Equal(t, KindQuiet, r.Kind())

	assert.Same(t, q, Rename(q, "").(*Quiet))
	assert.Same(t, q, Rename(q, "verbose").(*Quiet))
}
