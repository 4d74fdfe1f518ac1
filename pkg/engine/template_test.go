package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTemplate(t *testing.T) {
	tests := []struct {
		name         string
		source       string
		table        map[string]string
		want         string
		placeholders []string
	}{
		{
			name:         "plain text",
			source:       "make all",
			want:         "make all",
			placeholders: nil,
		},
		{
			name:         "placeholders",
			source:       "run {Option} --level {level}",
			table:        map[string]string{"Option": "-v", "level": "3"},
			want:         "run -v --level 3",
			placeholders: []string{"Option", "level"},
		},
		{
			name:         "repeated key",
			source:       "{a}-{a}",
			table:        map[string]string{"a": "x"},
			want:         "x-x",
			placeholders: []string{"a"},
		},
		{
			name:         "escaped braces",
			source:       "awk '{{print $1}}' {file}",
			table:        map[string]string{"file": "data.txt"},
			want:         "awk '{print $1}' data.txt",
			placeholders: []string{"file"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl, err := ParseTemplate(tt.source)
			require.NoError(t, err)
			assert.Equal(t, tt.source, tmpl.Source())
			assert.Equal(t, tt.placeholders, tmpl.Placeholders())

			got, err := tmpl.Execute(tt.table)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseTemplate_Malformed(t *testing.T) {
	for _, source := range []string{"run {level", "run level}", "run {a{b}}"} {
		t.Run(source, func(t *testing.T) {
			_, err := ParseTemplate(source)
			require.Error(t, err)
			assert.True(t, IsMalformedTemplate(err))
		})
	}
}

func TestTemplate_ExecuteMissingKey(t *testing.T) {
	tmpl := MustParseTemplate("run {Option} {missing}")

	_, err := tmpl.Execute(map[string]string{"Option": ""})
	require.Error(t, err)
	assert.True(t, IsMissingPlaceholder(err))

	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, "missing", e.Key)
}
