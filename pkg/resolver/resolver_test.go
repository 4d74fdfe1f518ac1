package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openfroyo/muffler/pkg/option"
)

// edges is a Graph backed by a child list.
type edges map[option.Kind][]option.Kind

func (e edges) Base() option.Kind { return option.KindOption }

func (e edges) SpecializedBy(kind option.Kind) []option.Kind { return e[kind] }

func TestDiscover(t *testing.T) {
	g := edges{
		option.KindOption: {"A", "B"},
		"A":               {"C"},
		"B":               {"C"},
		"Stray":           {"D"},
	}

	parents := Discover(g)

	assert.Equal(t, []option.Kind{option.KindOption}, parents["A"])
	assert.Equal(t, []option.Kind{option.KindOption}, parents["B"])
	assert.ElementsMatch(t, []option.Kind{"A", "B"}, parents["C"])
	assert.NotContains(t, parents, option.Kind("D"), "unreachable kinds are not discovered")
	assert.NotContains(t, parents, option.KindOption)
}

func TestClose_Diamond(t *testing.T) {
	parents := map[option.Kind][]option.Kind{
		"A": {option.KindOption},
		"B": {option.KindOption},
		"C": {"A", "B"},
	}

	closure := Close(parents)

	require.Contains(t, closure, option.Kind("C"))
	assert.Equal(t, option.Kind("C"), closure["C"][0], "kind comes first")
	assert.ElementsMatch(t, []option.Kind{"C", "A", "B", option.KindOption}, closure["C"])
	assert.Equal(t, []option.Kind{"A", option.KindOption}, closure["A"])
}

func TestClose_MultiLevel(t *testing.T) {
	parents := map[option.Kind][]option.Kind{
		"A": {option.KindOption},
		"B": {"A"},
		"C": {"B"},
		"D": {"C"},
	}

	closure := Close(parents)

	assert.Equal(t, []option.Kind{"D", "C", "B", "A", option.KindOption}, closure["D"])
	for kind, caps := range closure {
		assert.Equal(t, kind, caps[0])
		assert.Contains(t, caps, option.KindOption)
	}
}

func TestResolver_BuiltinRegistry(t *testing.T) {
	r := New(option.NewRegistry())

	assert.Equal(t, []option.Kind{option.KindQuiet, option.KindOption}, r.Capabilities(option.KindQuiet))
	assert.Equal(t, []option.Kind{option.KindValue, option.KindPlaceholder, option.KindOption},
		r.Capabilities(option.KindValue))

	assert.True(t, r.Satisfies(option.KindValue, option.KindPlaceholder))
	assert.False(t, r.Satisfies(option.KindQuiet, option.KindPlaceholder))

	assert.True(t, r.Related(option.KindPlaceholder, option.KindValue))
	assert.True(t, r.Related(option.KindValue, option.KindPlaceholder))
	assert.False(t, r.Related(option.KindQuiet, option.KindValue))
}

func TestResolver_UnknownKind(t *testing.T) {
	r := New(option.NewRegistry())

	assert.Nil(t, r.Capabilities("Nope"))
	assert.False(t, r.Satisfies("Nope", option.KindOption))
}

func TestResolver_ClosureIsCopy(t *testing.T) {
	r := New(option.NewRegistry())

	c := r.Closure()
	c[option.KindQuiet][0] = "Mutated"
	delete(c, option.KindValue)

	assert.Equal(t, option.KindQuiet, r.Capabilities(option.KindQuiet)[0])
	assert.NotNil(t, r.Capabilities(option.KindValue))
}
