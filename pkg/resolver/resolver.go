// Package resolver computes which capabilities each option kind satisfies.
//
// The hierarchy is discovered from a Graph by walking "is specialized by"
// edges from the base capability. Each discovered kind records its direct
// parents, and the closure of a kind is the reflexive-transitive set of kinds
// reachable through those parents. The kind itself always comes first.
package resolver

import (
	"slices"

	"github.com/openfroyo/muffler/pkg/option"
)

// Graph exposes the declared kind hierarchy.
type Graph interface {
	// Base is the root capability.
	Base() option.Kind

	// SpecializedBy returns the kinds that directly specialize kind.
	SpecializedBy(kind option.Kind) []option.Kind
}

// Closure maps each concrete kind to the capabilities it satisfies.
type Closure map[option.Kind][]option.Kind

// Discover walks the hierarchy from the base capability and returns the
// direct parents of every reachable kind.
func Discover(g Graph) map[option.Kind][]option.Kind {
	parents := make(map[option.Kind][]option.Kind)
	expanded := make(map[option.Kind]bool)

	stack := []option.Kind{g.Base()}
	for len(stack) > 0 {
		start := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if expanded[start] {
			continue
		}
		expanded[start] = true

		for _, child := range g.SpecializedBy(start) {
			if !slices.Contains(parents[child], start) {
				parents[child] = append(parents[child], start)
			}
			stack = append(stack, child)
		}
	}

	return parents
}

// Close computes the closure of every kind in parents.
func Close(parents map[option.Kind][]option.Kind) Closure {
	closure := make(Closure, len(parents))
	for kind := range parents {
		closure[kind] = closeKind(kind, parents)
	}
	return closure
}

// closeKind collects kind and all its ancestors, kind first.
func closeKind(kind option.Kind, parents map[option.Kind][]option.Kind) []option.Kind {
	result := []option.Kind{kind}
	stack := []option.Kind{kind}

	for len(stack) > 0 {
		start := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, parent := range parents[start] {
			if slices.Contains(result, parent) {
				continue
			}
			result = append(result, parent)
			stack = append(stack, parent)
		}
	}

	return result
}

// Resolver answers capability lookups for one expansion.
type Resolver struct {
	closure Closure
}

// New discovers the hierarchy of g and closes it.
func New(g Graph) *Resolver {
	return &Resolver{closure: Close(Discover(g))}
}

// Capabilities returns the closure of kind, or nil when the kind was not
// discovered.
func (r *Resolver) Capabilities(kind option.Kind) []option.Kind {
	return r.closure[kind]
}

// Satisfies reports whether kind satisfies capability.
func (r *Resolver) Satisfies(kind, capability option.Kind) bool {
	return slices.Contains(r.closure[kind], capability)
}

// Related reports whether a specializes b or b specializes a.
func (r *Resolver) Related(a, b option.Kind) bool {
	return r.Satisfies(a, b) || r.Satisfies(b, a)
}

// Closure returns a copy of the computed closure.
func (r *Resolver) Closure() Closure {
	out := make(Closure, len(r.closure))
	for kind, caps := range r.closure {
		out[kind] = append([]option.Kind(nil), caps...)
	}
	return out
}
