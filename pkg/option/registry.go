package option

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	// ErrUnknownKind is returned when a kind or parent is not registered.
	ErrUnknownKind = errors.New("unknown option kind")

	// ErrDuplicateKind is returned when a kind is registered twice.
	ErrDuplicateKind = errors.New("option kind already registered")

	// ErrInvalidKind is returned for kind specs that cannot be registered.
	ErrInvalidKind = errors.New("invalid option kind")
)

// Factory constructs an option of a registered kind.
type Factory func(name string, values []any) Option

// KindSpec declares a variant and the kinds it directly specializes.
type KindSpec struct {
	// Name is the concrete kind name.
	Name Kind

	// Parents are the kinds this kind specializes. Empty means KindOption.
	Parents []Kind

	// Description is shown by the kinds listing.
	Description string

	// New constructs options of this kind.
	New Factory
}

// Registry holds the known variants and their declared parents.
type Registry struct {
	mu       sync.RWMutex
	kinds    map[Kind]*KindSpec
	order    []Kind
	children map[Kind][]Kind
}

// NewRegistry creates a registry with the built-in Quiet, Placeholder and
// Value kinds.
func NewRegistry() *Registry {
	r := NewEmptyRegistry()

	r.mustRegister(KindSpec{
		Name:        KindQuiet,
		Description: "recorded in parameters, renders no text",
		New: func(name string, values []any) Option {
			return NewQuiet(name, values...)
		},
	})
	r.mustRegister(KindSpec{
		Name:        KindPlaceholder,
		Description: "substituted under its own name",
		New: func(name string, values []any) Option {
			return NewPlaceholder(name, values...)
		},
	})
	r.mustRegister(KindSpec{
		Name:        KindValue,
		Parents:     []Kind{KindPlaceholder},
		Description: "alias of Placeholder",
		New: func(name string, values []any) Option {
			return &Placeholder{Base: NewBase(KindValue, name, values)}
		},
	})

	return r
}

// NewEmptyRegistry creates a registry that only knows the base capability.
func NewEmptyRegistry() *Registry {
	return &Registry{
		kinds:    make(map[Kind]*KindSpec),
		children: make(map[Kind][]Kind),
	}
}

func (r *Registry) mustRegister(spec KindSpec) {
	if err := r.Register(spec); err != nil {
		panic(err)
	}
}

// Register adds a variant to the registry.
func (r *Registry) Register(spec KindSpec) error {
	if spec.Name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidKind)
	}
	if spec.Name == KindOption {
		return fmt.Errorf("%w: %s is the base capability", ErrInvalidKind, spec.Name)
	}
	if spec.New == nil {
		return fmt.Errorf("%w: %s has no factory", ErrInvalidKind, spec.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.kinds[spec.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateKind, spec.Name)
	}

	parents := spec.Parents
	if len(parents) == 0 {
		parents = []Kind{KindOption}
	}
	for _, parent := range parents {
		if parent == spec.Name {
			return fmt.Errorf("%w: %s cannot specialize itself", ErrInvalidKind, spec.Name)
		}
		if parent != KindOption {
			if _, ok := r.kinds[parent]; !ok {
				return fmt.Errorf("%w: parent %s of %s", ErrUnknownKind, parent, spec.Name)
			}
		}
	}

	stored := spec
	stored.Parents = append([]Kind(nil), parents...)
	r.kinds[spec.Name] = &stored
	r.order = append(r.order, spec.Name)
	for _, parent := range stored.Parents {
		r.children[parent] = append(r.children[parent], spec.Name)
	}

	return nil
}

// New constructs an option of the given kind.
func (r *Registry) New(kind Kind, name string, values []any) (Option, error) {
	r.mu.RLock()
	spec, ok := r.kinds[kind]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}

	return spec.New(name, values), nil
}

// Lookup returns the spec of a registered kind.
func (r *Registry) Lookup(kind Kind) (KindSpec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	spec, ok := r.kinds[kind]
	if !ok {
		return KindSpec{}, false
	}
	return *spec, true
}

// Kinds returns the registered kinds in registration order.
func (r *Registry) Kinds() []Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]Kind(nil), r.order...)
}

// Base returns the root capability of the hierarchy.
func (r *Registry) Base() Kind {
	return KindOption
}

// SpecializedBy returns the kinds that directly specialize kind, in
// registration order.
func (r *Registry) SpecializedBy(kind Kind) []Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]Kind(nil), r.children[kind]...)
}

// SortedKinds returns the registered kinds sorted by name.
func (r *Registry) SortedKinds() []Kind {
	kinds := r.Kinds()
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
