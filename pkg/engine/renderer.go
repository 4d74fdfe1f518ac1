package engine

import (
	"errors"
	"slices"
	"strings"

	"github.com/openfroyo/muffler/pkg/option"
	"github.com/openfroyo/muffler/pkg/resolver"
)

// Renderer turns combinations into commands for one template.
type Renderer struct {
	template *Template
	resolver *resolver.Resolver
}

// NewRenderer creates a renderer for a parsed template and a resolved kind
// hierarchy.
func NewRenderer(tmpl *Template, res *resolver.Resolver) *Renderer {
	return &Renderer{template: tmpl, resolver: res}
}

// fragment is one bucket entry; absent entries are dropped when joining.
type fragment struct {
	text    string
	present bool
}

// bucket collects the fragments of one capability.
type bucket struct {
	name      option.Kind
	fragments []fragment
}

// joinerEntry is a joiner registered by a concrete kind.
type joinerEntry struct {
	kind   option.Kind
	joiner string
}

// Render renders one combination. index is the 1-based position reported in
// errors.
func (r *Renderer) Render(index int, combination Combination) (Result, error) {
	var (
		buckets      []*bucket
		byName       = make(map[option.Kind]*bucket)
		joiners      []joinerEntry
		placeholders = make(map[string]string)
		parameters   = make(map[string]any, len(combination))
	)

	for _, a := range combination {
		opt := a.Option
		kind := opt.Kind()

		joiners = registerJoiner(joiners, kind, opt.Joiner())

		caps := r.resolver.Capabilities(kind)
		if slices.Contains(caps, option.KindPlaceholder) {
			text, _ := opt.Format(a.Value)
			placeholders[opt.Name()] = text
		} else {
			for _, capability := range caps {
				b, ok := byName[capability]
				if !ok {
					b = &bucket{name: capability}
					byName[capability] = b
					buckets = append(buckets, b)
				}

				if option.Truthy(a.Value) {
					text, present := opt.Format(a.Value)
					b.fragments = append(b.fragments, fragment{text: text, present: present})
				} else {
					b.fragments = append(b.fragments, fragment{})
				}
			}
		}

		parameters[opt.TransformName()] = opt.TransformValue(a.Value)
	}

	table := make(map[string]string, len(buckets)+len(placeholders))
	for _, b := range buckets {
		joiner, ok := r.resolveJoiner(b.name, joiners)
		if !ok {
			return Result{}, NewUnresolvedJoinerError(string(b.name)).WithIndex(index)
		}
		table[string(b.name)] = joinFragments(b.fragments, joiner)
	}
	for name, text := range placeholders {
		table[name] = text
	}

	command, err := r.template.Execute(table)
	if err != nil {
		var e *Error
		if errors.As(err, &e) {
			e.WithIndex(index)
		}
		return Result{}, err
	}

	return Result{Parameters: parameters, Command: command}, nil
}

// resolveJoiner finds the joiner of a bucket: the joiner registered under the
// bucket's own name, else the first registered kind related to the bucket
// through the closure.
func (r *Renderer) resolveJoiner(name option.Kind, joiners []joinerEntry) (string, bool) {
	for _, j := range joiners {
		if j.kind == name {
			return j.joiner, true
		}
	}
	for _, j := range joiners {
		if r.resolver.Related(j.kind, name) {
			return j.joiner, true
		}
	}
	return "", false
}

// registerJoiner records the joiner of kind. Later options of the same kind
// overwrite earlier ones but keep the original position.
func registerJoiner(joiners []joinerEntry, kind option.Kind, joiner string) []joinerEntry {
	for i := range joiners {
		if joiners[i].kind == kind {
			joiners[i].joiner = joiner
			return joiners
		}
	}
	return append(joiners, joinerEntry{kind: kind, joiner: joiner})
}

func joinFragments(fragments []fragment, joiner string) string {
	parts := make([]string, 0, len(fragments))
	for _, f := range fragments {
		if f.present {
			parts = append(parts, f.text)
		}
	}
	return strings.Join(parts, joiner)
}
