package policy

import (
	"slices"

	"github.com/openfroyo/muffler/pkg/engine"
	"github.com/openfroyo/muffler/pkg/option"
	"github.com/openfroyo/muffler/pkg/resolver"
)

// NewSweepInput describes a built sweep for policy evaluation. The keys each
// option contributes follow the same rules as expansion: a kind satisfying
// Placeholder provides its own name, any other kind fills the bucket of every
// kind in its closure. A nil reg means the built-in registry.
func NewSweepInput(name, command string, options []option.Option, reg *option.Registry) (*SweepInput, error) {
	tmpl, err := engine.ParseTemplate(command)
	if err != nil {
		return nil, err
	}
	if reg == nil {
		reg = option.NewRegistry()
	}
	res := resolver.New(reg)

	input := &SweepInput{
		Name:         name,
		Command:      command,
		Placeholders: tmpl.Placeholders(),
		Options:      make([]OptionInput, 0, len(options)),
		Keys:         []string{},
		Total:        engine.Count(options),
		Limits:       Limits{MaxSize: DefaultMaxSweepSize},
	}
	if input.Placeholders == nil {
		input.Placeholders = []string{}
	}

	for _, opt := range options {
		caps := res.Capabilities(opt.Kind())
		keys := []string{}
		if slices.Contains(caps, option.KindPlaceholder) {
			keys = append(keys, opt.Name())
		} else {
			for _, c := range caps {
				keys = append(keys, string(c))
			}
		}
		for _, k := range keys {
			if !slices.Contains(input.Keys, k) {
				input.Keys = append(input.Keys, k)
			}
		}

		input.Options = append(input.Options, OptionInput{
			Name:   opt.Name(),
			Kind:   string(opt.Kind()),
			Param:  opt.TransformName(),
			Values: len(opt.Values()),
			Keys:   keys,
		})
	}

	return input, nil
}
