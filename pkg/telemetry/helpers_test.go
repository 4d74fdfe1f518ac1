package telemetry

import "github.com/openfroyo/muffler/pkg/option"

type optionStub struct {
	name   string
	values []any
}

func toOptions(stubs []optionStub) []option.Option {
	opts := make([]option.Option, len(stubs))
	for i, s := range stubs {
		opts[i] = option.NewPlaceholder(s.name, s.values...)
	}
	return opts
}
