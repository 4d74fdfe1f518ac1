package engine_test

import (
	"context"
	"fmt"

	"github.com/openfroyo/muffler/pkg/engine"
	"github.com/openfroyo/muffler/pkg/option"
)

// Example_expand renders a quiet flag and a placeholder.
func Example_expand() {
	options := []option.Option{
		option.NewQuiet("verbose", true, false),
		option.NewPlaceholder("level", "1", "2"),
	}

	for result, err := range engine.Expand(context.Background(), options, "run {Option} --level {level}") {
		if err != nil {
			fmt.Println("error:", err)
			return
		}
		fmt.Printf("[%d/%d] %q verbose=%v\n", result.Index, result.Total, result.Command, result.Parameters["verbose"])
	}

	// Output:
	// [1/4] "run  --level 1" verbose=true
	// [2/4] "run  --level 2" verbose=true
	// [3/4] "run  --level 1" verbose=false
	// [4/4] "run  --level 2" verbose=false
}

// flag renders "--name" for set values.
type flag struct {
	option.Base
}

func (f *flag) Format(any) (string, bool) {
	return "--" + f.Name(), true
}

// Example_customKind registers a kind that renders command-line flags.
func Example_customKind() {
	reg := option.NewRegistry()
	if err := reg.Register(option.KindSpec{
		Name: "Flag",
		New: func(name string, values []any) option.Option {
			return &flag{Base: option.NewBase("Flag", name, values)}
		},
	}); err != nil {
		fmt.Println("error:", err)
		return
	}

	fast, _ := reg.New("Flag", "fast", []any{true, false})
	debug, _ := reg.New("Flag", "debug", []any{true, false})
	options := []option.Option{fast, debug}

	for result, err := range engine.Expand(context.Background(), options, "bench {Flag}",
		engine.WithRegistry(reg), engine.WithProgress(false)) {
		if err != nil {
			fmt.Println("error:", err)
			return
		}
		fmt.Printf("%q\n", result.Command)
	}

	// Output:
	// "bench --fast --debug"
	// "bench --fast"
	// "bench --debug"
	// "bench "
}
