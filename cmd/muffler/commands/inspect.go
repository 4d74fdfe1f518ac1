package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/openfroyo/muffler/pkg/engine"
	"github.com/openfroyo/muffler/pkg/option"
	"github.com/openfroyo/muffler/pkg/resolver"
)

func newNamesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "names FILE",
		Short: "Print the parameter names of a sweep",
		Long: `Print the key each option reports its value under, one per line, in
option order.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sweep, err := loadSweep(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			for _, name := range engine.ParameterNames(sweep.options) {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func newCountCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "count FILE",
		Short: "Print the number of combinations in a sweep",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sweep, err := loadSweep(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), engine.Count(sweep.options))
			return nil
		},
	}
}

func newKindsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "kinds [FILE]",
		Short: "List option kinds and the capabilities they satisfy",
		Long: `List the registered option kinds. With a sweep file, the kinds it declares
are listed too.

CAPABILITIES is the kind's closure: the kind itself followed by every kind it
specializes. A value of the kind fills the {NAME} placeholder of each.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := option.NewRegistry()
			if len(args) == 1 {
				sweep, err := loadSweep(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				reg = sweep.reg
			}

			res := resolver.New(reg)

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "KIND\tPARENTS\tCAPABILITIES\tDESCRIPTION")
			for _, kind := range reg.SortedKinds() {
				spec, _ := reg.Lookup(kind)
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
					kind,
					joinKinds(spec.Parents),
					joinKinds(res.Capabilities(kind)),
					spec.Description,
				)
			}
			return tw.Flush()
		},
	}
}

func joinKinds(kinds []option.Kind) string {
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	return strings.Join(names, ",")
}
