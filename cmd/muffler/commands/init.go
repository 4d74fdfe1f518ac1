package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const exampleSweep = `// Example sweep. Expand it with:
//
//	muffler expand sweep.cue
name:        "example"
description: "Benchmark a build at several optimization levels"

command: "make bench {Flag} OPT={level}"

kinds: [{
	name:        "Flag"
	parents:     ["Option"]
	description: "renders --NAME when the value is true"
	script: """
		def format(name, value):
		    return "--" + name.replace("_", "-")
		"""
}]

options: [
	{name: "trial", kind: "Quiet", values: [1, 2, 3]},
	{name: "level", kind: "Placeholder", values: ["O1", "O2", "O3"]},
	{name: "keep_going", kind: "Flag", values: [true, false]},
]
`

func newInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [DIR]",
		Short: "Write an example sweep file",
		Long:  `Write an example sweep.cue to DIR (default the current directory).`,
		Example: `  # Create ./sweep.cue
  muffler init

  # Create ./bench/sweep.cue, replacing an existing one
  muffler init --force bench`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", dir, err)
			}

			path := filepath.Join(dir, "sweep.cue")
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}

			if err := os.WriteFile(path, []byte(exampleSweep), 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", path, err)
			}

			log.Debug().Str("path", path).Msg("Example sweep written")
			printOK(cmd.OutOrStdout(), "Created %s", path)
			fmt.Fprintf(cmd.OutOrStdout(), "\nNext steps:\n")
			fmt.Fprintf(cmd.OutOrStdout(), "  muffler validate %s\n", path)
			fmt.Fprintf(cmd.OutOrStdout(), "  muffler expand %s\n", path)

			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing sweep.cue")

	return cmd
}
