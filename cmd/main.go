package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"irvm/internal/logger"
	"irvm/internal/runner"
	"irvm/pkg/color"
)

const defaultMaxDepth = 1024

// newRootCommand builds the irvm command tree. Global flags configure
// logging and color before any subcommand runs.
func newRootCommand() *cobra.Command {
	opts := &runner.Options{}

	cmd := &cobra.Command{
		Use:   "irvm",
		Short: "Run IR modules in a tree walking interpreter",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := logger.Init(logger.Options{
				Verbose: opts.Verbose,
				NoColor: opts.NoColor,
				Level:   opts.LogLevel,
				Output:  cmd.ErrOrStderr(),
			}); err != nil {
				return fmt.Errorf("invalid --log-level: %w", err)
			}
			if opts.NoColor {
				color.EnableColor(false)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging")
	cmd.PersistentFlags().BoolVarP(&opts.NoColor, "no-color", "n", false, "no color")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level (debug|info|warn|error)")

	cmd.AddCommand(newRunCommand(opts))
	return cmd
}

func newRunCommand(opts *runner.Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <module.yaml>",
		Short: "Call the entry function of a module and print its result",
		Long: `Load a YAML module, lower it and call its entry function.

Example:
  irvm run examples/answer.yaml
  irvm run --entry narrow --dump examples/lanes.yaml
  irvm run --entry spin --max-steps 1000 examples/spin.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.File = args[0]
			return opts.Run(cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&opts.Entry, "entry", "e", runner.DefaultEntry, "function to call")
	cmd.Flags().IntVar(&opts.MaxSteps, "max-steps", 0, "maximum executed blocks, 0 for no limit")
	cmd.Flags().IntVar(&opts.MaxDepth, "max-depth", defaultMaxDepth, "maximum call depth, 0 for no limit")
	cmd.Flags().BoolVarP(&opts.Dump, "dump", "d", false, "print the lowered program first")

	return cmd
}

// Main entry point for irvm.
func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.Error(err.Error()))
		os.Exit(1)
	}
}
