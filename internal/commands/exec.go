package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/simonhull/wren/exec"
)

func newExecCommand(a *app) *cobra.Command {
	var (
		pattern string
		debug   bool
	)

	cmd := &cobra.Command{
		Use:   "exec <name>",
		Short: "Run a command declared in wren.yml",
		Long: `Runs a command from the commands section of wren.yml by name.

Examples:
  wren exec build
  wren exec --debug test`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := a.registry()
			if err != nil {
				return err
			}

			name := args[0]
			if _, ok := registry.Get(name); !ok {
				return fmt.Errorf("unknown command %q (see 'wren list')", name)
			}

			inv, err := a.newInvocation(cmd.ErrOrStderr(), "", pattern, debug)
			if err != nil {
				return err
			}
			defer a.flushMetrics()

			text, err := registry.Execute(cmd.Context(), name, inv.invoker, exec.RunOptions{
				Pattern: inv.pattern,
				Writer:  inv.writer,
				Debug:   inv.debug,
			})
			if err != nil {
				return err
			}
			return printCaptured(cmd.OutOrStdout(), text)
		},
	}

	cmd.Flags().StringVar(&pattern, "pattern", "", "Loading pattern: auto, dots, spinner or none (default from config)")
	cmd.Flags().BoolVar(&debug, "debug", false, "Log output lines as they arrive instead of showing a loading pattern")

	return cmd
}

func (a *app) registry() (*exec.CommandRegistry, error) {
	cfg, err := a.config()
	if err != nil {
		return nil, err
	}
	return cfg.Registry()
}
