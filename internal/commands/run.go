package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/simonhull/wren/exec"
)

type runFlags struct {
	rate          string
	pattern       string
	debug         bool
	discardStdout bool
	mergeStderr   bool
	discardStderr bool
	dir           string
	env           []string
}

func newRunCommand(a *app) *cobra.Command {
	var f runFlags

	cmd := &cobra.Command{
		Use:   "run [flags] -- <command> [args...]",
		Short: "Run a command behind a loading pattern",
		Long: `Runs the given command and prints its captured stdout once it exits.

While the command runs a loading pattern is drawn on stderr. With --debug
(or log_level: debug) each output line is logged as it arrives instead.

Examples:
  wren run -- go build ./...
  wren run --pattern spinner -- make test
  wren run --merge-stderr --rate 250ms -- ./deploy.sh`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := f.spec(args)
			if err != nil {
				return err
			}

			inv, err := a.newInvocation(cmd.ErrOrStderr(), f.rate, f.pattern, f.debug)
			if err != nil {
				return err
			}
			defer a.flushMetrics()

			text, err := inv.invoker.Invoke(cmd.Context(), spec, inv.pattern, inv.writer, inv.debug)
			if err != nil {
				return err
			}
			return printCaptured(cmd.OutOrStdout(), text)
		},
	}

	// Everything after the command name belongs to the command
	cmd.Flags().SetInterspersed(false)

	cmd.Flags().StringVar(&f.rate, "rate", "", "Loading pattern interval, e.g. 500ms (default from config)")
	cmd.Flags().StringVar(&f.pattern, "pattern", "", "Loading pattern: auto, dots, spinner or none (default from config)")
	cmd.Flags().BoolVar(&f.debug, "debug", false, "Log output lines as they arrive instead of showing a loading pattern")
	cmd.Flags().BoolVar(&f.discardStdout, "discard-stdout", false, "Send the command's stdout to the null device")
	cmd.Flags().BoolVar(&f.mergeStderr, "merge-stderr", false, "Merge the command's stderr into its stdout")
	cmd.Flags().BoolVar(&f.discardStderr, "discard-stderr", false, "Send the command's stderr to the null device")
	cmd.Flags().StringVar(&f.dir, "dir", "", "Working directory for the command")
	cmd.Flags().StringArrayVar(&f.env, "env", nil, "Extra KEY=VALUE environment variable (repeatable)")

	cmd.MarkFlagsMutuallyExclusive("merge-stderr", "discard-stderr")

	return cmd
}

func (f runFlags) spec(args []string) (exec.ProcessSpec, error) {
	spec := exec.ProcessSpec{
		Args: args,
		Dir:  f.dir,
		Env:  f.env,
	}
	if f.discardStdout {
		spec.Stdout = exec.RedirectDiscard
	}
	switch {
	case f.mergeStderr:
		if f.discardStdout {
			return exec.ProcessSpec{}, fmt.Errorf("--merge-stderr cannot be combined with --discard-stdout")
		}
		spec.Stderr = exec.RedirectStdout
	case f.discardStderr:
		spec.Stderr = exec.RedirectDiscard
	}
	return spec, nil
}

// printCaptured writes captured text followed by a newline, if there is any
func printCaptured(w io.Writer, text string) error {
	if text == "" {
		return nil
	}
	_, err := fmt.Fprintln(w, text)
	return err
}
