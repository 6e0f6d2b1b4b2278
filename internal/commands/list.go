package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/simonhull/wren/output"
)

func newListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List commands declared in wren.yml",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := a.registry()
			if err != nil {
				return err
			}

			if registry.Size() == 0 {
				output.Info("No commands defined. Add some under 'commands:' in wren.yml")
				return nil
			}

			names := registry.List()
			width := 0
			for _, name := range names {
				width = max(width, len(name))
			}

			w := cmd.OutOrStdout()
			for _, name := range names {
				c, _ := registry.Get(name)
				if _, err := fmt.Fprintf(w, "%-*s  %s\n", width, name, c.Description()); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
