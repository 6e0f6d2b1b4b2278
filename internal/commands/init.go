package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/simonhull/wren/config"
	"github.com/simonhull/wren/output"
)

func newInitCommand(a *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a wren.yml with default settings",
		Long: `Writes a wren.yml with the default settings and an example command.

You are asked for the example command's name and command line. If the file
already exists you are also asked before it is overwritten. --force skips
every question and uses the defaults.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.configPath
			if path == "" {
				path = config.FileName
			}

			example := config.Command{
				Name:        "hello",
				Description: "Print a greeting",
				Args:        []string{"echo", "hello from wren"},
			}

			if !force {
				p := a.prompter(cmd)
				if _, err := os.Stat(path); err == nil {
					if !p.Confirm(fmt.Sprintf("%s already exists. Overwrite?", path), false) {
						output.Info("Keeping existing " + path)
						return nil
					}
				}

				name := p.Prompt("Example command name", example.Name)
				line := p.Prompt("Example command", strings.Join(example.Args, " "))
				if name != example.Name || line != strings.Join(example.Args, " ") {
					example.Description = ""
				}
				example.Name = name
				example.Args = strings.Fields(line)
			}

			cfg := config.Default()
			cfg.Commands = []config.Command{example}
			if err := cfg.Validate(); err != nil {
				return err
			}

			if err := config.Save(path, cfg); err != nil {
				return fmt.Errorf("writing %s: %w", path, err)
			}

			output.Success("Created " + path)
			output.Step("Try: wren exec " + example.Name)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config without asking")

	return cmd
}
