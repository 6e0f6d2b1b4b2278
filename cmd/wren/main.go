package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/simonhull/wren/internal/commands"
	"github.com/simonhull/wren/output"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	rootCmd := commands.RootCmd()
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		output.Error(err.Error())
		os.Exit(commands.ExitCode(err))
	}
}
