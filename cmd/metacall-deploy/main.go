package main

import (
	"context"
	"os"

	"github.com/yndnr/metacall-deploy-go/internal/cli/command"
	"github.com/yndnr/metacall-deploy-go/internal/infra/shutdown"
)

func main() {
	ctx, stop := shutdown.WithSignals(context.Background())

	app := command.App()
	err := app.RunContext(ctx, os.Args)
	stop()

	if err != nil {
		command.PrintError(os.Stderr, err)
	}
	os.Exit(command.ExitCode(err))
}
