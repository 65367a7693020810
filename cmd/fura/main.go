package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/morozRed/fura/internal/cli"
)

var version = "0.1.0-dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := cli.NewRootCommand(version).ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(cli.ExitCode(err))
	}
}
