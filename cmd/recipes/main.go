package main

import (
	"context"
	"os"

	"charm.land/fang/v2"

	"github.com/pageza/recipe-assistant/backend/internal/cli"
)

func main() {
	rootCmd := cli.NewRootCmd(cli.LoadRuntime)
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}
