package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"cdcdocstore/src/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := commands.NewRootCmd(commands.DefaultDependencies()).ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
