package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/wastehub/internal/client/cli"
)

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.NewApp().Run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", cli.ErrorText(err))
		stop()
		os.Exit(1)
	}

}
