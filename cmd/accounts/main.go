// Command accounts manages the accounts of a MiniTienda database from the shell.
// It is used to create the first administrator and to recover locked out admins.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := newRootCmd().ExecuteContext(ctx)
	if err != nil {
		stop()
		os.Exit(1)
	}
}
