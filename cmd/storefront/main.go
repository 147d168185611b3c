package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	c := &cli{in: os.Stdin}
	err := newRootCmd(c).ExecuteContext(ctx)
	c.close()
	stop()

	if err != nil {
		os.Exit(1)
	}
}
