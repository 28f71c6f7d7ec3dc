// Where: cmd/shipit/main.go
// What: CLI entrypoint.
// Why: Execute shipit commands with configured dependencies.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/graylanquantum/shipit/internal/command"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(command.Run(ctx, os.Args[1:], buildDependencies()))
}
