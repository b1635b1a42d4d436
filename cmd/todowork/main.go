// Package main is the entry point for the todowork CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"todowork/internal/backend"
	"todowork/internal/cli"
	"todowork/internal/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, backend.Open)
	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)

	stop()
	os.Exit(code)
}
