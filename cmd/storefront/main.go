package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/composable-commerce/storefront/cmd/storefront/commands"
)

// Version is the current version of storefront
// This must match the git tag when creating releases
const Version = "v0.1.0"

func main() {
	commands.SetVersion(Version)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := commands.Execute(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
