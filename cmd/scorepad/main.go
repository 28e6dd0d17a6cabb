// Package main is the scorepad CLI entry point.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/louisbranch/scorepad/internal/cmd/scorepad"
	"github.com/louisbranch/scorepad/internal/platform/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := scorepad.NewRootCommand()
	if err := root.ExecuteContext(ctx); err != nil {
		config.Exitf("Error: %v", err)
	}
}
