// Package main provides the entry point for the flakeradar CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/flakeradar/flakeradar/internal/cli"
)

// Build information, overridden at build time via ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	info := cli.BuildInfo{Version: version, Commit: commit, Date: date}
	if err := cli.Execute(ctx, info); err != nil {
		os.Exit(1)
	}
}
