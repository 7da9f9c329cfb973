// Package main is the entry point for the inception CLI.
//
// inception provisions a nested private cloud on Hetzner Cloud: a gateway
// with a floating IP, a Chef configuration server, controllers and workers,
// configured in stages over SSH.
//
// Commands: create, destroy, list, show, version.
//
// For detailed usage information, run:
//
//	inception --help
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/imamik/inception/cmd/inception/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
