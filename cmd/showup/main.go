// Package main is the entry point for the showup CLI.
//
// showup manages cloud connections for the showup event platform. Its main
// job is onboarding AWS credentials: a step-by-step wizard collects a name,
// region and key pair, validates them with the backend and stores the
// resulting connection.
//
// Commands: login, logout, whoami, connections, validate, devserver.
//
// For detailed usage information, run:
//
//	showup --help
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/showup-events/showup/cmd/showup/commands"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
