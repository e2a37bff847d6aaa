// Package cmd wires swarmctl's cobra command tree, grounded in the
// teacher's cmd/root.go (persistent flags bound through the app's own
// Viper instance, a version string patched in by main via SetVersion).
// This module's config is env-only (internal/config.Load), so root.go
// carries no config-file flag or on-disk default writer, unlike the
// teacher's rootCmd.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/zjrosen/swarmctl/internal/app"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:     "swarmctl",
	Short:   "Orchestrates a fleet of isolated AI coding/review/planning workers",
	Version: version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags).
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// bootstrap opens an App for the duration of a single command invocation.
// Every subcommand's RunE calls this first and defers Close.
func bootstrap() (*app.App, error) {
	return app.Bootstrap()
}
