// Package main is the entry point for the migrations CLI.
package main

import (
	"fmt"
	"os"

	"github.com/Seradorr/migrations/cmd"
	"github.com/Seradorr/migrations/internal/migration"
)

// Build information injected via ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	versionString := fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)
	cmd.SetVersion(versionString)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(migration.ExitCode(err))
	}
}
