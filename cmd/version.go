// Package cmd contains build-time variables injected via ldflags.
package cmd

import "fmt"

// Build-time variables set via ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Info returns the multi-line version report printed by the version command.
func Info() string {
	return fmt.Sprintf("opencode-helix version %s\n  commit: %s\n  built:  %s\n", Version, Commit, Date)
}
