// Package main is the entry point for the opencode-helix CLI.
package main

import (
	"os"

	"github.com/wk-j/opencode-helix/cmd/opencode-helix/commands"
)

func main() {
	os.Exit(commands.Report(os.Stderr, commands.Execute()))
}
