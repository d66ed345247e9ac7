// cmd/briefing/main.go
//
// This is the entry point for the briefing CLI.
// Running `briefing` with no arguments opens the TUI on the dashboard; the
// subcommands cover the same flows without a terminal UI.

package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
