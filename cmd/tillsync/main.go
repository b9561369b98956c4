// Package main provides the entry point for the tillsync CLI tool.
package main

import (
	"github.com/tillsync/tillsync/cmd/tillsync/cmd"
)

// Version information populated by goreleaser.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
	builtBy = "unknown"
)

func main() {
	cmd.Execute(version, commit, date, builtBy)
}
