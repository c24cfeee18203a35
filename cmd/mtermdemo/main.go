// Command mtermdemo is a small CLI wrapper around the mterm façade: it spawns
// a shell under a pseudo-console and either streams the redrawn view to
// stdout (run) or prints one snapshot and exits (dump-scrollback).
package main

import (
	"os"

	"github.com/ivymerfe/mterm/cmd/mtermdemo/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
