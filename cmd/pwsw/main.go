// Command pwsw is the PWSW CLI: it runs the daemon in-process (the
// `daemon` subcommand) or talks to an already-running daemon over its
// IPC socket for every other subcommand.
package main

import (
	"fmt"
	"os"
)

// exitCode follows §6's Exit codes: 0 success, 1 daemon-side error,
// 2 usage error, 3 daemon not running. It defaults to 2 (usage error)
// because cobra's argument validation runs before any RunE body; every
// RunE sets it to 1 as its first action, since reaching RunE means
// argument parsing already succeeded.
var exitCode = 2

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode)
	}
}
