// Command pwswd is the PWSW daemon entrypoint. It is a thin wrapper
// around internal/daemon.Run; `pwsw daemon` runs the same logic
// in-process for users who prefer a single binary.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/pwsw/pwsw/internal/daemon"
)

func main() {
	foreground := flag.Bool("foreground", false, "log to stderr instead of the rolling log file")
	flag.Parse()

	if err := daemon.Run(daemon.Options{Foreground: *foreground}); err != nil {
		fmt.Fprintf(os.Stderr, "pwswd: %v\n", err)
		os.Exit(1)
	}
}
