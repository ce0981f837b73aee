package main

import (
	"github.com/spf13/cobra"

	"github.com/pwsw/pwsw/internal/daemon"
)

func newDaemonCmd() *cobra.Command {
	var foreground bool
	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Run the switching daemon in the foreground or as a background process",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			exitCode = 1
			return daemon.Run(daemon.Options{Foreground: foreground})
		},
	}
	cmd.Flags().BoolVar(&foreground, "foreground", false, "log to stderr instead of the rolling log file")
	return cmd
}
