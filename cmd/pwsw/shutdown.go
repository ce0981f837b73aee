package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pwsw/pwsw/internal/ipc"
)

func newShutdownCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shutdown",
		Short: "Ask the running daemon to exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			exitCode = 1
			if _, err := call(ipc.Request{Kind: ipc.KindShutdown}); err != nil {
				return err
			}
			fmt.Println("daemon shutting down")
			return nil
		},
	}
}
