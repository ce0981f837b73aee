package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pwsw/pwsw/internal/ipc"
)

func newListSinksCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list-sinks",
		Short: "List sinks known to the daemon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			exitCode = 1
			resp, err := call(ipc.Request{Kind: ipc.KindListSinks})
			if err != nil {
				return err
			}
			var payload ipc.SinksPayload
			if err := ipc.DecodeData(resp, &payload); err != nil {
				return err
			}
			if asJSON {
				return printJSON(payload.Sinks)
			}
			for i, s := range payload.Sinks {
				marker := " "
				if s.IsDefaultSystem {
					marker = "*"
				}
				avail := "available"
				if !s.IsAvailable {
					avail = "unavailable"
				}
				fmt.Printf("%s [%d] %-30s %-20s %s\n", marker, i+1, s.Name, s.Desc, avail)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print machine-readable JSON")
	return cmd
}
