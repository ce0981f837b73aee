package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pwsw/pwsw/internal/ipc"
)

func newStatusCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the daemon's current sink, default sink, and active policy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			exitCode = 1
			resp, err := call(ipc.Request{Kind: ipc.KindStatus})
			if err != nil {
				return err
			}
			var payload ipc.StatusPayload
			if err := ipc.DecodeData(resp, &payload); err != nil {
				return err
			}
			if asJSON {
				return printJSON(payload)
			}
			fmt.Printf("current sink:  %s\n", payload.CurrentSink)
			fmt.Printf("default sink:  %s\n", payload.DefaultSink)
			fmt.Printf("match policy:  %s\n", matchPolicyLabel(payload.MatchByIndex))
			fmt.Printf("smart toggle:  %v\n", payload.SmartToggle)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print machine-readable JSON")
	return cmd
}

func matchPolicyLabel(matchByIndex bool) string {
	if matchByIndex {
		return "index (rule declaration order)"
	}
	return "time (most recently focused)"
}
