package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pwsw/pwsw/internal/ipc"
)

func newSetSinkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-sink REF",
		Short: "Switch the default sink to REF (configured name or PipeWire node name)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			exitCode = 1
			resp, err := call(ipc.Request{Kind: ipc.KindSetSink, Ref: args[0]})
			if err != nil {
				return err
			}
			var payload ipc.SwitchPayload
			if err := ipc.DecodeData(resp, &payload); err != nil {
				return err
			}
			fmt.Printf("switched to %s\n", payload.SinkName)
			return nil
		},
	}
	return cmd
}
