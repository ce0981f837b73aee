package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pwsw/pwsw/internal/ipc"
)

func newNextSinkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "next-sink",
		Short: "Cycle to the next configured sink",
		Args:  cobra.NoArgs,
		RunE:  runCycleSink(ipc.KindNextSink),
	}
}

func newPrevSinkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prev-sink",
		Short: "Cycle to the previous configured sink",
		Args:  cobra.NoArgs,
		RunE:  runCycleSink(ipc.KindPrevSink),
	}
}

func runCycleSink(kind ipc.Kind) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		exitCode = 1
		resp, err := call(ipc.Request{Kind: kind})
		if err != nil {
			return err
		}
		var payload ipc.SwitchPayload
		if err := ipc.DecodeData(resp, &payload); err != nil {
			return err
		}
		fmt.Printf("switched to %s\n", payload.SinkName)
		return nil
	}
}
