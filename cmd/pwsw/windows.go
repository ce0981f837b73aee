package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pwsw/pwsw/internal/ipc"
)

func newListWindowsCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list-windows",
		Short: "List windows the daemon currently tracks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			exitCode = 1
			resp, err := call(ipc.Request{Kind: ipc.KindListWindows})
			if err != nil {
				return err
			}
			var payload ipc.WindowsPayload
			if err := ipc.DecodeData(resp, &payload); err != nil {
				return err
			}
			if asJSON {
				return printJSON(payload.Windows)
			}
			for _, w := range payload.Windows {
				match := "no match"
				if w.Matched {
					match = fmt.Sprintf("rule %d -> sink %q", w.RuleIndex, w.SinkRef)
				}
				fmt.Printf("[%d] app_id=%-20s title=%-30q focused_at=%-6d %s\n", w.ID, w.AppID, w.Title, w.FocusedAt, match)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print machine-readable JSON")
	return cmd
}
