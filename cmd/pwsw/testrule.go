package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pwsw/pwsw/internal/ipc"
)

func newTestRuleCmd() *cobra.Command {
	var asJSON, byTitle bool
	cmd := &cobra.Command{
		Use:   "test-rule PATTERN",
		Short: "Show which live windows PATTERN (a regex) matches by app_id, or with --title, by title",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			exitCode = 1
			resp, err := call(ipc.Request{Kind: ipc.KindTestRule, Pattern: args[0], ByTitle: byTitle})
			if err != nil {
				return err
			}
			var payload ipc.TestRulePayload
			if err := ipc.DecodeData(resp, &payload); err != nil {
				return err
			}
			if asJSON {
				return printJSON(payload)
			}
			if len(payload.Matches) == 0 {
				fmt.Println("no windows match")
				return nil
			}
			for _, w := range payload.Matches {
				fmt.Printf("[%d] app_id=%-20s title=%q\n", w.ID, w.AppID, w.Title)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print machine-readable JSON")
	cmd.Flags().BoolVar(&byTitle, "title", false, "match PATTERN against title instead of app_id")
	return cmd
}
