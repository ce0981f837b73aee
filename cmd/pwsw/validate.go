package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pwsw/pwsw/internal/config"
	"github.com/pwsw/pwsw/internal/ipc"
	"github.com/pwsw/pwsw/internal/xdg"
	"github.com/pwsw/pwsw/verbose"
)

func newValidateCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a config file for parse and semantic errors without starting the daemon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			exitCode = 1
			if path == "" {
				path = xdg.ConfigPath()
			}

			loader := config.NewLoader(verbose.NewLogger(verbose.LogLevelSilent, false, nil))
			compiled, err := loader.LoadFile(path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			fmt.Printf("%s: valid (%d sink(s), %d rule(s))\n", path, len(compiled.Sinks), compiled.Rules.Len())

			if resp, err := call(ipc.Request{Kind: ipc.KindValidate}); err == nil {
				var payload ipc.ValidatePayload
				if decodeErr := ipc.DecodeData(resp, &payload); decodeErr == nil && payload.Valid {
					fmt.Println("daemon: running with a valid loaded config")
				}
			}

			exitCode = 0
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "config", "", "config path to validate (defaults to the standard location)")
	return cmd
}
