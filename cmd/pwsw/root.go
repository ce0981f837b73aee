package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pwsw/pwsw"
)

var showVersion bool

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "pwsw",
		Short:         "Control the PWSW audio-routing daemon",
		SilenceUsage:  false,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				fmt.Println(pwsw.String())
				os.Exit(0)
			}
			return nil
		},
		// A RunE makes the root runnable, so PersistentPreRunE also sees
		// a bare `pwsw -V`; without a subcommand it prints help.
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	root.PersistentFlags().BoolVarP(&showVersion, "version", "V", false, "print version and exit")

	root.AddCommand(
		newDaemonCmd(),
		newStatusCmd(),
		newTUICmd(),
		newListSinksCmd(),
		newListWindowsCmd(),
		newTestRuleCmd(),
		newValidateCmd(),
		newSetSinkCmd(),
		newNextSinkCmd(),
		newPrevSinkCmd(),
		newShutdownCmd(),
	)
	return root
}
