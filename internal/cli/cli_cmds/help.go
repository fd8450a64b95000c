package cli_cmds

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ZanzyTHEbar/firedragon-ledger/internal"
	"github.com/ZanzyTHEbar/firedragon-ledger/internal/cli"
)

// NewHelp creates a detailed help command for the ledger
func NewHelp(params *cli.CmdParams) *cobra.Command {
	var showAll bool

	helpCmd := &cobra.Command{
		Use:         "detailed_help",
		Aliases:     []string{"h"},
		Short:       "Display detailed help for the ledger",
		Long:        `Display detailed help information for the ledger including the command hierarchy and usage examples.`,
		Annotations: map[string]string{cli.SkipRuntimeAnnotation: "true"},
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			if showAll {
				// Display all available commands and their subcommands
				fmt.Fprintln(out, "Firedragon Ledger - Complete Command Reference")
				fmt.Fprintln(out, "==============================================")
				fmt.Fprintln(out, "\nAvailable Commands:")

				for _, c := range params.Palette {
					fmt.Fprintf(out, "- %s: %s\n", c.Use, c.Short)
					for _, sub := range c.Commands() {
						fmt.Fprintf(out, "    %s: %s\n", sub.Use, sub.Short)
					}
				}
				return
			}

			fmt.Fprintln(out, "Firedragon Ledger")
			fmt.Fprintln(out, "=================")
			fmt.Fprintln(out, "\nMain Commands:")
			fmt.Fprintln(out, "  account     Register, list and inspect accounts")
			fmt.Fprintln(out, "  deposit     Deposit money into a user account")
			fmt.Fprintln(out, "  withdraw    Withdraw money from a user account")
			fmt.Fprintln(out, "  transfer    Move money between two accounts")
			fmt.Fprintln(out, "  history     Print a user's transactions")
			fmt.Fprintln(out, "  atm         Operate an ATM")
			fmt.Fprintln(out, "  bank        Inspect the bank log")
			fmt.Fprintf(out, "\nUse '%s [command] --help' for more information about a command.\n", internal.DefaultAppCMDShortCut)
			fmt.Fprintf(out, "Use '%s detailed_help --all' to see all available commands.\n", internal.DefaultAppCMDShortCut)
		},
	}

	helpCmd.Flags().BoolVarP(&showAll, "all", "a", false, "Show all commands")

	return helpCmd
}
