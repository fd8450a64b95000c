package cli_cmds

import (
	"github.com/spf13/cobra"

	"github.com/ZanzyTHEbar/firedragon-ledger/internal/cli"
)

// GeneratePalette creates the command palette for the CLI
func GeneratePalette(params *cli.CmdParams) []*cobra.Command {
	return []*cobra.Command{
		NewAccount(params),
		NewDeposit(params),
		NewWithdraw(params),
		NewTransfer(params),
		NewBalance(params),
		NewHistory(params),
		NewATM(params),
		NewBank(params),
		NewServices(params),
		NewEvents(params),
		NewConfig(params),
		NewHelp(params),
		NewVersion(params),
	}
}
