package cli_cmds

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ZanzyTHEbar/firedragon-ledger/internal/cli"
)

// NewBank creates the bank command group
func NewBank(params *cli.CmdParams) *cobra.Command {
	bankCmd := &cobra.Command{
		Use:   "bank",
		Short: "Inspect the bank and its ATM cash-in log",
	}

	bankCmd.AddCommand(
		newBankRecord(params),
		newBankLog(params),
		newBankDetails(params),
	)

	return bankCmd
}

func newBankRecord(params *cli.CmdParams) *cobra.Command {
	return &cobra.Command{
		Use:   "record <atm-id> <amount>",
		Short: "Append an ATM cash-in entry to the bank log",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			atmID, err := parseID(args[0])
			if err != nil {
				return err
			}
			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}

			deposit, err := params.Runtime.Bank.RecordAtmDeposit(cmd.Context(), atmID, amount)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s from ATM %d (entry %s)\n",
				deposit.Amount.StringFixed(2), atmID, deposit.ID)
			return nil
		},
	}
}

func newBankLog(params *cli.CmdParams) *cobra.Command {
	var (
		atmID    int64
		from, to string
		format   string
	)

	cmd := &cobra.Command{
		Use:   "log",
		Short: "List ATM cash-in entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			r, err := parseRange(from, to)
			if err != nil {
				return err
			}

			deposits, err := params.Runtime.Bank.AtmDeposits(cmd.Context(), atmID, r)
			if err != nil {
				return err
			}
			if format == "json" {
				return writeJSON(cmd.OutOrStdout(), deposits)
			}
			if len(deposits) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No ATM deposits")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TIMESTAMP\tATM\tAMOUNT")
			for _, d := range deposits {
				fmt.Fprintf(w, "%s\t%d\t%s\n", formatTime(d.Timestamp), d.AtmID, d.Amount.StringFixed(2))
			}
			return w.Flush()
		},
	}

	cmd.Flags().Int64Var(&atmID, "atm", 0, "only entries of this ATM (0 for all)")
	cmd.Flags().StringVar(&from, "from", "", "start of the range, inclusive")
	cmd.Flags().StringVar(&to, "to", "", "end of the range, inclusive; a bare date covers the whole day")
	cmd.Flags().StringVarP(&format, "format", "f", "table", "output format: table or json")

	return cmd
}

func newBankDetails(params *cli.CmdParams) *cobra.Command {
	return &cobra.Command{
		Use:   "details",
		Short: "Print the bank name and number",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			details := params.Runtime.Bank.Details()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Name:    %s\n", details.Name)
			fmt.Fprintf(out, "Number:  %d\n", details.Number)
			fmt.Fprintf(out, "Time:    %s\n", formatTime(details.Timestamp))
			return nil
		},
	}
}
