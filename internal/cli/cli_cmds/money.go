package cli_cmds

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ZanzyTHEbar/firedragon-ledger/domain/models"
	"github.com/ZanzyTHEbar/firedragon-ledger/internal"
	"github.com/ZanzyTHEbar/firedragon-ledger/internal/cli"
)

func NewDeposit(params *cli.CmdParams) *cobra.Command {
	var pin string

	cmd := &cobra.Command{
		Use:   "deposit <id> <amount>",
		Short: "Deposit money into a user account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}
			account, err := params.Runtime.Authenticate(id, pin)
			if err != nil {
				return err
			}

			rec, err := account.Deposit(cmd.Context(), amount)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deposited %s into account %d, balance %s (record %s)\n",
				rec.Amount.StringFixed(2), id, account.Balance().StringFixed(2), rec.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&pin, "pin", "", "account PIN")
	_ = cmd.MarkFlagRequired("pin")

	return cmd
}

func NewWithdraw(params *cli.CmdParams) *cobra.Command {
	var pin string

	cmd := &cobra.Command{
		Use:   "withdraw <id> <amount>",
		Short: "Withdraw money from a user account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}
			account, err := params.Runtime.Authenticate(id, pin)
			if err != nil {
				return err
			}

			rec, err := account.Withdraw(cmd.Context(), amount)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Withdrew %s from account %d, balance %s (record %s)\n",
				rec.Amount.Neg().StringFixed(2), id, account.Balance().StringFixed(2), rec.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&pin, "pin", "", "account PIN")
	_ = cmd.MarkFlagRequired("pin")

	return cmd
}

func NewTransfer(params *cli.CmdParams) *cobra.Command {
	var pin string

	cmd := &cobra.Command{
		Use:   "transfer <from> <to> <amount>",
		Short: "Transfer money between two accounts",
		Long:  `Transfer money from an authenticated user account to any registered account. Both sides are written together or not at all.`,
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			fromID, err := parseID(args[0])
			if err != nil {
				return err
			}
			toID, err := parseID(args[1])
			if err != nil {
				return err
			}
			amount, err := parseAmount(args[2])
			if err != nil {
				return err
			}

			from, err := params.Runtime.Authenticate(fromID, pin)
			if err != nil {
				return err
			}
			to, err := params.Runtime.Directory.Lookup(toID)
			if err != nil {
				return err
			}

			transferID, err := params.Runtime.Transfers.Transfer(cmd.Context(), from, to, amount)
			if err != nil {
				return err
			}

			params.Logger.Info(internal.ComponentCLI, "Transfer %s: %d -> %d (%s)", transferID, fromID, toID, amount)
			fmt.Fprintf(cmd.OutOrStdout(), "Transferred %s from %d to %d (transfer %s)\n",
				amount.StringFixed(2), fromID, toID, transferID)
			fmt.Fprintf(cmd.OutOrStdout(), "Balance of %d: %s\n", fromID, from.Balance().StringFixed(2))
			return nil
		},
	}

	cmd.Flags().StringVar(&pin, "pin", "", "PIN of the sending account")
	_ = cmd.MarkFlagRequired("pin")

	return cmd
}

func NewBalance(params *cli.CmdParams) *cobra.Command {
	var pin string

	cmd := &cobra.Command{
		Use:   "balance <id>",
		Short: "Print the balance of a user account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			account, err := params.Runtime.Authenticate(id, pin)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), account.Balance().StringFixed(2))
			return nil
		},
	}

	cmd.Flags().StringVar(&pin, "pin", "", "account PIN")
	_ = cmd.MarkFlagRequired("pin")

	return cmd
}

// NewHistory prints the ledger of a user account, optionally limited to a time range
func NewHistory(params *cli.CmdParams) *cobra.Command {
	var pin, from, to, format string

	cmd := &cobra.Command{
		Use:     "history <id>",
		Aliases: []string{"statement"},
		Short:   "Print the transaction history of a user account",
		Example: `  fdl history 1 --pin 1234
  fdl history 1 --pin 1234 --from "2024-01-01 00:00:00" --to "2024-01-31 23:59:59" --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			r, err := parseRange(from, to)
			if err != nil {
				return err
			}
			account, err := params.Runtime.Authenticate(id, pin)
			if err != nil {
				return err
			}

			records := account.Ledger().History(r)
			if format == "json" {
				return writeJSON(cmd.OutOrStdout(), records)
			}
			return printRecords(cmd, records)
		},
	}

	cmd.Flags().StringVar(&pin, "pin", "", "account PIN")
	cmd.Flags().StringVar(&from, "from", "", "start of the range, inclusive")
	cmd.Flags().StringVar(&to, "to", "", "end of the range, inclusive; a bare date covers the whole day")
	cmd.Flags().StringVarP(&format, "format", "f", "table", "output format: table or json")
	_ = cmd.MarkFlagRequired("pin")

	return cmd
}

func printRecords(cmd *cobra.Command, records []models.Record) error {
	if len(records) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No transactions")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIMESTAMP\tKIND\tAMOUNT\tCOUNTERPARTY")
	for _, rec := range records {
		counterparty := "-"
		if rec.Counterparty != 0 {
			counterparty = fmt.Sprint(rec.Counterparty)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", formatTime(rec.Timestamp), rec.Kind, rec.Amount.StringFixed(2), counterparty)
	}
	return w.Flush()
}
