package cli_cmds

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ZanzyTHEbar/firedragon-ledger/internal/cli"
)

// NewATM creates the atm command group. Every subcommand takes the id of a
// registered ATM account as its first argument.
func NewATM(params *cli.CmdParams) *cobra.Command {
	atmCmd := &cobra.Command{
		Use:   "atm",
		Short: "Operate an ATM",
	}

	atmCmd.AddCommand(
		newATMDepositBank(params),
		newATMDepositUser(params),
		newATMWithdraw(params),
		newATMCash(params),
	)

	return atmCmd
}

func newATMDepositBank(params *cli.CmdParams) *cobra.Command {
	return &cobra.Command{
		Use:   "deposit-bank <atm-id> <amount>",
		Short: "Load cash into an ATM and record it in the bank log",
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
			atm, err := params.Runtime.ATM(cmd.Context(), atmID)
			if err != nil {
				return err
			}

			deposit, err := atm.BankDeposit(cmd.Context(), amount)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ATM %d loaded with %s, cash %s (entry %s)\n",
				atmID, deposit.Amount.StringFixed(2), atm.Cash().StringFixed(2), deposit.ID)
			return nil
		},
	}
}

func newATMDepositUser(params *cli.CmdParams) *cobra.Command {
	var pin string

	cmd := &cobra.Command{
		Use:   "deposit-user <atm-id> <user-id> <amount>",
		Short: "Deposit cash into a user account at an ATM",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			atmID, err := parseID(args[0])
			if err != nil {
				return err
			}
			userID, err := parseID(args[1])
			if err != nil {
				return err
			}
			amount, err := parseAmount(args[2])
			if err != nil {
				return err
			}
			atm, err := params.Runtime.ATM(cmd.Context(), atmID)
			if err != nil {
				return err
			}
			user, err := params.Runtime.Authenticate(userID, pin)
			if err != nil {
				return err
			}

			rec, err := atm.UserDeposit(cmd.Context(), user, amount)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deposited %s into account %d at ATM %d, balance %s\n",
				rec.Amount.StringFixed(2), userID, atmID, user.Balance().StringFixed(2))
			return nil
		},
	}

	cmd.Flags().StringVar(&pin, "pin", "", "user PIN")
	_ = cmd.MarkFlagRequired("pin")

	return cmd
}

func newATMWithdraw(params *cli.CmdParams) *cobra.Command {
	var pin string

	cmd := &cobra.Command{
		Use:   "withdraw <atm-id> <user-id> <amount>",
		Short: "Withdraw cash from a user account at an ATM",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			atmID, err := parseID(args[0])
			if err != nil {
				return err
			}
			userID, err := parseID(args[1])
			if err != nil {
				return err
			}
			amount, err := parseAmount(args[2])
			if err != nil {
				return err
			}
			atm, err := params.Runtime.ATM(cmd.Context(), atmID)
			if err != nil {
				return err
			}
			user, err := params.Runtime.Authenticate(userID, pin)
			if err != nil {
				return err
			}

			rec, err := atm.Withdraw(cmd.Context(), user, amount)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Withdrew %s from account %d at ATM %d, balance %s\n",
				rec.Amount.Neg().StringFixed(2), userID, atmID, user.Balance().StringFixed(2))
			return nil
		},
	}

	cmd.Flags().StringVar(&pin, "pin", "", "user PIN")
	_ = cmd.MarkFlagRequired("pin")

	return cmd
}

func newATMCash(params *cli.CmdParams) *cobra.Command {
	return &cobra.Command{
		Use:   "cash <atm-id>",
		Short: "Print the cash an ATM has received from the bank",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			atmID, err := parseID(args[0])
			if err != nil {
				return err
			}
			atm, err := params.Runtime.ATM(cmd.Context(), atmID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), atm.Cash().StringFixed(2))
			return nil
		},
	}
}
