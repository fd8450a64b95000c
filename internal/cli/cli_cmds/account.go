package cli_cmds

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ZanzyTHEbar/firedragon-ledger/domain/ledger"
	"github.com/ZanzyTHEbar/firedragon-ledger/domain/models"
	"github.com/ZanzyTHEbar/firedragon-ledger/internal"
	"github.com/ZanzyTHEbar/firedragon-ledger/internal/cli"
)

// NewAccount creates the account command group
func NewAccount(params *cli.CmdParams) *cobra.Command {
	accountCmd := &cobra.Command{
		Use:   "account",
		Short: "Register and inspect accounts",
	}

	accountCmd.AddCommand(
		newAccountRegister(params),
		newAccountShow(params),
		newAccountList(params),
		newAccountChangePin(params),
		newAccountVerify(params),
	)

	return accountCmd
}

func newAccountRegister(params *cli.CmdParams) *cobra.Command {
	var (
		id      int64
		name    string
		role    string
		balance string
		secret  string
	)

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a user, ATM or bank account",
		Example: `  fdl account register --id 1 --name alice --pin 1234 --balance 100
  fdl account register --id 900 --name "Main St ATM" --role atm --pin 4521`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			accountRole, err := models.ParseAccountRole(role)
			if err != nil {
				return err
			}
			initial, err := parseAmount(balance)
			if err != nil {
				return err
			}

			account, err := params.Runtime.Directory.Register(cmd.Context(), ledger.RegisterInput{
				ID:             id,
				Name:           name,
				Role:           accountRole,
				InitialBalance: initial,
				Secret:         secret,
			})
			if err != nil {
				return err
			}

			params.Logger.Info(internal.ComponentCLI, "Registered %s account %d", account.Role(), account.ID())
			fmt.Fprintf(cmd.OutOrStdout(), "Registered %s account %d (%s) with balance %s\n",
				account.Role(), account.ID(), account.Name(), account.Balance().StringFixed(2))
			return nil
		},
	}

	cmd.Flags().Int64Var(&id, "id", 0, "account id")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&role, "role", string(models.AccountRoleUser), "account role: user, atm or bank")
	cmd.Flags().StringVar(&balance, "balance", "0", "initial balance")
	cmd.Flags().StringVar(&secret, "pin", "", "PIN for users (required), routing number for ATMs and banks")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newAccountShow(params *cli.CmdParams) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show an account and its balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			account, err := params.Runtime.Directory.Lookup(id)
			if err != nil {
				return err
			}

			info := account.Info()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ID:       %d\n", info.ID)
			fmt.Fprintf(out, "Name:     %s\n", info.Name)
			fmt.Fprintf(out, "Role:     %s\n", info.Role)
			fmt.Fprintf(out, "Balance:  %s\n", account.Balance().StringFixed(2))
			fmt.Fprintf(out, "Records:  %d\n", account.Ledger().Len())
			fmt.Fprintf(out, "Created:  %s\n", formatTime(info.CreatedAt))
			return nil
		},
	}
}

func newAccountList(params *cli.CmdParams) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			accounts := params.Runtime.Directory.Accounts()

			if format == "json" {
				type row struct {
					models.AccountInfo
					Balance string `json:"balance"`
				}
				rows := make([]row, 0, len(accounts))
				for _, a := range accounts {
					info := a.Info()
					rows = append(rows, row{AccountInfo: info, Balance: a.Balance().String()})
				}
				return writeJSON(cmd.OutOrStdout(), rows)
			}

			if len(accounts) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No accounts registered")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tROLE\tBALANCE")
			for _, a := range accounts {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", a.ID(), a.Name(), a.Role(), a.Balance().StringFixed(2))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "table", "output format: table or json")

	return cmd
}

func newAccountChangePin(params *cli.CmdParams) *cobra.Command {
	var oldPin, newPin string

	cmd := &cobra.Command{
		Use:   "change-pin <id>",
		Short: "Change the PIN of a user account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			account, err := params.Runtime.Directory.Lookup(id)
			if err != nil {
				return err
			}
			if err := account.ChangeSecret(cmd.Context(), oldPin, newPin); err != nil {
				return err
			}

			params.Logger.Info(internal.ComponentCLI, "Changed PIN of account %d", id)
			fmt.Fprintf(cmd.OutOrStdout(), "PIN changed for account %d\n", id)
			return nil
		},
	}

	cmd.Flags().StringVar(&oldPin, "pin", "", "current PIN")
	cmd.Flags().StringVar(&newPin, "new-pin", "", "new PIN")
	_ = cmd.MarkFlagRequired("pin")
	_ = cmd.MarkFlagRequired("new-pin")

	return cmd
}

// newAccountVerify recomputes every balance and compares it with the running total
func newAccountVerify(params *cli.CmdParams) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check every ledger for balance drift",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var errs []error
			accounts := params.Runtime.Directory.Accounts()
			for _, a := range accounts {
				if err := a.Ledger().Verify(); err != nil {
					errs = append(errs, fmt.Errorf("account %d: %w", a.ID(), err))
				}
			}
			if err := errors.Join(errs...); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Verified %d ledgers\n", len(accounts))
			return nil
		},
	}
}
