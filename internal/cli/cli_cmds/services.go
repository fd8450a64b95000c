package cli_cmds

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/ZanzyTHEbar/firedragon-ledger/interfaces"
	"github.com/ZanzyTHEbar/firedragon-ledger/internal"
	"github.com/ZanzyTHEbar/firedragon-ledger/internal/cli"
)

// NewServices creates a services command group
func NewServices(params *cli.CmdParams) *cobra.Command {
	servicesCmd := &cobra.Command{
		Use:   "services",
		Short: "Inspect the event services",
		Long:  `Show the status of the actor services that forward ledger events to NATS.`,
	}

	servicesCmd.AddCommand(newServicesList(params), newServicesStatus(params))

	return servicesCmd
}

func newServicesList(params *cli.CmdParams) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all services",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			infos := params.Runtime.Services.GetAllServicesInfo()
			out := cmd.OutOrStdout()

			fmt.Fprintln(out, "Available services:")
			for _, info := range infos {
				fmt.Fprintf(out, "- %s: %s\n", info.Name, info.Status)
				if !info.StartTime.IsZero() {
					fmt.Fprintf(out, "  Started: %s\n", formatTime(info.StartTime))
				}
				fmt.Fprintf(out, "  Events handled: %d\n", info.EventsHandled)
				if info.ErrorCount > 0 {
					fmt.Fprintf(out, "  Errors: %d (last: %s)\n", info.ErrorCount, info.LastError)
				}
				keys := make([]string, 0, len(info.CustomStats))
				for k := range info.CustomStats {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				for _, k := range keys {
					fmt.Fprintf(out, "  %s: %v\n", k, info.CustomStats[k])
				}
			}
			return nil
		},
	}
}

// newServicesStatus publishes a status event describing every service
func newServicesStatus(params *cli.CmdParams) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Publish a system status event",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			event := interfaces.NewEvent(interfaces.EventTypeStatus, internal.DefaultAppName).
				WithClientID(internal.GenerateClientID()).
				WithData("storage", params.Config.Storage.Driver).
				WithData("accounts", len(params.Runtime.Directory.Accounts())).
				WithData("services", params.Runtime.Services.GetAllServicesInfo())

			subject := event.Subject(params.Config.NATS.Subject)
			if err := params.Runtime.Messaging.PublishMessage(cmd.Context(), subject, event); err != nil {
				return fmt.Errorf("publish status: %w", err)
			}

			if !params.Runtime.Messaging.IsConnected() {
				fmt.Fprintln(cmd.OutOrStdout(), "NATS disabled, status not published")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Published status %s on %s at %s\n", event.ID, subject, event.Timestamp.Format(time.RFC3339))
			return nil
		},
	}
}
