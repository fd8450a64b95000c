package cli_cmds

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ZanzyTHEbar/firedragon-ledger/interfaces"
	"github.com/ZanzyTHEbar/firedragon-ledger/internal"
	"github.com/ZanzyTHEbar/firedragon-ledger/internal/cli"
)

// NewEvents creates the events command group
func NewEvents(params *cli.CmdParams) *cobra.Command {
	eventsCmd := &cobra.Command{
		Use:   "events",
		Short: "Follow ledger events published on NATS",
	}

	eventsCmd.AddCommand(newEventsWatch(params))

	return eventsCmd
}

func newEventsWatch(params *cli.CmdParams) *cobra.Command {
	var (
		count   int
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print ledger events as they are published",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !params.Config.NATS.Enabled {
				return errors.New("nats is disabled, set nats.enabled to watch events")
			}

			events := make(chan interfaces.Event, 16)
			subject := params.Config.NATS.Subject + ".>"
			sub, err := params.Runtime.Messaging.Subscribe(subject, func(data []byte) {
				var event interfaces.Event
				if err := json.Unmarshal(data, &event); err != nil {
					params.Logger.Warn(internal.ComponentCLI, "Skipping malformed event: %v", err)
					return
				}
				select {
				case events <- event:
				default:
					params.Logger.Warn(internal.ComponentCLI, "Dropping event %s, consumer too slow", event.ID)
				}
			})
			if err != nil {
				return err
			}
			defer sub.Unsubscribe()

			fmt.Fprintf(cmd.OutOrStdout(), "Watching %s\n", subject)

			var deadline <-chan time.Time
			if timeout > 0 {
				timer := time.NewTimer(timeout)
				defer timer.Stop()
				deadline = timer.C
			}

			for seen := 0; count <= 0 || seen < count; seen++ {
				select {
				case event := <-events:
					fmt.Fprintf(cmd.OutOrStdout(), "%s %-24s %v\n", formatTime(event.Timestamp), event.Type, event.Data)
				case <-deadline:
					return nil
				case <-cmd.Context().Done():
					return nil
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 0, "stop after this many events (0 for no limit)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "stop after this long (0 for no limit)")

	return cmd
}
