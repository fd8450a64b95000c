package cli_cmds

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ZanzyTHEbar/firedragon-ledger/internal"
	"github.com/ZanzyTHEbar/firedragon-ledger/internal/cli"
)

// NewVersion creates a version command for the ledger
func NewVersion(params *cli.CmdParams) *cobra.Command {
	versionCmd := &cobra.Command{
		Use:         "version",
		Short:       "Print the version of the ledger",
		Long:        `Print the version information for the ledger including build details.`,
		Annotations: map[string]string{cli.SkipRuntimeAnnotation: "true"},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "Firedragon Ledger")
			fmt.Fprintln(cmd.OutOrStdout(), "=================")
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", internal.VersionInfo())
		},
	}

	return versionCmd
}
