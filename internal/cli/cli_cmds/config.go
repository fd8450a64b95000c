package cli_cmds

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/ZanzyTHEbar/firedragon-ledger/internal/cli"
)

// NewConfig creates a config command group
func NewConfig(params *cli.CmdParams) *cobra.Command {
	configCmd := &cobra.Command{
		Use:         "config",
		Short:       "Inspect the effective configuration",
		Long:        `Show configuration values after defaults, the config file, FIREDRAGON_ environment variables and flags are applied.`,
		Annotations: map[string]string{cli.SkipRuntimeAnnotation: "true"},
	}

	configCmd.AddCommand(newConfigGet(params), newConfigList(params))

	return configCmd
}

func newConfigGet(params *cli.CmdParams) *cobra.Command {
	return &cobra.Command{
		Use:         "get <key>",
		Short:       "Get a configuration value",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{cli.SkipRuntimeAnnotation: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			value, ok := params.Config.Settings()[args[0]]
			if !ok {
				return fmt.Errorf("unknown configuration key %q", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%v\n", value)
			return nil
		},
	}
}

func newConfigList(params *cli.CmdParams) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:         "list",
		Short:       "List all configuration values",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{cli.SkipRuntimeAnnotation: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			settings := params.Config.Settings()
			if format == "json" {
				return writeJSON(cmd.OutOrStdout(), settings)
			}

			keys := make([]string, 0, len(settings))
			for k := range settings {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(cmd.OutOrStdout(), "%s = %v\n", k, settings[k])
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "table", "output format: table or json")

	return cmd
}
