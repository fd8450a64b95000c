/*
Copyright © 2024 FinalRoundAI

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ZanzyTHEbar/firedragon-ledger/internal"
)

// SkipRuntimeAnnotation marks commands that run without opening storage
const SkipRuntimeAnnotation = "firedragon/skip-runtime"

// RootCMD wraps the root cobra.Command
type RootCMD struct {
	Root *cobra.Command
}

// NewRootCMD creates a new RootCMD with the given parameters
func NewRootCMD(params *CmdParams) *RootCMD {
	return &RootCMD{
		Root: NewRoot(params),
	}
}

// NewRoot creates and configures the root command
func NewRoot(params *CmdParams) *cobra.Command {
	// rootCmd represents the base command when called without any subcommands
	rootCmd := &cobra.Command{
		Use:           params.Use,
		Aliases:       []string{params.Alias},
		Short:         params.Short,
		Long:          params.Long,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return params.prepare(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return params.Close()
		},
	}

	// Validate palette
	if params.Palette == nil {
		params.Palette = []*cobra.Command{}
	}

	// Add commands to the root
	rootCmd.AddCommand(params.Palette...)

	// Define persistent flags for the root command
	rootCmd.PersistentFlags().StringVar(&params.ConfigFile, "config", params.ConfigFile, "config file (default is ./config.json)")
	rootCmd.PersistentFlags().StringVar(&params.StorageDriver, "storage-driver", "", "storage driver: sqlite, csv or memory")
	rootCmd.PersistentFlags().StringVar(&params.StoragePath, "storage-path", "", "SQLite file or CSV directory")

	return rootCmd
}

// prepare loads the configuration and opens the runtime unless the command
// opted out or a runtime was injected
func (p *CmdParams) prepare(cmd *cobra.Command) error {
	if p.Config == nil || p.ConfigFile != "" {
		cfg, logger, err := internal.Init(p.ConfigFile)
		if err != nil {
			return err
		}
		p.Config = cfg
		p.Logger = logger
	}
	if p.Logger == nil {
		p.Logger = internal.GetLogger()
	}

	if p.StorageDriver != "" {
		p.Config.Storage.Driver = p.StorageDriver
	}
	if p.StoragePath != "" {
		p.Config.Storage.Path = p.StoragePath
	}
	if err := p.Config.Validate(); err != nil {
		return err
	}

	if _, skip := cmd.Annotations[SkipRuntimeAnnotation]; skip || p.Runtime != nil {
		return nil
	}

	rt, err := OpenRuntime(cmd.Context(), p.Config, p.Logger)
	if err != nil {
		return fmt.Errorf("error starting ledger: %w", err)
	}
	p.Runtime = rt
	p.ownsRuntime = true

	p.Logger.Debug(internal.ComponentCLI, "Running %s against %s storage", cmd.CommandPath(), p.Config.Storage.Driver)
	return nil
}
