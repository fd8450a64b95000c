package cli

import (
	"github.com/spf13/cobra"

	"github.com/ZanzyTHEbar/firedragon-ledger/internal"
)

// CmdParams holds all dependencies needed by command handlers
type CmdParams struct {
	ConfigFile string
	Config     *internal.Config
	Logger     *internal.Logger
	Runtime    *Runtime
	Palette    []*cobra.Command
	Use        string
	Alias      string
	Short      string
	Long       string

	// Flag overrides applied on top of the loaded configuration
	StorageDriver string
	StoragePath   string

	// ownsRuntime is set when the root command opened the runtime itself
	ownsRuntime bool
}

// Close releases the runtime if the root command opened it
func (p *CmdParams) Close() error {
	if p.Runtime == nil || !p.ownsRuntime {
		return nil
	}
	err := p.Runtime.Close()
	p.Runtime = nil
	p.ownsRuntime = false
	return err
}

type CLICMD struct {
	Root *cobra.Command
}

func NewCMD(cmdRoot *cobra.Command) *CLICMD {
	return &CLICMD{
		Root: cmdRoot,
	}
}
