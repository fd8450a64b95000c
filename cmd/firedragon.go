package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ZanzyTHEbar/firedragon-ledger/internal"
	"github.com/ZanzyTHEbar/firedragon-ledger/internal/cli"
	"github.com/ZanzyTHEbar/firedragon-ledger/internal/cli/cli_cmds"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// Configuration is loaded by the root command once --config is parsed
	rootParams := &cli.CmdParams{
		Logger:  internal.GetLogger(),
		Palette: nil,
		Use:     internal.DefaultAppName,
		Alias:   internal.DefaultAppCMDShortCut,
		Short:   "Firedragon Ledger",
		Long:    "Firedragon Ledger - accounts, ATMs and a bank exchanging money through append-only ledgers",
	}
	defer func() {
		if err := rootParams.Close(); err != nil {
			rootParams.Logger.Error(internal.ComponentGeneral, "Error closing ledger: %v", err)
		}
	}()

	// Generate command palette
	palette := cli_cmds.GeneratePalette(rootParams)
	rootParams.Palette = palette

	// Create root command
	rootCmd := cli.NewRootCMD(rootParams)

	// Execute root command
	if err := rootCmd.Root.ExecuteContext(ctx); err != nil {
		return fmt.Errorf("error executing root command: %w", err)
	}

	return nil
}
