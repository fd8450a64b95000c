package internal

import (
	"os"
	"path/filepath"
)

var (
	DefaultAppName          = "firedragon-ledger"
	DefaultAppCMDShortCut   = "fdl"
	DefaultConfigFolderName = DefaultAppName
	DefaultConfigPath       = filepath.Join(os.Getenv("HOME"), ".config", DefaultConfigFolderName)
)
