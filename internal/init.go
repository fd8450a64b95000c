package internal

import (
	"fmt"
)

// Init loads the configuration and installs the global logger it describes
func Init(configFile string) (*Config, *Logger, error) {
	cfg, err := LoadConfig(configFile)
	if err != nil {
		return nil, GetLogger(), fmt.Errorf("error loading configuration: %w", err)
	}

	level, _ := ParseLogLevel(cfg.Log.Level)
	if cfg.Debug {
		level = LogLevelDebug
	}

	if err := InitGlobalLogger(cfg.Log.Dir, level, AllComponents); err != nil {
		// If logger initialization fails, keep the default logger
		logger := GetLogger()
		logger.SetLevel(level)
		logger.Error(ComponentGeneral, "Error initializing logger: %v", err)
	}

	logger := GetLogger()
	logger.Debug(ComponentConfig, "Using %s storage at %s", cfg.Storage.Driver, cfg.Storage.Path)

	return cfg, logger, nil
}
