package main

import (
	"slices"

	"placeplanner/shared/go/config"
	"placeplanner/shared/go/logging"
)

// loadConfig reads configuration and installs the global logger.
func loadConfig() (*config.Config, *logging.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	logger := logging.New(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	logging.SetGlobalLogger(logger)

	if slices.Contains(cfg.CORS.AllowedOrigins, "*") {
		logger.Warn("CORS allows any origin")
	}
	return cfg, logger, nil
}
