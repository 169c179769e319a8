// Package logging builds the shared zap logger.
package logging

import (
	"go.uber.org/zap"
)

// New returns a logger configured for console use. Verbose enables the
// development config with debug-level output.
func New(verbose bool) (*zap.Logger, error) {
	var cfg zap.Config
	if verbose {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Encoding = "console"
		cfg.DisableCaller = true
		cfg.DisableStacktrace = true
	}

	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop(), err
	}
	zap.ReplaceGlobals(logger)
	return logger, nil
}
