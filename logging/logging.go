// Package logging builds the process-wide zap logger.
package logging

import (
	"os"

	"go.uber.org/zap"
)

// New creates a new zap logger. Production config by default; set
// LOG_DEV to get the human-readable development encoder.
func New() *zap.Logger {
	if os.Getenv("LOG_DEV") != "" {
		logger, _ := zap.NewDevelopment()
		return logger
	}
	logger, _ := zap.NewProduction()
	return logger
}
