package driver

import (
	"fmt"

	"go.uber.org/zap"
)

// NewLogger builds the compiler's logger. An empty level means "warn";
// verbose switches to the development encoder at debug level.
func NewLogger(level string, verbose bool) (*zap.Logger, error) {
	if verbose {
		cfg := zap.NewDevelopmentConfig()
		cfg.OutputPaths = []string{"stderr"}
		return cfg.Build()
	}
	if level == "" {
		level = "warn"
	}
	atomic, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = atomic
	cfg.Sampling = nil
	return cfg.Build()
}
