// Package logging builds the zap logger shared by the binaries.
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// New returns a production (JSON) logger in gin release mode and a
// development logger otherwise. level, when set, overrides the default level.
func New(ginMode, level string) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if strings.EqualFold(ginMode, "release") {
		cfg = zap.NewProductionConfig()
	}
	if level != "" {
		lvl, err := zap.ParseAtomicLevel(level)
		if err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", level, err)
		}
		cfg.Level = lvl
	}
	return cfg.Build()
}
