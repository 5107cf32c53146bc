// Package logging builds the zap logger shared by the server and CLIs.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a production JSON logger for mode "release" and a colored
// development logger otherwise.
func New(mode string) (*zap.Logger, error) {
	var cfg zap.Config
	if mode == "release" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	return cfg.Build()
}

// Must is New for command entry points; it falls back to a no-op logger.
func Must(mode string) *zap.Logger {
	l, err := New(mode)
	if err != nil {
		return zap.NewNop()
	}
	return l
}
