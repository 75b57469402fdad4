// Package logging wraps zap the same way this codebase's services always
// have: a thin constructor that picks a production or development zap.Config
// based on the running Config, rather than every package building its own
// logger ad hoc.
package logging

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/lattice-kv/zsetcore/internal/config"
)

// New builds a *zap.Logger from the repository's Config. Format
// "development" gets zap's human-readable console encoder and debug-level
// stack traces; anything else gets the JSON production encoder.
func New(cfg config.Config) (*zap.Logger, error) {
	var zcfg zap.Config
	if strings.EqualFold(cfg.LogFormat, "development") {
		zcfg = zap.NewDevelopmentConfig()
	} else {
		zcfg = zap.NewProductionConfig()
	}

	level, err := levelFromString(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	return zcfg.Build(zap.AddCaller(), zap.AddCallerSkip(1))
}

func levelFromString(s string) (zapcore.Level, error) {
	switch strings.ToLower(s) {
	case "", "info":
		return zapcore.InfoLevel, nil
	case "debug":
		return zapcore.DebugLevel, nil
	case "warn":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		var lvl zapcore.Level
		if err := lvl.UnmarshalText([]byte(s)); err != nil {
			return zapcore.InfoLevel, err
		}
		return lvl, nil
	}
}
