// Package logger holds the process-wide zap logger. Call Initialize
// once at startup; before that Log is a no-op so library code can log
// unconditionally.
package logger

import "go.uber.org/zap"

var Log = zap.NewNop()

func Initialize(level string) error {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return err
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = lvl

	zl, err := cfg.Build()
	if err != nil {
		return err
	}

	Log = zl
	return nil
}
