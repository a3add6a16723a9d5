package utils

import (
	"context"
	"runtime"

	"go.uber.org/zap"
)

var level = zap.NewAtomicLevelAt(zap.InfoLevel)

func init() {
	cfg := zap.NewProductionConfig()
	cfg.Level = level
	zap.ReplaceGlobals(zap.Must(cfg.Build()))
}

type loggerKey struct{}

// WithLogger returns a context whose GetLogger answers logger instead of the global one.
func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

func GetLogger(ctx context.Context) *zap.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(loggerKey{}).(*zap.Logger); ok && logger != nil {
			return logger
		}
	}
	return zap.L()
}

// SetLevel changes the level of the global logger, e.g. "debug" or "warn".
func SetLevel(name string) error {
	return level.UnmarshalText([]byte(name))
}

func GetPanicInfo() string {
	buf := make([]byte, 16384)
	l := runtime.Stack(buf, false)
	return string(buf[:l])
}
