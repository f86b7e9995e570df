package logger

import (
	"context"
	"log"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type ctxKey int

const loggerKey ctxKey = iota

var base = zap.NewNop().Sugar()

// Run builds the process-wide logger. Call once from main.
func Run(level string) *zap.SugaredLogger {
	lvl := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		log.Printf("unknown log level `%s`, falling back to info", level)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = lvl
	zl, err := cfg.Build()
	if err != nil {
		log.Fatalf("can't build zap logger: %v", err)
	}

	base = zl.Sugar()
	return base
}

// WithLogger puts a request-scoped logger into the context.
func WithLogger(ctx context.Context, l *zap.SugaredLogger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// Log returns the logger from the context or the process-wide one.
func Log(ctx context.Context) *zap.SugaredLogger {
	if l, ok := ctx.Value(loggerKey).(*zap.SugaredLogger); ok {
		return l
	}
	return base
}
