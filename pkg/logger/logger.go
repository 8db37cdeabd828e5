// Package logger wraps a process-wide zap logger and hands out named children.
package logger

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu   sync.RWMutex
	base = zap.NewNop()
)

type Logger struct {
	*zap.SugaredLogger
}

// Configure builds the root logger. Unknown levels fall back to info.
func Configure(level string, production bool) error {
	var cfg zap.Config
	if production {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stdout"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	l, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("build zap logger: %w", err)
	}
	Replace(l)
	return nil
}

// Replace swaps the root logger, mostly useful in tests.
func Replace(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	base = l
}

func Root() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

func MustNamed(name string) *Logger {
	if name == "" {
		panic("logger: empty name")
	}
	return &Logger{SugaredLogger: Root().Named(name).Sugar()}
}

func (l *Logger) Unwrap() *zap.SugaredLogger {
	return l.SugaredLogger
}

// Reflect logs v through reflection-based encoding.
func (l *Logger) Reflect(key string, v any) zap.Field {
	return zap.Reflect(key, v)
}

func Sync() error {
	return Root().Sync()
}
