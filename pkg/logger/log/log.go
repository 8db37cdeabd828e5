// Package log logs through the root logger, enriching every entry with the
// fields carried by the context.
package log

import (
	"context"

	"github.com/nguyentranbao-ct/shop-assistant/pkg/logger"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type fieldsKey struct{}

// WithFields returns a context whose log entries carry keysAndValues.
func WithFields(ctx context.Context, keysAndValues ...any) context.Context {
	prev, _ := ctx.Value(fieldsKey{}).([]any)
	fields := make([]any, 0, len(prev)+len(keysAndValues))
	fields = append(fields, prev...)
	fields = append(fields, keysAndValues...)
	return context.WithValue(ctx, fieldsKey{}, fields)
}

func Fields(ctx context.Context) []any {
	if ctx == nil {
		return nil
	}
	fields, _ := ctx.Value(fieldsKey{}).([]any)
	return fields
}

func Logw(ctx context.Context, level zapcore.Level, msg string, keysAndValues ...any) {
	logw(ctx, level, msg, keysAndValues...)
}

// logw is always two frames below the caller being reported.
func logw(ctx context.Context, level zapcore.Level, msg string, keysAndValues ...any) {
	l := sugar(ctx)
	switch level {
	case zapcore.DebugLevel:
		l.Debugw(msg, keysAndValues...)
	case zapcore.WarnLevel:
		l.Warnw(msg, keysAndValues...)
	case zapcore.ErrorLevel:
		l.Errorw(msg, keysAndValues...)
	default:
		l.Infow(msg, keysAndValues...)
	}
}

func Debugw(ctx context.Context, msg string, keysAndValues ...any) {
	logw(ctx, zapcore.DebugLevel, msg, keysAndValues...)
}

func Infow(ctx context.Context, msg string, keysAndValues ...any) {
	logw(ctx, zapcore.InfoLevel, msg, keysAndValues...)
}

func Warnw(ctx context.Context, msg string, keysAndValues ...any) {
	logw(ctx, zapcore.WarnLevel, msg, keysAndValues...)
}

func Errorw(ctx context.Context, msg string, keysAndValues ...any) {
	logw(ctx, zapcore.ErrorLevel, msg, keysAndValues...)
}

func sugar(ctx context.Context) *zap.SugaredLogger {
	return logger.Root().WithOptions(zap.AddCallerSkip(2)).Sugar().With(Fields(ctx)...)
}
