package log

import (
	"context"
	"strings"
	"testing"

	"github.com/nguyentranbao-ct/shop-assistant/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	prev := logger.Root()
	logger.Replace(zap.New(core))
	t.Cleanup(func() { logger.Replace(prev) })

	ctx := WithFields(context.Background(), "request_id", "req-1")
	ctx = WithFields(ctx, "session_id", "s-1")

	Infow(ctx, "hello", "k", "v")
	Errorw(ctx, "failed", "times", 3)

	entries := logs.All()
	require.Len(t, entries, 2)

	first := entries[0].ContextMap()
	assert.Equal(t, "hello", entries[0].Message)
	assert.Equal(t, "req-1", first["request_id"])
	assert.Equal(t, "s-1", first["session_id"])
	assert.Equal(t, "v", first["k"])

	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "failed", entries[1].Message)
	assert.EqualValues(t, 3, entries[1].ContextMap()["times"])
}

func TestCallerIsLogSite(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	prev := logger.Root()
	logger.Replace(zap.New(core, zap.AddCaller()))
	t.Cleanup(func() { logger.Replace(prev) })

	ctx := context.Background()
	Infow(ctx, "helper")
	Logw(ctx, zapcore.WarnLevel, "direct")

	entries := logs.All()
	require.Len(t, entries, 2)
	for _, e := range entries {
		require.True(t, e.Caller.Defined, e.Message)
		assert.True(t, strings.HasSuffix(e.Caller.File, "log_test.go"), "%s logged from %s", e.Message, e.Caller.File)
	}
}

func TestFields_ParentUnchanged(t *testing.T) {
	parent := WithFields(context.Background(), "a", 1)
	_ = WithFields(parent, "b", 2)

	assert.Equal(t, []any{"a", 1}, Fields(parent))
	assert.Nil(t, Fields(context.Background()))
}
