package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  zapcore.Level
		ok    bool
	}{
		{"debug", zapcore.DebugLevel, true},
		{" WARN ", zapcore.WarnLevel, true},
		{"error", zapcore.ErrorLevel, true},
		{"verbose", zapcore.InfoLevel, false},
	}

	for _, tt := range tests {
		got, ok := ParseLogLevel(tt.input)
		assert.Equal(t, tt.want, got, tt.input)
		assert.Equal(t, tt.ok, ok, tt.input)
	}
}

func TestFromContextFallsBackToGlobal(t *testing.T) {
	t.Parallel()

	require.Same(t, Logger(), FromContext(context.Background()))
}

func TestContextLoggerCarriesFields(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	ctx := ToContext(context.Background(), zap.New(core).Sugar())
	ctx = WithKV(WithName(ctx, "coordinator"), "pid", "actor-1")

	InfoKV(ctx, "event added", "name", "E1")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "coordinator", entries[0].LoggerName)
	assert.Equal(t, "event added", entries[0].Message)
	assert.Equal(t, "actor-1", entries[0].ContextMap()["pid"])
	assert.Equal(t, "E1", entries[0].ContextMap()["name"])
}

func TestSetLevel(t *testing.T) {
	previous := Level()
	t.Cleanup(func() { SetLevel(previous) })

	SetLevel(zapcore.WarnLevel)
	assert.Equal(t, zapcore.WarnLevel, Level())
	assert.False(t, Logger().Desugar().Core().Enabled(zapcore.InfoLevel))
	assert.True(t, Logger().Desugar().Core().Enabled(zapcore.ErrorLevel))
}

func TestLevelHelpersWriteAtTheirLevel(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	ctx := ToContext(context.Background(), zap.New(core).Sugar())

	Info(ctx, "listening")
	WarnKV(ctx, "slow shutdown", "after", "2s")
	ErrorKV(ctx, "listen failed", "error", "address in use")

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
	assert.Equal(t, "address in use", entries[2].ContextMap()["error"])
}
