package logger

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

// TestParseLevel verifies mapping from strings to zapcore.Level and handling
// of unknown values.
func TestParseLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]zapcore.Level{
		"debug": zapcore.DebugLevel,
		"info":  zapcore.InfoLevel,
		"WARN ": zapcore.WarnLevel,
		"error": zapcore.ErrorLevel,
	}
	for s, lvl := range cases {
		got, ok := ParseLevel(s)
		require.True(t, ok)
		require.Equal(t, lvl, got)
	}

	got, ok := ParseLevel("unknown")
	require.False(t, ok)
	require.Equal(t, zapcore.InfoLevel, got)
}

func TestNew(t *testing.T) {
	t.Parallel()

	log := New(zapcore.InfoLevel)
	require.NotNil(t, log)
	require.False(t, log.Core().Enabled(zapcore.DebugLevel))
	require.True(t, log.Core().Enabled(zapcore.WarnLevel))
}
