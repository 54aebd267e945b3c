package logger

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger_UnopenableSink(t *testing.T) {
	var buf bytes.Buffer
	prev := errOut
	errOut = &buf
	t.Cleanup(func() { errOut = prev })

	sink := filepath.Join(t.TempDir(), "missing", "catalog.log")
	log := NewLogger(Log{LogLevel: zapcore.InfoLevel, Sink: sink}, "test")
	require.NotNil(t, log)
	require.Contains(t, buf.String(), "logger: open sink "+sink)
	require.Contains(t, buf.String(), "logging to stderr")
}
