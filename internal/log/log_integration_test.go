package log

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogging(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "logs", "test.log")

	logger, err := New(Config{
		Level:    "debug",
		FilePath: logPath,
	})
	require.NoError(t, err)

	SetDefaultLogger(logger)
	t.Cleanup(func() { SetDefaultLogger(nil) })

	Debug("Debug message", "test", true)
	Info("Info message", "test", true)
	Warn("Warning message", "test", true)
	Error("Error message", "error", fmt.Errorf("test error"))
	Trace("Trace message")

	logger.Close()

	content, err := os.ReadFile(logPath)
	require.NoError(t, err)

	contentStr := string(content)
	assert.Contains(t, contentStr, "Debug message")
	assert.Contains(t, contentStr, "Info message")
	assert.Contains(t, contentStr, "Warning message")
	assert.Contains(t, contentStr, "Error message")
	assert.Contains(t, contentStr, "test error")
	// Trace is only written when the level is trace
	assert.NotContains(t, contentStr, "Trace message")
}

func TestTraceAndTextFormat(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "trace.log")

	logger, err := New(Config{Level: "trace", FilePath: logPath, Format: "text"})
	require.NoError(t, err)

	SetDefaultLogger(logger)
	t.Cleanup(func() { SetDefaultLogger(nil) })

	Trace("Trace message", "provider", "google")
	logger.Close()

	content, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), `msg="TRACE: Trace message"`)
	assert.Contains(t, string(content), "provider=google")
}

func TestNoFileDiscards(t *testing.T) {
	logger, err := New(Config{Level: "info"})
	require.NoError(t, err)
	logger.Info("goes nowhere")
	logger.Close()
}

func TestSecret(t *testing.T) {
	assert.Equal(t, "****", Secret(""))
	assert.Equal(t, "****", Secret("abcd"))
	assert.Equal(t, "eyJh****(12)", Secret("eyJhbGciOiJI"))
}
