package logging

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LogLevelDebug, ParseLevel("debug"))
	assert.Equal(t, LogLevelInfo, ParseLevel("info"))
	assert.Equal(t, LogLevelWarn, ParseLevel("warn"))
	assert.Equal(t, LogLevelWarn, ParseLevel("WARNING"))
	assert.Equal(t, LogLevelError, ParseLevel("Error"))

	// Unknown values fall back to info.
	assert.Equal(t, LogLevelInfo, ParseLevel(""))
	assert.Equal(t, LogLevelInfo, ParseLevel("verbose"))
}

func TestNewLoggerRespectsLevelAndFormat(t *testing.T) {
	var buf strings.Builder
	logger := NewLogger(&LoggerConfig{Level: LogLevelWarn, Format: "text", Output: &buf})

	logger.Debug("d")
	logger.Info("i")
	logger.Warn("w", "k", "v")

	out := buf.String()
	assert.NotContains(t, out, "msg=d")
	assert.NotContains(t, out, "msg=i")
	assert.Contains(t, out, "msg=w")
	assert.Contains(t, out, "k=v")

	buf.Reset()
	jsonLogger := NewLogger(&LoggerConfig{Level: LogLevelInfo, Format: "json", Output: &buf})
	jsonLogger.Info("hello")
	assert.Contains(t, buf.String(), `"msg":"hello"`)
}
