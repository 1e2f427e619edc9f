// internal/observability/logger_test.go
package observability

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xkilldash9x/scalpel-humanoid/internal/config"
)

// -- Test Helper Functions --

// syncBuffer is a goroutine-safe buffer usable as a zapcore.WriteSyncer.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *syncBuffer) Sync() error { return nil }

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

func (s *syncBuffer) Bytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.buf.Bytes()...)
}

// -- Test Cases --

func TestInitialize(t *testing.T) {
	t.Run("should initialize console logger with colors", func(t *testing.T) {
		ResetForTest()
		t.Cleanup(ResetForTest)
		buf := &syncBuffer{}

		cfg := config.LoggerConfig{
			Level:       "debug",
			Format:      "console",
			ServiceName: "TestService",
			Colors: config.ColorConfig{
				Info: "green",
			},
		}
		Initialize(cfg, buf)
		GetLogger().Info("This is a test message.")
		Sync()

		output := buf.String()
		assert.Contains(t, output, "INFO")
		assert.Contains(t, output, "This is a test message.")
		assert.Contains(t, output, colorGreen, "Info level should be colorized green")
		assert.Contains(t, output, colorReset)
		assert.Contains(t, output, "TestService.", "component name carries a dot suffix")
	})

	t.Run("should initialize json logger", func(t *testing.T) {
		ResetForTest()
		t.Cleanup(ResetForTest)
		buf := &syncBuffer{}

		cfg := config.LoggerConfig{
			Level:       "info",
			Format:      "json",
			ServiceName: "JSONTest",
		}
		Initialize(cfg, buf)
		GetLogger().Warn("This is a JSON message.", zap.String("key", "value"))
		Sync()

		var logEntry map[string]interface{}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &logEntry), "Log output should be valid JSON")

		assert.Equal(t, "WARN", logEntry["level"])
		assert.Equal(t, "JSONTest", logEntry["logger"])
		assert.Equal(t, "This is a JSON message.", logEntry["msg"])
		assert.Equal(t, "value", logEntry["key"])
	})

	t.Run("should write to a log file if configured", func(t *testing.T) {
		ResetForTest()
		t.Cleanup(ResetForTest)
		logFile := filepath.Join(t.TempDir(), "humanoid.log")

		cfg := config.LoggerConfig{
			Level:   "debug",
			Format:  "json",
			LogFile: logFile,
			MaxSize: 1,
		}
		Initialize(cfg, &syncBuffer{})
		GetLogger().Error("This should go to the file.")
		Sync()

		content, err := os.ReadFile(logFile)
		require.NoError(t, err)
		assert.Contains(t, string(content), "This should go to the file.")
	})

	t.Run("should only initialize once", func(t *testing.T) {
		ResetForTest()
		t.Cleanup(ResetForTest)
		buf := &syncBuffer{}

		Initialize(config.LoggerConfig{Level: "info", ServiceName: "First"}, buf)
		logger1 := GetLogger()

		Initialize(config.LoggerConfig{Level: "debug", ServiceName: "Second"}, buf)
		logger2 := GetLogger()

		assert.Equal(t, logger1, logger2)
		logger2.Info("test")
		Sync()

		assert.True(t, strings.Contains(buf.String(), "First"))
		assert.False(t, strings.Contains(buf.String(), "Second"))
	})

	t.Run("invalid level falls back to info", func(t *testing.T) {
		ResetForTest()
		t.Cleanup(ResetForTest)
		buf := &syncBuffer{}

		Initialize(config.LoggerConfig{Level: "shouting", Format: "json"}, buf)
		GetLogger().Debug("hidden")
		GetLogger().Info("visible")
		Sync()

		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "visible")
	})
}

func TestGetLogger(t *testing.T) {
	t.Run("should return a fallback logger if not initialized", func(t *testing.T) {
		ResetForTest()
		logger := GetLogger()
		require.NotNil(t, logger)
	})

	t.Run("should return the global logger after initialization", func(t *testing.T) {
		ResetForTest()
		t.Cleanup(ResetForTest)
		Initialize(config.LoggerConfig{Level: "info", ServiceName: "GlobalTest"}, &syncBuffer{})

		assert.Equal(t, globalLogger.Load(), GetLogger())
	})
}

func TestTagged(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := Tagged(zap.New(core), "signup form", CategoryTyping)
	logger.Debug("typed")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "typing", fields["category"])
	assert.Equal(t, "signup form", fields["context"])

	t.Run("empty label is omitted", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		Tagged(zap.New(core), "", CategoryClick).Info("clicked")
		_, ok := logs.All()[0].ContextMap()["context"]
		assert.False(t, ok)
	})

	t.Run("nil logger is tolerated", func(t *testing.T) {
		assert.NotPanics(t, func() { Tagged(nil, "x", CategoryDelay).Info("noop") })
	})
}

func TestCategoryColorHint(t *testing.T) {
	assert.Equal(t, "green", CategoryClick.ColorHint())
	assert.Equal(t, "yellow", CategoryDropdown.ColorHint())
	assert.Equal(t, "white", Category("unknown").ColorHint())
	for cat := range categoryColors {
		_, ok := colorMap[cat.ColorHint()]
		assert.True(t, ok, "color hint for %s must be a known color", cat)
	}
}

func TestConsoleCategoryPrefix(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)
	buf := &syncBuffer{}

	Initialize(config.LoggerConfig{Level: "debug", Format: "console", ServiceName: "engine"}, buf)
	Tagged(GetLogger(), "login", CategoryClick).Info("click landed")
	GetLogger().Info("gesture done", zap.String("category", string(CategoryGesture)))
	GetLogger().Info("plain line")
	Sync()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], colorGreen+"[click]"+colorReset+" click landed")
	assert.Contains(t, lines[0], `"context": "login"`)
	assert.Contains(t, lines[1], colorMagenta+"[gesture]"+colorReset+" gesture done")
	assert.Contains(t, lines[2], "\tplain line")
	assert.NotContains(t, lines[2], "]")
}

func TestJSONHasNoCategoryPrefix(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)
	buf := &syncBuffer{}

	Initialize(config.LoggerConfig{Level: "info", Format: "json"}, buf)
	Tagged(GetLogger(), "", CategoryRead).Info("page read")
	Sync()

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "page read", entry["msg"])
	assert.Equal(t, "read", entry["category"])
}
