package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevel_String(t *testing.T) {
	tests := []struct {
		level    Level
		expected string
	}{
		{LevelTrace, "trace"},
		{LevelDebug, "debug"},
		{LevelInfo, "info"},
		{LevelWarn, "warn"},
		{LevelError, "error"},
		{Level(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.level.String(); got != tt.expected {
				t.Errorf("Level.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"WARNING", LevelWarn, false},
		{" error ", LevelError, false},
		{"", LevelInfo, false},
		{"loud", LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNew(t *testing.T) {
	logger := New("test-service")

	require.NotNil(t, logger)
	assert.Equal(t, "test-service", logger.Name())
	assert.Equal(t, LevelInfo, logger.Level())
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithConfig(Config{Level: LevelWarn, Format: FormatText, Output: &buf})

	logger.Debug("hidden")
	logger.Info("hidden too")
	logger.Warn("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "WRN shown")
}

func TestLogger_JSONFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithConfig(Config{Level: LevelDebug, Format: FormatJSON, Output: &buf, Name: "driver"}).
		WithField("run_id", "abc")

	logger.Info("compiled", "module", "hello", "err", errors.New("boom"))

	var data map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &data))
	assert.Equal(t, "info", data["level"])
	assert.Equal(t, "compiled", data["message"])
	assert.Equal(t, "driver", data["logger"])
	assert.Equal(t, "abc", data["run_id"])
	assert.Equal(t, "hello", data["module"])
	assert.Equal(t, "boom", data["err"])
}

func TestLogger_WithFieldDoesNotMutateParent(t *testing.T) {
	var buf bytes.Buffer
	parent := NewWithConfig(Config{Level: LevelInfo, Format: FormatText, Output: &buf})
	_ = parent.WithField("child", true)

	parent.Info("plain")
	assert.NotContains(t, buf.String(), "child")
}

func TestLogger_OddKeyValues(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithConfig(Config{Level: LevelInfo, Format: FormatText, Output: &buf})

	logger.Info("message", "key1", "value1", "dangling")
	logger.Info("message", 42, "ignored")

	assert.Contains(t, buf.String(), "key1=value1")
	assert.NotContains(t, buf.String(), "dangling")
}

func TestTextFormatter_QuotesValuesWithSpaces(t *testing.T) {
	f := &TextFormatter{}
	out, err := f.Format(&Entry{
		Timestamp: time.Unix(0, 0),
		Level:     LevelInfo,
		Message:   "msg",
		Fields:    Fields{"path": "a b", "n": 3},
	})
	require.NoError(t, err)
	assert.Equal(t, "INF msg n=3 path=\"a b\"\n", string(out))
}

func TestConsoleFormatter_NoColors(t *testing.T) {
	f := &ConsoleFormatter{DisableColors: true}
	out, err := f.Format(&Entry{Level: LevelError, Message: "failed", Fields: Fields{"code": "TIMEOUT"}})
	require.NoError(t, err)
	assert.Equal(t, "ERR failed code=TIMEOUT\n", string(out))
}

func TestNewLogger_InvalidValues(t *testing.T) {
	logger, err := NewLogger(LoggerConfig{Name: "x", Level: "nope", Format: "console"})
	require.Error(t, err)
	require.NotNil(t, logger)
	assert.Equal(t, LevelInfo, logger.Level())

	_, err = NewLogger(LoggerConfig{Name: "x", Level: "info", Format: "xml"})
	assert.Error(t, err)
}

func TestDefault(t *testing.T) {
	var buf bytes.Buffer
	prev := Default()
	defer SetDefault(prev)

	SetDefault(NewWithConfig(Config{Level: LevelInfo, Format: FormatText, Output: &buf}))
	Default().Info("via default")
	assert.True(t, strings.Contains(buf.String(), "via default"))
}
