package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewLogger(t *testing.T) {
	logger := NewLogger(LevelInfo)

	if logger == nil {
		t.Fatal("Expected non-nil logger")
	}

	if logger.minLevel != LevelInfo {
		t.Errorf("Expected minLevel to be %s, got %s", LevelInfo, logger.minLevel)
	}
	if logger.format != FormatJSON {
		t.Errorf("Expected default format json, got %s", logger.format)
	}
}

func TestLogger_ShouldLog(t *testing.T) {
	tests := []struct {
		name     string
		minLevel Level
		logLevel Level
		want     bool
	}{
		{"debug logs when min is debug", LevelDebug, LevelDebug, true},
		{"info logs when min is debug", LevelDebug, LevelInfo, true},
		{"error logs when min is debug", LevelDebug, LevelError, true},
		{"debug does not log when min is info", LevelInfo, LevelDebug, false},
		{"info logs when min is info", LevelInfo, LevelInfo, true},
		{"warn logs when min is info", LevelInfo, LevelWarn, true},
		{"info does not log when min is error", LevelError, LevelInfo, false},
		{"error logs when min is error", LevelError, LevelError, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := NewLogger(tt.minLevel)
			got := logger.shouldLog(tt.logLevel)
			if got != tt.want {
				t.Errorf("shouldLog() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLogger_LogJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger(LevelInfo, FormatJSON, &buf)

	logger.Log(LevelInfo, "navigator.index.changed", "Index changed", map[string]interface{}{
		"index": 3,
		"bound": 5,
	})

	var event Event
	if err := json.Unmarshal(buf.Bytes(), &event); err != nil {
		t.Fatalf("Failed to parse log output as JSON: %v\nOutput: %s", err, buf.String())
	}

	if event.Level != LevelInfo {
		t.Errorf("Expected level %s, got %s", LevelInfo, event.Level)
	}
	if event.Type != "navigator.index.changed" {
		t.Errorf("Expected type 'navigator.index.changed', got %s", event.Type)
	}
	if event.Message != "Index changed" {
		t.Errorf("Expected message 'Index changed', got %s", event.Message)
	}
	// JSON numbers decode as float64
	if event.Payload["index"] != float64(3) {
		t.Errorf("Expected payload index 3, got %v", event.Payload["index"])
	}
	if event.Timestamp == "" {
		t.Error("Expected timestamp to be set")
	}
}

func TestLogger_LogText(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger(LevelDebug, FormatText, &buf)

	logger.Debug("volume.loaded", "Volume loaded", map[string]interface{}{
		"width": 4,
		"depth": 2,
	})

	output := strings.TrimSpace(buf.String())
	if !strings.Contains(output, "volume.loaded Volume loaded") {
		t.Errorf("Expected type and message in output, got: %s", output)
	}
	// payload keys are sorted
	if !strings.HasSuffix(output, "depth=2 width=4") {
		t.Errorf("Expected sorted payload suffix, got: %s", output)
	}
}

func TestLogger_FiltersBelowMinLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger(LevelWarn, FormatJSON, &buf)

	logger.Info("test.info", "Info message", nil)
	logger.Debug("test.debug", "Debug message", nil)

	if buf.Len() != 0 {
		t.Errorf("Expected no output below warn, got: %s", buf.String())
	}

	logger.Error("test.error", "Error message", nil)
	if !strings.Contains(buf.String(), "test.error") {
		t.Errorf("Expected error event, got: %s", buf.String())
	}
}

func TestLogger_NilIsNoop(t *testing.T) {
	var logger *Logger
	logger.Info("test.info", "ignored", nil)
	if err := logger.Close(); err != nil {
		t.Errorf("Close() on nil logger returned %v", err)
	}
}

func TestNewFileLogger(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "nested", "medview.log")

	logger, err := NewFileLogger(LevelInfo, FormatJSON, logPath)
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}

	logger.Info("app.started", "Application started", map[string]interface{}{"version": "test"})
	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "app.started") {
		t.Errorf("Expected log file to contain event, got: %s", data)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"WARN", LevelWarn},
		{" error ", LevelError},
		{"trace", LevelInfo},
		{"", LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}
