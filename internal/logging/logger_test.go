package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name   string
		config *Config
	}{
		{name: "default config", config: nil},
		{name: "debug level", config: &Config{Level: LevelDebug, Output: &bytes.Buffer{}}},
		{name: "error level", config: &Config{Level: LevelError, Output: &bytes.Buffer{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := NewLogger(tt.config)
			if logger == nil {
				t.Error("NewLogger() returned nil")
			}
		})
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&Config{Level: LevelWarn, Output: &buf})

	logger.Debug("tasklet woken", "name", "heartbeat")
	if buf.Len() != 0 {
		t.Errorf("expected debug message to be filtered at LevelWarn, got: %s", buf.String())
	}

	logger.Warn("queue nearly full", "name", "sensor-readings")
	output := buf.String()
	if !strings.Contains(output, "queue nearly full") {
		t.Errorf("expected warn message in output, got: %s", output)
	}
	if !strings.Contains(output, "name=sensor-readings") {
		t.Errorf("expected key=value pair in output, got: %s", output)
	}
}

func TestLoggerFormattedVariants(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&Config{Level: LevelDebug, Output: &buf})

	logger.Infof("tasklet %s executed in %dus", "consumer", 42)
	output := buf.String()
	if !strings.Contains(output, "tasklet consumer executed in 42us") {
		t.Errorf("expected formatted message, got: %s", output)
	}
}

func TestGlobalLoggerFunctions(t *testing.T) {
	var buf bytes.Buffer
	SetDefault(NewLogger(&Config{Level: LevelDebug, Output: &buf}))

	Debug("debug message", "key", "value")
	output := buf.String()
	if !strings.Contains(output, "debug message") {
		t.Errorf("expected debug message, got: %s", output)
	}
	if !strings.Contains(output, "key=value") {
		t.Errorf("expected key=value, got: %s", output)
	}

	buf.Reset()
	Info("info message")
	if !strings.Contains(buf.String(), "info message") {
		t.Errorf("expected info message, got: %s", buf.String())
	}

	buf.Reset()
	Warn("warning message")
	if !strings.Contains(buf.String(), "warning message") {
		t.Errorf("expected warning message, got: %s", buf.String())
	}

	buf.Reset()
	Error("error message")
	if !strings.Contains(buf.String(), "error message") {
		t.Errorf("expected error message, got: %s", buf.String())
	}
}

func TestComponentTagsEveryLine(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&Config{Level: LevelDebug, Output: &buf})
	executorLog := logger.Component("executor")

	executorLog.Debug("tasklet admitted to run queue", "tasklet", "blink")
	output := buf.String()
	if !strings.Contains(output, "[executor]") {
		t.Errorf("expected component tag in output, got: %s", output)
	}
	if !strings.Contains(output, "tasklet=blink") {
		t.Errorf("expected key=value pair preserved alongside component tag, got: %s", output)
	}

	buf.Reset()
	logger.Info("system starting")
	if strings.Contains(buf.String(), "[executor]") {
		t.Errorf("expected the untagged parent logger not to carry the child's component tag, got: %s", buf.String())
	}
}

func TestDefaultReturnsSameInstanceUntilReplaced(t *testing.T) {
	SetDefault(nil)
	first := Default()
	second := Default()
	if first != second {
		t.Error("expected Default() to return the same logger instance across calls")
	}
}
