package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLevel(tt.in); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestInit(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "unknown"} {
		Init(level)
		if Log == nil {
			t.Errorf("Init(%s) should set Log", level)
		}
	}
}

func TestNew_JSONWriter(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "info", Format: "json", Writer: &buf})

	log.Info("solve completed", "max_flow", 7)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if entry["msg"] != "solve completed" {
		t.Errorf("msg = %v", entry["msg"])
	}
	if entry["max_flow"] != float64(7) {
		t.Errorf("max_flow = %v", entry["max_flow"])
	}
}

func TestNew_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "warn", Format: "text", Writer: &buf})

	log.Info("hidden")
	log.Warn("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info message should be filtered at warn level")
	}
	if !strings.Contains(out, "visible") {
		t.Error("warn message should be written")
	}
}

func TestInitWithConfig_FileOutput(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "nested", "preflow.log")

	InitWithConfig(Config{
		Level:      "info",
		Format:     "json",
		Output:     "file",
		FilePath:   logPath,
		MaxSize:    1,
		MaxBackups: 1,
		MaxAge:     1,
	})
	Info("written to file", "round", 1)

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("log file not created: %v", err)
	}
	if !strings.Contains(string(data), "written to file") {
		t.Errorf("log file content = %q", string(data))
	}
}

func TestWithHelpers(t *testing.T) {
	var buf bytes.Buffer
	InitWithConfig(Config{Level: "debug", Format: "text", Writer: &buf})

	WithRunID("run-42").Info("started")
	WithComponent("barrier").Debug("released")
	Warn("warned")
	Error("failed")

	out := buf.String()
	for _, want := range []string{"run_id=run-42", "component=barrier", "warned", "failed"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %s", want, out)
		}
	}
}
