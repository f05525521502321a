package log

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestLogger_RunContext(t *testing.T) {
	var buf bytes.Buffer
	logger := newLoggerWithWriter("run-123", "jaffle_shop", &buf)

	logger.Info("generation started", map[string]any{"models": 3})

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not JSON: %v", err)
	}

	if entry["run_id"] != "run-123" {
		t.Errorf("run_id = %v, want run-123", entry["run_id"])
	}
	if entry["project"] != "jaffle_shop" {
		t.Errorf("project = %v, want jaffle_shop", entry["project"])
	}
	if entry["message"] != "generation started" {
		t.Errorf("message = %v", entry["message"])
	}
	if entry["level"] != "info" {
		t.Errorf("level = %v, want info", entry["level"])
	}
}

func TestLogger_EmptyProjectOmitted(t *testing.T) {
	var buf bytes.Buffer
	logger := newLoggerWithWriter("run-123", "", &buf)

	logger.Warn("no project name", nil)

	if strings.Contains(buf.String(), `"project"`) {
		t.Errorf("empty project should be omitted: %s", buf.String())
	}
}

func TestLogger_Sugar(t *testing.T) {
	var buf bytes.Buffer
	logger := newLoggerWithWriter("run-123", "jaffle_shop", &buf)

	logger.Sugar().Infof("processing model %s", "orders")

	if !strings.Contains(buf.String(), "processing model orders") {
		t.Errorf("sugar output missing formatted message: %s", buf.String())
	}
}

func TestNop_DiscardsOutput(t *testing.T) {
	// Must not panic even with nil fields.
	logger := Nop()
	logger.Info("discarded", nil)
	logger.Error("also discarded", map[string]any{"k": "v"})
}
