package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestLevelGating(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, WARN)

	l.Debug("dropped")
	l.Info("dropped too")
	l.Warn("kept")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 entry, got %d: %q", len(lines), buf.String())
	}
}

func TestFieldsAndErrorValues(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, DEBUG)

	l.Info("created", "purpose", "Broad-Research", "count", 3)

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("entry is not valid JSON: %v", err)
	}
	if entry["purpose"] != "Broad-Research" {
		t.Errorf("purpose = %v", entry["purpose"])
	}
	if entry["count"] != float64(3) {
		t.Errorf("count = %v", entry["count"])
	}
	if entry["level"] != "INFO" {
		t.Errorf("level = %v", entry["level"])
	}
}
