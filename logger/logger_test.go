package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"debug":   LevelDebug,
		"DEBUG":   LevelDebug,
		"warning": LevelWarn,
		"error":   LevelError,
		"off":     LevelSilent,
		"bogus":   LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestTextFieldsAreSorted(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithWriter(&Config{Level: LevelDebug, Format: "text"}, &buf)
	fl := &FieldLogger{logger: l, fields: map[string]interface{}{"store": 1, "container": "quick_search"}}
	fl.Warn("rewrite failed")

	line := buf.String()
	if !strings.Contains(line, "[WARN] rewrite failed container=quick_search store=1") {
		t.Fatalf("unexpected line: %q", line)
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithWriter(&Config{Level: LevelInfo, Format: "json"}, &buf)
	fl := &FieldLogger{logger: l, fields: map[string]interface{}{"index": "catalog"}}
	fl.With("type", "EXACT").Info("classified")
	l.Debug("dropped")

	var entry map[string]interface{}
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("invalid json %q: %v", buf.String(), err)
	}
	if entry["message"] != "classified" || entry["index"] != "catalog" || entry["type"] != "EXACT" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

func TestSilentLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithWriter(&Config{Level: LevelSilent}, &buf)
	l.Error("nothing")
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}
}
