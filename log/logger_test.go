package log

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("invalid JSON log line %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestLogger_ContextFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithWriter(Context{BatchID: "b-1", ApplicationID: "SA"}, &buf, zapcore.DebugLevel)
	l.With(Context{RunID: "0042"}).Info("file converted", map[string]any{"rows": 3})

	lines := decodeLines(t, &buf)
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	entry := lines[0]
	if entry["batch_id"] != "b-1" || entry["application_id"] != "SA" || entry["run_id"] != "0042" {
		t.Errorf("missing context fields: %v", entry)
	}
	if entry["level"] != "info" || entry["message"] != "file converted" {
		t.Errorf("unexpected entry: %v", entry)
	}
	if _, ok := entry["timestamp"]; !ok {
		t.Error("missing timestamp")
	}
}

func TestLogger_OmitsEmptyContext(t *testing.T) {
	var buf bytes.Buffer
	NewLoggerWithWriter(Context{}, &buf, zapcore.InfoLevel).Info("hello", nil)

	entry := decodeLines(t, &buf)[0]
	for _, k := range []string{"batch_id", "application_id", "run_id"} {
		if _, ok := entry[k]; ok {
			t.Errorf("unexpected field %q", k)
		}
	}
}

func TestLogger_Level(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithWriter(Context{}, &buf, zapcore.WarnLevel)
	l.Info("dropped", nil)
	l.Warn("kept", nil)

	l.SetLevel(zapcore.DebugLevel)
	l.Debug("kept too", nil)

	lines := decodeLines(t, &buf)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
		ok   bool
	}{
		{"debug", zapcore.DebugLevel, true},
		{"INFO", zapcore.InfoLevel, true},
		{" warn ", zapcore.WarnLevel, true},
		{"error", zapcore.ErrorLevel, true},
		{"loud", zapcore.InfoLevel, false},
	}
	for _, tt := range tests {
		got, ok := ParseLevel(tt.in)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestNop(t *testing.T) {
	l := Nop()
	l.Error("nothing", nil)
	l.Sugar().Infof("still nothing %d", 1)
}
