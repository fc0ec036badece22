package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestLevelFromString(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{" WARN ", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := levelFromString(tt.in); got != tt.want {
			t.Errorf("levelFromString(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New("info", "json", &buf)
	log.Debug("hidden")
	log.Info("stage completed", "role", "writer")

	var rec map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &rec); err != nil {
		t.Fatalf("expected one JSON record, got %q: %v", buf.String(), err)
	}
	if rec["msg"] != "stage completed" || rec["role"] != "writer" {
		t.Errorf("record = %v", rec)
	}
}

func TestNewText(t *testing.T) {
	var buf bytes.Buffer
	New("warn", "text", &buf).Info("dropped")
	New("warn", "", &buf).Warn("kept")

	out := buf.String()
	if strings.Contains(out, "dropped") || !strings.Contains(out, "msg=kept") {
		t.Errorf("output = %q", out)
	}
}
