package logging

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLevelVarChangesOutput(t *testing.T) {
	var buf bytes.Buffer
	level := new(slog.LevelVar)
	logger := New(Options{Output: &buf, Level: level}).With("component", "engine")

	logger.Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug record written at info level: %q", buf.String())
	}

	level.Set(slog.LevelDebug)
	logger.Debug("page flushed", "page", 2)
	out := buf.String()
	for _, want := range []string{"page flushed", "component=engine", "page=2"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}

func TestNoHandlersDiscards(t *testing.T) {
	logger := New(Options{})
	logger.Error("nowhere")
	if logger.Enabled(context.Background(), slog.LevelError) {
		t.Error("discarding logger reports enabled handler")
	}
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "pagestorm.log")
	f, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}
	defer f.Close()

	New(Options{Output: f}).Info("ready")
	if info, err := f.Stat(); err != nil || info.Size() == 0 {
		t.Errorf("log file empty after a record: %v", err)
	}
}

func TestToJournalKey(t *testing.T) {
	tests := map[string]string{
		"component":  "COMPONENT",
		"page.count": "PAGE_COUNT",
		"max-pages2": "MAX_PAGES2",
	}
	for in, want := range tests {
		if got := toJournalKey(in); got != want {
			t.Errorf("toJournalKey(%q) = %q, want %q", in, got, want)
		}
	}
}
