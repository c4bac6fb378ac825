package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dshills/pagestorm/internal/config"
	"github.com/dshills/pagestorm/internal/logging"
)

func numbered(n int) string {
	var b strings.Builder
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, "line %d\n", i)
	}
	return b.String()
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile(%s) error = %v", name, err)
	}
	return path
}

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    options
		wantErr bool
	}{
		{"empty", nil, options{}, false},
		{"file", []string{"a.txt"}, options{file: "a.txt"}, false},
		{"short config", []string{"-c", "x.toml", "a.txt"}, options{configPath: "x.toml", file: "a.txt"}, false},
		{"all", []string{"-config", "x.yaml", "-log-level", "debug", "-script", "s.lua", "-no-device", "a.txt"},
			options{configPath: "x.yaml", logLevel: "debug", scriptPath: "s.lua", noDevice: true, file: "a.txt"}, false},
		{"two files", []string{"a.txt", "b.txt"}, options{}, true},
		{"unknown flag", []string{"-bogus"}, options{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			got, err := parseFlags(tt.args, &stdout, &stderr)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseFlags() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("parseFlags() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestVersionAndHelp(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run(context.Background(), []string{"-version"}, &stdout, &stderr); code != 0 {
		t.Fatalf("run(-version) = %d", code)
	}
	if !strings.HasPrefix(stdout.String(), "pagestorm dev") {
		t.Errorf("version output = %q", stdout.String())
	}

	stdout.Reset()
	if code := run(context.Background(), []string{"-h"}, &stdout, &stderr); code != 0 {
		t.Fatalf("run(-h) = %d", code)
	}
	if !strings.Contains(stderr.String(), "Usage: pagestorm") {
		t.Errorf("help output = %q", stderr.String())
	}
}

func TestRunScript(t *testing.T) {
	dir := t.TempDir()
	spillDir := filepath.Join(dir, "spill")
	cfgPath := writeFile(t, dir, "config.toml", fmt.Sprintf("[paging]\nspill_dir = %q\n", spillDir))
	text := numbered(130)

	tests := []struct {
		name  string
		extra []string
	}{
		{"device", nil},
		{"spill", []string{"-no-device"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := writeFile(t, dir, tt.name+".txt", text)
			lua := writeFile(t, dir, tt.name+".lua", `
assert(editor.goto_line(100))
assert(editor.insert("X"))
assert(editor.position().line == 100)
assert(editor.save())
`)
			args := append([]string{"-c", cfgPath, "-script", lua}, tt.extra...)
			args = append(args, doc)

			var stdout, stderr bytes.Buffer
			if code := run(context.Background(), args, &stdout, &stderr); code != 0 {
				t.Fatalf("run() = %d, stderr = %s", code, stderr.String())
			}
			if strings.TrimSpace(stdout.String()) != "SAVED" {
				t.Errorf("stdout = %q, want SAVED", stdout.String())
			}

			got, err := os.ReadFile(doc)
			if err != nil {
				t.Fatalf("ReadFile() error = %v", err)
			}
			want := strings.Replace(text, "line 100\n", "Xline 100\n", 1)
			if string(got) != want {
				t.Error("saved file does not match the edit")
			}

			left, _ := filepath.Glob(filepath.Join(spillDir, "*"))
			if len(left) != 0 {
				t.Errorf("spill files left behind: %v", left)
			}
		})
	}
}

func TestRunScriptFailure(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "none.toml")
	lua := writeFile(t, dir, "bad.lua", `error("boom")`)

	var stdout, stderr bytes.Buffer
	if code := run(context.Background(), []string{"-c", cfgPath, "-script", lua}, &stdout, &stderr); code != 1 {
		t.Fatalf("run() = %d, want 1", code)
	}
	if !strings.Contains(stderr.String(), "boom") {
		t.Errorf("stderr = %q", stderr.String())
	}
}

func TestRunBadLogLevel(t *testing.T) {
	dir := t.TempDir()
	var stdout, stderr bytes.Buffer
	args := []string{"-c", filepath.Join(dir, "none.toml"), "-log-level", "loud"}
	if code := run(context.Background(), args, &stdout, &stderr); code != 1 {
		t.Fatalf("run() = %d, want 1", code)
	}
	if !strings.HasPrefix(stderr.String(), "Error:") {
		t.Errorf("stderr = %q", stderr.String())
	}
}

func TestSessionFileMedium(t *testing.T) {
	dir := t.TempDir()
	cfg := config.New(config.WithFile(filepath.Join(dir, "none.toml")))
	if err := cfg.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	swap := filepath.Join(dir, "unit.swap")
	cfg.Set("device.medium", config.MediumFile)
	cfg.Set("device.path", swap)

	s, err := newSession(cfg, logging.New(logging.Options{}))
	if err != nil {
		t.Fatalf("newSession() error = %v", err)
	}
	if !s.Engine.JournalEnabled() {
		t.Error("JournalEnabled() = false with a unit attached")
	}
	if _, err := os.Stat(swap); err != nil {
		t.Errorf("swap file missing: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if _, err := os.Stat(swap); err != nil {
		t.Errorf("named swap file removed on close: %v", err)
	}
}

func TestSessionWithoutDevice(t *testing.T) {
	dir := t.TempDir()
	cfg := config.New(config.WithFile(filepath.Join(dir, "none.toml")))
	if err := cfg.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	cfg.Set("device.enabled", false)
	cfg.Set("paging.spill", false)

	s, err := newSession(cfg, logging.New(logging.Options{}))
	if err != nil {
		t.Fatalf("newSession() error = %v", err)
	}
	defer s.Close()
	if s.spill != nil {
		t.Error("spill store created with paging.spill off")
	}
	if s.Engine.JournalEnabled() {
		t.Error("JournalEnabled() = true without a unit")
	}
	if s.Engine.MaxPages() != 1 {
		t.Errorf("MaxPages() = %d, want 1", s.Engine.MaxPages())
	}
}
