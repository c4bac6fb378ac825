package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dshills/pagestorm/internal/vfs"
)

func TestDefaults(t *testing.T) {
	c := New(WithEnvPrefix(""))
	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	p := c.Paging()
	if p.PageCapacity != 64 || p.MaxLineLength != 220 || p.WrapWidth != 37 || !p.Spill {
		t.Errorf("Paging() = %+v", p)
	}
	if d := c.Device(); !d.Enabled || d.Medium != MediumMemory || d.Size != 1<<20 || d.MaxTransfer != 4096 {
		t.Errorf("Device() = %+v", d)
	}
	if c.Undo().Levels != 10 || c.Editor().ViewHeight != 23 {
		t.Errorf("Undo() = %+v, Editor() = %+v", c.Undo(), c.Editor())
	}
	if c.Logging().Level != "info" {
		t.Errorf("Logging() = %+v", c.Logging())
	}
}

func TestLoadLayers(t *testing.T) {
	fsys := vfs.NewMemFS()
	fsys.WriteFile("/etc/pagestorm.yaml", []byte(`
paging:
  page_capacity: 32
  wrap_width: 20
device:
  medium: file
  path: /tmp/swap
`), 0o644)

	t.Setenv("PAGESTORM_PAGING_PAGE_CAPACITY", "16")
	t.Setenv("PAGESTORM_LOG_LEVEL", "debug")

	c := New(WithFS(fsys), WithFile("/etc/pagestorm.yaml"))
	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := c.Set("undo.levels", 3); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"env beats file", c.Paging().PageCapacity, 16},
		{"file beats defaults", c.Paging().WrapWidth, 20},
		{"defaults", c.Paging().MaxLineLength, 220},
		{"file string", c.Device().Path, "/tmp/swap"},
		{"env mapping", c.Logging().Level, "debug"},
		{"flags", c.Undo().Levels, 3},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		path  string
		value any
	}{
		{"page capacity too large", "paging.page_capacity", 256},
		{"line length zero", "paging.max_line_length", 0},
		{"wrap past line", "paging.wrap_width", 221},
		{"no undo", "undo.levels", 0},
		{"transfer too long", "device.max_transfer", 70000},
		{"device past address space", "device.size", 1<<24 + 1},
		{"unknown medium", "device.medium", "tape"},
		{"unknown level", "logging.level", "loud"},
		{"wrong type", "paging.page_capacity", "many"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(WithEnvPrefix(""))
			c.Set(tt.path, tt.value)
			err := c.Validate()
			if err == nil {
				t.Fatal("Validate() = nil")
			}
			if !errors.Is(err, ErrValidationFailed) && !errors.Is(err, ErrTypeMismatch) {
				t.Errorf("Validate() error = %v", err)
			}
		})
	}

	if err := New(WithEnvPrefix("")).Validate(); err != nil {
		t.Errorf("defaults fail validation: %v", err)
	}
}

func TestGetters(t *testing.T) {
	c := New(WithEnvPrefix(""))
	c.Set("custom.ratio", 1.5)
	c.Set("custom.whole", 2.0)

	if _, err := c.GetInt("custom.ratio"); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("GetInt(1.5) error = %v", err)
	}
	if v, err := c.GetInt("custom.whole"); err != nil || v != 2 {
		t.Errorf("GetInt(2.0) = %d, %v", v, err)
	}
	if _, err := c.GetString("custom.missing"); !errors.Is(err, ErrSettingNotFound) {
		t.Errorf("GetString(missing) error = %v", err)
	}
	if _, err := c.GetBool("paging.page_capacity"); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("GetBool(int) error = %v", err)
	}
	if err := c.Set("a..b", 1); !errors.Is(err, ErrInvalidPath) {
		t.Errorf("Set(a..b) error = %v", err)
	}

	merged := c.Merged()
	merged["paging"].(map[string]any)["spill"] = false
	if !c.Paging().Spill {
		t.Error("Merged() returned shared maps")
	}
}

func TestLoadErrors(t *testing.T) {
	fsys := vfs.NewMemFS()
	fsys.WriteFile("/bad.toml", []byte("[paging\n"), 0o644)

	if err := New(WithFS(fsys), WithFile("/bad.toml"), WithEnvPrefix("")).Load(context.Background()); err == nil {
		t.Error("Load() of malformed TOML succeeded")
	}
	if err := New(WithFS(fsys), WithFile("/c.ini"), WithEnvPrefix("")).Load(context.Background()); err == nil {
		t.Error("Load() of unsupported format succeeded")
	}
	if err := New(WithFS(fsys), WithFile("/missing.toml"), WithEnvPrefix("")).Load(context.Background()); err != nil {
		t.Errorf("Load() of missing file error = %v", err)
	}
}

func TestWatchReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pagestorm.toml")
	if err := os.WriteFile(path, []byte("[logging]\nlevel = \"info\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	c := New(WithFile(path), WithEnvPrefix(""))
	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	levels := make(chan string, 8)
	err := c.Watch(ctx, func(c *Config, err error) {
		if err == nil {
			levels <- c.Logging().Level
		}
	})
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	if err := os.WriteFile(path, []byte("[logging]\nlevel = \"debug\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(5 * time.Second)
	for {
		select {
		case level := <-levels:
			if level == "debug" {
				return
			}
		case <-deadline:
			t.Fatal("reload not observed within 5s")
		}
	}
}
