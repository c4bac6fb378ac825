package loader

import (
	"errors"
	"strings"
	"testing"

	"github.com/dshills/pagestorm/internal/vfs"
)

const tomlConfig = `
[device]
enabled = true
medium = "file"

[paging]
page_capacity = 32
max_line_length = 120
`

const yamlConfig = `
device:
  enabled: false
paging:
  page_capacity: 16
undo:
  levels: 4
`

func TestTOMLLoader(t *testing.T) {
	fsys := vfs.NewMemFS()
	fsys.WriteFile("/pagestorm.toml", []byte(tomlConfig), 0o644)

	config, err := NewTOMLLoaderWithFS(fsys, "/pagestorm.toml").Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	paging, ok := config["paging"].(map[string]any)
	if !ok {
		t.Fatalf("paging = %T, want map", config["paging"])
	}
	if paging["page_capacity"] != int64(32) {
		t.Errorf("page_capacity = %v (%T), want 32", paging["page_capacity"], paging["page_capacity"])
	}
	if device := config["device"].(map[string]any); device["medium"] != "file" {
		t.Errorf("medium = %v", device["medium"])
	}
}

func TestYAMLLoader(t *testing.T) {
	config, err := NewYAMLLoader("").LoadFromReader(strings.NewReader(yamlConfig))
	if err != nil {
		t.Fatalf("LoadFromReader() error = %v", err)
	}
	undo, ok := config["undo"].(map[string]any)
	if !ok {
		t.Fatalf("undo = %T, want map", config["undo"])
	}
	if undo["levels"] != 4 {
		t.Errorf("levels = %v (%T), want 4", undo["levels"], undo["levels"])
	}
	if device := config["device"].(map[string]any); device["enabled"] != false {
		t.Errorf("enabled = %v", device["enabled"])
	}
}

func TestMissingFile(t *testing.T) {
	fsys := vfs.NewMemFS()
	for _, name := range []string{"/none.toml", "/none.yaml"} {
		l, err := ForPath(fsys, name)
		if err != nil {
			t.Fatalf("ForPath(%s) error = %v", name, err)
		}
		config, err := l.Load()
		if config != nil || err != nil {
			t.Errorf("%s: Load() = %v, %v, want nil, nil", name, config, err)
		}
	}
}

func TestForPath(t *testing.T) {
	tests := []struct {
		path    string
		want    string
		wantErr bool
	}{
		{"a.toml", "*loader.TOMLLoader", false},
		{"a.TOML", "*loader.TOMLLoader", false},
		{"a.yaml", "*loader.YAMLLoader", false},
		{"a.yml", "*loader.YAMLLoader", false},
		{"a.json", "", true},
		{"noext", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			l, err := ForPath(vfs.NewMemFS(), tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ForPath() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			switch l.(type) {
			case *TOMLLoader:
				if tt.want != "*loader.TOMLLoader" {
					t.Errorf("got TOML loader for %s", tt.path)
				}
			case *YAMLLoader:
				if tt.want != "*loader.YAMLLoader" {
					t.Errorf("got YAML loader for %s", tt.path)
				}
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	_, err := NewTOMLLoader("").LoadFromReader(strings.NewReader("[paging]\npage_capacity = = 3\n"))
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("TOML error = %v, want *ParseError", err)
	}
	if perr.Line != 2 {
		t.Errorf("ParseError.Line = %d, want 2", perr.Line)
	}
	if !strings.Contains(perr.Error(), "line 2") {
		t.Errorf("Error() = %q", perr.Error())
	}

	_, err = NewYAMLLoader("").LoadFromReader(strings.NewReader("paging: [unclosed\n"))
	if !errors.As(err, &perr) {
		t.Errorf("YAML error = %v, want *ParseError", err)
	}
}

func TestEnvLoader(t *testing.T) {
	l := NewEnvLoader("PAGESTORM_")
	l.environ = func() []string {
		return []string{
			"PAGESTORM_LOG_LEVEL=debug",
			"PAGESTORM_PAGING_PAGE_CAPACITY=32",
			"PAGESTORM_DEVICE_ENABLED=off",
			"PAGESTORM_SWAP_FILE=/tmp/swap",
			"PAGESTORM_BARE=1",
			"HOME=/root",
		}
	}

	config, err := l.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	tests := []struct {
		section, key string
		want         any
	}{
		{"logging", "level", "debug"},
		{"paging", "page_capacity", int64(32)},
		{"device", "enabled", false},
		{"device", "path", "/tmp/swap"},
	}
	for _, tt := range tests {
		section, _ := config[tt.section].(map[string]any)
		if got := section[tt.key]; got != tt.want {
			t.Errorf("%s.%s = %v (%T), want %v", tt.section, tt.key, got, got, tt.want)
		}
	}
	if _, ok := config["bare"]; ok {
		t.Error("variable without a key produced a section")
	}
	if _, ok := config["home"]; ok {
		t.Error("unprefixed variable loaded")
	}
}

func TestDeepMerge(t *testing.T) {
	defaults := map[string]any{
		"paging": map[string]any{"page_capacity": 64, "spill": true},
		"undo":   map[string]any{"levels": 10},
	}
	file := map[string]any{
		"paging": map[string]any{"page_capacity": int64(32)},
	}

	merged := DeepMerge(nil, defaults)
	merged = DeepMerge(merged, file)

	paging := merged["paging"].(map[string]any)
	if paging["page_capacity"] != int64(32) || paging["spill"] != true {
		t.Errorf("merged paging = %v", paging)
	}
	if defaults["paging"].(map[string]any)["page_capacity"] != 64 {
		t.Error("merge modified the defaults")
	}
}
