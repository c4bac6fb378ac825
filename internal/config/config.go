package config

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/dshills/pagestorm/internal/config/loader"
	"github.com/dshills/pagestorm/internal/config/watcher"
	"github.com/dshills/pagestorm/internal/vfs"
)

// DefaultEnvPrefix is the prefix of environment overrides.
const DefaultEnvPrefix = "PAGESTORM_"

// Source identifies a configuration layer.
type Source int

// Configuration layers, lowest priority first.
const (
	SourceDefaults Source = iota
	SourceFile
	SourceEnv
	SourceFlags
	numSources
)

// String returns the layer name.
func (s Source) String() string {
	switch s {
	case SourceDefaults:
		return "defaults"
	case SourceFile:
		return "file"
	case SourceEnv:
		return "environment"
	case SourceFlags:
		return "flags"
	default:
		return "unknown"
	}
}

// Config provides unified access to the pagestorm configuration.
// It is safe for concurrent use; the file watcher reloads it from its own
// goroutine.
type Config struct {
	mu sync.RWMutex

	fs        vfs.VFS
	path      string
	envPrefix string

	layers [numSources]map[string]any
	merged map[string]any

	// configErrors stores errors encountered during configuration access.
	configErrors map[string]error
}

// Option configures a Config instance.
type Option func(*Config)

// WithFile sets the configuration file. Its format follows the extension.
func WithFile(path string) Option {
	return func(c *Config) {
		c.path = path
	}
}

// WithFS sets the file system the configuration file is read from.
func WithFS(fsys vfs.VFS) Option {
	return func(c *Config) {
		if fsys != nil {
			c.fs = fsys
		}
	}
}

// WithEnvPrefix sets the environment variable prefix. An empty prefix
// disables environment overrides.
func WithEnvPrefix(prefix string) Option {
	return func(c *Config) {
		c.envPrefix = prefix
	}
}

// New creates a Config holding the built-in defaults.
func New(opts ...Option) *Config {
	c := &Config{
		fs:        vfs.NewOSFS(),
		envPrefix: DefaultEnvPrefix,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.layers[SourceDefaults] = defaultConfig()
	c.remerge()
	return c
}

// Load reads the configuration file and the environment, then validates
// the result.
func (c *Config) Load(_ context.Context) error {
	if err := c.loadFile(); err != nil {
		return err
	}
	if err := c.loadEnvironment(); err != nil {
		return err
	}
	return c.Validate()
}

// Reload re-reads the configuration file and validates the result.
func (c *Config) Reload() error {
	if err := c.loadFile(); err != nil {
		return err
	}
	return c.Validate()
}

// Path returns the configuration file path, or "" when there is none.
func (c *Config) Path() string {
	return c.path
}

func (c *Config) loadFile() error {
	if c.path == "" {
		return nil
	}
	l, err := loader.ForPath(c.fs, c.path)
	if err != nil {
		return err
	}
	data, err := l.Load()
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.layers[SourceFile] = data
	c.configErrors = nil
	c.remergeLocked()
	return nil
}

func (c *Config) loadEnvironment() error {
	if c.envPrefix == "" {
		return nil
	}
	data, err := loader.NewEnvLoader(c.envPrefix).Load()
	if err != nil {
		return fmt.Errorf("loading environment: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.layers[SourceEnv] = data
	c.remergeLocked()
	return nil
}

func (c *Config) remerge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.remergeLocked()
}

func (c *Config) remergeLocked() {
	var merged map[string]any
	for _, layer := range c.layers {
		merged = loader.DeepMerge(merged, layer)
	}
	c.merged = merged
}

// Watch reloads the configuration whenever its file changes and calls
// onReload with the reload result. It returns once the watcher is running;
// watching stops when ctx is cancelled.
func (c *Config) Watch(ctx context.Context, onReload func(*Config, error)) error {
	if c.path == "" {
		return nil
	}
	w, err := watcher.New()
	if err != nil {
		return err
	}
	if err := w.Watch(c.path); err != nil {
		w.Stop()
		return err
	}
	w.OnChange(func(watcher.Event) {
		onReload(c, c.Reload())
	})
	w.Start()

	go func() {
		<-ctx.Done()
		w.Stop()
	}()
	return nil
}

// Get returns the value at the given path from the merged configuration.
func (c *Config) Get(path string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return getPath(c.merged, path)
}

// GetString returns a string value at the given path.
func (c *Config) GetString(path string) (string, error) {
	v, ok := c.Get(path)
	if !ok {
		return "", ErrSettingNotFound
	}
	s, ok := v.(string)
	if !ok {
		return "", &TypeError{Path: path, Expected: "string", Actual: typeName(v)}
	}
	return s, nil
}

// GetInt returns an integer value at the given path.
func (c *Config) GetInt(path string) (int, error) {
	v, ok := c.Get(path)
	if !ok {
		return 0, ErrSettingNotFound
	}
	switch val := v.(type) {
	case int:
		return val, nil
	case int64:
		return int(val), nil
	case uint64:
		return int(val), nil
	case float64:
		if val != float64(int(val)) {
			return 0, &TypeError{Path: path, Expected: "int", Actual: "float64"}
		}
		return int(val), nil
	default:
		return 0, &TypeError{Path: path, Expected: "int", Actual: typeName(v)}
	}
}

// GetBool returns a boolean value at the given path.
func (c *Config) GetBool(path string) (bool, error) {
	v, ok := c.Get(path)
	if !ok {
		return false, ErrSettingNotFound
	}
	b, ok := v.(bool)
	if !ok {
		return false, &TypeError{Path: path, Expected: "bool", Actual: typeName(v)}
	}
	return b, nil
}

// Set sets a value at the given path in the flags layer.
func (c *Config) Set(path string, value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.layers[SourceFlags] == nil {
		c.layers[SourceFlags] = make(map[string]any)
	}
	if err := setPath(c.layers[SourceFlags], path, value); err != nil {
		return err
	}
	c.remergeLocked()
	return nil
}

// Merged returns a copy of the merged configuration.
func (c *Config) Merged() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return loader.Clone(c.merged)
}

// defaultConfig returns the default configuration values.
func defaultConfig() map[string]any {
	return map[string]any{
		"device": map[string]any{
			"enabled":      true,
			"medium":       MediumMemory,
			"path":         "",
			"size":         1 << 20,
			"probe":        false,
			"max_banks":    64,
			"max_transfer": 4096,
		},
		"paging": map[string]any{
			"page_capacity":   64,
			"max_line_length": 220,
			"wrap_width":      37,
			"max_pages":       0,
			"spill":           true,
			"spill_dir":       "",
		},
		"undo": map[string]any{
			"levels": 10,
		},
		"editor": map[string]any{
			"view_height": 23,
		},
		"logging": map[string]any{
			"level":   "info",
			"file":    "",
			"journal": false,
		},
		"script": map[string]any{
			"init": "",
		},
	}
}

// getPath retrieves a value from a nested map using a dot-separated path.
func getPath(m map[string]any, path string) (any, bool) {
	parts, ok := splitPath(path)
	if !ok {
		return nil, false
	}

	current := any(m)
	for _, part := range parts {
		cm, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		if current, ok = cm[part]; !ok {
			return nil, false
		}
	}
	return current, true
}

// setPath sets a value in a nested map using a dot-separated path.
func setPath(m map[string]any, path string, value any) error {
	parts, ok := splitPath(path)
	if !ok {
		return ErrInvalidPath
	}

	current := m
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part]
		if !ok {
			next = make(map[string]any)
			current[part] = next
		}
		nextMap, ok := next.(map[string]any)
		if !ok {
			return ErrInvalidPath
		}
		current = nextMap
	}
	current[parts[len(parts)-1]] = value
	return nil
}

func splitPath(path string) ([]string, bool) {
	if path == "" {
		return nil, false
	}
	parts := strings.Split(path, ".")
	for _, p := range parts {
		if p == "" {
			return nil, false
		}
	}
	return parts, true
}

// typeName returns the type name for error messages.
func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "nil"
	case string:
		return "string"
	case int, int64, uint64:
		return "int"
	case float64:
		return "float64"
	case bool:
		return "bool"
	case []any:
		return "[]any"
	case map[string]any:
		return "map"
	default:
		return fmt.Sprintf("%T", v)
	}
}
