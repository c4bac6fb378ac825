package config

import (
	"errors"
	"fmt"
)

// Section accessor methods return snapshot structs. Mutating the returned
// struct does not modify the underlying configuration. Use Config.Set()
// to update configuration values.

// Device media.
const (
	MediumMemory = "memory"
	MediumFile   = "file"
)

// Limits enforced by Validate.
const (
	maxDimension   = 255
	maxTransferCap = 65535
	maxDeviceSize  = 1 << 24
)

// DeviceConfig describes the expansion unit.
type DeviceConfig struct {
	// Enabled attaches a unit. When false the editor runs without one.
	Enabled bool

	// Medium is "memory" or "file".
	Medium string

	// Path is the swap file for the file medium. Empty means a fresh file
	// in the temporary directory.
	Path string

	// Size is the medium size in bytes.
	Size int

	// Probe sizes the store by probing banks instead of trusting Size.
	Probe bool

	// MaxBanks bounds the probe.
	MaxBanks int

	// MaxTransfer bounds a single transfer.
	MaxTransfer int
}

// PagingConfig describes page geometry.
type PagingConfig struct {
	PageCapacity  int
	MaxLineLength int
	WrapWidth     int

	// MaxPages caps the document. Zero means as many as the store holds.
	MaxPages int

	// Spill keeps pages in files when no unit is attached.
	Spill    bool
	SpillDir string
}

// UndoConfig describes the undo journal.
type UndoConfig struct {
	Levels int
}

// EditorConfig describes the view.
type EditorConfig struct {
	ViewHeight int
}

// LoggingConfig describes log output.
type LoggingConfig struct {
	Level   string
	File    string
	Journal bool
}

// ScriptConfig describes startup scripting.
type ScriptConfig struct {
	// Init is a Lua file run before the first key is read.
	Init string
}

// Device returns the expansion unit settings.
func (c *Config) Device() DeviceConfig {
	return DeviceConfig{
		Enabled:     c.getBoolOr("device.enabled", true),
		Medium:      c.getStringOr("device.medium", MediumMemory),
		Path:        c.getStringOr("device.path", ""),
		Size:        c.getIntOr("device.size", 1<<20),
		Probe:       c.getBoolOr("device.probe", false),
		MaxBanks:    c.getIntOr("device.max_banks", 64),
		MaxTransfer: c.getIntOr("device.max_transfer", 4096),
	}
}

// Paging returns the page geometry settings.
func (c *Config) Paging() PagingConfig {
	return PagingConfig{
		PageCapacity:  c.getIntOr("paging.page_capacity", 64),
		MaxLineLength: c.getIntOr("paging.max_line_length", 220),
		WrapWidth:     c.getIntOr("paging.wrap_width", 37),
		MaxPages:      c.getIntOr("paging.max_pages", 0),
		Spill:         c.getBoolOr("paging.spill", true),
		SpillDir:      c.getStringOr("paging.spill_dir", ""),
	}
}

// Undo returns the undo journal settings.
func (c *Config) Undo() UndoConfig {
	return UndoConfig{
		Levels: c.getIntOr("undo.levels", 10),
	}
}

// Editor returns the view settings.
func (c *Config) Editor() EditorConfig {
	return EditorConfig{
		ViewHeight: c.getIntOr("editor.view_height", 23),
	}
}

// Logging returns type-safe access to logging settings.
func (c *Config) Logging() LoggingConfig {
	return LoggingConfig{
		Level:   c.getStringOr("logging.level", "info"),
		File:    c.getStringOr("logging.file", ""),
		Journal: c.getBoolOr("logging.journal", false),
	}
}

// Script returns the scripting settings.
func (c *Config) Script() ScriptConfig {
	return ScriptConfig{
		Init: c.getStringOr("script.init", ""),
	}
}

// Validate checks every section and returns all problems joined.
func (c *Config) Validate() error {
	var errs []error
	check := func(path string, value any, ok bool, msg string) {
		if !ok {
			errs = append(errs, &ValidationError{Path: path, Message: msg, Value: value})
		}
	}

	d := c.Device()
	check("device.medium", d.Medium, d.Medium == MediumMemory || d.Medium == MediumFile,
		fmt.Sprintf("must be %q or %q", MediumMemory, MediumFile))
	check("device.size", d.Size, d.Size > 0 && d.Size <= maxDeviceSize,
		fmt.Sprintf("must be between 1 and %d", maxDeviceSize))
	check("device.max_banks", d.MaxBanks, d.MaxBanks >= 1 && d.MaxBanks <= 256, "must be between 1 and 256")
	check("device.max_transfer", d.MaxTransfer, d.MaxTransfer >= 1 && d.MaxTransfer <= maxTransferCap,
		fmt.Sprintf("must be between 1 and %d", maxTransferCap))

	p := c.Paging()
	check("paging.page_capacity", p.PageCapacity, p.PageCapacity >= 1 && p.PageCapacity <= maxDimension,
		fmt.Sprintf("must be between 1 and %d", maxDimension))
	check("paging.max_line_length", p.MaxLineLength, p.MaxLineLength >= 1 && p.MaxLineLength <= maxDimension,
		fmt.Sprintf("must be between 1 and %d", maxDimension))
	check("paging.wrap_width", p.WrapWidth, p.WrapWidth >= 1 && p.WrapWidth <= p.MaxLineLength,
		"must be between 1 and max_line_length")
	check("paging.max_pages", p.MaxPages, p.MaxPages >= 0, "must not be negative")

	u := c.Undo()
	check("undo.levels", u.Levels, u.Levels >= 1, "must be at least 1")

	e := c.Editor()
	check("editor.view_height", e.ViewHeight, e.ViewHeight >= 1, "must be at least 1")

	l := c.Logging()
	switch l.Level {
	case "debug", "info", "warn", "error":
	default:
		check("logging.level", l.Level, false, "must be debug, info, warn or error")
	}

	for _, err := range c.ConfigErrors() {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// These methods only return the default for ErrSettingNotFound.
// Type errors are recorded and return the default.

func (c *Config) getStringOr(path string, defaultValue string) string {
	v, err := c.GetString(path)
	if err != nil {
		if !errors.Is(err, ErrSettingNotFound) {
			c.recordConfigError(path, err)
		}
		return defaultValue
	}
	return v
}

func (c *Config) getIntOr(path string, defaultValue int) int {
	v, err := c.GetInt(path)
	if err != nil {
		if !errors.Is(err, ErrSettingNotFound) {
			c.recordConfigError(path, err)
		}
		return defaultValue
	}
	return v
}

func (c *Config) getBoolOr(path string, defaultValue bool) bool {
	v, err := c.GetBool(path)
	if err != nil {
		if !errors.Is(err, ErrSettingNotFound) {
			c.recordConfigError(path, err)
		}
		return defaultValue
	}
	return v
}

// recordConfigError stores the first error seen for path.
func (c *Config) recordConfigError(path string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.configErrors == nil {
		c.configErrors = make(map[string]error)
	}
	if _, exists := c.configErrors[path]; !exists {
		c.configErrors[path] = err
	}
}

// ConfigErrors returns any configuration errors encountered during access.
func (c *Config) ConfigErrors() map[string]error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.configErrors == nil {
		return nil
	}
	result := make(map[string]error, len(c.configErrors))
	for k, v := range c.configErrors {
		result[k] = v
	}
	return result
}
