// Package config provides the configuration system for pagestorm.
//
// Configuration is organized in layers with higher layers overriding lower:
//
//	┌─────────────────────────────┐
//	│  4. Command Line Flags      │  ← Highest priority
//	├─────────────────────────────┤
//	│  3. Environment Variables   │  ← PAGESTORM_<SECTION>_<KEY>
//	├─────────────────────────────┤
//	│  2. Config File             │  ← pagestorm.toml or pagestorm.yaml
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │  ← Lowest priority
//	└─────────────────────────────┘
//
// # Sub-packages
//
//   - loader: TOML and YAML files, environment variables, map merging
//   - watcher: fsnotify-based watching of the config file
//
// # Basic Usage
//
//	cfg := config.New(config.WithFile(path))
//	if err := cfg.Load(ctx); err != nil {
//		return err
//	}
//	paging := cfg.Paging()
//
// Section accessors return snapshot structs. A value of the wrong type
// falls back to the default and is recorded; see ConfigErrors.
//
// # Live Reload
//
// Watch re-reads the file when it changes and calls the registered
// handlers with the new configuration. Only settings that are safe to
// change at runtime, such as the log level, are expected to be applied.
package config
