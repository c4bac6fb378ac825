// Package main is the entry point for the pagestorm editor.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/dshills/pagestorm/internal/app"
	"github.com/dshills/pagestorm/internal/config"
	"github.com/dshills/pagestorm/internal/document"
	"github.com/dshills/pagestorm/internal/logging"
	"github.com/dshills/pagestorm/internal/renderer/backend"
	"github.com/dshills/pagestorm/internal/script"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type options struct {
	configPath string
	logLevel   string
	scriptPath string
	noDevice   bool
	file       string
}

// errExit reports that run already printed what the user needs to see.
var errExit = errors.New("exit")

func parseFlags(args []string, stdout, stderr io.Writer) (options, error) {
	var opts options
	var showVersion, showHelp bool

	fs := flag.NewFlagSet("pagestorm", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "", "Path to configuration file (.toml, .yaml)")
	fs.StringVar(&opts.configPath, "c", "", "Path to configuration file (shorthand)")
	fs.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&opts.scriptPath, "script", "", "Run a Lua script against the file instead of the editor")
	fs.BoolVar(&opts.noDevice, "no-device", false, "Run without an expansion unit")
	fs.BoolVar(&showVersion, "version", false, "Show version information")
	fs.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	fs.BoolVar(&showHelp, "help", false, "Show help message")
	fs.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "pagestorm - paged line editor\n\n")
		fmt.Fprintf(stderr, "Usage: pagestorm [options] [file]\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  pagestorm notes.txt                 Edit a file\n")
		fmt.Fprintf(stderr, "  pagestorm -no-device big.txt        Page through spill files\n")
		fmt.Fprintf(stderr, "  pagestorm -script fix.lua big.txt   Edit without a terminal\n")
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return opts, errExit
		}
		return opts, err
	}
	if showHelp {
		fs.Usage()
		return opts, errExit
	}
	if showVersion {
		fmt.Fprintf(stdout, "pagestorm %s\n", version)
		fmt.Fprintf(stdout, "Commit: %s\n", commit)
		fmt.Fprintf(stdout, "Built: %s\n", date)
		return opts, errExit
	}

	switch fs.NArg() {
	case 0:
	case 1:
		opts.file = fs.Arg(0)
	default:
		return opts, fmt.Errorf("expected at most one file, got %d", fs.NArg())
	}
	return opts, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stdout, stderr)
	if errors.Is(err, errExit) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	cfg, err := loadConfig(ctx, opts)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	level := new(slog.LevelVar)
	lc := cfg.Logging()
	if l, err := logging.ParseLevel(lc.Level); err == nil {
		level.Set(l)
	}
	logOut, closeLog, err := logOutput(lc.File, opts.scriptPath != "", stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer closeLog()
	logger := logging.New(logging.Options{Output: logOut, Level: level, Journal: lc.Journal})

	sess, err := newSession(cfg, logger)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer sess.Close()

	doc := document.New(sess.Engine, document.WithLogger(logger))
	if opts.file != "" {
		if err := doc.Open(opts.file); err != nil {
			if opts.scriptPath != "" {
				fmt.Fprintf(stderr, "Error: %v\n", err)
				return 1
			}
			logger.Warn("open failed", "err", err)
		}
	}

	lua := script.NewState(script.WithLogger(logger))
	defer lua.Close()
	script.NewBridge(doc).Install(lua)
	if initScript := cfg.Script().Init; initScript != "" {
		if err := lua.DoFile(ctx, initScript); err != nil {
			fmt.Fprintf(stderr, "Error: init script: %v\n", err)
			return 1
		}
	}

	if opts.scriptPath != "" {
		if err := lua.DoFile(ctx, opts.scriptPath); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		if status := doc.Engine().Status(); status != "" {
			fmt.Fprintln(stdout, status)
		}
		return 0
	}

	return runInteractive(ctx, cfg, doc, level, logger, stderr)
}

func runInteractive(ctx context.Context, cfg *config.Config, doc *document.Document, level *slog.LevelVar, logger *slog.Logger, stderr io.Writer) int {
	err := cfg.Watch(ctx, func(c *config.Config, err error) {
		if err != nil {
			logger.Warn("config reload failed", "err", err)
			return
		}
		if l, err := logging.ParseLevel(c.Logging().Level); err == nil {
			level.Set(l)
			logger.Info("config reloaded", "log_level", l)
		}
	})
	if err != nil {
		logger.Warn("config watch unavailable", "err", err)
	}

	term, err := backend.NewTerminal()
	if err != nil {
		fmt.Fprintf(stderr, "Error: failed to create terminal: %v\n", err)
		return 1
	}
	application, err := app.New(app.Options{Document: doc, Backend: term, Logger: logger})
	if err != nil {
		fmt.Fprintf(stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}
	if err := application.Run(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// loadConfig loads the configuration file, environment and flags. Without
// -config the user configuration directory is tried.
func loadConfig(ctx context.Context, opts options) (*config.Config, error) {
	path := opts.configPath
	if path == "" {
		if dir, err := os.UserConfigDir(); err == nil {
			path = filepath.Join(dir, "pagestorm", "config.toml")
		}
	}

	cfg := config.New(config.WithFile(path))
	if err := cfg.Load(ctx); err != nil {
		return nil, err
	}
	if opts.logLevel != "" {
		if err := cfg.Set("logging.level", opts.logLevel); err != nil {
			return nil, err
		}
	}
	if opts.noDevice {
		if err := cfg.Set("device.enabled", false); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// logOutput picks where text logs go: the configured file, or stderr in
// script mode. The interactive editor owns the terminal, so without a file
// it logs nowhere.
func logOutput(file string, scripted bool, stderr io.Writer) (io.Writer, func(), error) {
	if file != "" {
		f, err := logging.OpenFile(file)
		if err != nil {
			return nil, nil, err
		}
		return f, func() { _ = f.Close() }, nil
	}
	if scripted {
		return stderr, func() {}, nil
	}
	return nil, func() {}, nil
}
