package script

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/pagestorm/internal/vfs"
)

// DefaultExecutionTimeout bounds a single script run.
const DefaultExecutionTimeout = 30 * time.Second

// State wraps a sandboxed gopher-lua state.
type State struct {
	L *lua.LState

	fs      vfs.VFS
	timeout time.Duration
	logger  *slog.Logger
	closed  bool
}

// Option configures a State.
type Option func(*State)

// WithExecutionTimeout bounds each run. Zero disables the bound.
func WithExecutionTimeout(d time.Duration) Option {
	return func(s *State) {
		if d >= 0 {
			s.timeout = d
		}
	}
}

// WithFS sets the file system scripts are read from.
func WithFS(fsys vfs.VFS) Option {
	return func(s *State) {
		if fsys != nil {
			s.fs = fsys
		}
	}
}

// WithLogger sets the logger that receives print output.
func WithLogger(l *slog.Logger) Option {
	return func(s *State) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewState creates a sandboxed Lua state.
func NewState(opts ...Option) *State {
	s := &State{
		fs:      vfs.NewOSFS(),
		timeout: DefaultExecutionTimeout,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "script")

	s.L = lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(s.L)
	s.sandbox()
	return s
}

// openSafeLibraries opens only libraries without file or process access.
func openSafeLibraries(L *lua.LState) {
	for _, lib := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		L.Push(L.NewFunction(lib.fn))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}
}

// sandbox removes loaders and routes print to the log.
func (s *State) sandbox() {
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require", "module"} {
		s.L.SetGlobal(name, lua.LNil)
	}
	s.L.SetGlobal("print", s.L.NewFunction(func(L *lua.LState) int {
		n := L.GetTop()
		parts := make([]string, n)
		for i := 1; i <= n; i++ {
			parts[i-1] = L.ToStringMeta(L.Get(i)).String()
		}
		s.logger.Info(strings.Join(parts, "\t"))
		return 0
	}))
}

// DoFile runs the script at path.
func (s *State) DoFile(ctx context.Context, path string) error {
	src, err := s.fs.ReadFile(path)
	if err != nil {
		return fmt.Errorf("script %s: %w", path, err)
	}
	return s.run(ctx, strings.NewReader(string(src)), path)
}

// DoString runs code.
func (s *State) DoString(ctx context.Context, code string) error {
	return s.run(ctx, strings.NewReader(code), "<string>")
}

func (s *State) run(ctx context.Context, r io.Reader, name string) (err error) {
	if s.closed {
		return ErrStateClosed
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	s.L.SetContext(ctx)
	defer s.L.RemoveContext()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()

	fn, err := s.L.Load(r, name)
	if err != nil {
		return err
	}
	s.L.Push(fn)
	if err := s.L.PCall(0, lua.MultRet, nil); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%s: %w", name, ErrExecutionTimeout)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	s.L.SetTop(0)
	return nil
}

// Close releases the Lua state.
func (s *State) Close() error {
	if s.closed {
		return nil
	}
	s.L.Close()
	s.closed = true
	return nil
}
