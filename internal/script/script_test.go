package script

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/dshills/pagestorm/internal/document"
	"github.com/dshills/pagestorm/internal/engine"
	"github.com/dshills/pagestorm/internal/engine/backing"
	"github.com/dshills/pagestorm/internal/reu"
	"github.com/dshills/pagestorm/internal/vfs"
)

type fixture struct {
	state *State
	doc   *document.Document
	fs    *vfs.MemFS
	log   *bytes.Buffer
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	unit := reu.NewUnit(reu.NewMemoryMedium(backing.DefaultCapacity))
	store, err := backing.Open(unit, unit.Host(), backing.WithCapacity(backing.DefaultCapacity))
	if err != nil {
		t.Fatalf("backing.Open() error = %v", err)
	}
	eng, err := engine.New(engine.WithStore(store))
	if err != nil {
		t.Fatalf("engine.New() error = %v", err)
	}

	f := &fixture{fs: vfs.NewMemFS(), log: &bytes.Buffer{}}
	f.doc = document.New(eng, document.WithFS(f.fs))
	logger := slog.New(slog.NewTextHandler(f.log, nil))
	f.state = NewState(append([]Option{WithFS(f.fs), WithLogger(logger)}, opts...)...)
	NewBridge(f.doc).Install(f.state)
	t.Cleanup(func() { f.state.Close() })
	return f
}

func (f *fixture) run(t *testing.T, code string) {
	t.Helper()
	if err := f.state.DoString(context.Background(), code); err != nil {
		t.Fatalf("DoString() error = %v", err)
	}
}

func numbered(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "line %d\n", i)
	}
	return b.String()
}

func TestEditAndSave(t *testing.T) {
	f := newFixture(t)
	f.run(t, `
		assert(editor.insert("hello"))
		assert(editor.newline())
		assert(editor.insert("world"))
		assert(editor.save("/out.txt"))
	`)

	got, err := f.fs.ReadFile("/out.txt")
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(got) != "hello\nworld\n" {
		t.Errorf("saved = %q", got)
	}
	if f.doc.Modified() {
		t.Error("document modified after save")
	}
}

func TestNavigation(t *testing.T) {
	f := newFixture(t)
	f.fs.WriteFile("/doc.txt", []byte(numbered(130)), 0o644)
	f.run(t, `
		assert(editor.open("/doc.txt"))
		assert(editor.goto_line(130))
		local p = editor.position()
		assert(p.line == 130, "line " .. p.line)
		assert(p.page == 3 and p.pages == 3 and p.total == 130)
		assert(editor.line() == "line 129")
		assert(editor.page_up())
		assert(editor.position().page == 2)
		local ok, msg = editor.goto_line(500)
		assert(ok == nil and msg == "LINE 500 NOT FOUND", msg)
	`)
}

func TestUndoRedo(t *testing.T) {
	f := newFixture(t)
	f.run(t, `
		assert(not editor.can_undo())
		local ok, msg = editor.undo()
		assert(ok == nil and msg == "NOTHING TO UNDO", msg)
		editor.insert("ab")
		assert(editor.can_undo())
		assert(editor.undo())
		assert(editor.line() == "a")
		assert(editor.redo())
		assert(editor.line() == "ab")
		assert(editor.modified())
	`)
}

func TestMove(t *testing.T) {
	f := newFixture(t)
	f.run(t, `
		editor.insert("abcdef")
		assert(editor.move("left", 3))
		assert(editor.position().column == 4)
		assert(editor.move("line_start"))
		assert(editor.position().column == 1)
	`)

	err := f.state.DoString(context.Background(), `editor.move("sideways")`)
	if err == nil || !strings.Contains(err.Error(), "unknown direction") {
		t.Errorf("move(sideways) error = %v", err)
	}
}

func TestSandbox(t *testing.T) {
	f := newFixture(t)
	tests := []string{
		`dofile("/etc/passwd")`,
		`loadfile("/etc/passwd")`,
		`load("return 1")`,
		`require("os")`,
		`io.open("/etc/passwd")`,
		`os.exit(1)`,
	}
	for _, code := range tests {
		t.Run(code, func(t *testing.T) {
			if err := f.state.DoString(context.Background(), code); err == nil {
				t.Errorf("DoString(%q) succeeded", code)
			}
		})
	}

	f.run(t, `assert(string.upper("a") == "A" and math.max(1, 2) == 2 and #table.concat({"x"}) == 1)`)
}

func TestPrintLogs(t *testing.T) {
	f := newFixture(t)
	f.run(t, `print("from", "script", 42)`)
	if out := f.log.String(); !strings.Contains(out, "from\tscript\t42") && !strings.Contains(out, `from\tscript\t42`) {
		t.Errorf("log = %q", out)
	}
}

func TestDoFile(t *testing.T) {
	f := newFixture(t)
	f.fs.WriteFile("/edit.lua", []byte(`editor.insert("from file")`), 0o644)
	if err := f.state.DoFile(context.Background(), "/edit.lua"); err != nil {
		t.Fatalf("DoFile() error = %v", err)
	}
	if got := string(f.doc.Engine().Line(0)); got != "from file" {
		t.Errorf("line = %q", got)
	}
	if err := f.state.DoFile(context.Background(), "/missing.lua"); err == nil {
		t.Error("DoFile(missing) succeeded")
	}
}

func TestTimeout(t *testing.T) {
	f := newFixture(t, WithExecutionTimeout(50*time.Millisecond))
	err := f.state.DoString(context.Background(), `while true do end`)
	if !errors.Is(err, ErrExecutionTimeout) {
		t.Fatalf("DoString() error = %v, want ErrExecutionTimeout", err)
	}
	f.run(t, `assert(true)`)
}

func TestClosed(t *testing.T) {
	f := newFixture(t)
	f.state.Close()
	if err := f.state.DoString(context.Background(), `x = 1`); !errors.Is(err, ErrStateClosed) {
		t.Errorf("DoString() error = %v, want ErrStateClosed", err)
	}
}
