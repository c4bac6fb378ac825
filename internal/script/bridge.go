package script

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/pagestorm/internal/document"
	"github.com/dshills/pagestorm/internal/engine"
)

// Bridge exposes a document to Lua as the global table "editor".
type Bridge struct {
	doc *document.Document
}

// NewBridge creates a Bridge over doc.
func NewBridge(doc *document.Document) *Bridge {
	return &Bridge{doc: doc}
}

// Install registers the editor table in s.
func (b *Bridge) Install(s *State) {
	mod := s.L.SetFuncs(s.L.NewTable(), map[string]lua.LGFunction{
		"insert":       b.insert,
		"newline":      b.newline,
		"delete":       b.delete,
		"move":         b.move,
		"goto_line":    b.gotoLine,
		"page_down":    b.pageDown,
		"page_up":      b.pageUp,
		"undo":         b.undo,
		"redo":         b.redo,
		"can_undo":     b.canUndo,
		"can_redo":     b.canRedo,
		"line":         b.line,
		"position":     b.position,
		"status":       b.status,
		"modified":     b.modified,
		"new_document": b.newDocument,
		"open":         b.open,
		"save":         b.save,
	})
	s.L.SetGlobal("editor", mod)
}

func (b *Bridge) eng() *engine.Engine { return b.doc.Engine() }

// result pushes true, or nil and the status text.
func (b *Bridge) result(L *lua.LState, err error) int {
	if err == nil {
		L.Push(lua.LTrue)
		return 1
	}
	msg := b.eng().Status()
	if msg == "" {
		msg = err.Error()
	}
	L.Push(lua.LNil)
	L.Push(lua.LString(msg))
	return 2
}

func (b *Bridge) insert(L *lua.LState) int {
	return b.result(L, b.eng().InsertText(L.CheckString(1)))
}

func (b *Bridge) newline(L *lua.LState) int {
	_, err := b.eng().Newline()
	return b.result(L, err)
}

func (b *Bridge) delete(L *lua.LState) int {
	_, err := b.eng().Delete()
	return b.result(L, err)
}

// move(direction [, count])
func (b *Bridge) move(L *lua.LState) int {
	name := L.CheckString(1)
	d, ok := engine.ParseDirection(name)
	if !ok {
		L.ArgError(1, "unknown direction "+name)
		return 0
	}
	count := L.OptInt(2, 1)
	for i := 0; i < count; i++ {
		if err := b.eng().Move(d); err != nil {
			return b.result(L, err)
		}
	}
	return b.result(L, nil)
}

func (b *Bridge) gotoLine(L *lua.LState) int {
	return b.result(L, b.eng().GotoLine(L.CheckInt(1)))
}

func (b *Bridge) pageDown(L *lua.LState) int {
	return b.result(L, b.eng().PageDown())
}

func (b *Bridge) pageUp(L *lua.LState) int {
	return b.result(L, b.eng().PageUp())
}

func (b *Bridge) undo(L *lua.LState) int {
	return b.result(L, b.eng().Undo())
}

func (b *Bridge) redo(L *lua.LState) int {
	return b.result(L, b.eng().Redo())
}

func (b *Bridge) canUndo(L *lua.LState) int {
	L.Push(lua.LBool(b.eng().CanUndo()))
	return 1
}

func (b *Bridge) canRedo(L *lua.LState) int {
	L.Push(lua.LBool(b.eng().CanRedo()))
	return 1
}

// line([row]) returns a row of the resident page, counted from 1. The
// default is the cursor row.
func (b *Bridge) line(L *lua.LState) int {
	e := b.eng()
	row := L.OptInt(1, e.Cursor().Y+1)
	if row < 1 || row > e.Count() {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LString(e.Line(row - 1)))
	return 1
}

func (b *Bridge) position(L *lua.LState) int {
	p := b.eng().Position()
	t := L.NewTable()
	t.RawSetString("line", lua.LNumber(p.Line))
	t.RawSetString("column", lua.LNumber(p.Column))
	t.RawSetString("page", lua.LNumber(p.Page))
	t.RawSetString("pages", lua.LNumber(p.Pages))
	t.RawSetString("total", lua.LNumber(p.Total))
	L.Push(t)
	return 1
}

func (b *Bridge) status(L *lua.LState) int {
	L.Push(lua.LString(b.eng().Status()))
	return 1
}

func (b *Bridge) modified(L *lua.LState) int {
	L.Push(lua.LBool(b.doc.Modified()))
	return 1
}

func (b *Bridge) newDocument(L *lua.LState) int {
	return b.result(L, b.eng().NewDocument())
}

func (b *Bridge) open(L *lua.LState) int {
	return b.result(L, b.doc.Open(L.CheckString(1)))
}

// save([path])
func (b *Bridge) save(L *lua.LState) int {
	if L.GetTop() >= 1 {
		return b.result(L, b.doc.SaveAs(L.CheckString(1)))
	}
	return b.result(L, b.doc.Save())
}
