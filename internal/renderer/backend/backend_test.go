package backend

import (
	"testing"

	"github.com/gdamore/tcell/v2"
)

func TestNullBackendSetGetCell(t *testing.T) {
	b := NewNullBackend(80, 24)
	b.Init()

	cell := Cell{Rune: 'X', Attr: AttrReverse}
	b.SetCell(10, 5, cell)
	if got := b.GetCell(10, 5); got != cell {
		t.Errorf("GetCell() = %+v, want %+v", got, cell)
	}

	b.SetCell(-1, 0, cell)
	b.SetCell(100, 0, cell)
	if got := b.GetCell(-1, 0); got != EmptyCell() {
		t.Errorf("GetCell(-1, 0) = %+v, want empty", got)
	}
}

func TestNullBackendRow(t *testing.T) {
	b := NewNullBackend(10, 2)
	b.Init()
	for i, r := range "hi there" {
		b.SetCell(i, 1, Cell{Rune: r})
	}
	if got := b.Row(1); got != "hi there" {
		t.Errorf("Row(1) = %q", got)
	}
	if got := b.Row(0); got != "" {
		t.Errorf("Row(0) = %q, want empty", got)
	}
	b.Clear()
	if got := b.Row(1); got != "" {
		t.Errorf("Row(1) after Clear = %q", got)
	}
}

func TestNullBackendEvents(t *testing.T) {
	b := NewNullBackend(80, 24)
	b.Init()

	b.PostEvent(Event{Type: EventKey, Key: KeyRune, Rune: 'a'})
	if ev := b.PollEvent(); ev.Type != EventKey || ev.Rune != 'a' {
		t.Errorf("PollEvent() = %+v", ev)
	}

	b.Resize(40, 10)
	if w, h := b.Size(); w != 40 || h != 10 {
		t.Errorf("Size() = %d, %d, want 40, 10", w, h)
	}
	if ev := b.PollEvent(); ev.Type != EventResize || ev.Width != 40 {
		t.Errorf("PollEvent() = %+v, want resize", ev)
	}
}

func TestAttrHas(t *testing.T) {
	a := AttrBold | AttrReverse
	if !a.Has(AttrBold) || !a.Has(AttrReverse) || a.Has(AttrDim) {
		t.Errorf("Has() wrong for %b", a)
	}
	if !a.Has(AttrBold | AttrReverse) {
		t.Error("Has() with combined mask = false")
	}
}

func newSimulation(t *testing.T) *Terminal {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	term := NewTerminalWithScreen(screen)
	if err := term.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	screen.SetSize(40, 10)
	t.Cleanup(term.Shutdown)
	return term
}

func TestTerminalCells(t *testing.T) {
	term := newSimulation(t)

	if w, h := term.Size(); w != 40 || h != 10 {
		t.Fatalf("Size() = %d, %d, want 40, 10", w, h)
	}

	cell := Cell{Rune: 'Q', Attr: AttrReverse | AttrBold}
	term.SetCell(3, 4, cell)
	term.Show()
	if got := term.GetCell(3, 4); got != cell {
		t.Errorf("GetCell() = %+v, want %+v", got, cell)
	}
	if got := term.GetCell(99, 99); got != EmptyCell() {
		t.Errorf("GetCell() outside = %+v, want empty", got)
	}
}

func TestTerminalEvents(t *testing.T) {
	term := newSimulation(t)

	tests := []struct {
		name string
		in   Event
		key  Key
		r    rune
	}{
		{"rune", Event{Type: EventKey, Key: KeyRune, Rune: 'z'}, KeyRune, 'z'},
		{"enter", Event{Type: EventKey, Key: KeyEnter}, KeyEnter, 0},
		{"backspace", Event{Type: EventKey, Key: KeyBackspace}, KeyBackspace, 0},
		{"page down", Event{Type: EventKey, Key: KeyPageDown}, KeyPageDown, 0},
		{"ctrl s", Event{Type: EventKey, Key: KeyCtrlS, Mod: ModCtrl}, KeyCtrlS, 0},
		{"ctrl z", Event{Type: EventKey, Key: KeyCtrlZ, Mod: ModCtrl}, KeyCtrlZ, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			term.PostEvent(tt.in)
			ev := term.PollEvent()
			for ev.Type == EventResize {
				ev = term.PollEvent()
			}
			if ev.Type != EventKey || ev.Key != tt.key {
				t.Fatalf("PollEvent() = %+v, want key %v", ev, tt.key)
			}
			if tt.key == KeyRune && ev.Rune != tt.r {
				t.Errorf("Rune = %q, want %q", ev.Rune, tt.r)
			}
		})
	}
}

func TestTerminalInterrupt(t *testing.T) {
	term := newSimulation(t)
	term.PostEvent(Event{Type: EventInterrupt})
	ev := term.PollEvent()
	for ev.Type == EventResize {
		ev = term.PollEvent()
	}
	if ev.Type != EventInterrupt {
		t.Errorf("PollEvent() = %+v, want interrupt", ev)
	}
}
