// Package window implements the active window: the single page of lines
// resident in working memory, with its cursor and scroll state.
//
// Edits never grow a line past LineLength or the window past PageCapacity
// lines; an edit that would is rejected and leaves the window unchanged.
// Moving the cursor off the top or bottom row leaves it out of range so the
// caller can swap pages.
package window

import (
	"bytes"
	"errors"
	"fmt"
)

// Errors returned by window edits.
var (
	// ErrCapacityExceeded indicates a line at LineLength or a window at PageCapacity.
	ErrCapacityExceeded = errors.New("capacity exceeded")

	// ErrLineFull indicates an edit that would grow a line past LineLength.
	ErrLineFull = fmt.Errorf("line full: %w", ErrCapacityExceeded)

	// ErrPageFull indicates an edit that would grow the window past PageCapacity.
	ErrPageFull = fmt.Errorf("page full: %w", ErrCapacityExceeded)

	// ErrInvalidByte indicates a NUL, CR or LF byte.
	ErrInvalidByte = errors.New("invalid byte")

	// ErrNothingToDelete indicates a backward delete at the top-left corner.
	ErrNothingToDelete = errors.New("nothing to delete")
)

// Config holds the window dimensions.
type Config struct {
	// PageCapacity is the maximum number of lines (N).
	PageCapacity int
	// LineLength is the maximum bytes per line (L).
	LineLength int
	// WrapWidth is the column at which typing splits the line (W).
	WrapWidth int
	// ViewHeight is the number of visible rows.
	ViewHeight int
}

// Cursor is a position within the window. Y is outside [0, Count) only
// between a vertical move off the window and the following page swap.
type Cursor struct {
	X int
	Y int
}

// Change describes the effect of an accepted edit.
type Change struct {
	// LineDelta is the change in line count: -1, 0 or +1.
	LineDelta int
	// Cursor is the cursor after the edit.
	Cursor Cursor
}

// State is a deep copy of the window contents and position.
type State struct {
	Lines  [][]byte
	Cursor Cursor
	Scroll int
}

// Window is the resident page.
type Window struct {
	cfg    Config
	lines  [][]byte
	cursor Cursor
	scroll int
	dirty  bool
}

// New returns a window holding one empty line.
func New(cfg Config) *Window {
	if cfg.ViewHeight < 1 {
		cfg.ViewHeight = 1
	}
	if cfg.WrapWidth < 1 || cfg.WrapWidth > cfg.LineLength {
		cfg.WrapWidth = cfg.LineLength
	}
	w := &Window{cfg: cfg}
	w.Reset(nil)
	return w
}

// Config returns the window dimensions.
func (w *Window) Config() Config { return w.cfg }

// Count returns the number of lines.
func (w *Window) Count() int { return len(w.lines) }

// Line returns line i. The slice must not be modified.
func (w *Window) Line(i int) []byte { return w.lines[i] }

// Lines returns all lines. The slices must not be modified.
func (w *Window) Lines() [][]byte { return w.lines }

// Cursor returns the cursor.
func (w *Window) Cursor() Cursor { return w.cursor }

// Scroll returns the index of the first visible row.
func (w *Window) Scroll() int { return w.scroll }

// Dirty reports whether the window changed since it was loaded or saved.
func (w *Window) Dirty() bool { return w.dirty }

// MarkClean clears the dirty flag.
func (w *Window) MarkClean() { w.dirty = false }

// MarkDirty sets the dirty flag.
func (w *Window) MarkDirty() { w.dirty = true }

// Full reports whether the window holds PageCapacity lines.
func (w *Window) Full() bool { return len(w.lines) >= w.cfg.PageCapacity }

// PastTop reports whether the cursor moved above row 0.
func (w *Window) PastTop() bool { return w.cursor.Y < 0 }

// PastBottom reports whether the cursor moved below the last row.
func (w *Window) PastBottom() bool { return w.cursor.Y >= len(w.lines) }

// Reset replaces the contents with lines, which the window takes ownership
// of. An empty page becomes one empty line. The cursor moves home and the
// window is clean.
func (w *Window) Reset(lines [][]byte) {
	if len(lines) == 0 {
		lines = [][]byte{{}}
	}
	w.lines = lines
	w.cursor = Cursor{}
	w.scroll = 0
	w.dirty = false
}

// SetCursor moves the cursor, clamped to the window contents.
func (w *Window) SetCursor(c Cursor) {
	c.Y = max(0, min(c.Y, len(w.lines)-1))
	c.X = max(0, min(c.X, len(w.lines[c.Y])))
	w.cursor = c
	w.follow()
}

// SetScroll sets the first visible row, clamped to the window contents.
func (w *Window) SetScroll(s int) {
	w.scroll = max(0, min(s, len(w.lines)-1))
}

// State returns a deep copy of the window.
func (w *Window) State() State {
	lines := make([][]byte, len(w.lines))
	for i, l := range w.lines {
		lines[i] = bytes.Clone(l)
	}
	return State{Lines: lines, Cursor: w.cursor, Scroll: w.scroll}
}

// Restore replaces the window with a copy of s and marks it dirty.
func (w *Window) Restore(s State) {
	lines := make([][]byte, len(s.Lines))
	for i, l := range s.Lines {
		lines[i] = bytes.Clone(l)
	}
	w.Reset(lines)
	w.SetCursor(s.Cursor)
	w.SetScroll(s.Scroll)
	w.dirty = true
}

// CheckInsert reports whether Insert(c) would be accepted.
func (w *Window) CheckInsert(c byte) error {
	_, err := w.planInsert(c)
	return err
}

// planInsert validates an insert and reports whether it splits the line.
func (w *Window) planInsert(c byte) (split bool, err error) {
	if c == 0 || c == '\r' || c == '\n' {
		return false, fmt.Errorf("byte %#02x: %w", c, ErrInvalidByte)
	}
	line := w.lines[w.cursor.Y]
	if len(line) >= w.cfg.LineLength {
		return false, fmt.Errorf("line %d: %w", w.cursor.Y, ErrLineFull)
	}
	split = w.cursor.X+1 >= w.cfg.WrapWidth
	if split && w.Full() {
		return true, fmt.Errorf("wrap at column %d: %w", w.cfg.WrapWidth, ErrPageFull)
	}
	return split, nil
}

// Insert puts c at the cursor and advances it. When the cursor reaches or
// passes the wrap width everything from that column on moves to a new line
// below and the cursor follows it to column 0.
func (w *Window) Insert(c byte) (Change, error) {
	split, err := w.planInsert(c)
	if err != nil {
		return Change{}, err
	}

	y, x := w.cursor.Y, w.cursor.X
	line := w.lines[y]
	grown := make([]byte, 0, len(line)+1)
	grown = append(grown, line[:x]...)
	grown = append(grown, c)
	grown = append(grown, line[x:]...)
	w.dirty = true

	if !split {
		w.lines[y] = grown
		w.cursor.X++
		w.follow()
		return Change{Cursor: w.cursor}, nil
	}

	wrap := w.cfg.WrapWidth
	w.lines[y] = grown[:wrap:wrap]
	w.insertLine(y+1, bytes.Clone(grown[wrap:]))
	w.cursor = Cursor{X: 0, Y: y + 1}
	w.follow()
	return Change{LineDelta: 1, Cursor: w.cursor}, nil
}

// CheckDelete reports whether Delete would be accepted.
func (w *Window) CheckDelete() error {
	switch {
	case w.cursor.X > 0:
		return nil
	case w.cursor.Y > 0:
		combined := len(w.lines[w.cursor.Y-1]) + len(w.lines[w.cursor.Y])
		if combined >= w.cfg.LineLength {
			return fmt.Errorf("joined line of %d bytes: %w", combined, ErrLineFull)
		}
		return nil
	default:
		return ErrNothingToDelete
	}
}

// Delete removes the byte before the cursor. At column 0 it joins the line
// onto the previous one.
func (w *Window) Delete() (Change, error) {
	if err := w.CheckDelete(); err != nil {
		return Change{}, err
	}
	w.dirty = true

	y, x := w.cursor.Y, w.cursor.X
	if x > 0 {
		line := w.lines[y]
		w.lines[y] = append(line[:x-1:x-1], line[x:]...)
		w.cursor.X--
		w.follow()
		return Change{Cursor: w.cursor}, nil
	}

	prev := w.lines[y-1]
	joined := make([]byte, 0, len(prev)+len(w.lines[y]))
	joined = append(joined, prev...)
	joined = append(joined, w.lines[y]...)
	w.lines[y-1] = joined
	w.removeLine(y)
	w.cursor = Cursor{X: len(prev), Y: y - 1}
	w.follow()
	return Change{LineDelta: -1, Cursor: w.cursor}, nil
}

// CheckNewline reports whether Newline would be accepted.
func (w *Window) CheckNewline() error {
	if w.Full() {
		return fmt.Errorf("%d lines: %w", len(w.lines), ErrPageFull)
	}
	return nil
}

// Newline splits the line at the cursor.
func (w *Window) Newline() (Change, error) {
	if err := w.CheckNewline(); err != nil {
		return Change{}, err
	}
	w.dirty = true

	y, x := w.cursor.Y, w.cursor.X
	line := w.lines[y]
	w.lines[y] = line[:x:x]
	w.insertLine(y+1, bytes.Clone(line[x:]))
	w.cursor = Cursor{X: 0, Y: y + 1}
	w.follow()
	return Change{LineDelta: 1, Cursor: w.cursor}, nil
}

// Left moves one column left.
func (w *Window) Left() {
	if w.cursor.X > 0 {
		w.cursor.X--
	}
}

// Right moves one column right, up to the end of the line.
func (w *Window) Right() {
	if w.cursor.X < len(w.lines[w.cursor.Y]) {
		w.cursor.X++
	}
}

// Up moves one row up. From row 0 the cursor leaves the window at row -1.
func (w *Window) Up() {
	if w.cursor.Y == 0 {
		w.cursor.Y = -1
		return
	}
	w.cursor.Y--
	w.clampX()
	w.follow()
}

// Down moves one row down. From the last row the cursor leaves the window
// at row Count.
func (w *Window) Down() {
	if w.cursor.Y >= len(w.lines)-1 {
		w.cursor.Y = len(w.lines)
		return
	}
	w.cursor.Y++
	w.clampX()
	w.follow()
}

// Home moves to the first column of the first row.
func (w *Window) Home() {
	w.cursor = Cursor{}
	w.scroll = 0
}

// LineStart moves to column 0.
func (w *Window) LineStart() {
	w.cursor.X = 0
}

// LineEnd moves past the last byte of the line.
func (w *Window) LineEnd() {
	w.cursor.X = len(w.lines[w.cursor.Y])
}

// Visible returns the lines currently in view.
func (w *Window) Visible() [][]byte {
	end := min(len(w.lines), w.scroll+w.cfg.ViewHeight)
	return w.lines[w.scroll:end]
}

func (w *Window) clampX() {
	w.cursor.X = min(w.cursor.X, len(w.lines[w.cursor.Y]))
}

// follow scrolls so the cursor row is visible.
func (w *Window) follow() {
	y := w.cursor.Y
	if y < w.scroll {
		w.scroll = y
	} else if y >= w.scroll+w.cfg.ViewHeight {
		w.scroll = y - w.cfg.ViewHeight + 1
	}
}

func (w *Window) insertLine(at int, line []byte) {
	w.lines = append(w.lines, nil)
	copy(w.lines[at+1:], w.lines[at:])
	w.lines[at] = line
}

func (w *Window) removeLine(at int) {
	copy(w.lines[at:], w.lines[at+1:])
	w.lines[len(w.lines)-1] = nil
	w.lines = w.lines[:len(w.lines)-1]
}
