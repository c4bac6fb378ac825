package engine

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/dshills/pagestorm/internal/engine/backing"
	"github.com/dshills/pagestorm/internal/engine/history"
	"github.com/dshills/pagestorm/internal/engine/index"
	"github.com/dshills/pagestorm/internal/engine/layout"
	"github.com/dshills/pagestorm/internal/engine/page"
	"github.com/dshills/pagestorm/internal/engine/window"
)

// Re-export commonly used types for convenience.
type (
	// Cursor is a position within the resident page.
	Cursor = window.Cursor

	// Snapshot is a journal entry.
	Snapshot = history.Snapshot
)

// Direction is a cursor movement.
type Direction int

// Cursor movements.
const (
	Left Direction = iota
	Right
	Up
	Down
	Home
	LineStart
	LineEnd
)

var directionNames = map[string]Direction{
	"left":       Left,
	"right":      Right,
	"up":         Up,
	"down":       Down,
	"home":       Home,
	"line_start": LineStart,
	"line_end":   LineEnd,
}

// ParseDirection maps a lower-case movement name to a Direction.
func ParseDirection(name string) (Direction, bool) {
	d, ok := directionNames[name]
	return d, ok
}

// Position locates the cursor in the whole document. Line, Column and Page
// count from 1.
type Position struct {
	Line   int
	Column int
	Page   int
	Pages  int
	Total  int
}

// Engine is the paged buffer.
//
// Engine is not safe for concurrent use.
type Engine struct {
	cfg        window.Config
	undoLevels int
	maxPages   int

	store   backing.Store
	layout  layout.Layout
	pages   page.Store
	journal *history.Journal
	win     *window.Window
	idx     *index.Index

	modified bool
	status   string
	logger   *slog.Logger
}

// New creates an Engine holding an empty document.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		cfg: window.Config{
			PageCapacity: DefaultPageCapacity,
			LineLength:   DefaultMaxLineLength,
			WrapWidth:    DefaultWrapWidth,
			ViewHeight:   DefaultViewHeight,
		},
		undoLevels: DefaultUndoLevels,
		store:      backing.Nop{},
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With("component", "engine")

	g := layout.Geometry{PageCapacity: e.cfg.PageCapacity, LineLength: e.cfg.LineLength}
	if err := g.Validate(); err != nil {
		return nil, err
	}

	e.layout = layout.Layout{Geometry: g}
	if e.store.Available() {
		l, err := layout.New(g, e.store.Capacity(), e.undoLevels, e.maxPages)
		if err != nil {
			return nil, err
		}
		e.layout = l
		if e.pages == nil {
			e.pages = page.NewDeviceStore(e.store, l)
		}
	}

	e.journal = history.NewJournal(e.store, e.layout)
	e.win = window.New(e.cfg)
	e.cfg = e.win.Config()
	e.idx = index.New(g.PageCapacity)

	e.logger.Debug("engine ready",
		"page_capacity", g.PageCapacity,
		"line_length", g.LineLength,
		"max_pages", e.MaxPages(),
		"undo_levels", e.layout.UndoLevels,
		"journal", e.journal.Enabled())
	return e, nil
}

// ============================================================================
// Editing
// ============================================================================

// Insert types c at the cursor and returns the new cursor.
func (e *Engine) Insert(c byte) (Cursor, error) {
	e.status = ""
	if err := e.win.CheckInsert(c); err != nil {
		return e.win.Cursor(), e.fail(err)
	}
	e.pushUndo()
	ch, err := e.win.Insert(c)
	if err != nil {
		return e.win.Cursor(), e.fail(err)
	}
	e.applied(ch)
	return ch.Cursor, nil
}

// Delete removes the byte before the cursor, joining lines at column 0,
// and returns the new cursor.
func (e *Engine) Delete() (Cursor, error) {
	e.status = ""
	if err := e.win.CheckDelete(); err != nil {
		return e.win.Cursor(), e.fail(err)
	}
	e.pushUndo()
	ch, err := e.win.Delete()
	if err != nil {
		return e.win.Cursor(), e.fail(err)
	}
	e.applied(ch)
	return ch.Cursor, nil
}

// Newline splits the line at the cursor and returns the new cursor.
func (e *Engine) Newline() (Cursor, error) {
	e.status = ""
	if err := e.win.CheckNewline(); err != nil {
		return e.win.Cursor(), e.fail(err)
	}
	e.pushUndo()
	ch, err := e.win.Newline()
	if err != nil {
		return e.win.Cursor(), e.fail(err)
	}
	e.applied(ch)
	return ch.Cursor, nil
}

// InsertText types s byte by byte, treating LF as Newline and dropping CR.
// It stops at the first rejected byte.
func (e *Engine) InsertText(s string) error {
	for i := 0; i < len(s); i++ {
		var err error
		switch s[i] {
		case '\r':
			continue
		case '\n':
			_, err = e.Newline()
		default:
			_, err = e.Insert(s[i])
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) applied(ch window.Change) {
	e.idx.Apply(ch.LineDelta)
	e.modified = true
}

// pushUndo records the window before an accepted edit. A journal failure
// never blocks the edit.
func (e *Engine) pushUndo() {
	if !e.journal.Enabled() {
		return
	}
	if err := e.journal.PushUndo(e.snapshot()); err != nil {
		e.logger.Warn("undo snapshot failed", "err", err)
	}
}

func (e *Engine) snapshot() Snapshot {
	return Snapshot{
		State:     e.win.State(),
		Page:      e.idx.Current(),
		PageCount: e.idx.NumPages(),
	}
}

// ============================================================================
// Navigation
// ============================================================================

// Move moves the cursor and resolves any page crossing.
func (e *Engine) Move(d Direction) error {
	e.status = ""
	switch d {
	case Left:
		e.win.Left()
	case Right:
		e.win.Right()
	case Up:
		e.win.Up()
	case Down:
		e.win.Down()
	case Home:
		e.win.Home()
	case LineStart:
		e.win.LineStart()
	case LineEnd:
		e.win.LineEnd()
	default:
		return fmt.Errorf("unknown direction %d", d)
	}
	return e.BoundaryCheck()
}

// BoundaryCheck swaps pages when the cursor has left the window. Past the
// bottom it enters the next page, creating an empty one after a full last
// page. Past the top it enters the previous page on its last row. The page
// being left is flushed first when dirty and the document spans pages.
func (e *Engine) BoundaryCheck() error {
	switch {
	case e.win.PastBottom():
		return e.crossBottom()
	case e.win.PastTop():
		return e.crossTop()
	}
	return nil
}

func (e *Engine) crossBottom() error {
	cur := e.idx.Current()
	x := e.win.Cursor().X

	if !e.idx.IsLast(cur) {
		if err := e.swapTo(cur + 1); err != nil {
			e.clampCursor()
			return e.fail(err)
		}
		e.win.SetCursor(Cursor{X: x, Y: 0})
		e.win.SetScroll(0)
		return nil
	}

	if !e.win.Full() {
		e.clampCursor()
		return nil
	}
	if cur+1 >= e.MaxPages() {
		e.clampCursor()
		return e.fail(fmt.Errorf("page %d: %w", cur+1, ErrDocumentFull))
	}

	e.idx.AddPage(1)
	if err := e.flush(); err != nil {
		e.idx.Resize(cur + 1)
		e.clampCursor()
		return e.fail(err)
	}
	e.win.Reset(nil)
	e.win.MarkDirty()
	e.idx.SetCurrent(cur + 1)
	e.modified = true
	e.logger.Debug("page created", "page", cur+1)
	return nil
}

func (e *Engine) crossTop() error {
	cur := e.idx.Current()
	x := e.win.Cursor().X

	if cur == 0 {
		e.clampCursor()
		return nil
	}
	if err := e.swapTo(cur - 1); err != nil {
		e.clampCursor()
		return e.fail(err)
	}
	y := e.win.Count() - 1
	e.win.SetCursor(Cursor{X: x, Y: y})
	e.win.SetScroll(max(0, y-e.cfg.ViewHeight+1))
	return nil
}

// clampCursor pulls an out-of-window cursor back onto the nearest row.
func (e *Engine) clampCursor() {
	e.win.SetCursor(e.win.Cursor())
}

// GotoLine moves to the start of document line n, counted from 1.
func (e *Engine) GotoLine(n int) error {
	e.status = ""
	p, row, ok := e.idx.Locate(n - 1)
	if !ok {
		e.status = fmt.Sprintf("LINE %d NOT FOUND", n)
		return fmt.Errorf("line %d: %w", n, ErrLineOutOfRange)
	}
	if p != e.idx.Current() {
		if err := e.swapTo(p); err != nil {
			return e.fail(err)
		}
	}
	e.win.SetCursor(Cursor{X: 0, Y: row})
	return nil
}

// PageDown enters the next page, or moves to the last row of the last page.
func (e *Engine) PageDown() error {
	e.status = ""
	cur := e.idx.Current()
	if e.idx.IsLast(cur) {
		e.win.SetCursor(Cursor{X: 0, Y: e.win.Count() - 1})
		return nil
	}
	if err := e.swapTo(cur + 1); err != nil {
		return e.fail(err)
	}
	return nil
}

// PageUp enters the previous page, or moves home on the first page.
func (e *Engine) PageUp() error {
	e.status = ""
	cur := e.idx.Current()
	if cur == 0 {
		e.win.Home()
		return nil
	}
	if err := e.swapTo(cur - 1); err != nil {
		return e.fail(err)
	}
	return nil
}

// ============================================================================
// Page Swapping
// ============================================================================

// swapTo makes page p resident, flushing the current page first. A page
// that fails to load becomes one empty line.
func (e *Engine) swapTo(p int) error {
	if err := e.flush(); err != nil {
		return err
	}

	var lines [][]byte
	if e.pages != nil {
		var err error
		lines, err = e.pages.Load(p)
		if err != nil {
			e.logger.Warn("page load failed", "page", p, "err", err)
			e.status = fmt.Sprintf("PAGE %d CORRUPT", p+1)
			lines = nil
		}
	}
	e.win.Reset(lines)
	e.idx.SetCurrent(p)
	e.idx.SetPageLines(p, e.win.Count())
	e.logger.Debug("page loaded", "page", p, "lines", e.win.Count())
	return nil
}

// flush writes the resident page back when it is dirty and the document
// spans pages. A single-page document stays in the window only.
func (e *Engine) flush() error {
	if !e.win.Dirty() || !e.idx.MultiPage() || e.pages == nil {
		return nil
	}
	p := e.idx.Current()
	if err := e.pages.Save(p, e.win.Lines()); err != nil {
		e.logger.Error("page flush failed", "page", p, "err", err)
		return err
	}
	e.win.MarkClean()
	e.logger.Debug("page flushed", "page", p, "lines", e.win.Count())
	return nil
}

// ============================================================================
// Undo/Redo
// ============================================================================

// Undo restores the state before the most recent edit.
func (e *Engine) Undo() error {
	e.status = ""
	if !e.journal.Enabled() {
		return e.fail(e.journalDisabled())
	}
	prev, err := e.journal.Undo(e.snapshot())
	if err != nil {
		return e.fail(err)
	}
	e.restore(prev)
	return nil
}

// Redo reapplies the most recently undone edit.
func (e *Engine) Redo() error {
	e.status = ""
	if !e.journal.Enabled() {
		return e.fail(e.journalDisabled())
	}
	next, err := e.journal.Redo(e.snapshot())
	if err != nil {
		return e.fail(err)
	}
	e.restore(next)
	return nil
}

// CanUndo returns true if undo is available.
func (e *Engine) CanUndo() bool { return e.journal.CanUndo() }

// CanRedo returns true if redo is available.
func (e *Engine) CanRedo() bool { return e.journal.CanRedo() }

// UndoCount returns the number of undo steps available.
func (e *Engine) UndoCount() int { return e.journal.UndoCount() }

// RedoCount returns the number of redo steps available.
func (e *Engine) RedoCount() int { return e.journal.RedoCount() }

// JournalEnabled reports whether undo and redo are available at all.
func (e *Engine) JournalEnabled() bool { return e.journal.Enabled() }

func (e *Engine) journalDisabled() error {
	if !e.store.Available() {
		return fmt.Errorf("%w: %w", ErrJournalDisabled, ErrDeviceUnavailable)
	}
	return ErrJournalDisabled
}

// restore replaces the window with s. A snapshot of another page swaps to
// that page, flushing the resident one, and the page table takes the size
// it had when the snapshot was taken.
func (e *Engine) restore(s Snapshot) {
	if s.Page != e.idx.Current() {
		if err := e.flush(); err != nil {
			e.logger.Warn("flush before restore failed", "page", e.idx.Current(), "err", err)
		}
	}
	e.idx.Resize(s.PageCount)
	e.win.Restore(s.State)
	e.idx.SetCurrent(s.Page)
	e.idx.SetPageLines(s.Page, e.win.Count())
	e.modified = true
}

// ============================================================================
// Document I/O
// ============================================================================

// NewDocument discards the document and the journal. Stored pages are
// cleared when the document spanned more than one page.
func (e *Engine) NewDocument() error {
	e.status = ""
	if e.pages != nil && e.idx.MultiPage() {
		if err := e.pages.ClearAll(); err != nil {
			return e.fail(err)
		}
	}
	e.reset()
	return nil
}

func (e *Engine) reset() {
	e.journal.Clear()
	e.win.Reset(nil)
	e.idx.Reset(nil)
	e.modified = false
}

// Import replaces the document with newline-delimited lines read from r.
// Full pages are written to the page store and page 0 becomes resident.
// A line longer than the line length or holding a NUL byte fails the
// import and leaves an empty document.
func (e *Engine) Import(r io.Reader) error {
	e.status = ""
	e.reset()
	if err := e.importLines(r); err != nil {
		e.reset()
		return e.fail(err)
	}
	e.logger.Info("document imported", "lines", e.idx.Total(), "pages", e.idx.NumPages())
	return nil
}

func (e *Engine) importLines(r io.Reader) error {
	n, limit := e.cfg.PageCapacity, e.cfg.LineLength
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, limit+2), limit+2)

	var (
		counts []int
		first  [][]byte
		cur    = make([][]byte, 0, n)
		lineNo int
	)
	for sc.Scan() {
		lineNo++
		line := sc.Bytes()
		if len(line) > limit {
			return fmt.Errorf("line %d: %w", lineNo, window.ErrLineFull)
		}
		if bytes.IndexByte(line, 0) >= 0 {
			return fmt.Errorf("line %d: %w", lineNo, ErrInvalidByte)
		}
		if len(cur) == n {
			if err := e.storePage(len(counts), cur); err != nil {
				return err
			}
			if len(counts) == 0 {
				first = cur
			}
			counts = append(counts, len(cur))
			cur = make([][]byte, 0, n)
		}
		cur = append(cur, bytes.Clone(line))
	}
	if err := sc.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return fmt.Errorf("line %d: %w", lineNo+1, window.ErrLineFull)
		}
		return err
	}

	if len(counts) == 0 {
		e.win.Reset(cur)
		e.idx.Reset([]int{e.win.Count()})
		return nil
	}
	if err := e.storePage(len(counts), cur); err != nil {
		return err
	}
	counts = append(counts, len(cur))
	e.win.Reset(first)
	e.idx.Reset(counts)
	return nil
}

func (e *Engine) storePage(p int, lines [][]byte) error {
	if e.pages == nil || p >= e.MaxPages() {
		return fmt.Errorf("page %d: %w", p, ErrDocumentFull)
	}
	return e.pages.Save(p, lines)
}

// Save flushes the resident page and writes every page to w as
// newline-delimited lines. A page that fails to load is written as one
// empty line.
func (e *Engine) Save(w io.Writer) error {
	e.status = ""
	if err := e.flush(); err != nil {
		return e.fail(err)
	}

	bw := bufio.NewWriter(w)
	cur := e.idx.Current()
	corrupt := -1
	for p := 0; p < e.idx.NumPages(); p++ {
		lines := e.win.Lines()
		if p != cur {
			var err error
			if lines, err = e.pages.Load(p); err != nil {
				e.logger.Warn("page unreadable during save", "page", p, "err", err)
				lines = [][]byte{{}}
				corrupt = p
			}
		}
		for _, l := range lines {
			bw.Write(l)
			bw.WriteByte('\n')
		}
	}
	if err := bw.Flush(); err != nil {
		return e.fail(err)
	}

	e.modified = false
	e.status = "SAVED"
	if corrupt >= 0 {
		e.status = fmt.Sprintf("SAVED, PAGE %d CORRUPT", corrupt+1)
	}
	return nil
}

// ============================================================================
// State
// ============================================================================

// Cursor returns the cursor within the resident page.
func (e *Engine) Cursor() Cursor { return e.win.Cursor() }

// Scroll returns the first visible row of the resident page.
func (e *Engine) Scroll() int { return e.win.Scroll() }

// Visible returns the rows in view. The slices must not be modified.
func (e *Engine) Visible() [][]byte { return e.win.Visible() }

// Line returns row i of the resident page. The slice must not be modified.
func (e *Engine) Line(i int) []byte { return e.win.Line(i) }

// Count returns the number of lines on the resident page.
func (e *Engine) Count() int { return e.win.Count() }

// Page returns the index of the resident page.
func (e *Engine) Page() int { return e.idx.Current() }

// NumPages returns the number of pages.
func (e *Engine) NumPages() int { return e.idx.NumPages() }

// TotalLines returns the number of lines in the document.
func (e *Engine) TotalLines() int { return e.idx.Total() }

// MaxPages returns the most pages the document may span.
func (e *Engine) MaxPages() int {
	if e.pages == nil {
		return 1
	}
	n := e.pages.MaxPages()
	if e.maxPages > 0 {
		n = min(n, e.maxPages)
	}
	return n
}

// Modified reports whether the document changed since it was imported or saved.
func (e *Engine) Modified() bool { return e.modified }

// SetModified overrides the modified flag, as when writing a saved
// document to its file fails.
func (e *Engine) SetModified(m bool) { e.modified = m }

// Config returns the page and view dimensions.
func (e *Engine) Config() window.Config { return e.cfg }

// Stats returns backing store transfer counters.
func (e *Engine) Stats() backing.Stats { return e.store.Stats() }

// Position returns the cursor position in the whole document.
func (e *Engine) Position() Position {
	c := e.win.Cursor()
	p := e.idx.Current()
	return Position{
		Line:   e.idx.FirstLine(p) + c.Y + 1,
		Column: c.X + 1,
		Page:   p + 1,
		Pages:  e.idx.NumPages(),
		Total:  e.idx.Total(),
	}
}

// Status returns the short text describing the last operation's outcome,
// or "" after a plain success.
func (e *Engine) Status() string { return e.status }

// SetStatus replaces the status text.
func (e *Engine) SetStatus(s string) { e.status = s }

// fail records err as the status text and returns it.
func (e *Engine) fail(err error) error {
	e.status = StatusText(err)
	e.logger.Debug("operation rejected", "err", err)
	return err
}

// StatusText maps an engine error to its status line text.
func StatusText(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNothingToUndo):
		return "NOTHING TO UNDO"
	case errors.Is(err, ErrNothingToRedo):
		return "NOTHING TO REDO"
	case errors.Is(err, ErrJournalDisabled):
		return "UNDO DISABLED"
	case errors.Is(err, ErrNothingToDelete):
		return "NOTHING TO DELETE"
	case errors.Is(err, ErrInvalidByte):
		return "INVALID CHARACTER"
	case errors.Is(err, window.ErrLineFull):
		return "LINE FULL"
	case errors.Is(err, window.ErrPageFull):
		return "PAGE FULL"
	case errors.Is(err, ErrDocumentFull):
		return "DOCUMENT FULL"
	case errors.Is(err, ErrCorruptPage):
		return "PAGE CORRUPT"
	case errors.Is(err, ErrTransferOutOfRange):
		return "TRANSFER REFUSED"
	case errors.Is(err, ErrLineOutOfRange):
		return "LINE NOT FOUND"
	default:
		return "ERROR"
	}
}
