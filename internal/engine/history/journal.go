package history

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/dshills/pagestorm/internal/engine/backing"
	"github.com/dshills/pagestorm/internal/engine/layout"
	"github.com/dshills/pagestorm/internal/engine/page"
	"github.com/dshills/pagestorm/internal/engine/ring"
	"github.com/dshills/pagestorm/internal/engine/window"
)

// Common errors for journal operations.
var (
	ErrNothingToUndo   = errors.New("nothing to undo")
	ErrNothingToRedo   = errors.New("nothing to redo")
	ErrJournalDisabled = errors.New("undo journal disabled")

	// ErrCorruptSnapshot indicates a slot whose metadata fails validation.
	ErrCorruptSnapshot = errors.New("corrupt snapshot")
)

// Snapshot is a full window state plus its position in the document.
type Snapshot struct {
	window.State

	// Page is the index of the page the window held.
	Page int
	// PageCount is the number of pages in the document.
	PageCount int
}

// Journal manages the undo and redo rings.
type Journal struct {
	store  backing.Store
	layout layout.Layout

	undo *ring.Ring
	redo *ring.Ring

	buf     []byte
	enabled bool
}

// NewJournal creates a journal over the journal region of l. It is
// disabled when store has no device or l reserves no levels.
func NewJournal(store backing.Store, l layout.Layout) *Journal {
	return &Journal{
		store:   store,
		layout:  l,
		undo:    ring.New(l.UndoLevels),
		redo:    ring.New(l.UndoLevels),
		buf:     make([]byte, l.UndoSlot),
		enabled: store.Available() && l.UndoLevels > 0,
	}
}

// Enabled reports whether undo and redo are available at all.
func (j *Journal) Enabled() bool { return j.enabled }

// Levels returns the capacity of each ring.
func (j *Journal) Levels() int { return j.layout.UndoLevels }

// CanUndo returns true if undo is available.
func (j *Journal) CanUndo() bool { return j.enabled && !j.undo.Empty() }

// CanRedo returns true if redo is available.
func (j *Journal) CanRedo() bool { return j.enabled && !j.redo.Empty() }

// UndoCount returns the number of undo steps available.
func (j *Journal) UndoCount() int { return j.undo.Len() }

// RedoCount returns the number of redo steps available.
func (j *Journal) RedoCount() int { return j.redo.Len() }

// Clear drops every entry of both rings.
func (j *Journal) Clear() {
	j.undo.Reset()
	j.redo.Reset()
}

// PushUndo records s as the newest undo entry and clears the redo ring.
func (j *Journal) PushUndo(s Snapshot) error {
	if !j.enabled {
		return ErrJournalDisabled
	}
	if err := j.write(j.undoSlot(j.undo.Next()), s); err != nil {
		return err
	}
	j.undo.Push()
	j.redo.Reset()
	return nil
}

// Undo records current in the redo ring and returns the newest undo entry.
// Neither ring changes when the entry cannot be read or current cannot be
// recorded.
func (j *Journal) Undo(current Snapshot) (Snapshot, error) {
	if !j.enabled {
		return Snapshot{}, ErrJournalDisabled
	}
	if j.undo.Empty() {
		return Snapshot{}, ErrNothingToUndo
	}
	slot, _ := j.undo.Last()
	prev, err := j.read(j.undoSlot(slot))
	if err != nil {
		return Snapshot{}, err
	}
	if err := j.write(j.redoSlot(j.redo.Next()), current); err != nil {
		return Snapshot{}, err
	}
	j.redo.Push()
	j.undo.Pop()
	return prev, nil
}

// Redo records current in the undo ring, leaving the redo ring intact, and
// returns the newest redo entry. Like Undo it moves no ring on failure.
func (j *Journal) Redo(current Snapshot) (Snapshot, error) {
	if !j.enabled {
		return Snapshot{}, ErrJournalDisabled
	}
	if j.redo.Empty() {
		return Snapshot{}, ErrNothingToRedo
	}
	slot, _ := j.redo.Last()
	next, err := j.read(j.redoSlot(slot))
	if err != nil {
		return Snapshot{}, err
	}
	if err := j.write(j.undoSlot(j.undo.Next()), current); err != nil {
		return Snapshot{}, err
	}
	j.undo.Push()
	j.redo.Pop()
	return next, nil
}

func (j *Journal) undoSlot(i int) int { return i }

func (j *Journal) redoSlot(i int) int { return j.layout.UndoLevels + i }

// write encodes s into journal slot i.
func (j *Journal) write(i int, s Snapshot) error {
	if err := page.Validate(j.layout.Geometry, s.Lines); err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	payload := j.buf[:j.layout.Payload()]
	clear(payload)
	page.EncodeLines(payload, s.Lines, j.layout.LineLength)

	meta := j.buf[j.layout.Payload():]
	meta[0] = byte(len(s.Lines))
	meta[1] = byte(s.Cursor.X)
	meta[2] = byte(s.Cursor.Y)
	meta[3] = byte(s.Scroll)
	binary.LittleEndian.PutUint16(meta[4:6], uint16(s.Page))
	binary.LittleEndian.PutUint16(meta[6:8], uint16(s.PageCount))

	if err := backing.WriteAll(j.store, j.layout.UndoSlotAddr(i), j.buf); err != nil {
		return fmt.Errorf("journal slot %d: %w", i, err)
	}
	return nil
}

// read decodes journal slot i.
func (j *Journal) read(i int) (Snapshot, error) {
	if err := backing.ReadAll(j.store, j.buf, j.layout.UndoSlotAddr(i)); err != nil {
		return Snapshot{}, fmt.Errorf("journal slot %d: %w", i, err)
	}

	meta := j.buf[j.layout.Payload():]
	count := int(meta[0])
	if count == 0 || count > j.layout.PageCapacity {
		return Snapshot{}, fmt.Errorf("journal slot %d: line count %d: %w", i, count, ErrCorruptSnapshot)
	}

	return Snapshot{
		State: window.State{
			Lines:  page.DecodeLines(j.buf, count, j.layout.LineLength),
			Cursor: window.Cursor{X: int(meta[1]), Y: int(meta[2])},
			Scroll: int(meta[3]),
		},
		Page:      int(binary.LittleEndian.Uint16(meta[4:6])),
		PageCount: int(binary.LittleEndian.Uint16(meta[6:8])),
	}, nil
}
