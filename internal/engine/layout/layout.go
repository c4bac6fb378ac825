// Package layout partitions the backing store address space.
//
// The store is split statically into three regions:
//
//	[0, SignatureSize)           reserved signature block
//	[PageBase, PageEnd)          page slots, one per page index
//	[UndoBase, Capacity)         undo ring slots followed by redo ring slots
//
// The undo region sits at the top of the store and begins on a bank
// boundary whenever that still leaves room for a page. MaxPages is derived
// so that no page slot can reach the undo region, and is capped so a page
// index fits the 16-bit field of a journal record.
package layout

import (
	"errors"
	"fmt"
	"math"

	"github.com/dshills/pagestorm/internal/engine/backing"
	"github.com/dshills/pagestorm/internal/reu"
)

// Record sizes.
const (
	// HeaderSize is the size of a page header: line count and checksum, both u16.
	HeaderSize = 4

	// MetaSize is the size of the metadata record closing an undo slot.
	MetaSize = 8

	// MaxDimension bounds page capacity and line length so that every
	// metadata field fits its encoded width.
	MaxDimension = 255
)

// Errors returned by layout construction.
var (
	// ErrInvalidGeometry indicates a page capacity or line length outside [1, MaxDimension].
	ErrInvalidGeometry = errors.New("invalid page geometry")

	// ErrLayoutTooSmall indicates the store cannot hold one page plus the journal.
	ErrLayoutTooSmall = errors.New("backing store too small for layout")
)

// Geometry describes the shape of a page.
type Geometry struct {
	// PageCapacity is the maximum number of lines per page (N).
	PageCapacity int

	// LineLength is the maximum number of bytes per line (L).
	LineLength int
}

// Validate checks both dimensions.
func (g Geometry) Validate() error {
	if g.PageCapacity < 1 || g.PageCapacity > MaxDimension {
		return fmt.Errorf("page capacity %d: %w", g.PageCapacity, ErrInvalidGeometry)
	}
	if g.LineLength < 1 || g.LineLength > MaxDimension {
		return fmt.Errorf("line length %d: %w", g.LineLength, ErrInvalidGeometry)
	}
	return nil
}

// Payload returns the size of a page payload: N fixed-size line records.
func (g Geometry) Payload() int {
	return g.PageCapacity * g.LineLength
}

// Layout is a fixed partition of a backing store.
type Layout struct {
	Geometry

	// PageBase is the address of page slot 0.
	PageBase backing.Addr
	// PageSlot is the size of a page slot: header plus payload.
	PageSlot int
	// MaxPages is the number of page slots.
	MaxPages int

	// UndoBase is the address of the first journal slot.
	UndoBase backing.Addr
	// UndoSlot is the size of a journal slot: payload plus metadata.
	UndoSlot int
	// UndoLevels is the capacity of each of the undo and redo rings.
	UndoLevels int
}

// New lays out a store of the given capacity. undoLevels may be zero for a
// store without a journal. maxPages caps the page count when positive.
func New(g Geometry, capacity int64, undoLevels, maxPages int) (Layout, error) {
	if err := g.Validate(); err != nil {
		return Layout{}, err
	}
	if undoLevels < 0 {
		undoLevels = 0
	}

	l := Layout{
		Geometry:   g,
		PageBase:   backing.Addr(backing.SignatureSize),
		PageSlot:   HeaderSize + g.Payload(),
		UndoSlot:   g.Payload() + MetaSize,
		UndoLevels: undoLevels,
	}

	firstPageEnd := int64(l.PageBase) + int64(l.PageSlot)
	undoRegion := int64(2*undoLevels) * int64(l.UndoSlot)

	undoBase := capacity - undoRegion
	if aligned := undoBase &^ (reu.BankSize - 1); aligned >= firstPageEnd {
		undoBase = aligned
	}
	if undoBase < firstPageEnd {
		return Layout{}, fmt.Errorf("capacity %d, need %d: %w",
			capacity, firstPageEnd+undoRegion, ErrLayoutTooSmall)
	}

	l.UndoBase = backing.Addr(undoBase)
	l.MaxPages = int((undoBase - int64(l.PageBase)) / int64(l.PageSlot))
	if maxPages > 0 && l.MaxPages > maxPages {
		l.MaxPages = maxPages
	}
	l.MaxPages = min(l.MaxPages, math.MaxUint16)
	return l, nil
}

// PageAddr returns the slot address of page p.
func (l Layout) PageAddr(p int) backing.Addr {
	return l.PageBase.Add(p * l.PageSlot)
}

// PageRegion returns the address span of all page slots.
func (l Layout) PageRegion() backing.Span {
	start := int64(l.PageBase)
	return backing.Span{Start: start, End: start + int64(l.MaxPages)*int64(l.PageSlot)}
}

// UndoSlotAddr returns the address of journal slot i, 0 <= i < 2*UndoLevels.
// Slots [0, UndoLevels) belong to the undo ring and the rest to the redo ring.
func (l Layout) UndoSlotAddr(i int) backing.Addr {
	return l.UndoBase.Add(i * l.UndoSlot)
}

// UndoRegion returns the address span of all journal slots.
func (l Layout) UndoRegion() backing.Span {
	start := int64(l.UndoBase)
	return backing.Span{Start: start, End: start + int64(2*l.UndoLevels)*int64(l.UndoSlot)}
}

// MaxLines returns the largest document the page region can hold.
func (l Layout) MaxLines() int {
	return l.MaxPages * l.PageCapacity
}
