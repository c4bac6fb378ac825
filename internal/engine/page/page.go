// Package page persists whole pages of lines as checksummed records.
//
// A page is an ordered set of at most N lines, each at most L bytes. Two
// stores implement the same contract: DeviceStore writes fixed-size slots
// into the backing store, SpillStore writes newline-delimited files when no
// device is present. Callers treat every load failure as an empty page.
package page

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/dshills/pagestorm/internal/engine/layout"
)

// Errors returned by page stores.
var (
	// ErrCorruptPage indicates a header, count or checksum that failed validation.
	ErrCorruptPage = errors.New("corrupt page")

	// ErrPageOutOfRange indicates a page index at or beyond MaxPages.
	ErrPageOutOfRange = errors.New("page index out of range")

	// ErrInvalidPage indicates lines that do not fit the page geometry.
	ErrInvalidPage = errors.New("page does not fit geometry")
)

// Store persists and reloads pages by index.
type Store interface {
	// Save persists lines as page index.
	Save(index int, lines [][]byte) error

	// Load returns the lines of page index.
	Load(index int) ([][]byte, error)

	// ClearAll invalidates every page.
	ClearAll() error

	// MaxPages returns the number of addressable pages.
	MaxPages() int
}

// Sum16 returns the wrapping unsigned sum of b.
func Sum16(b []byte) uint16 {
	var sum uint16
	for _, c := range b {
		sum += uint16(c)
	}
	return sum
}

// Validate checks lines against the geometry.
func Validate(g layout.Geometry, lines [][]byte) error {
	if len(lines) > g.PageCapacity {
		return fmt.Errorf("%d lines, capacity %d: %w", len(lines), g.PageCapacity, ErrInvalidPage)
	}
	for i, line := range lines {
		if len(line) > g.LineLength {
			return fmt.Errorf("line %d is %d bytes, limit %d: %w", i, len(line), g.LineLength, ErrInvalidPage)
		}
	}
	return nil
}

// EncodeLines writes lines into dst as NUL-padded records of lineLen bytes.
// dst must hold len(lines)*lineLen bytes.
func EncodeLines(dst []byte, lines [][]byte, lineLen int) {
	for i, line := range lines {
		rec := dst[i*lineLen : (i+1)*lineLen]
		n := copy(rec, line)
		clear(rec[n:])
	}
}

// DecodeLines splits src into count records of lineLen bytes, each cut at
// its first NUL.
func DecodeLines(src []byte, count, lineLen int) [][]byte {
	lines := make([][]byte, count)
	for i := range lines {
		rec := src[i*lineLen : (i+1)*lineLen]
		if n := bytes.IndexByte(rec, 0); n >= 0 {
			rec = rec[:n]
		}
		lines[i] = bytes.Clone(rec)
	}
	return lines
}
