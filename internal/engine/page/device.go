package page

import (
	"encoding/binary"
	"fmt"

	"github.com/dshills/pagestorm/internal/engine/backing"
	"github.com/dshills/pagestorm/internal/engine/layout"
)

// DeviceStore keeps pages in fixed slots of a backing store.
//
// Slot layout:
//
//	[0:2]  line count, little endian
//	[2:4]  Sum16 of the count*L payload bytes, little endian
//	[4:]   count NUL-padded line records
//
// Bytes past the last record are never read.
type DeviceStore struct {
	store  backing.Store
	layout layout.Layout
	buf    []byte
}

// NewDeviceStore returns a page store over the page region of l.
func NewDeviceStore(store backing.Store, l layout.Layout) *DeviceStore {
	return &DeviceStore{
		store:  store,
		layout: l,
		buf:    make([]byte, l.PageSlot),
	}
}

// MaxPages implements Store.
func (s *DeviceStore) MaxPages() int {
	return s.layout.MaxPages
}

// Save implements Store.
func (s *DeviceStore) Save(index int, lines [][]byte) error {
	if index < 0 || index >= s.layout.MaxPages {
		return fmt.Errorf("save page %d: %w", index, ErrPageOutOfRange)
	}
	if err := Validate(s.layout.Geometry, lines); err != nil {
		return fmt.Errorf("save page %d: %w", index, err)
	}

	n := layout.HeaderSize + len(lines)*s.layout.LineLength
	rec := s.buf[:n]
	payload := rec[layout.HeaderSize:]
	EncodeLines(payload, lines, s.layout.LineLength)
	binary.LittleEndian.PutUint16(rec[0:2], uint16(len(lines)))
	binary.LittleEndian.PutUint16(rec[2:4], Sum16(payload))

	if err := backing.WriteAll(s.store, s.layout.PageAddr(index), rec); err != nil {
		return fmt.Errorf("save page %d: %w", index, err)
	}
	return nil
}

// Load implements Store.
func (s *DeviceStore) Load(index int) ([][]byte, error) {
	if index < 0 || index >= s.layout.MaxPages {
		return nil, fmt.Errorf("load page %d: %w", index, ErrPageOutOfRange)
	}

	addr := s.layout.PageAddr(index)
	header := s.buf[:layout.HeaderSize]
	clear(header)
	if err := backing.ReadAll(s.store, header, addr); err != nil {
		return nil, fmt.Errorf("load page %d: %w", index, err)
	}
	count := int(binary.LittleEndian.Uint16(header[0:2]))
	sum := binary.LittleEndian.Uint16(header[2:4])
	if count == 0 || count > s.layout.PageCapacity {
		return nil, fmt.Errorf("load page %d: line count %d: %w", index, count, ErrCorruptPage)
	}

	payload := s.buf[layout.HeaderSize : layout.HeaderSize+count*s.layout.LineLength]
	if err := backing.ReadAll(s.store, payload, addr.Add(layout.HeaderSize)); err != nil {
		return nil, fmt.Errorf("load page %d: %w", index, err)
	}
	if got := Sum16(payload); got != sum {
		return nil, fmt.Errorf("load page %d: checksum %#04x, stored %#04x: %w", index, got, sum, ErrCorruptPage)
	}
	return DecodeLines(payload, count, s.layout.LineLength), nil
}

// ClearAll implements Store by writing a zero header to every slot.
func (s *DeviceStore) ClearAll() error {
	var zero [layout.HeaderSize]byte
	for p := 0; p < s.layout.MaxPages; p++ {
		if err := s.store.Write(s.layout.PageAddr(p), zero[:]); err != nil {
			return fmt.Errorf("clear page %d: %w", p, err)
		}
	}
	return nil
}
