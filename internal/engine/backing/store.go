// Package backing provides the backing store driver for the paged buffer.
//
// The backing store is external byte-addressable memory reached through
// bounded, blocking transfers addressed by (bank, offset). Device presence
// is decided once by Open: callers receive either a Driver programming a
// real expansion unit or Nop, whose transfers are silent no-ops. Nothing
// above this package branches on device presence except through
// Store.Available.
package backing

import (
	"errors"
	"fmt"

	"github.com/dshills/pagestorm/internal/reu"
)

// Errors returned by backing store operations.
var (
	// ErrDeviceUnavailable indicates no expansion unit was detected.
	ErrDeviceUnavailable = errors.New("backing store unavailable")

	// ErrTransferOutOfRange indicates a transfer touching a protected range
	// or running past the store capacity. Nothing is transferred.
	ErrTransferOutOfRange = errors.New("transfer out of range")

	// ErrTransferTooLarge indicates a single transfer longer than MaxTransfer.
	ErrTransferTooLarge = errors.New("transfer exceeds maximum length")

	// ErrTransferFault indicates the device reported a fault.
	ErrTransferFault = errors.New("transfer fault")
)

// MaxCapacity is the size of the 24-bit store address space.
const MaxCapacity = reu.MaxBanks * reu.BankSize

// Addr is a 24-bit backing store address: bank in the high byte, offset in
// the low 16 bits.
type Addr uint32

// MakeAddr builds an address from a bank and an offset within it.
func MakeAddr(bank uint8, offset uint16) Addr {
	return Addr(bank)<<16 | Addr(offset)
}

// Bank returns the bank part of the address.
func (a Addr) Bank() uint8 {
	return uint8(a >> 16)
}

// Offset returns the offset within the bank.
func (a Addr) Offset() uint16 {
	return uint16(a)
}

// Add returns the address n bytes further on.
func (a Addr) Add(n int) Addr {
	return a + Addr(n)
}

// String formats the address as bank:offset.
func (a Addr) String() string {
	return fmt.Sprintf("%02x:%04x", a.Bank(), a.Offset())
}

// Span is a half-open byte range [Start, End).
type Span struct {
	Start int64
	End   int64
}

// Overlaps reports whether the two spans share at least one byte.
func (s Span) Overlaps(o Span) bool {
	return s.Start < o.End && o.Start < s.End
}

// Len returns the span length.
func (s Span) Len() int64 {
	return s.End - s.Start
}

// Stats counts issued transfers.
type Stats struct {
	Writes       uint64
	Reads        uint64
	BytesWritten uint64
	BytesRead    uint64
}

// Transfers returns the total number of transfers.
func (s Stats) Transfers() uint64 {
	return s.Writes + s.Reads
}

// Store is a capability-checked backing store.
type Store interface {
	// Available reports whether a device is present.
	Available() bool

	// Capacity returns the usable store size in bytes.
	Capacity() int64

	// MaxTransfer returns the longest transfer a single call accepts.
	MaxTransfer() int

	// Write copies src to the store at addr.
	Write(addr Addr, src []byte) error

	// Read copies len(dst) bytes from the store at addr into dst.
	Read(dst []byte, addr Addr) error

	// Stats returns transfer counters.
	Stats() Stats
}

// Nop is the store used when no device is present. Transfers succeed
// without doing anything.
type Nop struct{}

// Available implements Store.
func (Nop) Available() bool { return false }

// Capacity implements Store.
func (Nop) Capacity() int64 { return 0 }

// MaxTransfer implements Store.
func (Nop) MaxTransfer() int { return reu.MaxLength }

// Write implements Store.
func (Nop) Write(Addr, []byte) error { return nil }

// Read implements Store.
func (Nop) Read([]byte, Addr) error { return nil }

// Stats implements Store.
func (Nop) Stats() Stats { return Stats{} }

// WriteAll writes src in chunks no longer than s.MaxTransfer.
func WriteAll(s Store, addr Addr, src []byte) error {
	limit := s.MaxTransfer()
	for len(src) > 0 {
		n := min(len(src), limit)
		if err := s.Write(addr, src[:n]); err != nil {
			return err
		}
		addr = addr.Add(n)
		src = src[n:]
	}
	return nil
}

// ReadAll fills dst in chunks no longer than s.MaxTransfer.
func ReadAll(s Store, dst []byte, addr Addr) error {
	limit := s.MaxTransfer()
	for len(dst) > 0 {
		n := min(len(dst), limit)
		if err := s.Read(dst[:n], addr); err != nil {
			return err
		}
		addr = addr.Add(n)
		dst = dst[n:]
	}
	return nil
}
