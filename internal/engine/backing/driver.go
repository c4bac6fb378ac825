package backing

import (
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"

	"github.com/dshills/pagestorm/internal/reu"
)

// Defaults for the driver.
const (
	// DefaultCapacity is the conservative store size assumed when the
	// capacity probe is disabled.
	DefaultCapacity = 1 << 20

	// DefaultMaxTransfer bounds a single transfer.
	DefaultMaxTransfer = 4096

	// DefaultStaging is the host address of the transfer window.
	DefaultStaging = 0xC000

	// DefaultProbeBanks bounds the capacity probe.
	DefaultProbeBanks = 64

	// SignatureSize is the size of the reserved block at store address 0.
	SignatureSize = 256

	// Signature marks a store initialised by this driver.
	Signature uint32 = 0x50534D31
)

// Detection sentinels, written and read back through a register.
var sentinels = [...]byte{0xAA, 0x55}

// probeByte is written at the start of each bank by the capacity probe.
const probeByte byte = 0xA5

// DefaultProtectedHost lists host ranges the driver never transfers into:
// the text screen and the I/O page holding colour memory.
var DefaultProtectedHost = []Span{
	{Start: 0x0400, End: 0x0800},
	{Start: 0xD000, End: 0xE000},
}

// Option configures a Driver.
type Option func(*Driver)

// WithMaxTransfer sets the longest single transfer.
func WithMaxTransfer(n int) Option {
	return func(d *Driver) {
		if n > 0 && n <= reu.MaxLength {
			d.maxTransfer = n
		}
	}
}

// WithStaging sets the host address of the transfer window.
func WithStaging(addr uint16) Option {
	return func(d *Driver) {
		d.staging = int(addr)
	}
}

// WithCapacity sets the capacity assumed when probing is disabled. It is
// clamped to MaxCapacity.
func WithCapacity(size int64) Option {
	return func(d *Driver) {
		if size > 0 {
			d.capacity = min(size, MaxCapacity)
		}
	}
}

// WithProbe enables the capacity probe over at most maxBanks banks.
func WithProbe(maxBanks int) Option {
	return func(d *Driver) {
		if maxBanks > 0 {
			d.probeBanks = min(maxBanks, reu.MaxBanks)
		}
	}
}

// WithProtectedHost replaces the protected host ranges.
func WithProtectedHost(spans ...Span) Option {
	return func(d *Driver) {
		d.protectedHost = append([]Span(nil), spans...)
	}
}

// WithLogger sets the driver's logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Driver) {
		if l != nil {
			d.logger = l
		}
	}
}

// Driver programs an expansion unit through its register file.
//
// Data is staged through a fixed window of host memory: writes copy the
// caller's bytes into the window and stash them; reads fetch into the window
// and copy out.
type Driver struct {
	bus  reu.Bus
	host []byte

	staging       int
	maxTransfer   int
	capacity      int64
	probeBanks    int
	protectedHost []Span
	protected     []Span

	stats  Stats
	logger *slog.Logger
}

// Detect reports whether an expansion unit answers on bus. It writes two
// different sentinels to a register and reads each back, restoring the
// register's original value afterwards.
func Detect(bus reu.Bus) bool {
	orig := bus.Peek(reu.StoreAddrLo)
	defer bus.Poke(reu.StoreAddrLo, orig)

	for _, s := range sentinels {
		bus.Poke(reu.StoreAddrLo, s)
		if bus.Peek(reu.StoreAddrLo) != s {
			return false
		}
	}
	return true
}

// Open detects a device on bus and returns a ready Driver, or Nop when no
// device answers. An error is returned only for an unusable configuration.
func Open(bus reu.Bus, host []byte, opts ...Option) (Store, error) {
	d := newDriver(bus, host, opts...)

	if !Detect(bus) {
		d.logger.Info("no expansion unit detected, running without backing store")
		return Nop{}, nil
	}

	if err := d.validate(); err != nil {
		return nil, err
	}

	if d.probeBanks > 0 {
		size := d.probe()
		if size == 0 {
			d.logger.Warn("capacity probe found no usable bank")
			return Nop{}, nil
		}
		d.capacity = size
	}

	var sig [4]byte
	binary.LittleEndian.PutUint32(sig[:], Signature)
	if err := d.transfer(reu.CmdStash, 0, sig[:]); err != nil {
		return nil, fmt.Errorf("writing signature: %w", err)
	}

	d.logger.Info("expansion unit ready",
		"capacity", d.capacity,
		"banks", d.capacity/reu.BankSize,
		"max_transfer", d.maxTransfer)
	return d, nil
}

// NewDriver returns a driver without running detection. Most callers want
// Open.
func NewDriver(bus reu.Bus, host []byte, opts ...Option) (*Driver, error) {
	d := newDriver(bus, host, opts...)
	if err := d.validate(); err != nil {
		return nil, err
	}
	return d, nil
}

func newDriver(bus reu.Bus, host []byte, opts ...Option) *Driver {
	d := &Driver{
		bus:           bus,
		host:          host,
		staging:       DefaultStaging,
		maxTransfer:   DefaultMaxTransfer,
		capacity:      DefaultCapacity,
		protectedHost: DefaultProtectedHost,
		protected:     []Span{{Start: 0, End: SignatureSize}},
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = d.logger.With("component", "backing")
	return d
}

// validate checks that the staging window is usable and clamps the
// capacity to the address space.
func (d *Driver) validate() error {
	d.capacity = min(d.capacity, MaxCapacity)
	window := Span{Start: int64(d.staging), End: int64(d.staging + d.maxTransfer)}
	if window.End > int64(len(d.host)) {
		return fmt.Errorf("staging window %#x+%d exceeds host memory: %w",
			d.staging, d.maxTransfer, ErrTransferOutOfRange)
	}
	for _, p := range d.protectedHost {
		if window.Overlaps(p) {
			return fmt.Errorf("staging window %#x+%d overlaps protected host range %#x-%#x: %w",
				d.staging, d.maxTransfer, p.Start, p.End, ErrTransferOutOfRange)
		}
	}
	return nil
}

// probe walks the banks, stashing a byte at each bank start and fetching it
// back. The first bank that does not answer ends the probe.
func (d *Driver) probe() int64 {
	var size int64
	one := make([]byte, 1)
	for bank := 0; bank < d.probeBanks; bank++ {
		addr := MakeAddr(uint8(bank), 0)

		one[0] = probeByte
		if err := d.transfer(reu.CmdStash, addr, one); err != nil {
			break
		}
		one[0] = ^probeByte
		if err := d.transfer(reu.CmdFetch, addr, one); err != nil {
			break
		}
		if one[0] != probeByte {
			break
		}
		size = int64(bank+1) * reu.BankSize
	}
	d.logger.Debug("capacity probe finished", "size", size)
	return size
}

// Available implements Store.
func (d *Driver) Available() bool { return true }

// Capacity implements Store.
func (d *Driver) Capacity() int64 { return d.capacity }

// MaxTransfer implements Store.
func (d *Driver) MaxTransfer() int { return d.maxTransfer }

// Stats implements Store.
func (d *Driver) Stats() Stats { return d.stats }

// Write implements Store.
func (d *Driver) Write(addr Addr, src []byte) error {
	if len(src) == 0 {
		return nil
	}
	if err := d.check(addr, len(src)); err != nil {
		return err
	}
	if err := d.transfer(reu.CmdStash, addr, src); err != nil {
		return err
	}
	d.stats.Writes++
	d.stats.BytesWritten += uint64(len(src))
	return nil
}

// Read implements Store.
func (d *Driver) Read(dst []byte, addr Addr) error {
	if len(dst) == 0 {
		return nil
	}
	if err := d.check(addr, len(dst)); err != nil {
		return err
	}
	if err := d.transfer(reu.CmdFetch, addr, dst); err != nil {
		return err
	}
	d.stats.Reads++
	d.stats.BytesRead += uint64(len(dst))
	return nil
}

// check rejects transfers that are too long, run past capacity, or touch
// a protected store range.
func (d *Driver) check(addr Addr, n int) error {
	if n > d.maxTransfer {
		return fmt.Errorf("%d bytes at %s: %w", n, addr, ErrTransferTooLarge)
	}
	span := Span{Start: int64(addr), End: int64(addr) + int64(n)}
	if span.End > d.capacity || span.End > MaxCapacity {
		return fmt.Errorf("%d bytes at %s past capacity %d: %w", n, addr, d.capacity, ErrTransferOutOfRange)
	}
	for _, p := range d.protected {
		if span.Overlaps(p) {
			return fmt.Errorf("%d bytes at %s overlap protected range: %w", n, addr, ErrTransferOutOfRange)
		}
	}
	return nil
}

// transfer programs the registers and runs one transfer through the
// staging window. buf is the source for a stash and the destination for a
// fetch.
func (d *Driver) transfer(direction byte, addr Addr, buf []byte) error {
	n := len(buf)
	if direction == reu.CmdStash {
		copy(d.host[d.staging:], buf)
	}

	host := uint16(d.staging)
	d.bus.Poke(reu.HostAddrLo, byte(host))
	d.bus.Poke(reu.HostAddrHi, byte(host>>8))
	d.bus.Poke(reu.StoreAddrLo, byte(addr.Offset()))
	d.bus.Poke(reu.StoreAddrHi, byte(addr.Offset()>>8))
	d.bus.Poke(reu.Bank, addr.Bank())
	d.bus.Poke(reu.LengthLo, byte(n))
	d.bus.Poke(reu.LengthHi, byte(n>>8))
	d.bus.Poke(reu.Command, reu.CmdExecute|direction)

	status := d.bus.Peek(reu.Status)
	if status&reu.StatusFault != 0 {
		return fmt.Errorf("%d bytes at %s: %w", n, addr, ErrTransferFault)
	}

	if direction == reu.CmdFetch {
		copy(buf, d.host[d.staging:d.staging+n])
	}
	return nil
}
