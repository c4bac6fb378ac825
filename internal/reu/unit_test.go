package reu

import (
	"bytes"
	"path/filepath"
	"testing"
)

func program(bus Bus, host uint16, store uint32, length int, cmd byte) {
	bus.Poke(HostAddrLo, byte(host))
	bus.Poke(HostAddrHi, byte(host>>8))
	bus.Poke(StoreAddrLo, byte(store))
	bus.Poke(StoreAddrHi, byte(store>>8))
	bus.Poke(Bank, byte(store>>16))
	bus.Poke(LengthLo, byte(length))
	bus.Poke(LengthHi, byte(length>>8))
	bus.Poke(Command, CmdExecute|cmd)
}

func TestUnitStashFetch(t *testing.T) {
	u := NewUnit(NewMemoryMedium(4 * BankSize))
	copy(u.Host()[0xC000:], "hello")

	program(u, 0xC000, 0x2_0010, 5, CmdStash)
	if u.Peek(Status)&StatusEndOfBlock == 0 {
		t.Fatal("end of block not signalled")
	}
	if u.Peek(Status)&StatusFault != 0 {
		t.Fatal("unexpected fault")
	}
	if u.Peek(Command)&CmdExecute != 0 {
		t.Error("execute bit should clear after the transfer")
	}

	program(u, 0xD000, 0x2_0010, 5, CmdFetch)
	if got := string(u.Host()[0xD000:0xD005]); got != "hello" {
		t.Errorf("fetched %q, want %q", got, "hello")
	}
	if u.Transfers() != 2 {
		t.Errorf("Transfers() = %d, want 2", u.Transfers())
	}
}

func TestUnitFetchPastMediumFloats(t *testing.T) {
	u := NewUnit(NewMemoryMedium(BankSize))

	program(u, 0x1000, 3*BankSize, 4, CmdFetch)
	if u.Peek(Status)&StatusFault == 0 {
		t.Error("fault not signalled")
	}
	if got := u.Host()[0x1000:0x1004]; !bytes.Equal(got, []byte{0xFF, 0xFF, 0xFF, 0xFF}) {
		t.Errorf("fetched %v, want floating bytes", got)
	}
}

func TestUnitStatusReadOnly(t *testing.T) {
	u := NewUnit(NewMemoryMedium(BankSize))
	u.Poke(Status, 0x12)
	if u.Peek(Status) != 0 {
		t.Error("status register should ignore writes")
	}
}

func TestUnitRegistersReadBack(t *testing.T) {
	u := NewUnit(NewMemoryMedium(BankSize))
	for _, v := range []byte{0xAA, 0x55} {
		u.Poke(StoreAddrLo, v)
		if got := u.Peek(StoreAddrLo); got != v {
			t.Errorf("Peek(StoreAddrLo) = %#x, want %#x", got, v)
		}
	}
}

func TestAbsentFloats(t *testing.T) {
	var bus Absent
	bus.Poke(StoreAddrLo, 0xAA)
	if got := bus.Peek(StoreAddrLo); got != 0xFF {
		t.Errorf("Peek() = %#x, want 0xff", got)
	}
}

func TestFileMedium(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.swap")
	m, err := OpenFileMedium(path, 2*BankSize, true)
	if err != nil {
		t.Fatalf("OpenFileMedium() error = %v", err)
	}
	defer m.Close()

	u := NewUnit(m)
	copy(u.Host()[0x4000:], "swap")
	program(u, 0x4000, BankSize+7, 4, CmdStash)
	program(u, 0x5000, BankSize+7, 4, CmdFetch)

	if got := string(u.Host()[0x5000:0x5004]); got != "swap" {
		t.Errorf("fetched %q, want %q", got, "swap")
	}
	if m.Path() != path {
		t.Errorf("Path() = %q, want %q", m.Path(), path)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if _, err := m.ReadAt(make([]byte, 1), 0); err != ErrMediumClosed {
		t.Errorf("ReadAt() after close error = %v, want ErrMediumClosed", err)
	}
}
