// Package reu models a register-programmed RAM expansion unit.
//
// An expansion unit is an external, byte-addressable memory that the host
// cannot address directly. The host programs a small register file with a
// local (host) address, a store address split into bank and offset, and a
// transfer length, then writes the command register with the execute bit
// set. The transfer runs to completion before the write returns.
//
// # Registers
//
//	Status       read-only status bits (end of block, fault)
//	Command      execute bit + direction (stash host->store, fetch store->host)
//	HostAddrLo   \ 16-bit host address of the transfer window
//	HostAddrHi   /
//	StoreAddrLo  \ 16-bit offset inside the selected bank
//	StoreAddrHi  /
//	Bank         high-order store address bits (64 KiB per bank)
//	LengthLo     \ transfer length, 0 means 65536
//	LengthHi     /
//	IntMask      interrupt mask (unused by the simulation)
//	AddrControl  address fixing bits
//
// # Devices
//
// Unit is a faithful software model backed by a Medium: MemoryMedium keeps
// the store in a byte slice and FileMedium keeps it in a swap file so the
// store can be larger than the process wants to hold. Absent models an empty
// expansion port where every register floats high.
package reu
