package reu

// Register identifies one register of the expansion unit's register file.
type Register uint8

// Register file layout.
const (
	Status Register = iota
	Command
	HostAddrLo
	HostAddrHi
	StoreAddrLo
	StoreAddrHi
	Bank
	LengthLo
	LengthHi
	IntMask
	AddrControl

	numRegisters
)

// String returns the register name.
func (r Register) String() string {
	switch r {
	case Status:
		return "status"
	case Command:
		return "command"
	case HostAddrLo:
		return "host-lo"
	case HostAddrHi:
		return "host-hi"
	case StoreAddrLo:
		return "store-lo"
	case StoreAddrHi:
		return "store-hi"
	case Bank:
		return "bank"
	case LengthLo:
		return "length-lo"
	case LengthHi:
		return "length-hi"
	case IntMask:
		return "int-mask"
	case AddrControl:
		return "addr-control"
	default:
		return "unknown"
	}
}

// Command register bits.
const (
	// CmdExecute starts a transfer when written to the command register.
	CmdExecute byte = 0x80

	// CmdStash copies host memory into the store.
	CmdStash byte = 0x00

	// CmdFetch copies store memory into host memory.
	CmdFetch byte = 0x01

	// cmdDirectionMask selects the transfer direction bits.
	cmdDirectionMask byte = 0x03
)

// Status register bits.
const (
	// StatusEndOfBlock is set once a transfer has completed.
	StatusEndOfBlock byte = 0x40

	// StatusFault is set when a transfer touched addresses past the medium.
	StatusFault byte = 0x20
)

// Address geometry.
const (
	// BankSize is the number of bytes addressed by one bank.
	BankSize = 1 << 16

	// MaxBanks is the number of banks the bank register can select.
	MaxBanks = 256

	// MaxLength is the longest single transfer the length registers encode.
	MaxLength = 1 << 16

	// HostMemorySize is the size of the host address space.
	HostMemorySize = 1 << 16
)

// floating is the value read from a register or address nothing drives.
const floating byte = 0xFF

// Bus is the register interface of an expansion port.
type Bus interface {
	// Peek reads a register.
	Peek(r Register) byte

	// Poke writes a register. Writing Command with CmdExecute set performs a
	// blocking transfer before Poke returns.
	Poke(r Register, v byte)
}

// Absent is the bus of an empty expansion port. Every register reads back
// as floating and writes are discarded.
type Absent struct{}

// Peek implements Bus.
func (Absent) Peek(Register) byte { return floating }

// Poke implements Bus.
func (Absent) Poke(Register, byte) {}
