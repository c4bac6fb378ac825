package reu

// Unit is a software expansion unit attached to a 64 KiB host memory.
//
// Unit is not safe for concurrent use; like the hardware it models, it is
// driven by a single host.
type Unit struct {
	regs   [numRegisters]byte
	host   []byte
	medium Medium

	transfers uint64
}

// NewUnit creates a unit backed by medium. The unit owns a fresh host
// memory of HostMemorySize bytes, reachable through Host.
func NewUnit(medium Medium) *Unit {
	return NewUnitWithHost(medium, make([]byte, HostMemorySize))
}

// NewUnitWithHost creates a unit sharing an existing host memory. Host
// addresses wrap modulo len(host).
func NewUnitWithHost(medium Medium, host []byte) *Unit {
	if len(host) == 0 {
		host = make([]byte, HostMemorySize)
	}
	return &Unit{host: host, medium: medium}
}

// Host returns the host memory the unit transfers to and from.
func (u *Unit) Host() []byte {
	return u.host
}

// Medium returns the unit's storage medium.
func (u *Unit) Medium() Medium {
	return u.medium
}

// Transfers returns the number of executed transfers.
func (u *Unit) Transfers() uint64 {
	return u.transfers
}

// Peek implements Bus.
func (u *Unit) Peek(r Register) byte {
	if r >= numRegisters {
		return floating
	}
	return u.regs[r]
}

// Poke implements Bus.
func (u *Unit) Poke(r Register, v byte) {
	switch {
	case r >= numRegisters:
		return
	case r == Status:
		// Read-only.
		return
	case r == Command:
		u.regs[Command] = v
		if v&CmdExecute != 0 {
			u.execute(v & cmdDirectionMask)
			u.regs[Command] &^= CmdExecute
		}
	default:
		u.regs[r] = v
	}
}

func (u *Unit) hostAddr() int {
	return int(u.regs[HostAddrLo]) | int(u.regs[HostAddrHi])<<8
}

func (u *Unit) storeAddr() int64 {
	return int64(u.regs[StoreAddrLo]) | int64(u.regs[StoreAddrHi])<<8 | int64(u.regs[Bank])<<16
}

func (u *Unit) length() int {
	n := int(u.regs[LengthLo]) | int(u.regs[LengthHi])<<8
	if n == 0 {
		return MaxLength
	}
	return n
}

// execute runs one transfer to completion.
func (u *Unit) execute(direction byte) {
	u.transfers++
	status := StatusEndOfBlock

	hostAddr := u.hostAddr()
	storeAddr := u.storeAddr()
	buf := make([]byte, u.length())

	switch direction {
	case CmdStash:
		u.gatherHost(hostAddr, buf)
		if n, err := u.medium.WriteAt(buf, storeAddr); err != nil || n < len(buf) {
			status |= StatusFault
		}
	case CmdFetch:
		n, _ := u.medium.ReadAt(buf, storeAddr)
		if n < len(buf) {
			status |= StatusFault
			for i := n; i < len(buf); i++ {
				buf[i] = floating
			}
		}
		u.scatterHost(hostAddr, buf)
	default:
		// Swap and verify are not modelled.
		status |= StatusFault
	}

	u.regs[Status] = status
}

func (u *Unit) gatherHost(addr int, dst []byte) {
	size := len(u.host)
	for i := range dst {
		dst[i] = u.host[(addr+i)%size]
	}
}

func (u *Unit) scatterHost(addr int, src []byte) {
	size := len(u.host)
	for i, b := range src {
		u.host[(addr+i)%size] = b
	}
}
