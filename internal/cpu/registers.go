/*
 * agc - Register file
 */

// Package cpu implements the Block II AGC's tick-driven central processor:
// the 12-phase time-pulse ring, the register file, the adder, the
// control-pulse decoder, the sequence generator, involuntary counters and
// interrupts, and the alarm/restart monitor.
package cpu

import "github.com/agcsim/agc/internal/word"

// BranchRegister holds the two overflow/sign test latches BR1/BR2, set by
// the TSGN/TMZ/TPZG/TOV control pulses and read back by conditional-branch
// subinstructions (BZF, BZMF, CCS).
type BranchRegister struct {
	br1 bool
	br2 bool
}

// Set loads both latches at once from a 2-bit value (bit1=BR1, bit0=BR2),
// as TOV does.
func (b *BranchRegister) Set(v uint8) {
	b.br1 = v&0b10 != 0
	b.br2 = v&0b01 != 0
}

func (b *BranchRegister) SetBR1(v bool) { b.br1 = v }
func (b *BranchRegister) SetBR2(v bool) { b.br2 = v }
func (b *BranchRegister) BR1() bool     { return b.br1 }
func (b *BranchRegister) BR2() bool     { return b.br2 }

// Value returns the 2-bit packed form (bit1=BR1, bit0=BR2).
func (b *BranchRegister) Value() uint8 {
	var v uint8
	if b.br1 {
		v |= 0b10
	}
	if b.br2 {
		v |= 0b01
	}
	return v
}

// SequenceRegister is the 7-bit SQ register: a 6-bit order code plus the
// extend (EXT) flip-flop folded in as bit 6, exactly as the hardware reads
// the next-instruction byte off the bus and latches EXT alongside it.
type SequenceRegister struct {
	inner uint8 // 7 bits used
}

// NewSequenceRegister builds an SQ value from a 6-bit order code and the
// extend flip-flop.
func NewSequenceRegister(value uint8, extend bool) SequenceRegister {
	inner := value & 0x3f
	if extend {
		inner |= 0x40
	}
	return SequenceRegister{inner: inner}
}

func (s SequenceRegister) IsExtended() bool { return s.inner&0x40 != 0 }
func (s SequenceRegister) OrderCode() uint8 { return (s.inner >> 3) & 0x7 }
func (s SequenceRegister) ExtendedCode() uint8 { return s.inner & 0x7 }
func (s SequenceRegister) Inner() uint8     { return s.inner }

// MemoryAddressKind classifies a decoded S-register address.
type MemoryAddressKind int

const (
	AddrRegister MemoryAddressKind = iota
	AddrUnswitchedErasable
	AddrSwitchedErasable
	AddrUnswitchedFixed
	AddrSwitchedFixed
)

// MemoryAddress is the decoded form of the 12-bit S register.
type MemoryAddress struct {
	Kind    MemoryAddressKind
	Bank    uint16 // erasable bank (0-7) or fixed bank (0-31), when unswitched
	Address uint16 // in-bank word offset, or register number when Kind==AddrRegister
}

// AddressRegister is the 12-bit S register together with its bank decode.
type AddressRegister struct {
	inner uint16 // 12 bits used
}

// NewAddressRegister returns a zeroed S register.
func NewAddressRegister() AddressRegister { return AddressRegister{} }

// AddressRegisterFrom builds an S register from a 16-bit write-line value,
// keeping only the low 12 bits (WS clears S before loading).
func AddressRegisterFrom(value word.Word) AddressRegister {
	return AddressRegister{inner: uint16(value) & 0xfff}
}

// Inner returns the raw 12-bit value.
func (s AddressRegister) Inner() uint16 { return s.inner }

// Address decodes the S register into one of the five address-space
// regions, mirroring the real hardware's bank-select logic: addresses 0-7
// name a CPU register directly (see RSC/WSC), 010-01777 octal select
// erasable memory (010-01377 reach banks 0-2 directly, 01400-01777 reach
// the bank EBANK selects), and 02000-07777 octal select fixed memory
// (02000-03777 switched via FBANK, 04000-07777 unswitched, encoding their
// own bank number 2 or 3).
func (s AddressRegister) Address() MemoryAddress {
	if s.inner < 8 {
		return MemoryAddress{Kind: AddrRegister, Address: s.inner}
	}
	switch (s.inner >> 10) & 0x3 {
	case 0b00:
		addr := s.inner & 0xff
		if (s.inner>>8)&0x3 == 0b11 {
			return MemoryAddress{Kind: AddrSwitchedErasable, Address: addr}
		}
		bank := (s.inner >> 8) & 0x7
		return MemoryAddress{Kind: AddrUnswitchedErasable, Bank: bank, Address: addr}
	case 0b01:
		return MemoryAddress{Kind: AddrSwitchedFixed, Address: s.inner & 0x3ff}
	default:
		bank := (s.inner >> 10) & 0x1f
		return MemoryAddress{Kind: AddrUnswitchedFixed, Bank: bank, Address: s.inner & 0x3ff}
	}
}
