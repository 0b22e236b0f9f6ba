/*
 * agc - Control pulses
 */

package cpu

import (
	"github.com/agcsim/agc/internal/memory"
	"github.com/agcsim/agc/internal/word"
)

// ControlPulse is one sequence-generator signal. Each tick, every pulse
// scheduled for the current time pulse first runs WriteWL (the results are
// OR'd together onto the shared write line) and then, once every pulse's
// WriteWL has fired, every pulse's ReadWL runs against the settled write
// line value — mirroring the two-phase OR-then-latch behavior of the real
// write-bus hardware (see CPU.executeControlPulses).
type ControlPulse struct {
	Name    string
	WriteWL func(c *CPU) word.Word
	ReadWL  func(c *CPU, wl word.Word)
}

func nullWrite(*CPU) word.Word { return 0 }
func nullRead(*CPU, word.Word) {}

// channelRead returns the value of the I/O channel addressed by S.
func channelRead(c *CPU) word.Word {
	if c.IO == nil {
		return 0
	}
	addr := c.S.Address()
	return word.Word(c.IO.Read(uint8(addr.Address)))
}

// channelWrite stores v into the I/O channel addressed by S.
func channelWrite(c *CPU, v word.Word) {
	if c.IO == nil {
		return
	}
	addr := c.S.Address()
	c.IO.Write(uint8(addr.Address), uint16(v))
}

// doubleWordAddress returns the (msw, lsw) pair of erasable offsets for a
// double-word operand: the instruction's own address field names the
// more-significant word, and the immediately following cell holds the
// less-significant word (DAS/DCA/DCS/DXCH's addressing convention).
func doubleWordAddress(addr uint16) (msw, lsw uint16) {
	return addr, addr + 1
}

// pairedErasableBank resolves the erasable bank the currently addressed
// operand lives in, or ok=false if the current address isn't erasable.
func pairedErasableBank(c *CPU) (bank uint16, ok bool) {
	a := c.currentS.Address()
	switch a.Kind {
	case AddrUnswitchedErasable:
		return a.Bank, true
	case AddrSwitchedErasable:
		return uint16(c.EBank), true
	default:
		return 0, false
	}
}

// signedValue decodes w as a ones-complement 14-bit-magnitude signed value,
// the representation DAS/MP/DV/AUG/DIM share with the involuntary counters.
func signedValue(w word.Word) int32 {
	if w.Negative() {
		return -int32(w.Complement() & word.Mask14)
	}
	return int32(w & word.Mask14)
}

// fromSigned is the inverse of signedValue, sign-extending bit 14 into bit
// 15 the way AsRegisterValue does for fetched operands.
func fromSigned(v int32) word.Word {
	var w word.Word
	if v < 0 {
		mag := word.Word(-v) & word.Mask14
		w = (mag.Complement() & word.Mask14) | word.Sign
	} else {
		w = word.Word(v) & word.Mask14
	}
	if w&0x2000 != 0 {
		w |= word.Parity
	} else {
		w &^= word.Parity
	}
	return w
}

// CI inserts the carry bit into bit position 1 of the adder.
var CI = &ControlPulse{Name: "CI", WriteWL: func(c *CPU) word.Word {
	c.ci = true
	return 0
}, ReadWL: nullRead}

// NISQ marks the end of an instruction: at the next T12, endCycle loads the
// next instruction into SQ and checks for a pending interrupt.
var NISQ = &ControlPulse{Name: "NISQ", WriteWL: func(c *CPU) word.Word {
	c.nisq = true
	return 0
}, ReadWL: nullRead}

// PONEX clears X and enters a logic ONE into bit position 1.
var PONEX = &ControlPulse{Name: "PONEX", WriteWL: nullWrite, ReadWL: func(c *CPU, _ word.Word) {
	c.x = 1
}}

// RAD reads the address of the next cycle. If the decoded next instruction
// is EXTEND, INHINT, or RELINT, RAD is reinterpreted as RZ+ST2 and sets the
// appropriate SQ-circuitry flip-flops instead of fetching G. Otherwise, a
// pending INDEX addend (see INDEXOP) is folded into the fetched word's
// address field before it is handed to WB/WS.
var RAD = &ControlPulse{Name: "RAD", WriteWL: func(c *CPU) word.Word {
	special := true
	switch c.g {
	case 0o00003: // RELINT
		c.InhibitInterrupts = false
	case 0o00004: // INHINT
		c.InhibitInterrupts = true
	case 0o00006: // EXTEND
		c.Ext = true
	default:
		special = false
	}
	if special {
		c.nextST |= 0b010
		return c.z
	}
	v := pendingIndexAdd(c.g, c.pendingIndex)
	c.pendingIndex = 0
	return v
}, ReadWL: nullRead}

// R1C places octal 177776 (minus one) on the write line.
var R1C = &ControlPulse{Name: "R1C", WriteWL: func(*CPU) word.Word { return 0o177776 }, ReadWL: nullRead}

// RA reads register A onto the write line.
var RA = &ControlPulse{Name: "RA", WriteWL: func(c *CPU) word.Word { return c.a }, ReadWL: nullRead}

// RB reads register B onto the write line.
var RB = &ControlPulse{Name: "RB", WriteWL: func(c *CPU) word.Word { return c.b }, ReadWL: nullRead}

// RC reads the ones-complement of register B onto the write line.
var RC = &ControlPulse{Name: "RC", WriteWL: func(c *CPU) word.Word { return c.b.Complement() }, ReadWL: nullRead}

// RCG reads the ones-complement of register G onto the write line, the
// complement source SU and DCS use instead of RC's fixed register B.
var RCG = &ControlPulse{Name: "RCG", WriteWL: func(c *CPU) word.Word { return c.g.Complement() }, ReadWL: nullRead}

// RL reads register L onto the write line.
var RL = &ControlPulse{Name: "RL", WriteWL: func(c *CPU) word.Word { return c.l }, ReadWL: nullRead}

// RQ reads register Q onto the write line.
var RQ = &ControlPulse{Name: "RQ", WriteWL: func(c *CPU) word.Word { return c.q }, ReadWL: nullRead}

// RB1 places octal 1 on the write line.
var RB1 = &ControlPulse{Name: "RB1", WriteWL: func(*CPU) word.Word { return 1 }, ReadWL: nullRead}

// RCH reads the input/output channel addressed by S onto the write line;
// bit 16 mirrors bit 15 the way the hardware drives it.
var RCH = &ControlPulse{Name: "RCH", WriteWL: func(c *CPU) word.Word {
	return channelRead(c)
}, ReadWL: nullRead}

// RG reads register G onto the write line.
var RG = &ControlPulse{Name: "RG", WriteWL: func(c *CPU) word.Word { return c.g }, ReadWL: nullRead}

// pendingIndexAdd folds a pending INDEX operand into v's low 12 bits,
// leaving the rest of the word (the order-code bits of a not-yet-decoded
// instruction) untouched.
func pendingIndexAdd(v, pending word.Word) word.Word {
	addr := (v + pending) & 0o7777
	return (v &^ 0o7777) | addr
}

// combineDouble folds a double-precision word pair (msw carrying the sign,
// lsw an unsigned 14-bit magnitude extension) into a signed value, DAS's
// arithmetic representation of its double-precision operand.
func combineDouble(msw, lsw word.Word) int64 {
	v := int64(signedValue(msw)) * (int64(word.Mask14) + 1)
	mag := int64(lsw & word.Mask14)
	if lsw.Negative() {
		mag = int64(lsw.Complement() & word.Mask14)
	}
	if v < 0 {
		return v - mag
	}
	return v + mag
}

// splitDouble is the inverse of combineDouble.
func splitDouble(v int64) (msw, lsw word.Word) {
	neg := v < 0
	mag := v
	if neg {
		mag = -v
	}
	mswMag := mag >> 14
	lswMag := mag & int64(word.Mask14)
	if neg {
		mswMag = -mswMag
	}
	return fromSigned(int32(mswMag)), fromSigned(int32(lswMag))
}

// RGPAIR reads the double-word partner cell of the currently addressed
// erasable operand (see doubleWordAddress) onto the write line, the way
// DAS/DCA/DCS/DXCH stage their second word.
var RGPAIR = &ControlPulse{Name: "RGPAIR", WriteWL: func(c *CPU) word.Word {
	bank, ok := pairedErasableBank(c)
	if !ok {
		return 0
	}
	_, lsw := doubleWordAddress(c.currentS.Address().Address)
	return c.Mem.ReadErasable(bank, lsw).AsRegisterValue()
}, ReadWL: nullRead}

// WGPAIR writes the write line into the double-word partner cell of the
// currently addressed erasable operand.
var WGPAIR = &ControlPulse{Name: "WGPAIR", WriteWL: nullWrite, ReadWL: func(c *CPU, wl word.Word) {
	bank, ok := pairedErasableBank(c)
	if !ok {
		return
	}
	_, lsw := doubleWordAddress(c.currentS.Address().Address)
	c.Mem.WriteErasable(bank, lsw, memory.WithProperParity(uint16(wl)))
}}

// RCGPAIR reads the ones-complement of the double-word partner cell onto
// the write line, DCS's counterpart to RCG for the less-significant word.
var RCGPAIR = &ControlPulse{Name: "RCGPAIR", WriteWL: func(c *CPU) word.Word {
	bank, ok := pairedErasableBank(c)
	if !ok {
		return 0
	}
	_, lsw := doubleWordAddress(c.currentS.Address().Address)
	return c.Mem.ReadErasable(bank, lsw).AsRegisterValue().Complement()
}, ReadWL: nullRead}

// DASOP folds the double-precision accumulator (A, L) into the
// double-precision operand already staged in G (most-significant word) and
// B (least-significant word, see decoder.go's das0), leaving the sum's
// most-significant word in G for the automatic erasable write-back and the
// least-significant word as its own return value for WGPAIR to store, then
// clears A and L the way DAS does on real hardware.
var DASOP = &ControlPulse{Name: "DAS", WriteWL: func(c *CPU) word.Word {
	sum := combineDouble(c.g, c.b) + combineDouble(c.a, c.l)
	msw, lsw := splitDouble(sum)
	c.g = msw
	return lsw
}, ReadWL: func(c *CPU, _ word.Word) {
	c.a, c.l = 0, 0
}}

// RL10BB reads the low 10 bits of register B onto the write line.
var RL10BB = &ControlPulse{Name: "RL10BB", WriteWL: func(c *CPU) word.Word { return c.b & 0x3ff }, ReadWL: nullRead}

// RSC reads the CPU register named by S (see MemoryAddress.Kind ==
// AddrRegister) onto the write line.
var RSC = &ControlPulse{Name: "RSC", WriteWL: func(c *CPU) word.Word {
	addr := c.S.Address()
	if addr.Kind != AddrRegister {
		return 0
	}
	switch addr.Address {
	case 0o0:
		return c.a
	case 0o1:
		return c.l
	case 0o2:
		return c.q
	case 0o3:
		return word.Word(c.EBank) << 8
	case 0o4:
		return word.Word(c.FBank) << 10
	case 0o5:
		return c.z
	case 0o6:
		return word.Word(c.EBank) | (word.Word(c.FBank) << 10)
	default: // 0o7
		return 0
	}
}, ReadWL: nullRead}

// RSTRT places octal 4000 (the restart/bootstrap address) on the write
// line.
var RSTRT = &ControlPulse{Name: "RSTRT", WriteWL: func(*CPU) word.Word { return 0o4000 }, ReadWL: nullRead}

// RU reads the adder output gates onto the write line.
var RU = &ControlPulse{Name: "RU", WriteWL: func(c *CPU) word.Word { return c.u() }, ReadWL: nullRead}

// RZ reads register Z onto the write line.
var RZ = &ControlPulse{Name: "RZ", WriteWL: func(c *CPU) word.Word { return c.z }, ReadWL: nullRead}

// RESM restores Z and B from the saved interrupt-return registers and
// clears RUPT_LOCK, implementing RESUME's return-from-interrupt effect.
var RESM = &ControlPulse{Name: "RESM", WriteWL: nullWrite, ReadWL: func(c *CPU, _ word.Word) {
	c.z = c.zrupt
	c.b = c.brupt
	c.Interrupt.Return()
}}

// ST1 sets the stage-1 flip-flop at the next T12.
var ST1 = &ControlPulse{Name: "ST1", WriteWL: nullWrite, ReadWL: func(c *CPU, _ word.Word) {
	c.nextST |= 0b001
}}

// ST2 sets the stage-2 flip-flop at the next T12.
var ST2 = &ControlPulse{Name: "ST2", WriteWL: nullWrite, ReadWL: func(c *CPU, _ word.Word) {
	c.nextST |= 0b010
}}

// TMZ tests for minus zero on the write line and latches BR2.
var TMZ = &ControlPulse{Name: "TMZ", WriteWL: nullWrite, ReadWL: func(c *CPU, wl word.Word) {
	c.BR.SetBR2(wl == 0xffff)
}}

// TOV tests the write line's top two bits for overflow and latches BR
// accordingly (01 positive overflow, 10 negative overflow, 00 otherwise).
var TOV = &ControlPulse{Name: "TOV", WriteWL: nullWrite, ReadWL: func(c *CPU, wl word.Word) {
	top := uint8(wl>>14) & 0x3
	if top == 0b01 || top == 0b10 {
		c.BR.Set(top)
	} else {
		c.BR.Set(0b00)
	}
}}

// TPZG tests register G for plus zero and sets (never clears) BR2.
var TPZG = &ControlPulse{Name: "TPZG", WriteWL: nullWrite, ReadWL: func(c *CPU, _ word.Word) {
	if c.g == 0 {
		c.BR.SetBR2(true)
	}
}}

// TSGN tests the write line's sign bit and latches BR1.
var TSGN = &ControlPulse{Name: "TSGN", WriteWL: nullWrite, ReadWL: func(c *CPU, wl word.Word) {
	c.BR.SetBR1(wl.Negative())
}}

// WA clears register A and loads the write line into it.
var WA = &ControlPulse{Name: "WA", WriteWL: nullWrite, ReadWL: func(c *CPU, wl word.Word) { c.a = wl }}

// WB clears register B and loads the write line into it.
var WB = &ControlPulse{Name: "WB", WriteWL: nullWrite, ReadWL: func(c *CPU, wl word.Word) { c.b = wl }}

// WCH clears the channel addressed by S and loads the write line into it.
var WCH = &ControlPulse{Name: "WCH", WriteWL: nullWrite, ReadWL: func(c *CPU, wl word.Word) {
	channelWrite(c, wl)
}}

// WG clears register G and loads the write line into it.
var WG = &ControlPulse{Name: "WG", WriteWL: nullWrite, ReadWL: func(c *CPU, wl word.Word) { c.g = wl }}

// WL clears register L and loads the write line into it.
var WL = &ControlPulse{Name: "WL", WriteWL: nullWrite, ReadWL: func(c *CPU, wl word.Word) { c.l = wl }}

// WX clears register X and the carry flip-flop, then loads the write line
// into X — the counterpart to WY/WY12 for instructions (AD, SU, ADS, INCR) that
// stage X and Y from two different registers across separate time pulses
// instead of WY/WY12's single-operand "clear both, load Y" shape.
var WX = &ControlPulse{Name: "WX", WriteWL: func(c *CPU) word.Word {
	c.ci = false
	return 0
}, ReadWL: func(c *CPU, wl word.Word) { c.x = wl }}

// WYX loads the write line into Y without touching X or CI, pairing with
// WX to stage a two-operand add/subtract across separate time pulses.
var WYX = &ControlPulse{Name: "WYX", WriteWL: nullWrite, ReadWL: func(c *CPU, wl word.Word) { c.y = wl }}

// WOVR tests for positive overflow on the write line; if S addresses the
// scaler counter cell, it increments that counter, otherwise (addresses
// 0026, 0027, 0030) it would request a RUPT. The RUPT-on-overflow path is a
// documented simplification (see DESIGN.md): it is not wired to any of the
// ten fixed-priority vectors, matching the fact that real WOVR overflow
// traps are software-visible via the editing registers rather than the
// interrupt priority chain this emulator models.
var WOVR = &ControlPulse{Name: "WOVR", WriteWL: nullWrite, ReadWL: func(c *CPU, wl word.Word) {
	top := wl & 0xc000
	if top == 0x4000 {
		s := c.S.Inner()
		if s == 0o0024 {
			ApplyCounterOp(c.Mem, 0, 0o0024, OpPINC)
		}
	}
}}

// WS clears register S and loads the low 12 bits of the write line.
var WS = &ControlPulse{Name: "WS", WriteWL: nullWrite, ReadWL: func(c *CPU, wl word.Word) {
	c.S = AddressRegisterFrom(wl)
}}

// WSC clears the CPU register named by S and loads the write line into it.
var WSC = &ControlPulse{Name: "WSC", WriteWL: nullWrite, ReadWL: func(c *CPU, wl word.Word) {
	addr := c.S.Address()
	if addr.Kind != AddrRegister {
		return
	}
	switch addr.Address {
	case 0o0:
		c.a = wl
	case 0o1:
		c.l = wl
	case 0o2:
		c.q = wl
	case 0o3:
		c.EBank = uint8(wl>>8) & 0x7
	case 0o4:
		c.FBank = uint8(wl>>10) & 0x1f
	case 0o5:
		c.z = wl
	case 0o6:
		c.EBank = uint8(wl) & 0x7
		c.FBank = uint8(wl>>10) & 0x1f
	default: // 0o7: no-op
	}
}}

// WQ clears register Q and loads the write line into it.
var WQ = &ControlPulse{Name: "WQ", WriteWL: nullWrite, ReadWL: func(c *CPU, wl word.Word) { c.q = wl }}

// WY clears registers X and Y and loads the write line into Y.
var WY = &ControlPulse{Name: "WY", WriteWL: nullWrite, ReadWL: func(c *CPU, wl word.Word) {
	c.x = 0
	c.y = wl
}}

// WY12 clears X, Y, and the carry flip-flop, then loads the low 12 bits of
// the write line into Y.
var WY12 = &ControlPulse{Name: "WY12", WriteWL: func(c *CPU) word.Word {
	c.x = 0
	c.y = 0
	c.ci = false
	return 0
}, ReadWL: func(c *CPU, wl word.Word) {
	c.y = wl & 0o07777
}}

// WZ clears register Z and loads the write line into it.
var WZ = &ControlPulse{Name: "WZ", WriteWL: nullWrite, ReadWL: func(c *CPU, wl word.Word) { c.z = wl }}

// WEB clears EBANK and loads bits 10-8 of the write line into it.
var WEB = &ControlPulse{Name: "WEB", WriteWL: nullWrite, ReadWL: func(c *CPU, wl word.Word) {
	c.EBank = uint8(wl>>8) & 0x7
}}

// WFB clears FBANK and loads bits 14-10 of the write line into it.
var WFB = &ControlPulse{Name: "WFB", WriteWL: nullWrite, ReadWL: func(c *CPU, wl word.Word) {
	c.FBank = uint8(wl>>10) & 0x1f
}}

// RAND forms A = A AND CH(S), the channel-logic AND path.
var RAND = &ControlPulse{Name: "RAND", WriteWL: nullWrite, ReadWL: func(c *CPU, _ word.Word) {
	c.a &= channelRead(c)
}}

// ROR forms A = A OR CH(S).
var ROR = &ControlPulse{Name: "ROR", WriteWL: nullWrite, ReadWL: func(c *CPU, _ word.Word) {
	c.a |= channelRead(c)
}}

// RXOR forms A = A XOR CH(S).
var RXOR = &ControlPulse{Name: "RXOR", WriteWL: nullWrite, ReadWL: func(c *CPU, _ word.Word) {
	c.a ^= channelRead(c)
}}

// WAND forms CH(S) = CH(S) AND A.
var WAND = &ControlPulse{Name: "WAND", WriteWL: nullWrite, ReadWL: func(c *CPU, _ word.Word) {
	channelWrite(c, channelRead(c)&c.a)
}}

// WOR forms CH(S) = CH(S) OR A.
var WOR = &ControlPulse{Name: "WOR", WriteWL: nullWrite, ReadWL: func(c *CPU, _ word.Word) {
	channelWrite(c, channelRead(c)|c.a)
}}

// READOP loads A from the channel addressed by S.
var READOP = &ControlPulse{Name: "READ", WriteWL: func(c *CPU) word.Word { return channelRead(c) }, ReadWL: nullRead}

// WRITEOP stores A into the channel addressed by S.
var WRITEOP = &ControlPulse{Name: "WRITE", WriteWL: func(c *CPU) word.Word { return c.a }, ReadWL: func(c *CPU, wl word.Word) {
	channelWrite(c, wl)
}}

// MASKOP forms A = A AND G, the bitwise mask the MASK instruction performs
// through the logic unit instead of the adder.
var MASKOP = &ControlPulse{Name: "MASK", WriteWL: nullWrite, ReadWL: func(c *CPU, _ word.Word) {
	c.a &= c.g
}}

// AUGOP increases the magnitude of register G by one, away from zero (+1 if
// positive, -1 if negative), AUG's "augment" semantics.
var AUGOP = &ControlPulse{Name: "AUG", WriteWL: nullWrite, ReadWL: func(c *CPU, _ word.Word) {
	delta := word.Word(1)
	if c.g.Negative() {
		delta = 0o177776
	}
	sum, _ := word.AddEndAround(c.g, delta, false)
	c.g = sum
}}

// DIMOP decreases the magnitude of register G by one toward zero, the
// inverse of AUG, stopping at zero rather than crossing it.
var DIMOP = &ControlPulse{Name: "DIM", WriteWL: nullWrite, ReadWL: func(c *CPU, _ word.Word) {
	if c.g.IsZero() {
		return
	}
	delta := word.Word(0o177776)
	if c.g.Negative() {
		delta = 1
	}
	sum, _ := word.AddEndAround(c.g, delta, false)
	c.g = sum
}}

// MSUOP forms A = A - G ("modular subtract"), normalizing a minus-zero
// result to plus zero the way the real instruction avoids accumulating
// negative-zero artifacts in modulo arithmetic.
var MSUOP = &ControlPulse{Name: "MSU", WriteWL: nullWrite, ReadWL: func(c *CPU, _ word.Word) {
	sum, _ := word.AddEndAround(c.a, c.g.Complement(), false)
	if sum.IsMinusZero() {
		sum = 0
	}
	c.a = sum
}}

// INDEXOP stages G as the address-field addend RAD folds into the very
// next instruction word it fetches (decoder.go's std2), INDEX's defining
// one-shot effect on the following instruction rather than on itself.
var INDEXOP = &ControlPulse{Name: "INDEX", WriteWL: nullWrite, ReadWL: func(c *CPU, _ word.Word) {
	c.pendingIndex = c.g
}}

// BZFOP branches to B's address (the jump-target convention RU/CI applies
// to TC's own target) when the accumulator reads as zero.
var BZFOP = &ControlPulse{Name: "BZF", WriteWL: nullWrite, ReadWL: func(c *CPU, _ word.Word) {
	if c.a.IsZero() {
		sum, _ := word.AddEndAround(0, c.b, true)
		c.z = sum
	}
}}

// BZMFOP branches to B's address when the accumulator reads as zero or
// negative.
var BZMFOP = &ControlPulse{Name: "BZMF", WriteWL: nullWrite, ReadWL: func(c *CPU, _ word.Word) {
	if c.a.IsZero() || c.a.Negative() {
		sum, _ := word.AddEndAround(0, c.b, true)
		c.z = sum
	}
}}

// EDRUPTOP marks a debug interrupt point; real hardware uses it to let the
// downlink/DSKY software trap a known location, which here is just an
// observable log event.
var EDRUPTOP = &ControlPulse{Name: "EDRUPT", WriteWL: nullWrite, ReadWL: func(c *CPU, _ word.Word) {
	c.log.Debug("EDRUPT", "z", c.z)
}}

// MPOP multiplies A by G and splits the signed product across A (most
// significant) and L (least significant), approximating MP's double-
// precision result without reproducing the hardware's shift-and-add
// sequencing (see DESIGN.md).
var MPOP = &ControlPulse{Name: "MP", WriteWL: nullWrite, ReadWL: func(c *CPU, _ word.Word) {
	prod := int64(signedValue(c.a)) * int64(signedValue(c.g))
	c.a = fromSigned(int32(prod >> 14))
	c.l = fromSigned(int32(prod & int64(word.Mask14)))
}}

// DVOP divides A by G, approximating DV's double-precision divide (real
// hardware divides the A:L pair by G) with a single-word quotient/remainder
// split, documented as a simplification in DESIGN.md. A division by zero
// leaves A and G unchanged, as the real instruction's divide-overflow case
// does not produce a usable quotient either.
var DVOP = &ControlPulse{Name: "DV", WriteWL: nullWrite, ReadWL: func(c *CPU, _ word.Word) {
	if c.g.IsZero() {
		return
	}
	av := signedValue(c.a)
	gv := signedValue(c.g)
	c.a = fromSigned(av / gv)
	c.l = fromSigned(av % gv)
}}
