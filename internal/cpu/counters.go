/*
 * agc - Involuntary counters
 */

package cpu

import "github.com/agcsim/agc/internal/memory"

// CounterOp names one of the seven involuntary-counter increment/decrement
// pulses that can be applied to a counter's erasable memory cell, bypassing
// the normal WG/WS store path the way real counter PCELLs do.
type CounterOp int

const (
	OpPINC  CounterOp = iota // +1, pegs at +00000 on overflow from +37777
	OpMINC                   // -1, pegs at -00000 on overflow from -37777
	OpPCDU                   // +1 with direction bit, used by CDU counters
	OpMCDU                   // -1 with direction bit
	OpDINC                   // increment or decrement by 1 toward zero
	OpSHINC                  // shift-increment (used by the optics/IMU counters)
	OpSHANC                  // shift-increment, alternate polarity
)

// ApplyCounterOp applies op to the erasable memory cell at (bank, addr),
// returning true if the cell overflowed (for TIME1->TIME2->...->TIME6
// carry chaining in Counters.TickTime1). The cell holds a sign-magnitude
// value (bit 15 is the sign). PCDU and SHINC are applied as a plain +1 and
// MCDU and SHANC as a plain -1: no direction bit and no shift is modeled.
func ApplyCounterOp(mem *memory.Memory, bank, addr uint16, op CounterOp) bool {
	cur := mem.ReadErasable(bank, addr)
	v := int32(cur.Value())
	negative := v&0x4000 != 0
	if negative {
		v = -(v &^ 0x4000)
	}

	overflow := false
	switch op {
	case OpPINC, OpPCDU, OpSHINC:
		v++
		if v > 0x3fff {
			v = 0
			overflow = true
		}
	case OpMINC, OpMCDU, OpSHANC:
		v--
		if v < -0x3fff {
			v = 0
			overflow = true
		}
	case OpDINC:
		if v > 0 {
			v--
		} else if v < 0 {
			v++
		}
	}

	minusOverflow := overflow && (op == OpMINC || op == OpMCDU || op == OpSHANC)
	var stored uint16
	if v < 0 || minusOverflow {
		stored = uint16(-v) | 0x4000
	} else {
		stored = uint16(v)
	}
	mem.WriteErasable(bank, addr, memory.WithProperParity(stored))
	return overflow
}

// Counters holds the chained free-running TIME1..TIME6 dividers (the real
// hardware's master real-time clock chain: TIME1 increments fastest and
// ripples a PINC into TIME2 on overflow, TIME2 into TIME3, and so on,
// mirroring spec.md §4.8's fixed overflow-chaining order).
type Counters struct {
	// TimeBank/TimeAddr name the erasable bank/offset pair of TIME1's cell;
	// TIME2..TIME6 occupy the five following addresses, matching the real
	// AGC's fixed erasable-memory layout for the TIME counters.
	TimeBank uint16
	TimeAddr uint16
}

// NewCounters returns a Counters bound to the AGC's fixed TIME1 cell
// address (bank 0, offset 07 octal, i.e. erasable address 07).
func NewCounters() Counters {
	return Counters{TimeBank: 0, TimeAddr: 0o07}
}

// time1Vectors names the interrupt vector TIME3..TIME6 each request on
// overflow, index-aligned with TickTime1's chain (TIME1, TIME2 request
// nothing; they only feed the carry into TIME3).
var time1Vectors = [6]InterruptVector{0, 0, VectorT3RUPT, VectorT4RUPT, VectorT5RUPT, VectorT6RUPT}

// TickTime1 applies one PINC to TIME1 and chains the overflow through
// TIME2..TIME6, called once per subinstruction boundary (T12) by CPU's
// endCycle. Each of TIME3..TIME6 that overflows requests its matching
// fixed-priority interrupt, the real hardware's clock-driven RUPT source.
func (c Counters) TickTime1(mem *memory.Memory, ic *InterruptController) {
	addr := c.TimeAddr
	for i := 0; i < 6; i++ {
		if !ApplyCounterOp(mem, c.TimeBank, addr, OpPINC) {
			return
		}
		if i >= 2 {
			ic.Request(time1Vectors[i])
		}
		addr++
	}
}
