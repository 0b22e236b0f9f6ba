package cpu

import (
	"testing"

	"github.com/agcsim/agc/internal/iochannel"
	"github.com/agcsim/agc/internal/memory"
	"github.com/agcsim/agc/internal/word"
)

func newTestCPU() *CPU {
	return New(memory.New(), iochannel.NewBus(), nil)
}

// TestPowerOnState verifies the reset state a fresh CPU starts in: ST=1,
// carry flip-flop set, every other register zeroed (spec.md §3 Lifecycle).
func TestPowerOnState(t *testing.T) {
	c := newTestCPU()
	if c.ST != 0o1 {
		t.Errorf("ST = %#o, want %#o", c.ST, 0o1)
	}
	if !c.ci {
		t.Errorf("ci = false, want true")
	}
	snap := c.Snapshot()
	if snap.A != 0 || snap.L != 0 || snap.Q != 0 || snap.Z != 0 {
		t.Errorf("programmer-visible registers not zeroed: %+v", snap)
	}
}

// TestTwelveTicksPerSubinstruction checks that StepSubinstruction always
// advances exactly 12 time pulses and returns to T1.
func TestTwelveTicksPerSubinstruction(t *testing.T) {
	c := newTestCPU()
	// GOJ1 (ST=1) is the subinstruction executed right after power-on.
	if err := c.StepSubinstruction(); err != nil {
		t.Fatalf("StepSubinstruction: %v", err)
	}
	if c.CurrentTimePulse != T1 {
		t.Errorf("CurrentTimePulse = %s, want T1", c.CurrentTimePulse)
	}
}

// TestTCTransfersControl exercises a TC self-loop: the classic AGC idle
// instruction, TC encoding an address one less than its own location (the
// adder's CI pulse always adds one when forming the jump target from the
// fetched operand in B). Q must end up holding the return address (Z
// before the jump).
func TestTCTransfersControl(t *testing.T) {
	c := newTestCPU()
	c.AssertGOJAM()

	c.z = 0o4000
	c.b = 0o3777 // operand address, loaded into B by a prior fetch cycle
	c.SQ = NewSequenceRegister(0b000000, false)
	c.ST = 0

	if err := c.StepSubinstruction(); err != nil {
		t.Fatalf("StepSubinstruction: %v", err)
	}
	if c.z != 0o4000 {
		t.Errorf("Z after TC self-jump = %#o, want %#o", uint16(c.z), 0o4000)
	}
	if c.q != 0o4000 {
		t.Errorf("Q after TC self-jump = %#o, want %#o", uint16(c.q), 0o4000)
	}
}

// TestCALoadsAccumulator exercises the CA (clear and add) control pulse
// chain end to end: A should end up holding the value fetched into G.
func TestCALoadsAccumulator(t *testing.T) {
	c := newTestCPU()
	c.AssertGOJAM()
	c.WriteErasableForTest(0, 0o100, 0o12345)
	c.S = AddressRegisterFrom(0o100)
	c.currentS = c.S
	c.SQ = NewSequenceRegister(0b011000, false)
	c.ST = 0

	if err := c.StepSubinstruction(); err != nil {
		t.Fatalf("StepSubinstruction: %v", err)
	}
	if c.a&0x7fff != 0o12345 {
		t.Errorf("A after CA = %#o, want %#o", uint16(c.a)&0x7fff, 0o12345)
	}
}

// TestDesignErrorOnUnreachableTuple verifies StepPulse reports an
// unreachable (SQ, ST, Tn) tuple as a *DesignError rather than panicking.
func TestDesignErrorOnUnreachableTuple(t *testing.T) {
	c := newTestCPU()
	c.SQ = NewSequenceRegister(0b111111, true)
	c.ST = 0o3
	err := c.StepPulse()
	if err == nil {
		t.Fatalf("StepPulse with unreachable tuple: got nil error, want *DesignError")
	}
	if _, ok := err.(*DesignError); !ok {
		t.Errorf("StepPulse error type = %T, want *DesignError", err)
	}
}

// TestADOverflowSetsBranchRegister exercises AD end to end with two operands
// whose ones-complement sum overflows, checking that TOV actually latches
// the overflow into BR rather than leaving it silently unflagged.
func TestADOverflowSetsBranchRegister(t *testing.T) {
	c := newTestCPU()
	c.AssertGOJAM()

	// S addresses register 5 (Z) so RSC fetches c.z directly, bypassing the
	// erasable/fixed auto-read pipeline entirely.
	c.S = AddressRegisterFrom(0o5)
	c.currentS = c.S
	c.z = 0x4000
	c.a = 0x4000
	c.SQ = NewSequenceRegister(0b110000, false) // orderCode 6, extended 0: AD
	c.ST = 0

	if err := c.StepSubinstruction(); err != nil {
		t.Fatalf("StepSubinstruction: %v", err)
	}
	if c.BR.Value() == 0 {
		t.Errorf("BR.Value() = 0 after overflowing AD, want a latched overflow code")
	}
}

// TestCCSDistinguishesPlusAndMinusZero exercises CCS end to end with a
// plus-zero and a minus-zero operand, checking that BR1 (the sign latch)
// actually differs between the two — the branch CCS's caller depends on to
// tell +0 from -0 apart.
func TestCCSDistinguishesPlusAndMinusZero(t *testing.T) {
	runCCS := func(operand word.Word) bool {
		c := newTestCPU()
		c.AssertGOJAM()
		c.b = 0 // RL10BB -> address 0 (register A), so the auto-fetch no-ops
		c.currentS = AddressRegisterFrom(0)
		c.g = operand
		c.SQ = NewSequenceRegister(0b001000, false) // orderCode 1, extended 0: CCS
		c.ST = 0
		if err := c.StepSubinstruction(); err != nil {
			t.Fatalf("StepSubinstruction: %v", err)
		}
		return c.BR.BR1()
	}

	if runCCS(0x0000) {
		t.Errorf("BR1 after CCS of plus-zero = true, want false")
	}
	if !runCCS(0xffff) {
		t.Errorf("BR1 after CCS of minus-zero = false, want true")
	}
}

// TestCounterOverflowRequestsInterrupt drives TIME1's overflow chain
// through three cells and checks that the resulting TIME3 overflow both
// requests VectorT3RUPT and is actually serviced by the following STD2
// cycle's interrupt-priority check, exercising Counters.TickTime1's real
// production wiring through CPU.endCycle end to end.
func TestCounterOverflowRequestsInterrupt(t *testing.T) {
	c := newTestCPU() // fresh, not AssertGOJAM: leaves no GOJAM-duration block on interrupt vectoring

	c.WriteErasableForTest(0, c.Counters.TimeAddr, 0x3fff)   // TIME1, about to overflow
	c.WriteErasableForTest(0, c.Counters.TimeAddr+1, 0x3fff) // TIME2, about to overflow
	c.WriteErasableForTest(0, c.Counters.TimeAddr+2, 0x3fff) // TIME3, about to overflow

	c.ST = 0b010 // STD2, regardless of SQ

	if err := c.StepSubinstruction(); err != nil {
		t.Fatalf("StepSubinstruction: %v", err)
	}
	if !c.Interrupt.InRupt() {
		t.Fatalf("InRupt() = false after TIME3 overflow, want true")
	}
	if uint16(c.z) != vectorAddress[VectorT3RUPT] {
		t.Errorf("Z after TIME3 overflow = %#o, want %#o", uint16(c.z), vectorAddress[VectorT3RUPT])
	}
}

// TestGOJAMFromNightWatchman drives the night-watchman alarm through a live
// CPU (not a bare AlarmMonitor) and checks the full restart end to end:
// Raise must invoke AssertGOJAM, and the following GOJ1 cycle must land Z at
// 04000 and FBANK at 2 within its own 12 ticks.
func TestGOJAMFromNightWatchman(t *testing.T) {
	c := newTestCPU()
	c.z = 0o1234
	c.FBank = 5
	c.EBank = 3

	for i := 0; i < NightWatchmanLimit; i++ {
		c.Alarms.ObserveFetch(0o4000)
	}
	if !c.Alarms.GOJAMAsserted() {
		t.Fatalf("GOJAMAsserted() = false after night-watchman limit, want true")
	}
	if c.z != 0 || c.ST != 0o1 {
		t.Fatalf("CPU not reset immediately by Raise: Z=%#o ST=%#o", uint16(c.z), c.ST)
	}

	if err := c.StepSubinstruction(); err != nil {
		t.Fatalf("StepSubinstruction: %v", err)
	}
	if c.z != 0o4000 {
		t.Errorf("Z after GOJ1 = %#o, want %#o", uint16(c.z), 0o4000)
	}
	if c.FBank != 2 {
		t.Errorf("FBank after GOJ1 = %d, want 2", c.FBank)
	}
	if c.EBank != 0 {
		t.Errorf("EBank after GOJ1 = %d, want 0", c.EBank)
	}
}

// WriteErasableForTest is a small test-only seam so tests can populate
// erasable memory using the same bank/offset addressing the control pulses
// use, without reaching into the memory package's internals.
func (c *CPU) WriteErasableForTest(bank, offset, value uint16) {
	c.Mem.WriteErasable(bank, offset, memory.WithProperParity(value))
}
