package cpu

import (
	"testing"

	"github.com/agcsim/agc/internal/word"
)

func TestInterruptPriorityOrder(t *testing.T) {
	var ic InterruptController
	ic.Request(VectorDownrupt)
	ic.Request(VectorT5RUPT)
	ic.Request(VectorKeyrupt1)

	v, ok := ic.Highest()
	if !ok {
		t.Fatalf("Highest() = (_, false), want a pending vector")
	}
	if v != VectorT5RUPT {
		t.Errorf("Highest() = %s, want %s", v, VectorT5RUPT)
	}
}

func TestAcknowledgeClearsPending(t *testing.T) {
	var ic InterruptController
	ic.Request(VectorT6RUPT)
	if !ic.Pending() {
		t.Fatalf("Pending() = false after Request, want true")
	}
	ic.Acknowledge(VectorT6RUPT)
	if ic.Pending() {
		t.Errorf("Pending() = true after Acknowledge, want false")
	}
	if !ic.InRupt() {
		t.Errorf("InRupt() = false after Acknowledge, want true")
	}
	ic.Return()
	if ic.InRupt() {
		t.Errorf("InRupt() = true after Return, want false")
	}
}

// TestVectorToInterrupt exercises CPU.vectorToInterrupt end to end: Z must
// be redirected to the vector's fixed service address, and the interrupted
// program's Z/B must be saved into the dedicated ZRUPT/BRUPT registers
// RESUME restores from rather than into Q.
func TestVectorToInterrupt(t *testing.T) {
	c := newTestCPU()
	c.z = 0o1234
	c.b = 0o5432
	c.Interrupt.Request(VectorT3RUPT)
	c.vectorToInterrupt(VectorT3RUPT)

	if c.zrupt != 0o1234 {
		t.Errorf("ZRUPT after vectorToInterrupt = %#o, want %#o", uint16(c.zrupt), 0o1234)
	}
	if c.brupt != 0o5432 {
		t.Errorf("BRUPT after vectorToInterrupt = %#o, want %#o", uint16(c.brupt), 0o5432)
	}
	if c.z != word.Word(vectorAddress[VectorT3RUPT]) {
		t.Errorf("Z after vectorToInterrupt = %#o, want %#o", uint16(c.z), vectorAddress[VectorT3RUPT])
	}
	if c.Interrupt.Pending() {
		t.Errorf("Pending() = true after vectorToInterrupt, want false")
	}
	if !c.Interrupt.InRupt() {
		t.Errorf("InRupt() = false after vectorToInterrupt, want true")
	}
}

// TestResumeRestoresInterruptedProgram runs a full RESUME subinstruction
// (decoder.go's resume0) and checks that it restores Z/B from ZRUPT/BRUPT
// and clears RUPT_LOCK (scenario: counter-driven interrupt return).
func TestResumeRestoresInterruptedProgram(t *testing.T) {
	c := newTestCPU()
	c.AssertGOJAM()

	c.Interrupt.Request(VectorT3RUPT)
	c.vectorToInterrupt(VectorT3RUPT)
	if !c.Interrupt.InRupt() {
		t.Fatalf("InRupt() = false after vectorToInterrupt, want true")
	}

	c.zrupt = 0o1234
	c.brupt = 0o0017
	c.SQ = NewSequenceRegister(0b000000, true) // orderCode 0, extended 0, EXT set
	c.ST = 0

	if err := c.StepSubinstruction(); err != nil {
		t.Fatalf("StepSubinstruction: %v", err)
	}
	if c.z != 0o1234 {
		t.Errorf("Z after RESUME = %#o, want %#o", uint16(c.z), 0o1234)
	}
	if c.b != 0o0017 {
		t.Errorf("B after RESUME = %#o, want %#o", uint16(c.b), 0o0017)
	}
	if c.Interrupt.InRupt() {
		t.Errorf("InRupt() = true after RESUME, want false")
	}
}
