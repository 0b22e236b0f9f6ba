/*
 * agc - Central processor
 */

package cpu

import (
	"log/slog"

	"github.com/agcsim/agc/internal/event"
	"github.com/agcsim/agc/internal/iochannel"
	"github.com/agcsim/agc/internal/memory"
	"github.com/agcsim/agc/internal/word"
)

// CPU is the Block II AGC central processor: the programmer-visible
// register file (A, L, Q, Z, EBANK, FBANK), the internal registers the
// control-pulse ROM drives (B, G, S, SQ, ST, X, Y, CI), and the attached
// storage and channel bus.
type CPU struct {
	// Programmer-visible registers.
	a, l, q, z word.Word
	EBank      uint8 // 3 bits
	FBank      uint8 // 5 bits

	// Internal registers.
	b, g              word.Word
	S                 AddressRegister
	SQ                SequenceRegister
	Ext               bool
	ST                uint8 // 3 bits
	BR                BranchRegister
	x, y              word.Word
	ci                bool
	InhibitInterrupts bool

	// zrupt/brupt hold Z and B as they stood the instant an interrupt was
	// vectored to, restored by RESUME (RESM) instead of the ordinary TC
	// return-address convention Q is reserved for.
	zrupt, brupt word.Word

	// pendingIndex is INDEX's staged address-field addend, folded into the
	// next fetched instruction word by RAD and cleared immediately after.
	pendingIndex word.Word

	Mem *memory.Memory
	IO  *iochannel.Bus

	CurrentTimePulse TimePulse
	currentS         AddressRegister
	nisq             bool
	nextST           uint8

	lastAdderOverflow bool

	Counters  Counters
	Interrupt InterruptController
	Alarms    AlarmMonitor
	Events    *event.Queue

	log *slog.Logger
}

// New returns a CPU attached to mem and io, with all registers zeroed and
// ST initialized to 1, ready to perform a GOJAM on the first subinstruction
// (matching the real hardware's power-on state).
func New(mem *memory.Memory, io *iochannel.Bus, logger *slog.Logger) *CPU {
	if logger == nil {
		logger = slog.Default()
	}
	c := &CPU{
		Mem:      mem,
		IO:       io,
		ST:       0o1,
		ci:       true,
		Counters: NewCounters(),
		Events:   event.NewQueue(),
		log:      logger,
	}
	c.Alarms.Log = logger
	c.Alarms.events = c.Events
	c.Alarms.reset = c.AssertGOJAM
	return c
}

// executeControlPulses runs every control pulse scheduled for time pulse t
// against the current subinstruction, implementing the two-phase
// OR-then-latch write-bus model: every pulse's WriteWL contributes to a
// shared write line, then every pulse's ReadWL observes the settled value.
func (c *CPU) executeControlPulses(sub *Subinstruction, t TimePulse) {
	pulses := sub.pulses(t)
	var wl word.Word
	for _, p := range pulses {
		wl |= p.WriteWL(c)
	}
	for _, p := range pulses {
		p.ReadWL(c, wl)
	}
}

// StepPulse advances the processor by exactly one time pulse, per spec.md
// §6's core API. It returns a *DesignError if the current (SQ, ST, Tn)
// tuple has no control-pulse ROM entry.
func (c *CPU) StepPulse() error {
	sub, ok := c.CurrentSubinstruction()
	if !ok {
		return &DesignError{
			OrderCode: c.SQ.OrderCode(),
			Extended:  c.SQ.IsExtended(),
			ST:        c.ST,
			Pulse:     c.CurrentTimePulse,
		}
	}

	c.executeControlPulses(sub, c.CurrentTimePulse)

	switch c.CurrentTimePulse {
	case T4:
		c.readErasable()
	case T6:
		c.readFixed()
	case T10:
		c.writeErasable()
	case T12:
		c.endCycle(sub)
	}

	c.Alarms.tick()
	c.CurrentTimePulse = c.CurrentTimePulse.Next()
	return nil
}

func (c *CPU) readErasable() {
	addr := c.currentS.Address()
	switch addr.Kind {
	case AddrUnswitchedErasable:
		c.g = c.Mem.ReadErasable(addr.Bank, addr.Address).AsRegisterValue()
	case AddrSwitchedErasable:
		c.g = c.Mem.ReadErasable(uint16(c.EBank), addr.Address).AsRegisterValue()
	}
}

func (c *CPU) readFixed() {
	addr := c.currentS.Address()
	switch addr.Kind {
	case AddrUnswitchedFixed:
		mw := c.Mem.ReadFixed(addr.Bank, addr.Address)
		c.g = mw.AsRegisterValue()
		c.Alarms.ObserveParity(mw.IsValid())
	case AddrSwitchedFixed:
		bank := uint16(c.FBank)
		if c.IO != nil && c.IO.Superbank() {
			bank += 32
		}
		mw := c.Mem.ReadFixed(bank, addr.Address)
		c.g = mw.AsRegisterValue()
		c.Alarms.ObserveParity(mw.IsValid())
	}
}

func (c *CPU) writeErasable() {
	addr := c.currentS.Address()
	switch addr.Kind {
	case AddrUnswitchedErasable:
		c.Mem.WriteErasable(addr.Bank, addr.Address, memory.WithProperParity(uint16(c.g)))
	case AddrSwitchedErasable:
		c.Mem.WriteErasable(uint16(c.EBank), addr.Address, memory.WithProperParity(uint16(c.g)))
	}
}

func (c *CPU) endCycle(sub *Subinstruction) {
	c.Counters.TickTime1(c.Mem, &c.Interrupt)

	if c.nisq {
		c.SQ = NewSequenceRegister(uint8(c.b>>9)&0x3f, c.Ext)
		c.nisq = false

		c.Alarms.ObserveTCSelf(sub.Name == "TC" && c.z == c.b)
		c.Alarms.ObserveRupt(c.Interrupt.InRupt())
		c.Alarms.ObserveFetch(uint16(c.z))

		if !c.InhibitInterrupts && !c.Interrupt.InRupt() && !c.Alarms.GOJAMAsserted() {
			if v, pending := c.Interrupt.Highest(); pending {
				c.vectorToInterrupt(v)
			}
		}
	}

	c.currentS = c.S
	c.ST = c.nextST
	c.nextST = 0
}

// vectorToInterrupt transfers control to the service routine for v, saving
// Z and B into the dedicated ZRUPT/BRUPT registers RESUME restores from —
// distinct from Q, which TC's own return-address convention owns.
func (c *CPU) vectorToInterrupt(v InterruptVector) {
	c.Interrupt.Acknowledge(v)
	c.zrupt = c.z
	c.brupt = c.b
	c.z = word.Word(vectorAddress[v])
}

// StepSubinstruction runs a complete MCT: at least one StepPulse, then
// continues until T1 is reached again.
func (c *CPU) StepSubinstruction() error {
	if err := c.StepPulse(); err != nil {
		return err
	}
	for c.CurrentTimePulse != T1 {
		if err := c.StepPulse(); err != nil {
			return err
		}
	}
	return nil
}

// AssertGOJAM forces an immediate restart: every programmer-visible and
// internal register is reset to its power-on value, ST is left at 1 so the
// next subinstruction dispatched is GOJ1 (the control-pulse ROM's hardwired
// bootstrap entry, decoder.go's goj1), and the alarm monitor begins its
// GojamDuration countdown — exactly as a manual GOJAM button push or any of
// the restart-monitor alarms does on real hardware. GOJ1 itself lands Z at
// 04000 and FBANK at 2 within its own 12-tick cycle; this reset only needs
// to zero everything else and hand off to it.
func (c *CPU) AssertGOJAM() {
	c.a, c.l, c.q, c.z = 0, 0, 0, 0
	c.zrupt, c.brupt = 0, 0
	c.EBank, c.FBank = 0, 0
	c.b, c.g = 0, 0
	c.S = NewAddressRegister()
	c.currentS = NewAddressRegister()
	c.SQ = NewSequenceRegister(0, false)
	c.Ext = false
	c.ST = 0o1
	c.BR = BranchRegister{}
	c.x, c.y = 0, 0
	c.ci = true
	c.InhibitInterrupts = false
	c.nisq = false
	c.nextST = 0
	c.CurrentTimePulse = T1
	c.Alarms.beginGojam()
	c.log.Warn("GOJAM asserted")
}

// RegisterState is a point-in-time snapshot of every register the trace
// format (spec.md §6.3) records.
type RegisterState struct {
	A, L, Q, Z   word.Word
	EBank, FBank uint8
	B, G         word.Word
	S            uint16
	SQ           uint8
	ST           uint8
	X, Y         word.Word
	BR           uint8
}

// Snapshot returns the current RegisterState.
func (c *CPU) Snapshot() RegisterState {
	return RegisterState{
		A: c.a, L: c.l, Q: c.q, Z: c.z,
		EBank: c.EBank, FBank: c.FBank,
		B: c.b, G: c.g,
		S:  c.S.Inner(),
		SQ: c.SQ.Inner(),
		ST: c.ST,
		X:  c.x, Y: c.y,
		BR: c.BR.Value(),
	}
}
