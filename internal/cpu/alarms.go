/*
 * agc - Alarm / restart monitor
 */

package cpu

import (
	"log/slog"

	"github.com/agcsim/agc/internal/event"
)

// gojamEventKey identifies the GOJAM-duration countdown in an AlarmMonitor's
// event queue, letting a later alarm (re-)arm it via CancelEvent+AddEvent
// without colliding with any other scheduled callback.
const gojamEventKey = "gojam"

// AlarmCode names one of the restart-monitor fault conditions. Any of them
// asserts GOJAM (a full restart into the fixed-memory bootstrap) per
// spec.md's alarm/restart design.
type AlarmCode int

const (
	AlarmNone     AlarmCode = iota
	AlarmMPAL               // memory parity failure
	AlarmMTCAL              // TC-trap: TC self or TCF self held too long
	AlarmMRPTAL             // rupt-lock: stuck servicing interrupts
	AlarmNHALGA             // night watchman: no memory reference in time
	AlarmMSCAFL             // scaler failure
	AlarmMOSCAL             // oscillator failure
	AlarmMVFAIL             // voltage failure
	AlarmSCDBL              // scaler double-interval failure
)

func (a AlarmCode) String() string {
	switch a {
	case AlarmMPAL:
		return "MPAL"
	case AlarmMTCAL:
		return "MTCAL"
	case AlarmMRPTAL:
		return "MRPTAL"
	case AlarmNHALGA:
		return "NHALGA"
	case AlarmMSCAFL:
		return "MSCAFL"
	case AlarmMOSCAL:
		return "MOSCAL"
	case AlarmMVFAIL:
		return "MVFAIL"
	case AlarmSCDBL:
		return "SCDBL"
	default:
		return "NONE"
	}
}

// GojamDuration is the number of ticks GOJAMAsserted stays true after a
// restart is raised; while it does, CPU.endCycle vectors no interrupt.
// Stepping itself is not paused (GOJ1 runs inside this window). Resolved as
// an Open Question in DESIGN.md: 12 ticks (one full subinstruction).
const GojamDuration = 12

// TCTrapThreshold is the number of consecutive subinstructions TC0/TCF-to-
// self may repeat before MTCAL fires. Resolved as an Open Question in
// DESIGN.md: ~427 subinstructions (5ms at the nominal 11.7us subinstruction
// time), a tunable constant rather than a hardwired literal.
const TCTrapThreshold = 427

// RuptLockThreshold is the number of consecutive instruction fetches made
// inside RUPT service at which MRPTAL fires (~140ms in the real hardware).
const RuptLockThreshold = 12000

// AlarmMonitor watches for the restart-monitor fault conditions and raises
// GOJAM. It is deliberately simple (counters compared against thresholds)
// rather than a full logic-level reconstruction of the actual monitor
// circuitry, matching spec.md's treatment of alarms as observable output
// signals rather than modeled hardware.
type AlarmMonitor struct {
	tcTrapCount   int
	ruptLockCount int
	lastPC        uint16
	nightWatch    int
	gojamPending  bool
	gojamTicksLeft int
	lastAlarm     AlarmCode
	Log           *slog.Logger

	// events, when non-nil (wired by CPU.New), schedules the GOJAM-duration
	// countdown through the shared event queue instead of the manual
	// gojamTicksLeft decrement tick() otherwise falls back to; a bare
	// AlarmMonitor (as alarms_test.go constructs) keeps the manual path.
	events *event.Queue
	// reset is called once per alarm-triggered restart (never for a restart
	// already in progress) to perform the actual register reset; CPU.New
	// wires this to CPU.AssertGOJAM.
	reset func()
}

// NightWatchmanLimit is the number of consecutive instruction fetches from
// the same program counter at which NHALGA fires. It is a fetch count, not a
// simulated-time window, and no particular erasable address is watched.
const NightWatchmanLimit = 5120

func (m *AlarmMonitor) log() *slog.Logger {
	if m.Log == nil {
		return slog.Default()
	}
	return m.Log
}

// ObserveFetch updates the night-watchman tracker with the program counter
// of this instruction fetch; the first fetch at a new program counter
// counts as one.
func (m *AlarmMonitor) ObserveFetch(pc uint16) {
	if pc == m.lastPC {
		m.nightWatch++
	} else {
		m.nightWatch = 1
		m.lastPC = pc
	}
	if m.nightWatch >= NightWatchmanLimit {
		m.Raise(AlarmNHALGA)
		m.nightWatch = 0
	}
}

// ObserveTCSelf updates the TC-trap tracker; called at each instruction
// fetch (the T12 of a subinstruction that raised NISQ) with whether the
// just-executed instruction is a TC/TCF to itself.
func (m *AlarmMonitor) ObserveTCSelf(selfJump bool) {
	if selfJump {
		m.tcTrapCount++
		if m.tcTrapCount >= TCTrapThreshold {
			m.Raise(AlarmMTCAL)
			m.tcTrapCount = 0
		}
	} else {
		m.tcTrapCount = 0
	}
}

// ObserveRupt updates the rupt-lock tracker; called at each instruction
// fetch with whether the processor is currently inside interrupt service.
func (m *AlarmMonitor) ObserveRupt(inRupt bool) {
	if inRupt {
		m.ruptLockCount++
		if m.ruptLockCount >= RuptLockThreshold {
			m.Raise(AlarmMRPTAL)
			m.ruptLockCount = 0
		}
	} else {
		m.ruptLockCount = 0
	}
}

// ObserveParity raises MPAL immediately when a fetched memory word fails
// its parity check.
func (m *AlarmMonitor) ObserveParity(valid bool) {
	if !valid {
		m.Raise(AlarmMPAL)
	}
}

// Raise asserts GOJAM due to code, logging the fault, arming the
// restart-duration countdown, and — for a restart not already in progress —
// invoking the attached CPU's register reset.
func (m *AlarmMonitor) Raise(code AlarmCode) {
	already := m.gojamPending
	m.lastAlarm = code
	m.log().Warn("alarm asserted, GOJAM", "alarm", code.String())
	m.beginGojam()
	if !already && m.reset != nil {
		m.reset()
	}
}

// beginGojam arms the GOJAM-duration countdown without touching lastAlarm
// or invoking reset, the half of Raise that CPU.AssertGOJAM itself calls
// directly to avoid recursing back into its own reset.
func (m *AlarmMonitor) beginGojam() {
	m.gojamPending = true
	m.gojamTicksLeft = GojamDuration
	if m.events != nil {
		m.events.CancelEvent(gojamEventKey)
		m.events.AddEvent(gojamEventKey, GojamDuration, func() {
			m.gojamPending = false
		})
	}
}

// GOJAMAsserted reports whether a restart is currently in progress.
func (m *AlarmMonitor) GOJAMAsserted() bool {
	return m.gojamPending
}

// LastAlarm returns the most recently raised alarm code (AlarmNone if none
// has fired yet).
func (m *AlarmMonitor) LastAlarm() AlarmCode {
	return m.lastAlarm
}

// tick advances the GOJAM countdown by one tick, clearing gojamPending once
// the restart duration elapses. When an event queue is attached the
// countdown is driven by that queue instead of the manual counter.
func (m *AlarmMonitor) tick() {
	if m.events != nil {
		m.events.Advance(1)
		return
	}
	if m.gojamPending {
		m.gojamTicksLeft--
		if m.gojamTicksLeft <= 0 {
			m.gojamPending = false
		}
	}
}
