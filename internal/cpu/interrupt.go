/*
 * agc - Interrupt priority arbitration
 */

package cpu

// InterruptVector names one of the ten fixed-priority interrupt requests
// the sequence generator can vector to between instructions. Order here is
// priority order, highest first, matching the real Block II priority
// encoder; Highest picks the highest-priority pending request.
type InterruptVector int

const (
	VectorT6RUPT InterruptVector = iota
	VectorT5RUPT
	VectorT3RUPT
	VectorT4RUPT
	VectorKeyrupt1
	VectorKeyrupt2
	VectorUprupt
	VectorDownrupt
	VectorRadarrupt
	VectorHandrupt
	numVectors
)

// vectorAddress is the fixed fixed-memory address (octal) each interrupt
// vectors to, a small offset above 04000 (the start of unswitched fixed
// bank 2, where GOJ1 also restarts).
var vectorAddress = [numVectors]uint16{
	VectorT6RUPT:    0o4004,
	VectorT5RUPT:    0o4006,
	VectorT3RUPT:    0o4010,
	VectorT4RUPT:    0o4012,
	VectorKeyrupt1:  0o4014,
	VectorKeyrupt2:  0o4016,
	VectorUprupt:    0o4020,
	VectorDownrupt:  0o4022,
	VectorRadarrupt: 0o4024,
	VectorHandrupt:  0o4026,
}

func (v InterruptVector) String() string {
	names := [numVectors]string{
		"T6RUPT", "T5RUPT", "T3RUPT", "T4RUPT", "KEYRUPT1", "KEYRUPT2",
		"UPRUPT", "DOWNRUPT", "RADARRUPT", "HANDRUPT",
	}
	if int(v) < 0 || int(v) >= int(numVectors) {
		return "RUPT?"
	}
	return names[v]
}

// InterruptController tracks pending interrupt requests and the RUPT_LOCK
// condition (an interrupt already being serviced with none completed
// since, the situation MRPTAL watches for).
type InterruptController struct {
	pending  [numVectors]bool
	inRupt   bool // currently inside a RUPT service routine
	lockTick int   // reset on Acknowledge/Return, never incremented (MRPTAL counts in AlarmMonitor)
}

// Request raises interrupt vector v; it is latched until serviced.
func (ic *InterruptController) Request(v InterruptVector) {
	ic.pending[v] = true
}

// Pending reports whether any vector awaits service.
func (ic *InterruptController) Pending() bool {
	for _, p := range ic.pending {
		if p {
			return true
		}
	}
	return false
}

// Highest returns the highest-priority pending vector and true, or
// (0, false) if none are pending.
func (ic *InterruptController) Highest() (InterruptVector, bool) {
	for v := InterruptVector(0); v < numVectors; v++ {
		if ic.pending[v] {
			return v, true
		}
	}
	return 0, false
}

// Acknowledge clears the pending flag for v, as entering its service
// routine does on real hardware.
func (ic *InterruptController) Acknowledge(v InterruptVector) {
	ic.pending[v] = false
	ic.inRupt = true
	ic.lockTick = 0
}

// Return marks the end of a RUPT service routine (a RESUME instruction).
func (ic *InterruptController) Return() {
	ic.inRupt = false
	ic.lockTick = 0
}

// InRupt reports whether the processor is currently inside a RUPT service
// routine.
func (ic *InterruptController) InRupt() bool { return ic.inRupt }
