/*
 * agc - Design-violation errors
 */

package cpu

import "fmt"

// DesignError reports a control-pulse decode failure: an (order code, ST,
// time pulse) tuple the control-pulse ROM has no entry for. The real
// hardware cannot reach such a state; reaching one here means a bug in the
// emulator or a malformed instruction stream, so StepPulse returns it rather
// than silently doing nothing.
type DesignError struct {
	OrderCode uint8
	Extended  bool
	ST        uint8
	Pulse     TimePulse
}

func (e *DesignError) Error() string {
	return fmt.Sprintf("cpu: no control-pulse entry for order=%#o extended=%v st=%#o at %s",
		e.OrderCode, e.Extended, e.ST, e.Pulse)
}

// MustStepPulse calls StepPulse and panics on any error, for callers that
// want fail-fast behavior instead of threading the error through. The
// harness does not use it: its Runner returns the error instead.
func MustStepPulse(c *CPU) {
	if err := c.StepPulse(); err != nil {
		panic(err)
	}
}
