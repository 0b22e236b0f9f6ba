/*
 * agc - Adder
 */

package cpu

import "github.com/agcsim/agc/internal/word"

// u reads the content of the adder output gates (control pulse RU): the
// ones-complement end-around-carry sum of X, Y and the carry-in flip-flop.
//
// MP and DV compute their double-precision results directly (see MPOP/DVOP
// in pulses.go) rather than through this single-word adder, approximating
// the hardware's multi-cycle non-restoring shift-and-add/subtract
// sequencing; DESIGN.md describes what they do and do not model.
func (c *CPU) u() word.Word {
	sum, overflow := word.AddEndAround(c.x, c.y, c.ci)
	c.lastAdderOverflow = overflow
	return sum
}
