/*
 * agc - Control-pulse ROM / subinstruction decoder
 */

package cpu

// Subinstruction is one entry of the control-pulse ROM: the list of control
// pulses fired at each of the 12 time pulses of a single stage (MCT) of an
// instruction. Built the way the teacher builds its opcode table — a
// statically-initialized table, not a big switch — keyed here by (order
// code, extended code, EXT flip-flop, ST) via decodeKey.
type Subinstruction struct {
	Name string
	T    [12][]*ControlPulse
}

func (s *Subinstruction) pulses(t TimePulse) []*ControlPulse {
	return s.T[t]
}

type decodeKey struct {
	orderCode uint8
	extended  uint8 // low 3 bits of SQ, meaningful only for order codes 5/6/7 and, with EXT set, order code 1
	isExt     bool  // EXT flip-flop
	st        uint8
}

// decodeTable is the control-pulse ROM itself.
var decodeTable = map[decodeKey]*Subinstruction{}

func register(s *Subinstruction, keys ...decodeKey) {
	for _, k := range keys {
		decodeTable[k] = s
	}
}

// std2 is the shared second stage every two-stage instruction falls through
// to: it stages the next fetch address one ahead of the word S currently
// names (T1's RZ/WY12/CI, T6's RU/WZ) and then either dispatches a special
// program-control word (RELINT/INHINT/EXTEND, handled inline by RAD) or
// commits S/B for the instruction about to execute.
var std2 = &Subinstruction{
	Name: "STD2",
	T: [12][]*ControlPulse{
		0: {RZ, WY12, CI},
		1: {RSC, WG, NISQ},
		5: {RU, WZ},
		7: {RAD, WB, WS},
	},
}

var tc0 = &Subinstruction{
	Name: "TC",
	T: [12][]*ControlPulse{
		0: {RB, WY12, CI},
		1: {RSC, WG, NISQ},
		2: {RZ, WQ},
		5: {RU, WZ},
		7: {RAD, WB, WS},
	},
}

var ca0 = &Subinstruction{
	Name: "CA",
	T: [12][]*ControlPulse{
		1: {RSC, WG},
		6: {RG, WB},
		7: {RZ, WS, ST2},
		8: {RB, WG},
		9: {RB, WA},
	},
}

// cs0 forms A = -(K): the fetched operand is read into B, the instruction's
// own next-fetch transition runs, and only then is B's complement formed
// into G and copied to A — G must not be complemented until after the
// operand is safely parked in B.
var cs0 = &Subinstruction{
	Name: "CS",
	T: [12][]*ControlPulse{
		1: {RSC, WG},
		6: {RG, WB},
		7: {RZ, WS, ST2},
		8: {RC, WG},
		9: {RG, WA},
	},
}

var xch0 = &Subinstruction{
	Name: "XCH",
	T: [12][]*ControlPulse{
		0: {RL10BB, WS},
		1: {RSC, WG},
		2: {RA, WB},
		4: {RG, WA},
		6: {RB, WSC, WG},
		7: {RZ, WS, ST2},
	},
}

var ts0 = &Subinstruction{
	Name: "TS",
	T: [12][]*ControlPulse{
		0: {RL10BB, WS},
		2: {RA, WG, TOV},
		7: {RZ, WS, ST2},
	},
}

var ccs0 = &Subinstruction{
	Name: "CCS",
	T: [12][]*ControlPulse{
		0: {RL10BB, WS},
		2: {RG, WB, TSGN, TPZG, TMZ},
		7: {RZ, WS, ST2},
		8: {RB, WA},
	},
}

// goj1 is the hardwired bootstrap/restart entry: it drives Z to 04000 and
// FBANK to 2 directly (bypassing the CI adder so no automatic +1 creeps in)
// and arms STD2 to fetch the real first instruction from there.
var goj1 = &Subinstruction{
	Name: "GOJ1",
	T: [12][]*ControlPulse{
		1: {RSC, WG},
		7: {RSTRT, WZ, WS, WFB, ST2},
	},
}

var ad0 = &Subinstruction{
	Name: "AD",
	T: [12][]*ControlPulse{
		1: {RSC, WG},
		6: {RA, WX},
		7: {RG, WYX},
		8: {RZ, WS, ST2},
		9: {RU, WA, TOV},
	},
}

var su0 = &Subinstruction{
	Name: "SU",
	T: [12][]*ControlPulse{
		1: {RSC, WG},
		6: {RA, WX},
		7: {RCG, WYX},
		8: {RZ, WS, ST2},
		9: {RU, WA, TOV},
	},
}

var mask0 = &Subinstruction{
	Name: "MASK",
	T: [12][]*ControlPulse{
		1: {RSC, WG},
		6: {MASKOP},
		7: {RZ, WS, ST2},
	},
}

var msu0 = &Subinstruction{
	Name: "MSU",
	T: [12][]*ControlPulse{
		1: {RSC, WG},
		6: {MSUOP},
		7: {RZ, WS, ST2},
	},
}

// das0 adds the double-precision accumulator (A, L) into the operand pair
// named by the instruction's own address (more-significant word) and its
// paired cell (less-significant word, fetched explicitly via RGPAIR since
// the automatic read/write pipeline only ever follows the single address in
// S), leaving the sum's more-significant word in G for the automatic
// erasable write-back and storing the less-significant word itself via
// WGPAIR.
var das0 = &Subinstruction{
	Name: "DAS",
	T: [12][]*ControlPulse{
		1: {RSC, WG},
		6: {RGPAIR, WB},
		7: {RZ, WS, ST2},
		8: {DASOP, WGPAIR},
	},
}

var dca0 = &Subinstruction{
	Name: "DCA",
	T: [12][]*ControlPulse{
		1: {RSC, WG},
		6: {RGPAIR, WL},
		7: {RG, WA},
		8: {RZ, WS, ST2},
	},
}

var dcs0 = &Subinstruction{
	Name: "DCS",
	T: [12][]*ControlPulse{
		1: {RSC, WG},
		6: {RCGPAIR, WL},
		7: {RCG, WA},
		8: {RZ, WS, ST2},
	},
}

// dxch0 exchanges (A, L) with the operand pair, using B and Q as scratch for
// the old accumulator halves the way xch0 uses B alone for a single word.
var dxch0 = &Subinstruction{
	Name: "DXCH",
	T: [12][]*ControlPulse{
		0:  {RL10BB, WS},
		1:  {RSC, WG},
		2:  {RA, WB},
		4:  {RL, WQ},
		6:  {RG, WA},
		7:  {RGPAIR, WL},
		8:  {RB, WSC, WG},
		9:  {RQ, WGPAIR},
		10: {RZ, WS, ST2},
	},
}

var lxch0 = &Subinstruction{
	Name: "LXCH",
	T: [12][]*ControlPulse{
		0: {RL10BB, WS},
		1: {RSC, WG},
		2: {RL, WB},
		4: {RG, WL},
		6: {RB, WSC, WG},
		7: {RZ, WS, ST2},
	},
}

var qxch0 = &Subinstruction{
	Name: "QXCH",
	T: [12][]*ControlPulse{
		0: {RL10BB, WS},
		1: {RSC, WG},
		2: {RQ, WB},
		4: {RG, WQ},
		6: {RB, WSC, WG},
		7: {RZ, WS, ST2},
	},
}

var incr0 = &Subinstruction{
	Name: "INCR",
	T: [12][]*ControlPulse{
		1: {RSC, WG},
		6: {RG, WX},
		7: {RB1, WYX},
		8: {RU, WG, WSC},
		9: {RZ, WS, ST2},
	},
}

var ads0 = &Subinstruction{
	Name: "ADS",
	T: [12][]*ControlPulse{
		1:  {RSC, WG},
		6:  {RA, WX},
		7:  {RG, WYX},
		8:  {RU, WG, WSC, TOV},
		9:  {RG, WA},
		10: {RZ, WS, ST2},
	},
}

var index0 = &Subinstruction{
	Name: "INDEX",
	T: [12][]*ControlPulse{
		1: {RSC, WG},
		6: {INDEXOP},
		7: {RZ, WS, ST2},
	},
}

var aug0 = &Subinstruction{
	Name: "AUG",
	T: [12][]*ControlPulse{
		1: {RSC, WG},
		6: {AUGOP},
		7: {RG, WSC},
		8: {RZ, WS, ST2},
	},
}

var dim0 = &Subinstruction{
	Name: "DIM",
	T: [12][]*ControlPulse{
		1: {RSC, WG},
		6: {DIMOP},
		7: {RG, WSC},
		8: {RZ, WS, ST2},
	},
}

var bzf0 = &Subinstruction{
	Name: "BZF",
	T: [12][]*ControlPulse{
		1: {RSC, WG},
		6: {RG, WB},
		7: {BZFOP},
		8: {RZ, WS, ST2},
	},
}

var bzmf0 = &Subinstruction{
	Name: "BZMF",
	T: [12][]*ControlPulse{
		1: {RSC, WG},
		6: {RG, WB},
		7: {BZMFOP},
		8: {RZ, WS, ST2},
	},
}

var mp0 = &Subinstruction{
	Name: "MP",
	T: [12][]*ControlPulse{
		1: {RSC, WG},
		6: {MPOP},
		7: {RZ, WS, ST2},
	},
}

var dv0 = &Subinstruction{
	Name: "DV",
	T: [12][]*ControlPulse{
		1: {RSC, WG},
		6: {DVOP},
		7: {RZ, WS, ST2},
	},
}

var readop0 = &Subinstruction{
	Name: "READ",
	T: [12][]*ControlPulse{
		6: {READOP, WA},
		7: {RZ, WS, ST2},
	},
}

var writeop0 = &Subinstruction{
	Name: "WRITE",
	T: [12][]*ControlPulse{
		6: {WRITEOP},
		7: {RZ, WS, ST2},
	},
}

var rand0 = &Subinstruction{
	Name: "RAND",
	T: [12][]*ControlPulse{
		6: {RAND},
		7: {RZ, WS, ST2},
	},
}

var wand0 = &Subinstruction{
	Name: "WAND",
	T: [12][]*ControlPulse{
		6: {WAND},
		7: {RZ, WS, ST2},
	},
}

var ror0 = &Subinstruction{
	Name: "ROR",
	T: [12][]*ControlPulse{
		6: {ROR},
		7: {RZ, WS, ST2},
	},
}

var wor0 = &Subinstruction{
	Name: "WOR",
	T: [12][]*ControlPulse{
		6: {WOR},
		7: {RZ, WS, ST2},
	},
}

var rxor0 = &Subinstruction{
	Name: "RXOR",
	T: [12][]*ControlPulse{
		6: {RXOR},
		7: {RZ, WS, ST2},
	},
}

var edrupt0 = &Subinstruction{
	Name: "EDRUPT",
	T: [12][]*ControlPulse{
		6: {EDRUPTOP},
		7: {RZ, WS, ST2},
	},
}

// resume0 restores the interrupted Z/B pair and clears RUPT_LOCK (RESM),
// then falls through the ordinary transition to fetch from the restored
// address.
var resume0 = &Subinstruction{
	Name: "RESUME",
	T: [12][]*ControlPulse{
		1: {RESM},
		7: {RZ, WS, ST2},
	},
}

func init() {
	register(std2, decodeKey{st: 0b010})

	register(tc0, decodeKey{orderCode: 0b000, st: 0b000})
	register(goj1, decodeKey{orderCode: 0b000, st: 0b001})
	register(ca0, decodeKey{orderCode: 0b011, st: 0b000})
	register(cs0, decodeKey{orderCode: 0b100, st: 0b000})
	register(ts0, decodeKey{orderCode: 0b010, st: 0b000})
	register(ccs0, decodeKey{orderCode: 0b001, st: 0b000})
	register(xch0, decodeKey{orderCode: 0b101, extended: 0b110, st: 0b000})
	register(xch0, decodeKey{orderCode: 0b101, extended: 0b111, st: 0b000})

	// Order code 6: double-width and logic-unit arithmetic.
	register(ad0, decodeKey{orderCode: 0b110, extended: 0, st: 0b000})
	register(su0, decodeKey{orderCode: 0b110, extended: 1, st: 0b000})
	register(mask0, decodeKey{orderCode: 0b110, extended: 2, st: 0b000})
	register(msu0, decodeKey{orderCode: 0b110, extended: 3, st: 0b000})
	register(das0, decodeKey{orderCode: 0b110, extended: 4, st: 0b000})
	register(dca0, decodeKey{orderCode: 0b110, extended: 5, st: 0b000})
	register(dcs0, decodeKey{orderCode: 0b110, extended: 6, st: 0b000})
	register(dxch0, decodeKey{orderCode: 0b110, extended: 7, st: 0b000})

	// Order code 7: exchange, counter, and branch instructions.
	register(lxch0, decodeKey{orderCode: 0b111, extended: 0, st: 0b000})
	register(qxch0, decodeKey{orderCode: 0b111, extended: 1, st: 0b000})
	register(incr0, decodeKey{orderCode: 0b111, extended: 2, st: 0b000})
	register(ads0, decodeKey{orderCode: 0b111, extended: 3, st: 0b000})
	register(aug0, decodeKey{orderCode: 0b111, extended: 4, st: 0b000})
	register(dim0, decodeKey{orderCode: 0b111, extended: 5, st: 0b000})
	register(bzf0, decodeKey{orderCode: 0b111, extended: 6, st: 0b000})
	register(bzmf0, decodeKey{orderCode: 0b111, extended: 7, st: 0b000})

	// Order code 5: index/multiply/divide/channel instructions (extended 6,7
	// already belong to xch0).
	register(index0, decodeKey{orderCode: 0b101, extended: 0, st: 0b000})
	register(mp0, decodeKey{orderCode: 0b101, extended: 1, st: 0b000})
	register(dv0, decodeKey{orderCode: 0b101, extended: 2, st: 0b000})
	register(readop0, decodeKey{orderCode: 0b101, extended: 3, st: 0b000})
	register(writeop0, decodeKey{orderCode: 0b101, extended: 4, st: 0b000})
	register(rand0, decodeKey{orderCode: 0b101, extended: 5, st: 0b000})

	// EXT flip-flop group: involuntary-interrupt return and channel logic.
	register(resume0, decodeKey{orderCode: 0, extended: 0, isExt: true, st: 0b000})
	register(wand0, decodeKey{orderCode: 1, extended: 0, isExt: true, st: 0b000})
	register(ror0, decodeKey{orderCode: 1, extended: 1, isExt: true, st: 0b000})
	register(wor0, decodeKey{orderCode: 1, extended: 2, isExt: true, st: 0b000})
	register(rxor0, decodeKey{orderCode: 1, extended: 3, isExt: true, st: 0b000})
	register(edrupt0, decodeKey{orderCode: 1, extended: 4, isExt: true, st: 0b000})
}

// CurrentSubinstruction looks up the control-pulse ROM entry for the CPU's
// current (SQ, ST) state. STD2 is always selected when ST==2, regardless of
// SQ, exactly as the real ST decode does for the shared second stage of
// every two-stage store/exchange instruction. Returns (nil, false) for a
// tuple the ROM has no entry for, which StepPulse reports as a DesignError.
func (c *CPU) CurrentSubinstruction() (*Subinstruction, bool) {
	if c.ST == 0b010 {
		return std2, true
	}

	key := decodeKey{
		orderCode: c.SQ.OrderCode(),
		extended:  c.SQ.ExtendedCode(),
		isExt:     c.SQ.IsExtended(),
		st:        c.ST,
	}
	if s, ok := decodeTable[key]; ok {
		return s, true
	}

	key.extended = 0
	if s, ok := decodeTable[key]; ok {
		return s, true
	}
	return nil, false
}
