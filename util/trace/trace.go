/*
 * agc - Register trace writer
 */

// Package trace renders CPU register snapshots as the semicolon-terminated
// octal CSV format described in spec.md §6.3, grounded on the field order
// of original_source/agc's conformance-test RegisterStatus struct: counter;
// label;A;L;Q;Z;EBANK;FBANK;B;G;S;SQ;ST;X;Y;BR;.
package trace

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/agcsim/agc/internal/cpu"
)

// Writer renders register snapshots to an underlying io.Writer, one line
// per row, hand-rolling the line format rather than using encoding/csv
// since every field is a decimal row counter, a label, or an unpadded octal
// number, none of which needs CSV quoting.
type Writer struct {
	w       *bufio.Writer
	counter int
}

// NewWriter wraps w for trace output. The caller is responsible for
// closing the underlying writer; call Flush before doing so.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// WriteRow appends one trace line for snap, labeled label (typically the
// current subinstruction name and time pulse, e.g. "TC/T6").
func (t *Writer) WriteRow(label string, snap cpu.RegisterState) error {
	t.counter++
	fields := []string{
		strconv.Itoa(t.counter),
		label,
		octal(uint16(snap.A)),
		octal(uint16(snap.L)),
		octal(uint16(snap.Q)),
		octal(uint16(snap.Z)),
		octal(uint16(snap.EBank)),
		octal(uint16(snap.FBank)),
		octal(uint16(snap.B)),
		octal(uint16(snap.G)),
		octal(snap.S),
		octal(uint16(snap.SQ)),
		octal(uint16(snap.ST)),
		octal(uint16(snap.X)),
		octal(uint16(snap.Y)),
		octal(uint16(snap.BR)),
	}
	for _, f := range fields {
		if _, err := fmt.Fprintf(t.w, "%s;", f); err != nil {
			return err
		}
	}
	_, err := t.w.WriteString("\n")
	return err
}

// Flush writes any buffered trace lines to the underlying writer.
func (t *Writer) Flush() error {
	return t.w.Flush()
}

func octal(v uint16) string {
	return strconv.FormatUint(uint64(v), 8)
}
