package trace

import (
	"bytes"
	"strings"
	"testing"

	"github.com/agcsim/agc/internal/cpu"
)

func TestWriteRowFormat(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	snap := cpu.RegisterState{
		A: 0o12345, L: 0, Q: 0, Z: 0o4000,
		EBank: 0, FBank: 0,
		B: 0, G: 0,
		S:  0,
		SQ: 0,
		ST: 1,
		X:  0, Y: 0,
		BR: 0,
	}
	if err := w.WriteRow("GOJ1/T1", snap); err != nil {
		t.Fatalf("WriteRow: %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	line := strings.TrimRight(buf.String(), "\n")
	fields := strings.Split(line, ";")
	// counter, label, A, L, Q, Z, EBANK, FBANK, B, G, S, SQ, ST, X, Y, BR,
	// trailing split produces one empty trailing field.
	if len(fields) != 17 {
		t.Fatalf("field count = %d, want 17 (16 fields + trailing empty): %q", len(fields), line)
	}
	if fields[0] != "1" {
		t.Errorf("counter field = %q, want %q", fields[0], "1")
	}
	if fields[1] != "GOJ1/T1" {
		t.Errorf("label field = %q, want %q", fields[1], "GOJ1/T1")
	}
	if fields[2] != "12345" {
		t.Errorf("A field = %q, want %q", fields[2], "12345")
	}
	if fields[5] != "4000" {
		t.Errorf("Z field = %q, want %q", fields[5], "4000")
	}
}

func TestWriteRowIncrementsCounter(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	snap := cpu.RegisterState{}
	w.WriteRow("a", snap)
	w.WriteRow("b", snap)
	w.Flush()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("line count = %d, want 2", len(lines))
	}
	if !strings.HasPrefix(lines[0], "1;") || !strings.HasPrefix(lines[1], "2;") {
		t.Errorf("counters did not increment: %q, %q", lines[0], lines[1])
	}
}
