package harness

import (
	"bytes"
	"context"
	"testing"

	"github.com/agcsim/agc/internal/cpu"
	"github.com/agcsim/agc/internal/iochannel"
	"github.com/agcsim/agc/internal/memory"
	"github.com/agcsim/agc/util/trace"
)

func TestRunAdvancesExactTickCount(t *testing.T) {
	c := cpu.New(memory.New(), iochannel.NewBus(), nil)
	r := &Runner{CPU: c}

	if err := r.Run(context.Background(), 24); err != nil {
		t.Fatalf("Run: %v", err)
	}
	// 24 ticks is exactly two subinstructions; the ring should be back at T1.
	if c.CurrentTimePulse != cpu.T1 {
		t.Errorf("CurrentTimePulse after 24 ticks = %s, want T1", c.CurrentTimePulse)
	}
}

func TestRunWritesOneTraceRowPerTick(t *testing.T) {
	c := cpu.New(memory.New(), iochannel.NewBus(), nil)
	var buf bytes.Buffer
	r := &Runner{CPU: c, Trace: trace.NewWriter(&buf)}

	if err := r.Run(context.Background(), 12); err != nil {
		t.Fatalf("Run: %v", err)
	}
	lines := bytes.Count(buf.Bytes(), []byte("\n"))
	if lines != 12 {
		t.Errorf("trace line count = %d, want 12", lines)
	}
}

func TestRunCanceledContext(t *testing.T) {
	c := cpu.New(memory.New(), iochannel.NewBus(), nil)
	r := &Runner{CPU: c}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := r.Run(ctx, 1000); err != nil {
		t.Fatalf("Run with pre-canceled context: %v, want nil", err)
	}
}
