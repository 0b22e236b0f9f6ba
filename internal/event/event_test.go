package event

import "testing"

func TestAddEventFiresAfterDelay(t *testing.T) {
	q := NewQueue()
	fired := false
	q.AddEvent("a", 5, func() { fired = true })

	q.Advance(4)
	if fired {
		t.Fatalf("event fired early, after 4 of 5 ticks")
	}
	q.Advance(1)
	if !fired {
		t.Fatalf("event did not fire after its delay elapsed")
	}
}

func TestAddEventZeroDelayFiresImmediately(t *testing.T) {
	q := NewQueue()
	fired := false
	q.AddEvent("a", 0, func() { fired = true })
	if !fired {
		t.Fatalf("zero-delay event did not fire immediately")
	}
	if !q.Empty() {
		t.Errorf("Empty() = false after a zero-delay AddEvent, want true")
	}
}

func TestOrderingOfMultipleEvents(t *testing.T) {
	q := NewQueue()
	var order []string
	q.AddEvent("second", 10, func() { order = append(order, "second") })
	q.AddEvent("first", 3, func() { order = append(order, "first") })

	q.Advance(3)
	q.Advance(7)

	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("fire order = %v, want [first second]", order)
	}
}

func TestCancelEvent(t *testing.T) {
	q := NewQueue()
	fired := false
	q.AddEvent("key", 5, func() { fired = true })
	q.CancelEvent("key")
	q.Advance(10)
	if fired {
		t.Errorf("canceled event fired")
	}
}

func TestCancelPreservesFollowingEventTiming(t *testing.T) {
	q := NewQueue()
	var order []string
	q.AddEvent("a", 3, func() { order = append(order, "a") })
	q.AddEvent("b", 5, func() { order = append(order, "b") })
	q.CancelEvent("a")

	q.Advance(5)
	if len(order) != 1 || order[0] != "b" {
		t.Errorf("fire order after cancel = %v, want [b]", order)
	}
}
