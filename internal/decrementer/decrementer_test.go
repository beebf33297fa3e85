package decrementer

import "testing"

func TestAdvanceTicksOncePerFourClocks(t *testing.T) {
	d := New()
	d.SetEnabled(true)
	d.SetLatch(10)
	d.Advance(4)
	if d.Counter() != 9 {
		t.Fatalf("Counter() = %d, want 9 after 4 clocks", d.Counter())
	}
}

func TestAdvanceCarriesFractionalClocksAcrossCalls(t *testing.T) {
	d := New()
	d.SetEnabled(true)
	d.SetLatch(10)
	d.Advance(2)
	d.Advance(2) // the two halves together make one full tick
	if d.Counter() != 9 {
		t.Fatalf("Counter() = %d, want 9 after two fractional Advance calls summing to 4", d.Counter())
	}
}

func TestUnderflowReloadsFromLatchAndRequestsLevelThree(t *testing.T) {
	d := New()
	d.SetEnabled(true)
	d.SetLatch(1)

	var gotLevel uint8
	requests := 0
	d.RequestInterrupt = func(level uint8) {
		gotLevel = level
		requests++
	}

	d.Advance(4) // counter 1 -> 0
	d.Advance(4) // counter 0 -> reload to latch(1), interrupt fires

	if requests != 1 {
		t.Fatalf("RequestInterrupt called %d times, want exactly 1", requests)
	}
	if gotLevel != 3 {
		t.Fatalf("interrupt level = %d, want 3", gotLevel)
	}
	if d.Counter() != 1 {
		t.Fatalf("Counter() = %d, want reload to latch value 1", d.Counter())
	}
}

func TestDisabledDecrementerDoesNotAdvance(t *testing.T) {
	d := New()
	d.SetLatch(10)
	d.Advance(400)
	if d.Counter() != 10 {
		t.Fatalf("Counter() = %d, want unchanged 10 while disabled", d.Counter())
	}
}
