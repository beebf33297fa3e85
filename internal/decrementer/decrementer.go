// Package decrementer implements the TMS9995's on-chip 16-bit down counter:
// a free-running divide-by-4 of the CPU clock that reloads from a latch and
// raises a level-3 interrupt on underflow (spec.md §4.4).
package decrementer

// Decrementer is advanced in CPU-clock units by the owning machine loop
// once per instruction, the same batched-callback shape as
// clock.MasterClock's per-component Step hooks in the teacher repo, cut
// down to the single counter this chip actually needs.
type Decrementer struct {
	latch   uint16
	counter uint16

	// fraction accumulates CPU clocks not yet divided by 4, so batching
	// Advance calls across variable instruction lengths never loses a
	// fractional tick (spec.md §4.4 "fractional-clock carry").
	fraction uint32

	enabled bool

	// RequestInterrupt is called with level 3 on every underflow. The
	// owning machine wires this to CPU.RequestInterrupt.
	RequestInterrupt func(level uint8)
}

// New creates a disabled decrementer with a zero latch.
func New() *Decrementer {
	return &Decrementer{}
}

// SetLatch sets the reload value and immediately reseeds the live counter,
// clearing any carried fraction (spec.md §4.2's decrementer-latch MMIO
// write and §4.4's "writing the latch also reseeds the counter").
func (d *Decrementer) SetLatch(value uint16) {
	d.latch = value
	d.counter = value
	d.fraction = 0
}

// SetEnabled turns the counter on or off via the CRU enable bit at 0x1EE2
// (spec.md §4.6).
func (d *Decrementer) SetEnabled(enabled bool) {
	d.enabled = enabled
}

// Enabled reports the current CRU-controlled run state.
func (d *Decrementer) Enabled() bool {
	return d.enabled
}

// Latch returns the current reload value.
func (d *Decrementer) Latch() uint16 {
	return d.latch
}

// Counter returns the live count, for save-state snapshots.
func (d *Decrementer) Counter() uint16 {
	return d.counter
}

// Advance consumes cpuClocks CPU-clock units, ticking the counter once per
// 4 clocks accumulated (spec.md §4.4). Each underflow reloads from the
// latch and fires a level-3 interrupt request.
func (d *Decrementer) Advance(cpuClocks uint32) {
	if !d.enabled {
		return
	}
	d.fraction += cpuClocks
	ticks := d.fraction / 4
	d.fraction %= 4
	for i := uint32(0); i < ticks; i++ {
		if d.counter == 0 {
			d.counter = d.latch
			if d.RequestInterrupt != nil {
				d.RequestInterrupt(3)
			}
			continue
		}
		d.counter--
	}
}

// Restore sets the full internal state, used when loading a snapshot
// (spec.md §6 "Save-state").
func (d *Decrementer) Restore(latch, counter uint16, fraction uint32, enabled bool) {
	d.latch = latch
	d.counter = counter
	d.fraction = fraction
	d.enabled = enabled
}

// Fraction returns the carried sub-tick CPU-clock remainder, for save-state
// snapshots.
func (d *Decrementer) Fraction() uint32 {
	return d.fraction
}

// State is the counter's complete save-state snapshot (spec.md §6).
type State struct {
	Latch    uint16
	Counter  uint16
	Fraction uint32
	Enabled  bool
}

// Snapshot captures the full counter state for save-state serialization.
func (d *Decrementer) Snapshot() State {
	return State{Latch: d.latch, Counter: d.counter, Fraction: d.fraction, Enabled: d.enabled}
}

// RestoreState replaces the counter state with a previously captured
// snapshot.
func (d *Decrementer) RestoreState(s State) {
	d.Restore(s.Latch, s.Counter, s.Fraction, s.Enabled)
}
