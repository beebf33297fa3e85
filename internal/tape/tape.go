// Package tape implements the cassette interface: a physical-pulse decoder
// for SAVE (matching the real bit-banged output protocol) and an ASCII
// '0'/'1' bitstream deck for LOAD, fast-pathed through ROM traps rather than
// decoded pulse by pulse (spec.md §4.5, SPEC_FULL.md "Supplemented
// features").
package tape

import "github.com/classilla/tutti/internal/debug"

// Mode is the deck's current activity.
type Mode int

const (
	ModeIdle Mode = iota
	ModeLoad
	ModeSave
)

// Tape is the cassette deck: bus.TapePort for the physical SAVE side, plus
// host-facing LoadCassette/EjectSave for moving ASCII bitstream images in
// and out (spec.md §4.5).
type Tape struct {
	mode Mode

	loadData []byte
	loadPos  int
	saveData []byte

	gotFilename   bool
	gotFirstWrite bool

	// clockedBits/currentBit track the physical pulse decoder's position
	// within a 3-or-5-pulse group (grounded on
	// original_source/win/tutti.c's TapeOutput).
	clockedBits int
	currentBit  int

	interruptEnabled bool

	Log *debug.Logger
}

// New creates an idle deck.
func New(log *debug.Logger) *Tape {
	return &Tape{Log: log}
}

// LoadCassette arms the deck with an ASCII '0'/'1' tape image (including
// its leading '1' sync marker) for the next LOAD.
func (t *Tape) LoadCassette(data []byte) {
	t.loadData = data
	t.loadPos = 0
}

// EjectSave returns and clears the bitstream accumulated by the most recent
// SAVE session.
func (t *Tape) EjectSave() []byte {
	out := t.saveData
	t.saveData = nil
	return out
}

// Mode reports the deck's current activity, for UI and save-state use.
func (t *Tape) Mode() Mode {
	return t.mode
}

func (t *Tape) setupSave() {
	t.mode = ModeSave
	t.gotFilename = true
	t.clockedBits = 0
	t.saveData = append(t.saveData[:0], '1')
	if t.Log != nil {
		t.Log.LogTape(debug.LogLevelInfo, "tape: SAVE started")
	}
}

func (t *Tape) setupLoad() {
	t.mode = ModeLoad
	t.gotFilename = true
	t.loadPos = 0
	if t.Log != nil {
		t.Log.LogTape(debug.LogLevelInfo, "tape: LOAD started")
	}
}

func (t *Tape) finish() {
	if t.Log != nil && t.mode != ModeIdle {
		t.Log.LogTape(debug.LogLevelInfo, "tape: session closed")
	}
	t.mode = ModeIdle
	t.gotFilename = false
}

func (t *Tape) emit(ch byte) {
	t.saveData = append(t.saveData, ch)
}

// ClockBit implements bus.TapePort, handling one physical SAVE pulse
// written to 0xEE00 (bit 0) or 0xEE20 (bit 1). Physical bit groups are
// "0,1,0" for a logical 0 and "0,1,0,1,0" for a logical 1, with the two
// patterns sharing their first three pulses so the decoder only commits
// once the fourth pulse disambiguates them (spec.md §4.5).
func (t *Tape) ClockBit(bit int) {
	if bit == 1 && !t.gotFirstWrite {
		t.gotFirstWrite = true
		return
	}
	if !t.gotFilename {
		t.setupSave()
	}
	switch t.clockedBits {
	case 0:
		if bit != 0 {
			t.emit('1')
			t.finish()
			return
		}
		t.clockedBits++
	case 1, 2:
		if t.clockedBits&1 != bit {
			t.clockedBits = 0
			return
		}
		t.clockedBits++
	case 3:
		t.currentBit = bit
		if bit == 0 {
			t.emit('0')
			t.clockedBits = 1
		} else {
			t.clockedBits++
		}
	case 4:
		if bit == 1 {
			t.clockedBits = 0
			return
		}
		t.emit('1')
		t.clockedBits = 0
	}
}

// SetInterruptEnabled implements bus.TapePort for the 0xEE40/0xEE60 ports.
// The full interrupt-driven bit-at-a-time LOAD path this once drove is
// superseded by the ROM traps in traps.go, so disabling the interrupt here
// just closes out whatever session is open.
func (t *Tape) SetInterruptEnabled(enabled bool) {
	t.interruptEnabled = enabled
	if !enabled {
		t.finish()
	}
}

// skipSync advances loadPos past a run of '1' characters (the physical
// sync tone), stopping after the first '0' (spec.md §4.5, grounded on
// original_source/win/tutti.c's TapeInputSkipSync).
func (t *Tape) skipSync() {
	for t.loadPos < len(t.loadData) {
		b := t.loadData[t.loadPos]
		t.loadPos++
		if b == '0' {
			return
		}
	}
}

// State is the deck's complete save-state snapshot (spec.md §6). loadData is
// not included: it is the mounted cassette image, reloaded by the host via
// LoadCassette rather than round-tripped through the snapshot file.
type State struct {
	Mode Mode

	LoadPos  int
	SaveData []byte

	GotFilename   bool
	GotFirstWrite bool

	ClockedBits int
	CurrentBit  int

	InterruptEnabled bool
}

// Snapshot captures the deck's transport state for save-state serialization.
func (t *Tape) Snapshot() State {
	return State{
		Mode:             t.mode,
		LoadPos:          t.loadPos,
		SaveData:         append([]byte(nil), t.saveData...),
		GotFilename:      t.gotFilename,
		GotFirstWrite:    t.gotFirstWrite,
		ClockedBits:      t.clockedBits,
		CurrentBit:       t.currentBit,
		InterruptEnabled: t.interruptEnabled,
	}
}

// Restore replaces the deck's transport state with a previously captured
// snapshot. The mounted cassette image (loadData) is left untouched; the
// caller re-mounts it with LoadCassette if the snapshot predates it.
func (t *Tape) Restore(s State) {
	t.mode = s.Mode
	t.loadPos = s.LoadPos
	t.saveData = append([]byte(nil), s.SaveData...)
	t.gotFilename = s.GotFilename
	t.gotFirstWrite = s.GotFirstWrite
	t.clockedBits = s.ClockedBits
	t.currentBit = s.CurrentBit
	t.interruptEnabled = s.InterruptEnabled
}

// readByte decodes the next 8 ASCII '0'/'1' characters into a byte, MSB
// first, or returns -1 if the tape is exhausted (grounded on
// original_source/win/tutti.c's TapeInputReadByte).
func (t *Tape) readByte() int {
	if t.loadPos+8 > len(t.loadData) {
		t.loadPos = len(t.loadData)
		return -1
	}
	result := 0
	for i := 0; i < 8; i++ {
		bit := 0
		if t.loadData[t.loadPos] != '0' {
			bit = 1
		}
		t.loadPos++
		result = result<<1 | bit
	}
	return result
}
