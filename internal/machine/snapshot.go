package machine

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/classilla/tutti/internal/cpu"
	"github.com/classilla/tutti/internal/cru"
	"github.com/classilla/tutti/internal/dcsg"
	"github.com/classilla/tutti/internal/decrementer"
	"github.com/classilla/tutti/internal/tape"
	"github.com/classilla/tutti/internal/vdp"
)

func init() {
	gob.Register(Snapshot{})
	gob.Register(cpu.State{})
	gob.Register(vdp.State{})
	gob.Register(dcsg.State{})
	gob.Register(cru.State{})
	gob.Register(tape.State{})
	gob.Register(decrementer.State{})
}

// snapshotVersion guards against loading a save state produced by an
// incompatible layout (spec.md §6 "Save-state").
const snapshotVersion = 1

// Snapshot is a complete point-in-time capture of a Machine, grounded on the
// teacher's SaveState/LoadState pair (internal/emulator/savestate.go):
// one gob-serializable struct per component, built and applied through each
// component's own Snapshot/Restore methods rather than reaching into their
// private fields.
type Snapshot struct {
	Version uint16

	CPU         cpu.State
	Mem         [65536]byte
	VDP         vdp.State
	DCSG        dcsg.State
	CRU         cru.State
	Tape        tape.State
	Decrementer decrementer.State

	Warp bool
}

// Save captures the Machine's full architectural state and serializes it
// with gob, matching the teacher's choice of encoding (spec.md §6).
func (m *Machine) Save() ([]byte, error) {
	s := Snapshot{
		Version:     snapshotVersion,
		CPU:         m.CPU.State,
		Mem:         m.Bus.Mem,
		VDP:         m.VDP.Snapshot(),
		DCSG:        m.DCSG.Snapshot(),
		CRU:         m.CRU.Snapshot(),
		Tape:        m.Tape.Snapshot(),
		Decrementer: m.Decrementer.Snapshot(),
		Warp:        m.Warp,
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(s); err != nil {
		return nil, fmt.Errorf("machine: encoding snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// Load decodes a snapshot produced by Save and applies it to the Machine in
// place. The mounted cassette image, if any, is left as it was before the
// load. Mem is the whole 64 KiB map, so the ROM regions are restored from
// the snapshot along with RAM.
func (m *Machine) Load(data []byte) error {
	var s Snapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return fmt.Errorf("machine: decoding snapshot: %w", err)
	}
	if s.Version != snapshotVersion {
		return fmt.Errorf("machine: unsupported snapshot version %d (expected %d)", s.Version, snapshotVersion)
	}

	m.CPU.State = s.CPU
	m.Bus.Mem = s.Mem
	m.VDP.Restore(s.VDP)
	m.DCSG.Restore(s.DCSG)
	m.CRU.Restore(s.CRU)
	m.Tape.Restore(s.Tape)
	m.Decrementer.RestoreState(s.Decrementer)
	m.Warp = s.Warp
	m.Trip.Clear()

	return nil
}
