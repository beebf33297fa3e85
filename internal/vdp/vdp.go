// Package vdp implements the TMS9918A-NL video display processor: 16 KiB of
// VRAM, the two-phase control-port write latch, and the Graphics I/II tile
// renderer with a 32-slot sprite rasterizer (spec.md §4.7).
package vdp

import "github.com/classilla/tutti/internal/debug"

const (
	VRAMSize = 16384

	StatusFlagF = 0x80 // frame/vblank flag

	ScreenWidth  = 256
	ScreenHeight = 192

	regCount = 8
)

// writeLatchState tracks the VDP control port's two-phase write protocol
// (grounded on original_source/tutorem/TMS9918ANL.c's WM_* states).
type writeLatchState int

const (
	latchIdle writeLatchState = iota
	latchByte1Ready
	latchAwaitingData
)

// VDP is the video chip. It implements bus.VDPPort.
type VDP struct {
	VRAM [VRAMSize]byte
	Regs [regCount]byte

	mp     uint16
	status byte

	latch      writeLatchState
	latchByte1 byte

	Log *debug.Logger
}

// New creates a VDP with all registers and VRAM cleared.
func New(log *debug.Logger) *VDP {
	v := &VDP{Log: log}
	v.Reset()
	return v
}

// Reset clears VRAM, registers, the address pointer, and the write latch.
func (v *VDP) Reset() {
	for i := range v.VRAM {
		v.VRAM[i] = 0
	}
	for i := range v.Regs {
		v.Regs[i] = 0
	}
	v.mp = 0
	v.status = 0
	v.latch = latchIdle
	v.latchByte1 = 0
}

// WriteControl implements bus.VDPPort. The first byte of a two-byte
// sequence is buffered; the second byte's top two bits select between
// setting the VRAM address pointer (for a read, 0x00; for a write, 0x40)
// or loading a register (0x80), exactly mirroring the hardware's two-phase
// latch (spec.md §4.7).
func (v *VDP) WriteControl(b byte) {
	if v.latch == latchIdle || v.latch == latchAwaitingData {
		v.latchByte1 = b
		v.latch = latchByte1Ready
		return
	}

	switch b & 0xC0 {
	case 0x00:
		v.latch = latchIdle
		v.mp = uint16(v.latchByte1) + uint16(b&0x3F)<<8
	case 0x40:
		v.latch = latchAwaitingData
		v.mp = uint16(v.latchByte1) + uint16(b&0x3F)<<8
	case 0x80:
		v.latch = latchIdle
		v.Regs[b&0x07] = v.latchByte1
	default:
		if v.Log != nil {
			v.Log.LogVDP(debug.LogLevelWarning, "invalid VDP control byte")
		}
	}
}

// WriteData implements bus.VDPPort: store at the current address pointer
// and advance it, wrapping at the 16 KiB VRAM boundary (spec.md §4.7's "MP
// wraps modulo 16384").
func (v *VDP) WriteData(b byte) {
	v.VRAM[v.mp] = b
	v.mp = (v.mp + 1) % VRAMSize
}

// ReadData implements bus.VDPPort.
func (v *VDP) ReadData() byte {
	b := v.VRAM[v.mp]
	v.mp = (v.mp + 1) % VRAMSize
	return b
}

// ReadStatus implements bus.VDPPort: returns the status byte and clears the
// frame flag, the real TMS9918 behavior (the stub this is grounded on never
// clears F; spec.md's testable frame-flag semantics take precedence here).
func (v *VDP) ReadStatus() byte {
	st := v.status
	v.status &^= StatusFlagF
	return st
}

// EnterVBlank sets the frame flag, called once per frame by the owning
// machine at the start of vertical blanking.
func (v *VDP) EnterVBlank() {
	v.status |= StatusFlagF
}

// addressPointer exposes MP for tests and save-state snapshots.
func (v *VDP) addressPointer() uint16 { return v.mp }

// State is the chip's complete save-state snapshot (spec.md §6).
type State struct {
	VRAM       [VRAMSize]byte
	Regs       [regCount]byte
	MP         uint16
	Status     byte
	Latch      writeLatchState
	LatchByte1 byte
}

// Snapshot captures the full chip state for save-state serialization.
func (v *VDP) Snapshot() State {
	return State{
		VRAM:       v.VRAM,
		Regs:       v.Regs,
		MP:         v.mp,
		Status:     v.status,
		Latch:      v.latch,
		LatchByte1: v.latchByte1,
	}
}

// Restore replaces the chip state with a previously captured snapshot.
func (v *VDP) Restore(s State) {
	v.VRAM = s.VRAM
	v.Regs = s.Regs
	v.mp = s.MP
	v.status = s.Status
	v.latch = s.Latch
	v.latchByte1 = s.LatchByte1
}

// modeGraphicsII reports whether register 0 selects Graphics II (M2, bit 1)
// over the Graphics I / Text default.
func (v *VDP) modeGraphicsII() bool {
	return v.Regs[0]&0x02 != 0
}
