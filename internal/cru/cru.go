// Package cru implements the Communication Register Unit surface the CPU
// issues SBO/SBZ/TB/LDCR/STCR through: the 8x8 keyboard matrix and the
// decrementer's two control flags (spec.md §4.6).
package cru

import "github.com/classilla/tutti/internal/debug"

// CRU is the bit-addressed I/O space. It implements cpu.CRU.
type CRU struct {
	rows [8]byte

	// SetDecrementerMode and SetDecrementerEnabled are wired to the
	// decrementer by the owning machine; writes to any other CRU address
	// are ignored.
	SetDecrementerMode    func(enabled bool)
	SetDecrementerEnabled func(enabled bool)

	Log *debug.Logger
}

// New creates a CRU with no keys held and both decrementer flags clear.
func New(log *debug.Logger) *CRU {
	return &CRU{Log: log}
}

// SetKey updates the held state of one keyboard matrix key.
func (c *CRU) SetKey(id KeyID, pressed bool) {
	pos, ok := keyTable[id]
	if !ok {
		return
	}
	if pressed {
		c.rows[pos.row] |= 1 << pos.bit
	} else {
		c.rows[pos.row] &^= 1 << pos.bit
	}
}

// rowForAddr returns the keyboard row selected by a CRU base address, the
// same address-to-row switch CLA_GetCRUWord uses.
func rowForAddr(addr uint16) (int, bool) {
	if addr < 0xEC00 || addr > 0xEC70 || (addr-0xEC00)%0x10 != 0 {
		return 0, false
	}
	row := int((addr - 0xEC00) / 0x10)
	return row, row <= 7
}

// ReadBits implements cpu.CRU for LDCR/STCR's multi-bit transfer. A
// keyboard row address returns that row's byte; anything else floats high,
// matching the stock ROM's unmapped-CRU-read behavior.
func (c *CRU) ReadBits(base uint16, count uint8) uint16 {
	if row, ok := rowForAddr(base); ok {
		return uint16(c.rows[row])
	}
	if count == 0 {
		return 0
	}
	return uint16(1<<count) - 1
}

// TestBit implements cpu.CRU for TB. Bit position within a keyboard row is
// (addr-rowBase)/2; addresses outside the matrix float high.
func (c *CRU) TestBit(addr uint16) bool {
	if addr >= 0xEC00 && addr <= 0xEC7E {
		row := (addr - 0xEC00) / 0x10
		bitPos := (addr - 0xEC00) % 0x10 / 2
		if row <= 7 {
			return c.rows[row]&(1<<bitPos) != 0
		}
	}
	return true
}

// State is the matrix's held-key snapshot (spec.md §6). The decrementer
// control flags are not included: the enable flag lives in the decrementer
// itself, and the mode flag is not stored.
type State struct {
	Rows [8]byte
}

// Snapshot captures which matrix keys are currently held.
func (c *CRU) Snapshot() State {
	return State{Rows: c.rows}
}

// Restore replaces the held-key state with a previously captured snapshot.
func (c *CRU) Restore(s State) {
	c.rows = s.Rows
}

// WriteBit implements cpu.CRU for SBO/SBZ. Only the decrementer's mode and
// enable flags (0x1EE0/0x1EE2) are wired; every other address is logged and
// discarded (spec.md §4.6 "Others are ignored").
func (c *CRU) WriteBit(addr uint16, value bool) {
	switch addr {
	case 0x1EE0:
		if c.SetDecrementerMode != nil {
			c.SetDecrementerMode(value)
		}
	case 0x1EE2:
		if c.SetDecrementerEnabled != nil {
			c.SetDecrementerEnabled(value)
		}
	default:
		if c.Log != nil {
			c.Log.LogCRU(debug.LogLevelTrace, "CRU write to unmapped bit address ignored")
		}
	}
}
