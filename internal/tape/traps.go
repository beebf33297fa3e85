package tape

import "github.com/classilla/tutti/internal/cpu"

// Hook is installed as cpu.CPU.TapeHook. It intercepts the stock ROM's
// known tape entry points before the CPU decodes the instruction word
// sitting at them, replacing the bit-banged routines with direct ASCII
// bitstream access (spec.md §4.5, grounded on
// original_source/tutorem/TMS9995.c's trap table).
func (t *Tape) Hook(c *cpu.CPU) (handled bool, cycles uint32) {
	pc := c.State.PC
	switch pc {
	case 0x8360:
		// "C @>F0D8,R13 : JNE -3" is a tape-ready busy-wait; the tape
		// is always ready in this emulation, so skip the three-word
		// loop entirely instead of looping it to a foregone
		// conclusion every time it is entered.
		if c.Mem.ReadWord(pc+2) == 0xF0D8 && c.Mem.ReadWord(pc+4) == 0x16FD {
			c.State.PC += 6
			return true, 24
		}
		return false, 0

	case 0x2788: // GRAPHIC LOAD entry point (from <MON>)
		if !t.gotFilename {
			t.setupLoad()
		}
		t.skipSync()
		c.SetReg(12, 0xED00)
		c.State.PC = 0x27BE
		return true, 20

	case 0x27BE: // GRAPHIC LOAD: fetch one byte into R8's high byte
		tb := t.readByte()
		if tb < 0 {
			c.State.PC = 0x284C // FORM ERR
			return true, 14
		}
		w := uint16(tb) << 8
		c.SetReg(8, w)
		c.SetReg(5, w)
		c.SetReg(1, 0x0000)
		c.SetReg(6, 0x0000)
		c.SetReg(12, 0x1EE0)
		c.State.PC = 0x27E8
		return true, 20

	case 0x2848: // GRAPHIC LOAD: short-circuit retry into the byte reader
		c.State.PC = 0x27BE
		return true, 6

	case 0x8E40: // BASIC LOAD: primary sync mark detector
		if !t.gotFilename {
			t.setupLoad()
		}
		t.skipSync()
		c.SetReg(12, 0xED00)
		c.SetReg(1, 0x0065)
		c.State.PC = 0x8E7C
		return true, 20

	case 0x8FCA: // BASIC LOAD: secondary sync mark detector
		t.skipSync()
		c.SetReg(12, 0xED00)
		c.SetReg(1, 0x0065)
		c.State.PC = c.GetReg(11)
		return true, 20

	case 0x8FE4: // BASIC LOAD: fetch 8 bits into R5's high byte
		tb := t.readByte()
		if tb < 0 {
			c.State.PC = 0x8F30 // ERR 19
			return true, 14
		}
		w := uint16(tb) << 8
		c.SetReg(8, w)
		c.SetReg(5, w)
		c.SetReg(1, 0x0000)
		c.State.PC = c.GetReg(11)
		return true, 20
	}
	return false, 0
}
