package cpu

// resolveAddr computes the effective address for a two-bit addressing mode
// and 4-bit register field (spec.md §4.1 "Addressing modes"). Byte vs word
// only matters for mode 3's auto-increment step size; byte/word access
// itself is left to the caller (Mem.ReadByte/WriteByte naturally pick the
// high or low half of the even-aligned word address per spec.md §4.2).
func (c *CPU) resolveAddr(mode uint8, reg uint8, isByte bool) uint16 {
	switch mode {
	case 0: // workspace register
		return c.R(reg)
	case 1: // register indirect
		return c.GetReg(reg)
	case 2: // symbolic or indexed
		word := c.fetchWord()
		if reg != 0 {
			word += c.GetReg(reg)
		}
		return word
	default: // 3: post-increment indirect
		addr := c.GetReg(reg)
		inc := uint16(2)
		if isByte {
			inc = 1
		}
		c.SetReg(reg, addr+inc)
		return addr
	}
}

// readOperandWord resolves an operand address and reads a word from it.
func (c *CPU) readOperandWord(mode, reg uint8) (uint16, uint16) {
	addr := c.resolveAddr(mode, reg, false)
	return addr, c.Mem.ReadWord(addr)
}

// readOperandByte resolves an operand address and reads a byte from it.
func (c *CPU) readOperandByte(mode, reg uint8) (uint16, byte) {
	addr := c.resolveAddr(mode, reg, true)
	return addr, c.Mem.ReadByte(addr)
}
