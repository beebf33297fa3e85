package cpu

// setLogicalFlags16 sets LGT/AGT/EQ from a word result, the flags every
// instruction that "sets status" touches (spec.md §4.1).
func (c *CPU) setLogicalFlags16(result uint16) {
	c.setFlag(FlagLGT, result != 0)
	c.setFlag(FlagAGT, int16(result) > 0)
	c.setFlag(FlagEQ, result == 0)
}

// setLogicalFlags8 is the byte-operand equivalent, additionally latching
// LastParity so ST.OP reflects this result the next time it is observed
// (spec.md §3, §4.1 "Byte operations ... additionally update OP").
func (c *CPU) setLogicalFlags8(result byte) {
	c.setFlag(FlagLGT, result != 0)
	c.setFlag(FlagAGT, int8(result) > 0)
	c.setFlag(FlagEQ, result == 0)
	c.State.LastParity = result
}

// setCompareFlags16 sets LGT/AGT/EQ from a direct comparison of two words
// without touching C or OV, matching spec.md §4.1's "Compare instructions
// compute dest - src but discard the result, setting LGT/AGT/EQ only."
func (c *CPU) setCompareFlags16(a, b uint16) {
	c.setFlag(FlagLGT, a > b)
	c.setFlag(FlagAGT, int16(a) > int16(b))
	c.setFlag(FlagEQ, a == b)
}

func (c *CPU) setCompareFlags8(a, b byte) {
	c.setFlag(FlagLGT, a > b)
	c.setFlag(FlagAGT, int8(a) > int8(b))
	c.setFlag(FlagEQ, a == b)
}

// setAddFlags16 sets LGT/AGT/EQ/C/OV for a word addition res = a + b
// (spec.md §4.1's documented overflow rule).
func (c *CPU) setAddFlags16(a, b, res uint16) {
	c.setLogicalFlags16(res)
	c.setFlag(FlagC, uint32(a)+uint32(b) > 0xFFFF)
	c.setFlag(FlagOV, (res^b)&(res^a)&0x8000 != 0)
}

func (c *CPU) setAddFlags8(a, b, res byte) {
	c.setLogicalFlags8(res)
	c.setFlag(FlagC, uint16(a)+uint16(b) > 0xFF)
	c.setFlag(FlagOV, (res^b)&(res^a)&0x80 != 0)
}

// setSubFlags16 sets LGT/AGT/EQ/C/OV for a word subtraction res = a - b.
// Carry follows TMS9900 convention: set when the subtraction did not
// borrow (spec.md §4.1).
func (c *CPU) setSubFlags16(a, b, res uint16) {
	c.setLogicalFlags16(res)
	c.setFlag(FlagC, a >= b)
	c.setFlag(FlagOV, (a^b)&(a^res)&0x8000 != 0)
}

func (c *CPU) setSubFlags8(a, b, res byte) {
	c.setLogicalFlags8(res)
	c.setFlag(FlagC, a >= b)
	c.setFlag(FlagOV, (a^b)&(a^res)&0x80 != 0)
}
