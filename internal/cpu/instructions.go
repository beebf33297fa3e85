package cpu

// execTwoOperand handles Format I, the twelve general source/general
// destination instructions packed into top nibbles 0x4-0xF: SZC(B), S(B),
// C(B), A(AB), MOV(B), SOC(B) (spec.md §4.1). Word vs byte is the low bit
// of the top nibble.
func (c *CPU) execTwoOperand(word uint16) (uint32, error) {
	op := word >> 12
	td := uint8((word >> 10) & 0x3)
	d := uint8((word >> 6) & 0xF)
	ts := uint8((word >> 4) & 0x3)
	s := uint8(word & 0xF)
	isByte := op&1 == 1
	isMove := op == 0xC || op == 0xD // MOV/MOVB never need the old dest value

	if isByte {
		_, srcVal := c.readOperandByte(ts, s)
		dstAddr := c.resolveAddr(td, d, true)
		var dstVal byte
		if !isMove {
			dstVal = c.Mem.ReadByte(dstAddr)
		}
		var res byte
		switch op {
		case 0x5: // SZCB
			res = dstVal &^ srcVal
			c.setLogicalFlags8(res)
		case 0x7: // SB
			res = dstVal - srcVal
			c.setSubFlags8(dstVal, srcVal, res)
		case 0x9: // CB
			c.setCompareFlags8(dstVal, srcVal)
			return 14, nil
		case 0xB: // AB
			res = dstVal + srcVal
			c.setAddFlags8(dstVal, srcVal, res)
		case 0xD: // MOVB
			res = srcVal
			c.setLogicalFlags8(res)
		case 0xF: // SOCB
			res = dstVal | srcVal
			c.setLogicalFlags8(res)
		default:
			return 0, illegalOpcode(word)
		}
		c.Mem.WriteByte(dstAddr, res)
		return 14, nil
	}

	_, srcVal := c.readOperandWord(ts, s)
	dstAddr := c.resolveAddr(td, d, false)
	var dstVal uint16
	if !isMove {
		dstVal = c.Mem.ReadWord(dstAddr)
	}
	var res uint16
	switch op {
	case 0x4: // SZC
		res = dstVal &^ srcVal
		c.setLogicalFlags16(res)
	case 0x6: // S
		res = dstVal - srcVal
		c.setSubFlags16(dstVal, srcVal, res)
	case 0x8: // C
		c.setCompareFlags16(dstVal, srcVal)
		return 14, nil
	case 0xA: // A
		res = dstVal + srcVal
		c.setAddFlags16(dstVal, srcVal, res)
	case 0xC: // MOV
		res = srcVal
		c.setLogicalFlags16(res)
	case 0xE: // SOC
		res = dstVal | srcVal
		c.setLogicalFlags16(res)
	default:
		return 0, illegalOpcode(word)
	}
	c.Mem.WriteWord(dstAddr, res)
	return 14, nil
}

// execGeneralToRegister handles Format III: one general-addressed operand
// paired with a workspace register, covering COC/CZC/XOR/XOP under top
// nibble 0x2 and LDCR/STCR/MPY/DIV under top nibble 0x3 (spec.md §4.1,
// §4.6 for the CRU transfer pair).
func (c *CPU) execGeneralToRegister(word uint16) (uint32, error) {
	top4 := word >> 12
	sel := (word >> 10) & 0x3
	d := uint8((word >> 6) & 0xF)
	ts := uint8((word >> 4) & 0x3)
	s := uint8(word & 0xF)

	if top4 == 0x2 {
		switch sel {
		case 0: // COC
			_, srcVal := c.readOperandWord(ts, s)
			mask := c.GetReg(d)
			c.setFlag(FlagEQ, srcVal&mask == mask)
			return 14, nil
		case 1: // CZC
			_, srcVal := c.readOperandWord(ts, s)
			mask := c.GetReg(d)
			c.setFlag(FlagEQ, srcVal&mask == 0)
			return 14, nil
		case 2: // XOR
			_, srcVal := c.readOperandWord(ts, s)
			res := srcVal ^ c.GetReg(d)
			c.SetReg(d, res)
			c.setLogicalFlags16(res)
			return 14, nil
		case 3: // XOP
			addr := c.resolveAddr(ts, s, false)
			vector := 0x0040 + uint16(d)*4
			c.blwp(vector)
			c.SetReg(11, addr)
			c.setFlag(FlagX, true)
			return 36, nil
		}
	}

	// top4 == 0x3: LDCR/STCR/MPY/DIV
	switch sel {
	case 0: // LDCR
		count := d
		if count == 0 {
			count = 16
		}
		var data uint16
		if count <= 8 {
			_, b := c.readOperandByte(ts, s)
			data = uint16(b)
		} else {
			_, data = c.readOperandWord(ts, s)
		}
		base := c.GetReg(12)
		for i := uint8(0); i < count; i++ {
			c.Cru.WriteBit(base+uint16(i)*2, data>>i&1 != 0)
		}
		if count <= 8 {
			c.setLogicalFlags8(byte(data))
		} else {
			c.setLogicalFlags16(data)
		}
		return uint32(20 + 2*int(count)), nil
	case 1: // STCR
		count := d
		if count == 0 {
			count = 16
		}
		base := c.GetReg(12)
		result := c.Cru.ReadBits(base, count)
		if count <= 8 {
			addr := c.resolveAddr(ts, s, true)
			c.Mem.WriteByte(addr, byte(result))
			c.setLogicalFlags8(byte(result))
		} else {
			addr := c.resolveAddr(ts, s, false)
			c.Mem.WriteWord(addr, result)
			c.setLogicalFlags16(result)
		}
		return uint32(20 + 2*int(count)), nil
	case 2: // MPY
		_, srcVal := c.readOperandWord(ts, s)
		dVal := c.GetReg(d)
		prod := uint32(dVal) * uint32(srcVal)
		dNext := (d + 1) & 0xF
		c.SetReg(d, uint16(prod>>16))
		c.SetReg(dNext, uint16(prod))
		return 52, nil
	case 3: // DIV
		_, srcVal := c.readOperandWord(ts, s)
		dNext := (d + 1) & 0xF
		hi := c.GetReg(d)
		lo := c.GetReg(dNext)
		if srcVal == 0 || uint32(srcVal) <= uint32(hi) {
			c.setFlag(FlagOV, true)
			return 16, nil
		}
		c.setFlag(FlagOV, false)
		dividend := uint32(hi)<<16 | uint32(lo)
		c.SetReg(d, uint16(dividend/uint32(srcVal)))
		c.SetReg(dNext, uint16(dividend%uint32(srcVal)))
		return 92, nil
	}
	return 0, illegalOpcode(word)
}
