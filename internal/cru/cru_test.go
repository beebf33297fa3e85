package cru

import "testing"

func TestKeyPressReflectedInRowRead(t *testing.T) {
	c := New(nil)
	c.SetKey(KeyReturn, true)
	got := c.ReadBits(0xEC60, 8)
	if got&(1<<4) == 0 {
		t.Fatalf("row 6 = 0x%02X, expected bit 4 (Return) set", got)
	}
	c.SetKey(KeyReturn, false)
	got = c.ReadBits(0xEC60, 8)
	if got&(1<<4) != 0 {
		t.Fatalf("row 6 = 0x%02X, expected bit 4 (Return) clear after release", got)
	}
}

func TestUnmappedCRUReadFloatsHigh(t *testing.T) {
	c := New(nil)
	if got := c.ReadBits(0xF000, 8); got != 0xFF {
		t.Fatalf("unmapped read = 0x%02X, want 0xFF", got)
	}
}

func TestDecrementerFlagsWired(t *testing.T) {
	c := New(nil)
	var mode, enabled bool
	c.SetDecrementerMode = func(v bool) { mode = v }
	c.SetDecrementerEnabled = func(v bool) { enabled = v }

	c.WriteBit(0x1EE0, true)
	c.WriteBit(0x1EE2, true)
	if !mode || !enabled {
		t.Fatalf("mode=%v enabled=%v, want both true", mode, enabled)
	}
}

func TestTestBitMatchesRowRead(t *testing.T) {
	c := New(nil)
	c.SetKey(KeySpace, true) // row 6, bit 7
	if !c.TestBit(0xEC60 + 7*2) {
		t.Fatalf("TestBit did not see KeySpace held")
	}
	if c.TestBit(0xEC60 + 6*2) {
		t.Fatalf("TestBit saw an unheld key as pressed")
	}
}
