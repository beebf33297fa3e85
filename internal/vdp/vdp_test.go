package vdp

import "testing"

func writeControlWord(v *VDP, mp uint16, mode byte) {
	v.WriteControl(byte(mp & 0xFF))
	v.WriteControl(mode | byte((mp>>8)&0x3F))
}

func TestControlLatchSetsAddressForWrite(t *testing.T) {
	v := New(nil)
	writeControlWord(v, 0x1234, 0x40)
	v.WriteData(0xAB)
	if v.VRAM[0x1234] != 0xAB {
		t.Fatalf("VRAM[0x1234] = 0x%02X, want 0xAB", v.VRAM[0x1234])
	}
	if v.mp != 0x1235 {
		t.Fatalf("mp = 0x%04X, want 0x1235 after one write", v.mp)
	}
}

func TestDataAddressWrapsAtVRAMBoundary(t *testing.T) {
	v := New(nil)
	writeControlWord(v, VRAMSize-1, 0x40)
	v.WriteData(1)
	v.WriteData(2)
	if v.VRAM[0] != 2 {
		t.Fatalf("address did not wrap to 0, VRAM[0] = %d", v.VRAM[0])
	}
}

func TestRegisterWriteLatchesSecondByte(t *testing.T) {
	v := New(nil)
	v.WriteControl(0x02) // M2 bit for graphics II
	v.WriteControl(0x80 | 0x00)
	if v.Regs[0] != 0x02 {
		t.Fatalf("Regs[0] = 0x%02X, want 0x02", v.Regs[0])
	}
}

func TestReadStatusClearsFrameFlag(t *testing.T) {
	v := New(nil)
	v.EnterVBlank()
	st := v.ReadStatus()
	if st&StatusFlagF == 0 {
		t.Fatalf("status read before clear should report F set")
	}
	if v.ReadStatus()&StatusFlagF != 0 {
		t.Fatalf("F flag should be clear after first read")
	}
}

func TestSpriteTerminatorStopsScan(t *testing.T) {
	v := New(nil)
	v.Regs[5] = 0 // attribute table at 0
	v.VRAM[0] = spriteTerminatorY
	v.VRAM[4] = 50 // would otherwise be visible at y=50
	v.VRAM[5] = 10
	v.VRAM[6] = 0
	v.VRAM[7] = 0x0F

	hits := v.spritesOnLine(50)
	if len(hits) != 0 {
		t.Fatalf("expected terminator to stop the scan, got %d hits", len(hits))
	}
}

func TestSpritesOnLineHandlesYWraparound(t *testing.T) {
	v := New(nil)
	v.Regs[5] = 0 // attribute table at 0
	v.VRAM[0] = 0xFE // wraps to screenY = 0xFE-256+1 = -1
	v.VRAM[1] = 10
	v.VRAM[2] = 0
	v.VRAM[3] = 0x0F
	v.VRAM[4] = spriteTerminatorY // end the table after slot 0

	if hits := v.spritesOnLine(6); len(hits) != 1 {
		t.Fatalf("expected a wrapped sprite visible 7 rows down from the top, got %d hits", len(hits))
	}
	if hits := v.spritesOnLine(8); len(hits) != 0 {
		t.Fatalf("wrapped sprite should no longer be visible past its 8-row extent, got %d hits", len(hits))
	}
}

func TestSpritesOnLineBottomHalfPositionIsNotTreatedAsWrapped(t *testing.T) {
	v := New(nil)
	v.Regs[5] = 0
	v.VRAM[0] = 0x90 // 144: an ordinary bottom-half position, not a wraparound
	v.VRAM[1] = 10
	v.VRAM[2] = 0
	v.VRAM[3] = 0x0F

	if hits := v.spritesOnLine(145); len(hits) != 1 {
		t.Fatalf("sprite at Y=0x90 should render normally at scanline 145, got %d hits", len(hits))
	}
}

func TestSpritesOnLineCapsAtFour(t *testing.T) {
	v := New(nil)
	v.Regs[5] = 0
	for i := 0; i < 5; i++ {
		base := i * 4
		v.VRAM[base] = 99   // screenY = 100
		v.VRAM[base+1] = byte(i * 10)
		v.VRAM[base+2] = 0
		v.VRAM[base+3] = 1
	}
	hits := v.spritesOnLine(100)
	if len(hits) != maxSpritesPerLine {
		t.Fatalf("spritesOnLine returned %d, want cap of %d", len(hits), maxSpritesPerLine)
	}
}

func TestGraphicsIRendersForegroundPixel(t *testing.T) {
	v := New(nil)
	v.Regs[1] = 0x40 // display enabled (BL set)
	v.Regs[2] = 1 // name table at 0x400
	v.Regs[3] = 1 // color table at 0x40
	v.Regs[4] = 1 // pattern table at 0x800

	v.VRAM[0x400] = 0          // name 0 uses pattern 0
	v.VRAM[0x40] = 0xF0        // color entry for patterns 0-7: fg=white, bg=transparent
	v.VRAM[0x800] = 0x80       // pattern 0, row 0: leftmost pixel set

	var fb Framebuffer
	v.Render(&fb)
	if fb[0][0] != Palette[15] {
		t.Fatalf("pixel (0,0) = %+v, want white foreground", fb[0][0])
	}
}

func TestTransparentPaletteNibbleSubstitutesBackdrop(t *testing.T) {
	v := New(nil)
	v.Regs[1] = 0x40
	v.Regs[2] = 1 // name table at 0x400
	v.Regs[3] = 1 // color table at 0x40
	v.Regs[4] = 1 // pattern table at 0x800
	v.Regs[7] = 6 // backdrop = dark red

	v.VRAM[0x400] = 0
	v.VRAM[0x40] = 0x00 // both fg and bg nibbles transparent
	v.VRAM[0x800] = 0x80

	var fb Framebuffer
	v.Render(&fb)
	want := Palette[6]
	if fb[0][0] != want {
		t.Fatalf("pixel (0,0) = %+v, want backdrop %+v for transparent foreground", fb[0][0], want)
	}
	if fb[0][1] != want {
		t.Fatalf("pixel (0,1) = %+v, want backdrop %+v for transparent background", fb[0][1], want)
	}
}

func TestBlankBitSuppressesDisplayAndSprites(t *testing.T) {
	v := New(nil)
	v.Regs[1] = 0 // BL clear: display blanked
	v.Regs[2] = 1
	v.Regs[3] = 1
	v.Regs[4] = 1
	v.Regs[7] = 4 // backdrop = dark blue

	v.VRAM[0x400] = 0
	v.VRAM[0x40] = 0xF0
	v.VRAM[0x800] = 0x80

	v.Regs[5] = 0
	v.VRAM[0] = 0  // sprite at screenY=1
	v.VRAM[1] = 0
	v.VRAM[2] = 0
	v.VRAM[3] = 0x0F

	var fb Framebuffer
	v.Render(&fb)
	want := Palette[4]
	for y := 0; y < ScreenHeight; y++ {
		for x := 0; x < ScreenWidth; x++ {
			if fb[y][x] != want {
				t.Fatalf("pixel (%d,%d) = %+v, want backdrop %+v when display is blanked", y, x, fb[y][x], want)
			}
		}
	}
}
