package vdp

// Framebuffer is a packed 256x192 RGB image, row-major.
type Framebuffer [ScreenHeight][ScreenWidth]Color

// Render draws the current VRAM/register state into fb: the tile
// background (Graphics I or Graphics II per register 0 bit 1) followed by
// up to four sprites per scanline (spec.md §4.7's rendering pipeline).
func (v *VDP) Render(fb *Framebuffer) {
	backdrop := Palette[v.Regs[7]&0x0F]
	for y := 0; y < ScreenHeight; y++ {
		for x := 0; x < ScreenWidth; x++ {
			fb[y][x] = backdrop
		}
	}

	// Register 1 bit 6 (BL, "blank") clear blanks the whole screen to the
	// backdrop color and suppresses sprites (spec.md §4.7).
	if v.Regs[1]&0x40 == 0 {
		return
	}

	if v.modeGraphicsII() {
		v.renderGraphicsII(fb)
	} else {
		v.renderGraphicsI(fb)
	}

	v.renderSprites(fb)
}

// resolveColor maps a 4-bit palette nibble to a Color, substituting
// register 7's backdrop color for palette entry 0, which is transparent
// rather than black (spec.md §4.7).
func (v *VDP) resolveColor(nibble byte) Color {
	if nibble == 0 {
		return Palette[v.Regs[7]&0x0F]
	}
	return Palette[nibble]
}

// renderGraphicsI draws the 32x24 tile screen using one shared 2 KiB
// pattern table and one 32-byte color table (one color pair per 8 pattern
// codes).
func (v *VDP) renderGraphicsI(fb *Framebuffer) {
	nameBase := uint16(v.Regs[2]&0x0F) * 0x400
	patternBase := uint16(v.Regs[4]&0x07) * 0x800
	colorBase := uint16(v.Regs[3]) * 0x40

	for row := 0; row < 24; row++ {
		for col := 0; col < 32; col++ {
			name := row*32 + col
			pattern := v.VRAM[nameBase+uint16(name)]
			colorByte := v.VRAM[colorBase+uint16(pattern)/8]
			fg := v.resolveColor(colorByte >> 4)
			bg := v.resolveColor(colorByte & 0x0F)
			v.blitTile(fb, col*8, row*8, patternBase+uint16(pattern)*8, fg, bg)
		}
	}
}

// renderGraphicsII draws the 32x24 tile screen split into three vertical
// thirds, each with its own 2 KiB slice of the pattern and color tables
// (spec.md §4.7; the color-table AND-mask in register 3 is treated as
// fully set, matching the only configuration the Tutor ROM drives it in).
func (v *VDP) renderGraphicsII(fb *Framebuffer) {
	nameBase := uint16(v.Regs[2]&0x0F) * 0x400
	pgtBase := uint16(0)
	if v.Regs[4]&0x04 != 0 {
		pgtBase = 0x2000
	}
	ctBase := uint16(0)
	if v.Regs[3]&0x80 != 0 {
		ctBase = 0x2000
	}

	for row := 0; row < 24; row++ {
		third := uint16(row/8) * 0x800
		for col := 0; col < 32; col++ {
			name := row*32 + col
			pattern := v.VRAM[nameBase+uint16(name)]
			patternAddr := pgtBase + third + uint16(pattern)*8
			colorAddr := ctBase + third + uint16(pattern)*8
			// Graphics II colors are per scanline; blitTile below reads a
			// single color pair, so draw each of the 8 rows individually.
			v.blitTileGraphicsII(fb, col*8, row*8, patternAddr, colorAddr)
		}
	}
}

// blitTile draws one 8x8 tile whose 8 pattern bytes live at patternAddr,
// using a single (fg, bg) color pair for all 8 rows (Graphics I semantics).
func (v *VDP) blitTile(fb *Framebuffer, px, py int, patternAddr uint16, fg, bg Color) {
	for r := 0; r < 8; r++ {
		line := v.VRAM[patternAddr+uint16(r)]
		for c := 0; c < 8; c++ {
			on := line&(0x80>>uint(c)) != 0
			color := bg
			if on {
				color = fg
			}
			y, x := py+r, px+c
			if y < ScreenHeight && x < ScreenWidth {
				fb[y][x] = color
			}
		}
	}
}

// blitTileGraphicsII draws one 8x8 tile whose pattern and color bytes are
// both addressed per-scanline (each of the 8 rows has its own color pair).
func (v *VDP) blitTileGraphicsII(fb *Framebuffer, px, py int, patternAddr, colorAddr uint16) {
	for r := 0; r < 8; r++ {
		line := v.VRAM[patternAddr+uint16(r)]
		colorByte := v.VRAM[colorAddr+uint16(r)]
		fg := v.resolveColor(colorByte >> 4)
		bg := v.resolveColor(colorByte & 0x0F)
		for c := 0; c < 8; c++ {
			on := line&(0x80>>uint(c)) != 0
			color := bg
			if on {
				color = fg
			}
			y, x := py+r, px+c
			if y < ScreenHeight && x < ScreenWidth {
				fb[y][x] = color
			}
		}
	}
}
