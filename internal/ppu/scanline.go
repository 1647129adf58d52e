package ppu

// vramView reads VRAM for the renderer without the CPU mode restriction.
type vramView struct{ p *PPU }

func (v vramView) Read(addr uint16) byte { return v.p.vram[addr&0x1FFF] }

// renderBGLine produces the 160 background color indices for line ly,
// scrolled by scx/scy.
func renderBGLine(mem VRAMReader, mapBase uint16, unsigned bool, scx, scy, ly byte) [Width]byte {
	var out [Width]byte
	var q fifo
	f := newTileFetcher(mem, &q, mapBase, unsigned)
	f.Seek(ly+scy, uint16(scx>>3))
	f.Fetch()
	for i := byte(0); i < scx&7; i++ {
		q.Pop()
	}
	for x := range out {
		if q.Len() == 0 {
			f.Fetch()
		}
		out[x], _ = q.Pop()
	}
	return out
}

// renderWindowLine overlays the window onto line from screen x wx-7, using
// the internal window line counter for the map row.
func renderWindowLine(line *[Width]byte, mem VRAMReader, mapBase uint16, unsigned bool, wx byte, winLine int) {
	start := int(wx) - 7
	var q fifo
	f := newTileFetcher(mem, &q, mapBase, unsigned)
	f.Seek(byte(winLine), 0)
	f.Fetch()
	// WX below 7 clips the left edge of the window
	for x := start; x < 0; x++ {
		if q.Len() == 0 {
			f.Fetch()
		}
		q.Pop()
	}
	for x := max(start, 0); x < Width; x++ {
		if q.Len() == 0 {
			f.Fetch()
		}
		line[x], _ = q.Pop()
	}
}

// renderLine draws line ly into the back buffer.
func (p *PPU) renderLine() {
	var bg [Width]byte
	mem := vramView{p}
	unsigned := p.lcdc&lcdcTileData8000 != 0

	if p.lcdc&lcdcBGEnable != 0 {
		bg = renderBGLine(mem, mapBase(p.lcdc, lcdcBGMap), unsigned, p.scx, p.scy, p.ly)
		if p.windowOnLine() {
			renderWindowLine(&bg, mem, mapBase(p.lcdc, lcdcWindowMap), unsigned, p.wx, p.winLine)
			p.winLine++
		}
	}

	row := p.back[int(p.ly)*Width*4:]
	for x, ci := range bg {
		s := shades[0]
		// with BG off the line is blank and sprites still draw over it
		if p.lcdc&lcdcBGEnable != 0 {
			s = shade(p.bgp, ci)
		}
		setPixel(row, x, s)
	}

	if p.lcdc&lcdcOBJEnable == 0 || p.nSprites == 0 {
		return
	}
	ci, pal := composeSprites(mem, p.sprites[:p.nSprites], int(p.ly), &bg, p.lcdc&lcdcOBJTall != 0)
	for x := range ci {
		if ci[x] == 0 {
			continue
		}
		obp := p.obp0
		if pal[x] == 1 {
			obp = p.obp1
		}
		setPixel(row, x, shade(obp, ci[x]))
	}
}

func mapBase(lcdc, bit byte) uint16 {
	if lcdc&bit != 0 {
		return 0x9C00
	}
	return 0x9800
}
