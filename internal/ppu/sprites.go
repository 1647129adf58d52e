package ppu

import "sort"

// Sprite is an OAM entry in screen coordinates (OAM Y-16, X-8).
type Sprite struct {
	Y, X     int
	Tile     byte
	Attr     byte
	OAMIndex int
}

const (
	attrPalette = 1 << 4
	attrXFlip   = 1 << 5
	attrYFlip   = 1 << 6
	attrBehind  = 1 << 7
)

// scanOAM selects up to ten sprites covering the current line, in OAM
// order. X does not take part in selection.
func (p *PPU) scanOAM() {
	p.nSprites = 0
	if p.lcdc&lcdcOBJEnable == 0 {
		return
	}
	height := 8
	if p.lcdc&lcdcOBJTall != 0 {
		height = 16
	}
	ly := int(p.ly)
	for i := 0; i < 40 && p.nSprites < spritesPerLine; i++ {
		e := p.oam[i*4 : i*4+4]
		y := int(e[0]) - 16
		if ly < y || ly >= y+height {
			continue
		}
		p.sprites[p.nSprites] = Sprite{Y: y, X: int(e[1]) - 8, Tile: e[2], Attr: e[3], OAMIndex: i}
		p.nSprites++
	}
}

// composeSprites returns the sprite color index and palette (0: OBP0,
// 1: OBP1) for every pixel of line ly. Index 0 means no sprite pixel.
// Where sprites overlap, the one with the smaller X wins and OAM order breaks
// ties; a winning sprite flagged behind-BG hides itself over non-zero BG
// colors without letting lower priority sprites through.
func composeSprites(mem VRAMReader, sprites []Sprite, ly int, bg *[Width]byte, tall bool) (ci, pal [Width]byte) {
	ordered := make([]Sprite, len(sprites))
	copy(ordered, sprites)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].X != ordered[j].X {
			return ordered[i].X < ordered[j].X
		}
		return ordered[i].OAMIndex < ordered[j].OAMIndex
	})

	height := 8
	if tall {
		height = 16
	}
	var claimed [Width]bool
	for _, s := range ordered {
		row := ly - s.Y
		if row < 0 || row >= height {
			continue
		}
		if s.Attr&attrYFlip != 0 {
			row = height - 1 - row
		}
		tile := s.Tile
		if tall {
			tile &= 0xFE
		}
		addr := 0x8000 + uint16(tile)*16 + uint16(row)*2
		lo, hi := mem.Read(addr), mem.Read(addr+1)

		for px := 0; px < 8; px++ {
			x := s.X + px
			if x < 0 || x >= Width || claimed[x] {
				continue
			}
			bit := 7 - px
			if s.Attr&attrXFlip != 0 {
				bit = px
			}
			c := (hi>>bit)&1<<1 | (lo>>bit)&1
			if c == 0 {
				continue
			}
			claimed[x] = true
			if s.Attr&attrBehind != 0 && bg[x] != 0 {
				continue
			}
			ci[x] = c
			if s.Attr&attrPalette != 0 {
				pal[x] = 1
			}
		}
	}
	return ci, pal
}
