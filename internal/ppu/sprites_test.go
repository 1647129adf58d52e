package ppu

import "testing"

func TestComposeSpritesPriorityAndTransparency(t *testing.T) {
	mem := mockVRAM{0x8000: 0x80} // single opaque leftmost pixel
	sprites := []Sprite{{X: 10, Y: 5}}
	var bg [Width]byte
	ci, _ := composeSprites(mem, sprites, 5, &bg, false)
	if ci[10] != 1 || ci[11] != 0 {
		t.Fatalf("expected sprite pixel at x=10 only")
	}
	sprites[0].Attr = attrBehind
	bg[10] = 1
	if ci, _ = composeSprites(mem, sprites, 5, &bg, false); ci[10] != 0 {
		t.Fatalf("expected sprite pixel to be hidden behind BG")
	}
	bg[10] = 0
	if ci, _ = composeSprites(mem, sprites, 5, &bg, false); ci[10] != 1 {
		t.Fatalf("behind-BG sprite should show over BG colour 0")
	}
}

func TestComposeSpritesSmallerXWins(t *testing.T) {
	mem := mockVRAM{0x8000: 0xFF}
	s0 := Sprite{X: 19, OAMIndex: 5}
	s1 := Sprite{X: 20, Attr: attrPalette, OAMIndex: 3}
	var bg [Width]byte
	ci, pal := composeSprites(mem, []Sprite{s1, s0}, 0, &bg, false)
	if ci[20] == 0 || pal[20] != 0 {
		t.Fatalf("x=20 should come from the sprite at X=19, pal=%d", pal[20])
	}
	if pal[27] != 1 {
		t.Fatalf("x=27 is only covered by the sprite at X=20")
	}
}

func TestComposeSpritesOAMOrderBreaksTies(t *testing.T) {
	mem := mockVRAM{0x8000: 0x80}
	s0 := Sprite{X: 12, OAMIndex: 5}
	s1 := Sprite{X: 12, Attr: attrPalette, OAMIndex: 3}
	var bg [Width]byte
	_, pal := composeSprites(mem, []Sprite{s0, s1}, 0, &bg, false)
	if pal[12] != 1 {
		t.Fatalf("expected OBP1 at x=12 due to lower OAM index, got pal=%d", pal[12])
	}
}

func TestComposeSpritesBehindBGMasksLowerPriority(t *testing.T) {
	mem := mockVRAM{0x8000: 0x80}
	front := Sprite{X: 30, Attr: attrBehind, OAMIndex: 0}
	back := Sprite{X: 30, Attr: attrPalette, OAMIndex: 1}
	var bg [Width]byte
	bg[30] = 2
	ci, _ := composeSprites(mem, []Sprite{front, back}, 0, &bg, false)
	if ci[30] != 0 {
		t.Fatalf("the lower priority sprite must not show through, got %d", ci[30])
	}
}

func TestComposeSpritesFlipsAndTall(t *testing.T) {
	// tile 4 row 0 leftmost pixel, tile 5 row 7 rightmost pixel colour 2
	mem := mockVRAM{0x8040: 0x80, 0x8050 + 14 + 1: 0x01}
	var bg [Width]byte

	ci, _ := composeSprites(mem, []Sprite{{X: 0, Tile: 4, Attr: attrXFlip}}, 0, &bg, false)
	if ci[0] != 0 || ci[7] != 1 {
		t.Fatalf("x flip got %v", ci[:8])
	}

	// 8x16 ignores bit 0 of the tile index; row 15 is tile 5 row 7
	ci, _ = composeSprites(mem, []Sprite{{X: 0, Tile: 5}}, 15, &bg, true)
	if ci[7] != 2 {
		t.Fatalf("tall sprite row 15 got %v", ci[:8])
	}
	// y flip in 8x16 maps line 0 to row 15
	ci, _ = composeSprites(mem, []Sprite{{X: 0, Tile: 4, Attr: attrYFlip}}, 0, &bg, true)
	if ci[7] != 2 {
		t.Fatalf("tall y flip got %v", ci[:8])
	}
}

func TestScanOAMTenPerLine(t *testing.T) {
	p := New(nil)
	for i := 0; i < 12; i++ {
		p.oam[i*4] = 16
		p.oam[i*4+1] = byte(8 + i*8)
	}
	p.oam[0] = 40 // entry 0 is not on line 0
	p.Write(AddrLCDC, lcdcEnable|lcdcOBJEnable)
	p.Tick(oamScanDots)
	if p.nSprites != spritesPerLine {
		t.Fatalf("selected %d sprites want 10", p.nSprites)
	}
	if p.sprites[0].OAMIndex != 1 || p.sprites[9].OAMIndex != 10 {
		t.Fatalf("selection should follow OAM order, got %d..%d", p.sprites[0].OAMIndex, p.sprites[9].OAMIndex)
	}
	if p.drawing != minDrawingDots+6*spritesPerLine {
		t.Fatalf("mode 3 length got %d", p.drawing)
	}
}
