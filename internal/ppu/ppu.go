// Package ppu is the DMG pixel engine: VRAM, OAM, the LCD registers and the
// per-dot mode state machine that renders into a 160x144 RGBA framebuffer.
package ppu

import "github.com/FabianRolfMatthiasNoll/GameBoyCore/internal/irq"

const (
	Width  = 160
	Height = 144

	DotsPerLine    = 456
	Lines          = 154
	CyclesPerFrame = DotsPerLine * Lines

	oamScanDots    = 80
	minDrawingDots = 172
	maxDrawingDots = 289
	spritesPerLine = 10
)

// Register addresses.
const (
	AddrLCDC = 0xFF40
	AddrSTAT = 0xFF41
	AddrSCY  = 0xFF42
	AddrSCX  = 0xFF43
	AddrLY   = 0xFF44
	AddrLYC  = 0xFF45
	AddrBGP  = 0xFF47
	AddrOBP0 = 0xFF48
	AddrOBP1 = 0xFF49
	AddrWY   = 0xFF4A
	AddrWX   = 0xFF4B
)

// LCDC bits.
const (
	lcdcBGEnable     = 1 << 0
	lcdcOBJEnable    = 1 << 1
	lcdcOBJTall      = 1 << 2
	lcdcBGMap        = 1 << 3
	lcdcTileData8000 = 1 << 4
	lcdcWindowEnable = 1 << 5
	lcdcWindowMap    = 1 << 6
	lcdcEnable       = 1 << 7
)

// STAT bits.
const (
	statCoincidence = 1 << 2
	statHBlankIRQ   = 1 << 3
	statVBlankIRQ   = 1 << 4
	statOAMIRQ      = 1 << 5
	statLYCIRQ      = 1 << 6
)

type Mode byte

const (
	ModeHBlank Mode = iota
	ModeVBlank
	ModeOAMScan
	ModeDrawing
)

func (m Mode) String() string {
	switch m {
	case ModeHBlank:
		return "hblank"
	case ModeVBlank:
		return "vblank"
	case ModeOAMScan:
		return "oam"
	case ModeDrawing:
		return "drawing"
	}
	return "unknown"
}

type PPU struct {
	vram [0x2000]byte
	oam  [0xA0]byte

	lcdc byte
	stat byte // enable bits 3-6 and the coincidence bit; mode is kept in mode
	scy  byte
	scx  byte
	ly   byte
	lyc  byte
	bgp  byte
	obp0 byte
	obp1 byte
	wy   byte
	wx   byte

	mode    Mode
	dot     int
	drawing int // length of mode 3 on the current line

	// window line counter; only advances on lines where the window is drawn
	winLine   int
	winOnLine bool

	sprites  [spritesPerLine]Sprite
	nSprites int

	back  []byte
	front []byte
	ready bool
	// dots counted while the LCD is off
	offDots int

	req irq.Requester
}

func New(req irq.Requester) *PPU {
	p := &PPU{
		req:   req,
		back:  make([]byte, Width*Height*4),
		front: make([]byte, Width*Height*4),
	}
	fillWhite(p.back)
	fillWhite(p.front)
	p.compareLYC()
	return p
}

func (p *PPU) Mode() Mode    { return p.mode }
func (p *PPU) LY() byte      { return p.ly }
func (p *PPU) enabled() bool { return p.lcdc&lcdcEnable != 0 }

// FrameReady reports whether a frame was published since the last call and
// clears the flag.
func (p *PPU) FrameReady() bool {
	r := p.ready
	p.ready = false
	return r
}

// Framebuffer is the last published frame, 160x144 RGBA row major. It stays
// valid until the next frame is published.
func (p *PPU) Framebuffer() []byte { return p.front }

func (p *PPU) vramBlocked() bool { return p.enabled() && p.mode == ModeDrawing }
func (p *PPU) oamBlocked() bool {
	return p.enabled() && (p.mode == ModeOAMScan || p.mode == ModeDrawing)
}

func (p *PPU) ReadVRAM(addr uint16) byte {
	if p.vramBlocked() {
		return 0xFF
	}
	return p.vram[addr&0x1FFF]
}

func (p *PPU) WriteVRAM(addr uint16, v byte) {
	if p.vramBlocked() {
		return
	}
	p.vram[addr&0x1FFF] = v
}

func (p *PPU) ReadOAM(addr uint16) byte {
	if p.oamBlocked() {
		return 0xFF
	}
	return p.oam[(addr-0xFE00)%0xA0]
}

func (p *PPU) WriteOAM(addr uint16, v byte) {
	if p.oamBlocked() {
		return
	}
	p.oam[(addr-0xFE00)%0xA0] = v
}

// WriteOAMDirect stores into OAM regardless of mode. Used by OAM DMA.
func (p *PPU) WriteOAMDirect(i int, v byte) { p.oam[i%0xA0] = v }

// RawVRAM reads VRAM without the mode restriction, for the renderer and
// debugging tools.
func (p *PPU) RawVRAM(addr uint16) byte { return p.vram[addr&0x1FFF] }

// Read returns an LCD register.
func (p *PPU) Read(addr uint16) byte {
	switch addr {
	case AddrLCDC:
		return p.lcdc
	case AddrSTAT:
		return 0x80 | p.stat&0x7C | byte(p.mode)
	case AddrSCY:
		return p.scy
	case AddrSCX:
		return p.scx
	case AddrLY:
		return p.ly
	case AddrLYC:
		return p.lyc
	case AddrBGP:
		return p.bgp
	case AddrOBP0:
		return p.obp0
	case AddrOBP1:
		return p.obp1
	case AddrWY:
		return p.wy
	case AddrWX:
		return p.wx
	}
	return 0xFF
}

func (p *PPU) Write(addr uint16, v byte) {
	switch addr {
	case AddrLCDC:
		was := p.enabled()
		p.lcdc = v
		switch {
		case was && !p.enabled():
			p.ly, p.dot, p.offDots = 0, 0, 0
			p.mode = ModeHBlank
			p.compareLYC()
		case !was && p.enabled():
			p.ly, p.dot, p.winLine = 0, 0, 0
			p.setMode(ModeOAMScan)
			p.compareLYC()
		}
	case AddrSTAT:
		p.stat = p.stat&statCoincidence | v&0x78
	case AddrSCY:
		p.scy = v
	case AddrSCX:
		p.scx = v
	case AddrLY:
		// read only
	case AddrLYC:
		p.lyc = v
		p.compareLYC()
	case AddrBGP:
		p.bgp = v
	case AddrOBP0:
		p.obp0 = v
	case AddrOBP1:
		p.obp1 = v
	case AddrWY:
		p.wy = v
	case AddrWX:
		p.wx = v
	}
}

// Tick advances the pixel engine by the given number of dots.
func (p *PPU) Tick(cycles int) {
	for ; cycles > 0; cycles-- {
		p.step()
	}
}

func (p *PPU) step() {
	if !p.enabled() {
		p.offDots++
		if p.offDots == CyclesPerFrame {
			p.offDots = 0
			fillWhite(p.back)
			p.publish()
		}
		return
	}

	p.dot++
	switch {
	case p.mode == ModeOAMScan && p.dot == oamScanDots:
		p.scanOAM()
		p.drawing = p.drawingDots()
		p.setMode(ModeDrawing)
	case p.mode == ModeDrawing && p.dot == oamScanDots+p.drawing:
		p.renderLine()
		p.setMode(ModeHBlank)
	case p.dot == DotsPerLine:
		p.dot = 0
		p.ly++
		switch {
		case p.ly == Height:
			p.setMode(ModeVBlank)
			p.request(irq.VBlank)
			p.publish()
		case p.ly == Lines:
			p.ly = 0
			p.winLine = 0
			p.setMode(ModeOAMScan)
		case p.ly < Height:
			p.setMode(ModeOAMScan)
		}
		p.compareLYC()
	}
}

// drawingDots is the length of mode 3 for the current line.
func (p *PPU) drawingDots() int {
	n := minDrawingDots + int(p.scx%8) + 6*p.nSprites
	if p.windowOnLine() {
		n += 6
	}
	if n > maxDrawingDots {
		n = maxDrawingDots
	}
	return n
}

func (p *PPU) windowOnLine() bool {
	return p.lcdc&lcdcWindowEnable != 0 && p.lcdc&lcdcBGEnable != 0 &&
		p.ly >= p.wy && p.wx <= 166
}

func (p *PPU) setMode(m Mode) {
	if p.mode == m {
		return
	}
	p.mode = m
	switch m {
	case ModeHBlank:
		p.statRequest(statHBlankIRQ)
	case ModeVBlank:
		p.statRequest(statVBlankIRQ)
	case ModeOAMScan:
		p.statRequest(statOAMIRQ)
	}
}

func (p *PPU) compareLYC() {
	if p.ly != p.lyc {
		p.stat &^= statCoincidence
		return
	}
	if p.stat&statCoincidence != 0 {
		// only a new match raises the line
		return
	}
	p.stat |= statCoincidence
	p.statRequest(statLYCIRQ)
}

func (p *PPU) statRequest(source byte) {
	if p.stat&source != 0 {
		p.request(irq.LCDStat)
	}
}

func (p *PPU) request(s irq.Source) {
	if p.req != nil {
		p.req(s)
	}
}

func (p *PPU) publish() {
	p.back, p.front = p.front, p.back
	copy(p.back, p.front)
	p.ready = true
}

func fillWhite(buf []byte) {
	for i := range buf {
		buf[i] = 0xFF
	}
}
