// Package bus decodes the 16-bit address space and owns the components that
// hang off it. It advances the timer and pixel engine when told how many
// cycles the CPU spent.
package bus

import (
	"io"

	"github.com/FabianRolfMatthiasNoll/GameBoyCore/internal/cart"
	"github.com/FabianRolfMatthiasNoll/GameBoyCore/internal/irq"
	"github.com/FabianRolfMatthiasNoll/GameBoyCore/internal/joypad"
	"github.com/FabianRolfMatthiasNoll/GameBoyCore/internal/ppu"
	"github.com/FabianRolfMatthiasNoll/GameBoyCore/internal/timer"
)

const (
	AddrSB  = 0xFF01
	AddrSC  = 0xFF02
	AddrIF  = 0xFF0F
	AddrDMA = 0xFF46
	AddrIE  = 0xFFFF

	// DMACycles is what a 160 byte OAM transfer costs the CPU.
	DMACycles = 640
)

type Bus struct {
	cart cart.Cartridge
	wram [0x2000]byte
	hram [0x7F]byte
	// FF00-FF7F registers without a model (sound, FF50) are kept as
	// plain storage
	io [0x80]byte

	ints   irq.Controller
	timer  *timer.Timer
	joypad *joypad.Joypad
	ppu    *ppu.PPU

	sb, sc byte
	serial io.Writer

	dma   byte
	stall int
}

// New wires a bus around the cartridge. A nil cartridge reads as open bus.
func New(c cart.Cartridge) *Bus {
	b := &Bus{cart: c}
	b.timer = timer.New(b.ints.Request)
	b.joypad = joypad.New(b.ints.Request)
	b.ppu = ppu.New(b.ints.Request)
	return b
}

func (b *Bus) PPU() *ppu.PPU               { return b.ppu }
func (b *Bus) Timer() *timer.Timer         { return b.timer }
func (b *Bus) Joypad() *joypad.Joypad      { return b.joypad }
func (b *Bus) Interrupts() *irq.Controller { return &b.ints }

// SetSerialWriter receives every byte shifted out of the serial port. Test
// ROMs print their results this way.
func (b *Bus) SetSerialWriter(w io.Writer) { b.serial = w }

// Tick advances the timer and pixel engine.
func (b *Bus) Tick(cycles int) {
	b.timer.Tick(cycles)
	b.ppu.Tick(cycles)
}

// TakeStall returns and clears the cycles owed for OAM DMA started since the
// last call.
func (b *Bus) TakeStall() int {
	s := b.stall
	b.stall = 0
	return s
}

func (b *Bus) Read(addr uint16) byte {
	switch {
	case addr < 0x8000:
		return b.cartRead(addr)
	case addr < 0xA000:
		return b.ppu.ReadVRAM(addr)
	case addr < 0xC000:
		return b.cartRead(addr)
	case addr < 0xE000:
		return b.wram[addr-0xC000]
	case addr < 0xFE00:
		return b.wram[addr-0xE000]
	case addr < 0xFEA0:
		return b.ppu.ReadOAM(addr)
	case addr < 0xFF00:
		return 0xFF
	case addr < 0xFF80:
		return b.readIO(addr)
	case addr < 0xFFFF:
		return b.hram[addr-0xFF80]
	}
	return b.ints.ReadIE()
}

func (b *Bus) Write(addr uint16, v byte) {
	switch {
	case addr < 0x8000:
		if b.cart != nil {
			b.cart.Write(addr, v)
		}
	case addr < 0xA000:
		b.ppu.WriteVRAM(addr, v)
	case addr < 0xC000:
		if b.cart != nil {
			b.cart.Write(addr, v)
		}
	case addr < 0xE000:
		b.wram[addr-0xC000] = v
	case addr < 0xFE00:
		b.wram[addr-0xE000] = v
	case addr < 0xFEA0:
		b.ppu.WriteOAM(addr, v)
	case addr < 0xFF00:
	case addr < 0xFF80:
		b.writeIO(addr, v)
	case addr < 0xFFFF:
		b.hram[addr-0xFF80] = v
	default:
		b.ints.WriteIE(v)
	}
}

func (b *Bus) Read16(addr uint16) uint16 {
	return uint16(b.Read(addr)) | uint16(b.Read(addr+1))<<8
}

func (b *Bus) Write16(addr uint16, v uint16) {
	b.Write(addr, byte(v))
	b.Write(addr+1, byte(v>>8))
}

func (b *Bus) cartRead(addr uint16) byte {
	if b.cart == nil {
		return 0xFF
	}
	return b.cart.Read(addr)
}

func (b *Bus) readIO(addr uint16) byte {
	switch {
	case addr == joypad.Addr:
		return b.joypad.Read()
	case addr == AddrSB:
		return b.sb
	case addr == AddrSC:
		return 0x7E | b.sc
	case addr >= timer.AddrDIV && addr <= timer.AddrTAC:
		return b.timer.Read(addr)
	case addr == AddrIF:
		return b.ints.ReadIF()
	case addr == AddrDMA:
		return b.dma
	case addr >= ppu.AddrLCDC && addr <= ppu.AddrWX:
		return b.ppu.Read(addr)
	case addr >= 0xFF10 && addr <= 0xFF3F, addr == 0xFF50:
		return b.io[addr-0xFF00]
	}
	return 0xFF
}

func (b *Bus) writeIO(addr uint16, v byte) {
	switch {
	case addr == joypad.Addr:
		b.joypad.Write(v)
	case addr == AddrSB:
		b.sb = v
	case addr == AddrSC:
		b.sc = v & 0x81
		if v&0x80 != 0 {
			b.transfer()
		}
	case addr >= timer.AddrDIV && addr <= timer.AddrTAC:
		b.timer.Write(addr, v)
	case addr == AddrIF:
		b.ints.WriteIF(v)
	case addr == AddrDMA:
		b.dma = v
		b.stall += b.DMA(v)
	case addr >= ppu.AddrLCDC && addr <= ppu.AddrWX:
		b.ppu.Write(addr, v)
	case addr >= 0xFF10 && addr <= 0xFF3F, addr == 0xFF50:
		b.io[addr-0xFF00] = v
	}
}

// transfer completes a serial exchange at once. Nothing is connected, so
// the byte shifted in is 0xFF.
func (b *Bus) transfer() {
	if b.serial != nil {
		// the port has no error path; a failing sink only loses output
		_, _ = b.serial.Write([]byte{b.sb})
	}
	b.sb = 0xFF
	b.sc &^= 0x80
	b.ints.Request(irq.Serial)
}

// DMA copies 160 bytes from src<<8 into OAM and returns the cycles the
// transfer takes. Sources above 0xDF read the WRAM echo.
func (b *Bus) DMA(src byte) int {
	if src > 0xDF {
		src -= 0x20
	}
	base := uint16(src) << 8
	for i := 0; i < 0xA0; i++ {
		addr := base + uint16(i)
		var v byte
		if addr >= 0x8000 && addr < 0xA000 {
			v = b.ppu.RawVRAM(addr)
		} else {
			v = b.Read(addr)
		}
		b.ppu.WriteOAMDirect(i, v)
	}
	return DMACycles
}
