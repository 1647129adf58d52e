package cart

// ROMOnly is a 32KiB cartridge without a bank controller. Some carry up to
// 8KiB of RAM that is always enabled.
type ROMOnly struct {
	banked
}

func NewROMOnly(rom []byte, ramSize int) *ROMOnly {
	return &ROMOnly{banked: newBanked(rom, ramSize)}
}

func (c *ROMOnly) Read(addr uint16) byte {
	switch {
	case addr < 0x8000:
		if int(addr) < len(c.rom) {
			return c.rom[addr]
		}
		return 0xFF
	case addr >= 0xA000 && addr <= 0xBFFF:
		return c.readRAM(0, addr)
	}
	return 0xFF
}

func (c *ROMOnly) Write(addr uint16, value byte) {
	// no controller: ROM-area writes are dropped
	if addr >= 0xA000 && addr <= 0xBFFF {
		c.writeRAM(0, addr, value)
	}
}
