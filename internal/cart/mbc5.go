package cart

// MBC5 banks up to 8MiB of ROM and 128KiB of RAM. Unlike the older
// controllers, bank 0 can be mapped at 4000-7FFF.
type MBC5 struct {
	banked

	romBank    uint16 // 9 bits
	ramBank    byte   // 4 bits
	ramEnabled bool
}

func NewMBC5(rom []byte, ramSize int) *MBC5 {
	return &MBC5{banked: newBanked(rom, ramSize), romBank: 1}
}

func (m *MBC5) Read(addr uint16) byte {
	switch {
	case addr < 0x4000:
		return m.readROM(0, addr)
	case addr < 0x8000:
		return m.readROM(int(m.romBank), addr-0x4000)
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnabled {
			return 0xFF
		}
		return m.readRAM(int(m.ramBank), addr)
	}
	return 0xFF
}

func (m *MBC5) Write(addr uint16, value byte) {
	switch {
	case addr < 0x2000:
		m.ramEnabled = value&0x0F == 0x0A
	case addr < 0x3000:
		m.romBank = m.romBank&0x100 | uint16(value)
	case addr < 0x4000:
		m.romBank = m.romBank&0x0FF | uint16(value&0x01)<<8
	case addr < 0x6000:
		m.ramBank = value & 0x0F
	case addr >= 0xA000 && addr <= 0xBFFF:
		if m.ramEnabled {
			m.writeRAM(int(m.ramBank), addr, value)
		}
	}
}
