package cart

const mbc2RAMSize = 512

// MBC2 has 16 ROM banks and 512 half-bytes of built-in RAM. Address bit 8
// decides whether a 0000-3FFF write is a RAM enable or a ROM bank select.
type MBC2 struct {
	banked

	romBank    byte
	ramEnabled bool
}

func NewMBC2(rom []byte) *MBC2 {
	return &MBC2{banked: newBanked(rom, mbc2RAMSize), romBank: 1}
}

func (m *MBC2) Read(addr uint16) byte {
	switch {
	case addr < 0x4000:
		return m.readROM(0, addr)
	case addr < 0x8000:
		return m.readROM(int(m.romBank), addr-0x4000)
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnabled {
			return 0xFF
		}
		// only the low nibble exists; the window mirrors every 512 bytes
		return 0xF0 | m.ram[(addr-0xA000)&0x01FF]&0x0F
	}
	return 0xFF
}

func (m *MBC2) Write(addr uint16, value byte) {
	switch {
	case addr < 0x4000:
		if addr&0x0100 == 0 {
			m.ramEnabled = value&0x0F == 0x0A
			return
		}
		m.romBank = value & 0x0F
		if m.romBank == 0 {
			m.romBank = 1
		}
	case addr >= 0xA000 && addr <= 0xBFFF:
		if m.ramEnabled {
			m.ram[(addr-0xA000)&0x01FF] = value & 0x0F
		}
	}
}
