package cart

// MBC3 banks up to 2MiB of ROM and 32KiB of RAM. The real-time clock is not
// emulated: selecting one of its registers (0x08-0x0C) maps nothing, so
// reads return 0xFF and writes are dropped.
type MBC3 struct {
	banked

	ramEnabled bool
	romBank    byte // 7 bits, 0 selects 1
	ramSelect  byte
}

func NewMBC3(rom []byte, ramSize int) *MBC3 {
	return &MBC3{banked: newBanked(rom, ramSize), romBank: 1}
}

func (m *MBC3) Read(addr uint16) byte {
	switch {
	case addr < 0x4000:
		return m.readROM(0, addr)
	case addr < 0x8000:
		return m.readROM(int(m.romBank), addr-0x4000)
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnabled || m.ramSelect > 0x03 {
			return 0xFF
		}
		return m.readRAM(int(m.ramSelect), addr)
	}
	return 0xFF
}

func (m *MBC3) Write(addr uint16, value byte) {
	switch {
	case addr < 0x2000:
		m.ramEnabled = value&0x0F == 0x0A
	case addr < 0x4000:
		m.romBank = value & 0x7F
		if m.romBank == 0 {
			m.romBank = 1
		}
	case addr < 0x6000:
		m.ramSelect = value
	case addr < 0x8000:
		// clock latch
	case addr >= 0xA000 && addr <= 0xBFFF:
		if m.ramEnabled && m.ramSelect <= 0x03 {
			m.writeRAM(int(m.ramSelect), addr, value)
		}
	}
}
