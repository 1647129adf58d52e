package cart

// MBC1 banks up to 2MiB of ROM and 32KiB of RAM.
//
//	0000-1FFF  RAM enable (0x0A in the low nibble)
//	2000-3FFF  ROM bank, low 5 bits (0 selects 1)
//	4000-5FFF  two extra bits: RAM bank, or ROM bank bits 5-6
//	6000-7FFF  banking mode
type MBC1 struct {
	banked

	bankLow    byte
	bankHigh   byte
	ramEnabled bool
	mode       byte // 1: bankHigh also applies to 0000-3FFF and RAM
}

func NewMBC1(rom []byte, ramSize int) *MBC1 {
	return &MBC1{banked: newBanked(rom, ramSize), bankLow: 1}
}

func (m *MBC1) Read(addr uint16) byte {
	switch {
	case addr < 0x4000:
		bank := 0
		if m.mode == 1 {
			bank = int(m.bankHigh) << 5
		}
		return m.readROM(bank, addr)
	case addr < 0x8000:
		return m.readROM(m.romBank(), addr-0x4000)
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnabled {
			return 0xFF
		}
		return m.readRAM(m.ramBank(), addr)
	}
	return 0xFF
}

func (m *MBC1) Write(addr uint16, value byte) {
	switch {
	case addr < 0x2000:
		m.ramEnabled = value&0x0F == 0x0A
	case addr < 0x4000:
		m.bankLow = value & 0x1F
		if m.bankLow == 0 {
			m.bankLow = 1
		}
	case addr < 0x6000:
		m.bankHigh = value & 0x03
	case addr < 0x8000:
		m.mode = value & 0x01
	case addr >= 0xA000 && addr <= 0xBFFF:
		if m.ramEnabled {
			m.writeRAM(m.ramBank(), addr, value)
		}
	}
}

// romBank is the bank mapped at 4000-7FFF. The 0->1 fixup only looks at the
// low five bits, so 0x20, 0x40 and 0x60 map to 0x21, 0x41 and 0x61.
func (m *MBC1) romBank() int {
	return int(m.bankHigh)<<5 | int(m.bankLow)
}

func (m *MBC1) ramBank() int {
	if m.mode == 1 {
		return int(m.bankHigh)
	}
	return 0
}
