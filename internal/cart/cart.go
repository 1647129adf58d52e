package cart

import "fmt"

const (
	romBankSize = 0x4000
	ramBankSize = 0x2000
)

// Cartridge is what the bus needs for ROM (0x0000–0x7FFF) and external RAM
// (0xA000–0xBFFF). Writes to the ROM area are bank controller commands.
type Cartridge interface {
	Read(addr uint16) byte
	Write(addr uint16, value byte)
}

// BatteryBacked is implemented by cartridges with external RAM that the host
// may persist between sessions (.sav files).
type BatteryBacked interface {
	SaveRAM() []byte
	LoadRAM(data []byte)
}

// New parses the header and builds the matching bank controller.
func New(rom []byte) (Cartridge, *Header, error) {
	h, err := ParseHeader(rom)
	if err != nil {
		return nil, nil, err
	}
	switch h.Controller {
	case ROMOnlyController:
		return NewROMOnly(rom, h.RAMSizeBytes), h, nil
	case MBC1Controller:
		return NewMBC1(rom, h.RAMSizeBytes), h, nil
	case MBC2Controller:
		return NewMBC2(rom), h, nil
	case MBC3Controller:
		return NewMBC3(rom, h.RAMSizeBytes), h, nil
	case MBC5Controller:
		return NewMBC5(rom, h.RAMSizeBytes), h, nil
	}
	return nil, h, fmt.Errorf("%w: type byte %#02x", ErrUnsupportedCartridge, h.CartType)
}

// banked holds the ROM and RAM images shared by every controller.
type banked struct {
	rom []byte
	ram []byte
}

func newBanked(rom []byte, ramSize int) banked {
	b := banked{rom: rom}
	if ramSize > 0 {
		b.ram = make([]byte, ramSize)
	}
	return b
}

// romBanks counts a partial last bank as a bank; its missing tail reads 0xFF.
func (b *banked) romBanks() int {
	n := (len(b.rom) + romBankSize - 1) / romBankSize
	if n == 0 {
		n = 1
	}
	return n
}

// readROM returns a byte from the given bank. Bank numbers wrap to the size
// of the image, as the unused high bank lines are not connected.
func (b *banked) readROM(bank int, off uint16) byte {
	i := (bank%b.romBanks())*romBankSize + int(off)
	if i < len(b.rom) {
		return b.rom[i]
	}
	return 0xFF
}

func (b *banked) ramIndex(bank int, addr uint16) (int, bool) {
	if len(b.ram) == 0 {
		return 0, false
	}
	banks := len(b.ram) / ramBankSize
	if banks == 0 {
		// 2KiB parts mirror through the window
		return int(addr-0xA000) % len(b.ram), true
	}
	return (bank%banks)*ramBankSize + int(addr-0xA000), true
}

func (b *banked) readRAM(bank int, addr uint16) byte {
	if i, ok := b.ramIndex(bank, addr); ok {
		return b.ram[i]
	}
	return 0xFF
}

func (b *banked) writeRAM(bank int, addr uint16, v byte) {
	if i, ok := b.ramIndex(bank, addr); ok {
		b.ram[i] = v
	}
}

func (b *banked) SaveRAM() []byte {
	if len(b.ram) == 0 {
		return nil
	}
	out := make([]byte, len(b.ram))
	copy(out, b.ram)
	return out
}

func (b *banked) LoadRAM(data []byte) {
	if len(b.ram) == 0 || len(data) == 0 {
		return
	}
	copy(b.ram, data)
}
