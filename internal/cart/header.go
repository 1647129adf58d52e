package cart

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
)

const (
	offLogo           = 0x0104
	offTitle          = 0x0134
	offCGBFlag        = 0x0143
	offNewLicensee    = 0x0144
	offSGBFlag        = 0x0146
	offCartType       = 0x0147
	offROMSize        = 0x0148
	offRAMSize        = 0x0149
	offDestination    = 0x014A
	offOldLicensee    = 0x014B
	offROMVersion     = 0x014C
	offHeaderChecksum = 0x014D
	offGlobalChecksum = 0x014E

	headerEnd = 0x014F
)

var (
	// ErrROMTooSmall is returned for images that cannot hold a header.
	ErrROMTooSmall = errors.New("cartridge image too small to contain a header")
	// ErrUnsupportedCartridge is returned for controller type bytes with no
	// bank controller implementation.
	ErrUnsupportedCartridge = errors.New("unsupported cartridge type")
)

var nintendoLogo = [48]byte{
	0xCE, 0xED, 0x66, 0x66, 0xCC, 0x0D, 0x00, 0x0B, 0x03, 0x73, 0x00, 0x83, 0x00, 0x0C, 0x00, 0x0D,
	0x00, 0x08, 0x11, 0x1F, 0x88, 0x89, 0x00, 0x0E, 0xDC, 0xCC, 0x6E, 0xE6, 0xDD, 0xDD, 0xD9, 0x99,
	0xBB, 0xBB, 0x67, 0x63, 0x6E, 0x0E, 0xEC, 0xCC, 0xDD, 0xDC, 0x99, 0x9F, 0xBB, 0xB9, 0x33, 0x3E,
}

// Controller is the bank controller family selected by the type byte.
type Controller int

const (
	Unknown Controller = iota
	ROMOnlyController
	MBC1Controller
	MBC2Controller
	MBC3Controller
	MBC5Controller
)

func (c Controller) String() string {
	switch c {
	case ROMOnlyController:
		return "ROM ONLY"
	case MBC1Controller:
		return "MBC1"
	case MBC2Controller:
		return "MBC2"
	case MBC3Controller:
		return "MBC3"
	case MBC5Controller:
		return "MBC5"
	}
	return "unknown"
}

type cartType struct {
	ctrl    Controller
	battery bool
}

// cartTypes lists every type byte we can run. RTC (0x0F, 0x10) is accepted
// as plain MBC3; the clock registers read back as 0xFF.
var cartTypes = map[byte]cartType{
	0x00: {ROMOnlyController, false},
	0x08: {ROMOnlyController, false},
	0x09: {ROMOnlyController, true},
	0x01: {MBC1Controller, false},
	0x02: {MBC1Controller, false},
	0x03: {MBC1Controller, true},
	0x05: {MBC2Controller, false},
	0x06: {MBC2Controller, true},
	0x0F: {MBC3Controller, true},
	0x10: {MBC3Controller, true},
	0x11: {MBC3Controller, false},
	0x12: {MBC3Controller, false},
	0x13: {MBC3Controller, true},
	0x19: {MBC5Controller, false},
	0x1A: {MBC5Controller, false},
	0x1B: {MBC5Controller, true},
	0x1C: {MBC5Controller, false},
	0x1D: {MBC5Controller, false},
	0x1E: {MBC5Controller, true},
}

type Header struct {
	Title          string // trimmed ASCII
	CGBFlag        byte
	NewLicensee    string // valid when OldLicensee == 0x33
	SGBFlag        byte
	CartType       byte
	ROMSizeCode    byte
	RAMSizeCode    byte
	Destination    byte
	OldLicensee    byte
	ROMVersion     byte
	HeaderChecksum byte
	GlobalChecksum uint16

	// decoded
	Controller   Controller
	Battery      bool
	ROMSizeBytes int
	ROMBanks     int
	RAMSizeBytes int
	LogoOK       bool
}

// ParseHeader decodes the header at 0x0100–0x014F. Unknown controller types
// are not an error here; New rejects them.
func ParseHeader(rom []byte) (*Header, error) {
	if len(rom) < headerEnd+1 {
		return nil, fmt.Errorf("%w: %d bytes", ErrROMTooSmall, len(rom))
	}

	h := &Header{
		Title:          strings.TrimRight(string(rom[offTitle:offCGBFlag+1]), "\x00"),
		CGBFlag:        rom[offCGBFlag],
		NewLicensee:    string(rom[offNewLicensee : offNewLicensee+2]),
		SGBFlag:        rom[offSGBFlag],
		CartType:       rom[offCartType],
		ROMSizeCode:    rom[offROMSize],
		RAMSizeCode:    rom[offRAMSize],
		Destination:    rom[offDestination],
		OldLicensee:    rom[offOldLicensee],
		ROMVersion:     rom[offROMVersion],
		HeaderChecksum: rom[offHeaderChecksum],
		GlobalChecksum: binary.BigEndian.Uint16(rom[offGlobalChecksum : offGlobalChecksum+2]),
		LogoOK:         string(rom[offLogo:offLogo+len(nintendoLogo)]) == string(nintendoLogo[:]),
	}
	// CGB titles use the last byte as a flag
	if h.CGBFlag&0x80 != 0 {
		h.Title = strings.TrimRight(string(rom[offTitle:offCGBFlag]), "\x00")
	}

	if ct, ok := cartTypes[h.CartType]; ok {
		h.Controller = ct.ctrl
		h.Battery = ct.battery
	}
	h.ROMSizeBytes, h.ROMBanks = decodeROMSize(h.ROMSizeCode)
	h.RAMSizeBytes = decodeRAMSize(h.RAMSizeCode)
	if h.Controller == MBC2Controller {
		h.RAMSizeBytes = mbc2RAMSize
	}
	return h, nil
}

// CartTypeString describes the type byte for logs.
func (h *Header) CartTypeString() string {
	s := h.Controller.String()
	if h.Controller == Unknown {
		return fmt.Sprintf("unknown (%#02x)", h.CartType)
	}
	if h.Battery {
		s += "+BATTERY"
	}
	return s
}

func HeaderChecksumOK(rom []byte) bool {
	if len(rom) <= offHeaderChecksum {
		return false
	}
	var sum byte
	for addr := offTitle; addr < offHeaderChecksum; addr++ {
		sum = sum - rom[addr] - 1
	}
	return sum == rom[offHeaderChecksum]
}

func decodeROMSize(code byte) (size, banks int) {
	switch {
	case code <= 0x08:
		banks = 2 << code
	case code == 0x52:
		banks = 72
	case code == 0x53:
		banks = 80
	case code == 0x54:
		banks = 96
	default:
		return 0, 0
	}
	return banks * romBankSize, banks
}

func decodeRAMSize(code byte) int {
	switch code {
	case 0x01:
		return 2 * 1024
	case 0x02:
		return 8 * 1024
	case 0x03:
		return 32 * 1024
	case 0x04:
		return 128 * 1024
	case 0x05:
		return 64 * 1024
	default:
		return 0
	}
}
