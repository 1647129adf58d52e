package cart

import (
	"errors"
	"fmt"
	"testing"
)

// buildROM makes an image of the given size with a valid header checksum.
func buildROM(title string, cartType, romSizeCode, ramSizeCode byte, size int) []byte {
	rom := make([]byte, size)
	copy(rom[offLogo:], nintendoLogo[:])
	copy(rom[offTitle:offCGBFlag+1], title)
	rom[offNewLicensee], rom[offNewLicensee+1] = '0', '1'
	rom[offCartType] = cartType
	rom[offROMSize] = romSizeCode
	rom[offRAMSize] = ramSizeCode
	rom[offOldLicensee] = 0x33
	rom[offROMVersion] = 0x01

	var sum byte
	for addr := offTitle; addr < offHeaderChecksum; addr++ {
		sum = sum - rom[addr] - 1
	}
	rom[offHeaderChecksum] = sum

	// tag the first byte of every bank with its number
	for bank := 1; bank*romBankSize < size; bank++ {
		rom[bank*romBankSize] = byte(bank)
	}
	return rom
}

func TestParseHeader_Basic(t *testing.T) {
	rom := buildROM("TEST", 0x03, 0x01, 0x02, 64*1024)

	h, err := ParseHeader(rom)
	if err != nil {
		t.Fatalf("ParseHeader error: %v", err)
	}
	if h.Title != "TEST" {
		t.Fatalf("Title got %q want %q", h.Title, "TEST")
	}
	if h.Controller != MBC1Controller || !h.Battery {
		t.Fatalf("controller got %v battery=%v", h.Controller, h.Battery)
	}
	if got := h.CartTypeString(); got != "MBC1+BATTERY" {
		t.Fatalf("CartTypeString got %q", got)
	}
	if h.ROMSizeBytes != 64*1024 || h.ROMBanks != 4 {
		t.Fatalf("ROM size decode got %d bytes / %d banks", h.ROMSizeBytes, h.ROMBanks)
	}
	if h.RAMSizeBytes != 8*1024 {
		t.Fatalf("RAM size decode got %d", h.RAMSizeBytes)
	}
	if !h.LogoOK {
		t.Fatalf("LogoOK = false")
	}
	if !HeaderChecksumOK(rom) {
		t.Fatalf("HeaderChecksumOK = false, want true")
	}
}

func TestHeaderChecksum_Bad(t *testing.T) {
	rom := buildROM("TEST", 0x00, 0x00, 0x00, 32*1024)
	rom[offTitle] ^= 0xFF
	if HeaderChecksumOK(rom) {
		t.Fatalf("HeaderChecksumOK = true, want false after corruption")
	}
}

func TestParseHeader_ShortROM(t *testing.T) {
	_, err := ParseHeader(make([]byte, 0x140))
	if !errors.Is(err, ErrROMTooSmall) {
		t.Fatalf("got %v, want ErrROMTooSmall", err)
	}
}

func TestNew_SelectsController(t *testing.T) {
	cases := []struct {
		typ  byte
		want string
	}{
		{0x00, "*cart.ROMOnly"},
		{0x01, "*cart.MBC1"},
		{0x06, "*cart.MBC2"},
		{0x13, "*cart.MBC3"},
		{0x1B, "*cart.MBC5"},
	}
	for _, tc := range cases {
		c, _, err := New(buildROM("X", tc.typ, 0x01, 0x02, 64*1024))
		if err != nil {
			t.Fatalf("type %#02x: %v", tc.typ, err)
		}
		if got := fmt.Sprintf("%T", c); got != tc.want {
			t.Fatalf("type %#02x: got %s want %s", tc.typ, got, tc.want)
		}
	}
}

func TestNew_UnsupportedType(t *testing.T) {
	_, h, err := New(buildROM("HUC", 0xFF, 0x00, 0x00, 32*1024))
	if !errors.Is(err, ErrUnsupportedCartridge) {
		t.Fatalf("got %v, want ErrUnsupportedCartridge", err)
	}
	if h == nil || h.CartType != 0xFF {
		t.Fatalf("header should still be returned")
	}
}
