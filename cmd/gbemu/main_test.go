package main

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/FabianRolfMatthiasNoll/GameBoyCore/internal/cart"
	"github.com/FabianRolfMatthiasNoll/GameBoyCore/internal/emu"
	"github.com/FabianRolfMatthiasNoll/GameBoyCore/internal/ppu"
)

func idleROM() []byte {
	rom := make([]byte, 0x8000)
	copy(rom[0x0134:], "HEADLESS")
	var sum byte
	for addr := 0x0134; addr < 0x014D; addr++ {
		sum = sum - rom[addr] - 1
	}
	rom[0x014D] = sum
	rom[0x0100], rom[0x0101] = 0x18, 0xFE
	return rom
}

func TestSavPath(t *testing.T) {
	tests := map[string]string{
		"roms/tetris.gb": "roms/tetris.sav",
		"roms/TETRIS.GB": "roms/TETRIS.sav",
		"roms/image.bin": "roms/image.sav",
		"roms/noext":     "roms/noext.sav",
	}
	for in, want := range tests {
		if got := savPath(in); got != want {
			t.Errorf("savPath(%q)=%q want %q", in, got, want)
		}
	}
}

func TestRunHeadless(t *testing.T) {
	m := emu.New(emu.DefaultConfig())
	if err := m.LoadCartridge(idleROM()); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(t.TempDir(), "frame.png")
	if err := runHeadless(m, 2, out, ""); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != ppu.Width || b.Dy() != ppu.Height {
		t.Fatalf("png size %v", b)
	}

	err = runHeadless(m, 1, "", "0x00000000")
	if err == nil || !strings.Contains(err.Error(), "checksum mismatch") {
		t.Fatalf("expected checksum mismatch, got %v", err)
	}
}

func TestPrintHeader(t *testing.T) {
	rom := idleROM()
	h, err := cart.ParseHeader(rom)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	printHeader(&buf, h, cart.HeaderChecksumOK(rom))
	s := buf.String()
	for _, want := range []string{"HEADLESS", "ROM ONLY", "ok=true"} {
		if !strings.Contains(s, want) {
			t.Errorf("header output missing %q:\n%s", want, s)
		}
	}
}
