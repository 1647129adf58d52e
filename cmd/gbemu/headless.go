package main

import (
	"fmt"
	"hash/crc32"
	"image"
	"image/png"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/FabianRolfMatthiasNoll/GameBoyCore/internal/cart"
	"github.com/FabianRolfMatthiasNoll/GameBoyCore/internal/emu"
	"github.com/FabianRolfMatthiasNoll/GameBoyCore/internal/ppu"
)

func runHeadless(m *emu.Machine, frames int, pngPath, expectCRC string) error {
	if frames <= 0 {
		frames = 1
	}

	start := time.Now()
	for i := 0; i < frames; i++ {
		if err := m.Frame(); err != nil {
			return err
		}
	}
	dur := time.Since(start)

	fb := m.Image()
	crc := crc32.ChecksumIEEE(fb)
	fps := float64(frames) / dur.Seconds()

	log.Printf("headless: frames=%d elapsed=%s fps=%.2f fb_crc32=%08x",
		frames, dur.Truncate(time.Millisecond), fps, crc)

	if pngPath != "" {
		if err := saveFramePNG(fb, pngPath); err != nil {
			return fmt.Errorf("write PNG: %w", err)
		}
		log.Printf("wrote %s", pngPath)
	}

	if expectCRC != "" {
		// allow with/without 0x, upper/lowercase
		want := strings.TrimPrefix(strings.ToLower(expectCRC), "0x")
		got := fmt.Sprintf("%08x", crc)
		if got != want {
			return fmt.Errorf("checksum mismatch: got %s, want %s", got, want)
		}
	}
	return nil
}

func saveFramePNG(pix []byte, path string) error {
	img := &image.RGBA{
		Pix:    make([]byte, len(pix)),
		Stride: 4 * ppu.Width,
		Rect:   image.Rect(0, 0, ppu.Width, ppu.Height),
	}
	copy(img.Pix, pix)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

func printHeader(w io.Writer, h *cart.Header, checksumOK bool) {
	fmt.Fprintf(w, "title:       %s\n", h.Title)
	fmt.Fprintf(w, "type:        %s (%#02x)\n", h.CartTypeString(), h.CartType)
	fmt.Fprintf(w, "rom:         %d KiB, %d banks\n", h.ROMSizeBytes/1024, h.ROMBanks)
	fmt.Fprintf(w, "ram:         %d bytes\n", h.RAMSizeBytes)
	fmt.Fprintf(w, "cgb flag:    %#02x\n", h.CGBFlag)
	fmt.Fprintf(w, "licensee:    old=%#02x new=%q\n", h.OldLicensee, h.NewLicensee)
	fmt.Fprintf(w, "version:     %d\n", h.ROMVersion)
	fmt.Fprintf(w, "logo:        %t\n", h.LogoOK)
	fmt.Fprintf(w, "checksum:    %#02x ok=%t\n", h.HeaderChecksum, checksumOK)
}
