package cart

import "testing"

func TestMBC1_ROMBanking(t *testing.T) {
	m := NewMBC1(buildROM("", 0x01, 0x02, 0x00, 128*1024), 0)

	if got := m.Read(0x4000); got != 0x01 {
		t.Fatalf("bank1 read got %02X want 01", got)
	}
	m.Write(0x2000, 0x03)
	if got := m.Read(0x4000); got != 0x03 {
		t.Fatalf("bank3 read got %02X want 03", got)
	}
	m.Write(0x2000, 0x00)
	if got := m.Read(0x4000); got != 0x01 {
		t.Fatalf("bank0->1 remap failed: got %02X", got)
	}
	// 8 banks: bank 9 wraps to 1
	m.Write(0x2000, 0x09)
	if got := m.Read(0x4000); got != 0x01 {
		t.Fatalf("bank wrap got %02X want 01", got)
	}
}

func TestMBC1_HighBits(t *testing.T) {
	m := NewMBC1(buildROM("", 0x01, 0x06, 0x00, 2*1024*1024), 0)

	m.Write(0x4000, 0x01)
	m.Write(0x2000, 0x00)
	// 0x20 is not reachable; low bits fix up to 0x21
	if got := m.Read(0x4000); got != 0x21 {
		t.Fatalf("bank got %02X want 21", got)
	}
	if got := m.Read(0x0000); got != 0x00 {
		t.Fatalf("mode0 low area got %02X want 00", got)
	}
	m.Write(0x6000, 0x01)
	if got := m.Read(0x0000); got != 0x20 {
		t.Fatalf("mode1 low area got %02X want 20", got)
	}
}

func TestMBC1_RAMBanking_Mode1(t *testing.T) {
	m := NewMBC1(make([]byte, 128*1024), 32*1024)

	m.Write(0x0000, 0x0A)
	m.Write(0x6000, 0x01)
	m.Write(0x4000, 0x02)
	m.Write(0xA000, 0x77)
	if got := m.Read(0xA000); got != 0x77 {
		t.Fatalf("RAM bank2 RW failed: got %02X", got)
	}
	m.Write(0x4000, 0x00)
	if got := m.Read(0xA000); got != 0x00 {
		t.Fatalf("RAM bank0 should be untouched: got %02X", got)
	}
}

func TestMBC1_RAMDisabled(t *testing.T) {
	m := NewMBC1(make([]byte, 64*1024), 8*1024)

	m.Write(0xA000, 0x12)
	if got := m.Read(0xA000); got != 0xFF {
		t.Fatalf("disabled RAM read got %02X want FF", got)
	}
	m.Write(0x0000, 0x0A)
	if got := m.Read(0xA000); got != 0x00 {
		t.Fatalf("write while disabled leaked: got %02X", got)
	}
	m.Write(0x0000, 0x00)
	if got := m.Read(0xA000); got != 0xFF {
		t.Fatalf("RAM should be disabled again: got %02X", got)
	}
}

func TestMBC1_TruncatedImage(t *testing.T) {
	// 0x6000 bytes: bank 1 is half present
	m := NewMBC1(buildROM("", 0x01, 0x00, 0x00, 0x6000), 0)

	if got := m.Read(0x4000); got != 0x01 {
		t.Fatalf("partial bank 1 read got %02X want 01", got)
	}
	if got := m.Read(0x6000); got != 0xFF {
		t.Fatalf("past the image got %02X want FF", got)
	}
	m.Write(0x2000, 0x03)
	if got := m.Read(0x4000); got != 0x01 {
		t.Fatalf("bank 3 should wrap to bank 1, got %02X", got)
	}
}
