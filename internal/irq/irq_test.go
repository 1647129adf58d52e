package irq

import "testing"

func TestPriorityOrder(t *testing.T) {
	var c Controller
	c.WriteIE(0x1F)
	c.Request(Joypad)
	c.Request(Timer)
	c.Request(VBlank)

	want := []Source{VBlank, Timer, Joypad}
	for i, w := range want {
		s, ok := c.Acknowledge()
		if !ok {
			t.Fatalf("step %d: nothing pending, want %v", i, w)
		}
		if s != w {
			t.Fatalf("step %d: got %v want %v", i, s, w)
		}
	}
	if _, ok := c.Acknowledge(); ok {
		t.Fatalf("expected no pending interrupt after acknowledging all")
	}
}

func TestDisabledSourcesAreNotPending(t *testing.T) {
	var c Controller
	c.WriteIE(1 << Timer)
	c.Request(VBlank)
	if c.Pending() != 0 {
		t.Fatalf("VBlank requested but not enabled should not be pending, got %02X", c.Pending())
	}
	c.Request(Timer)
	if s, ok := c.Highest(); !ok || s != Timer {
		t.Fatalf("Highest got %v/%v want timer", s, ok)
	}
	// VBlank request survives acknowledging timer
	c.Acknowledge()
	if c.ReadIF()&0x01 == 0 {
		t.Fatalf("VBlank request bit cleared by unrelated acknowledge")
	}
}

func TestIFRegisterUpperBits(t *testing.T) {
	var c Controller
	c.WriteIF(0x3F)
	if got := c.ReadIF(); got != 0xFF {
		t.Fatalf("IF read got %02X want FF", got)
	}
	c.WriteIF(0x00)
	if got := c.ReadIF(); got != 0xE0 {
		t.Fatalf("IF read got %02X want E0", got)
	}
}

func TestVectors(t *testing.T) {
	tests := []struct {
		s    Source
		want uint16
	}{
		{VBlank, 0x40}, {LCDStat, 0x48}, {Timer, 0x50}, {Serial, 0x58}, {Joypad, 0x60},
	}
	for _, tt := range tests {
		if got := tt.s.Vector(); got != tt.want {
			t.Errorf("%v vector got %04X want %04X", tt.s, got, tt.want)
		}
	}
}
