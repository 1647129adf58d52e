package term

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/FabianRolfMatthiasNoll/GameBoyCore/internal/emu"
	"github.com/FabianRolfMatthiasNoll/GameBoyCore/internal/ppu"
)

func solidFrame(r, g, b byte) []byte {
	img := make([]byte, ppu.Width*ppu.Height*4)
	for i := 0; i < len(img); i += 4 {
		img[i], img[i+1], img[i+2], img[i+3] = r, g, b, 0xFF
	}
	return img
}

func TestRender_SolidFrame(t *testing.T) {
	var r Renderer
	var out bytes.Buffer
	if err := r.Render(&out, solidFrame(0xC0, 0xC0, 0xC0), "status"); err != nil {
		t.Fatal(err)
	}
	s := out.String()
	if !strings.HasPrefix(s, "\x1b[H") {
		t.Fatalf("frame does not start at home")
	}
	if got := strings.Count(s, upperHalf); got != ppu.Width*ppu.Height/2 {
		t.Fatalf("cells=%d want %d", got, ppu.Width*ppu.Height/2)
	}
	// one fg and one bg change per row only
	if got := strings.Count(s, "\x1b[38;2;192;192;192m"); got != ppu.Height/2 {
		t.Fatalf("fg codes=%d want %d", got, ppu.Height/2)
	}
	if got := strings.Count(s, "\x1b[48;2;192;192;192m"); got != ppu.Height/2 {
		t.Fatalf("bg codes=%d want %d", got, ppu.Height/2)
	}
	if !strings.HasSuffix(s, "status") {
		t.Fatalf("status line missing")
	}
}

func TestRender_TopAndBottomPixels(t *testing.T) {
	img := solidFrame(0xFF, 0xFF, 0xFF)
	// pixel (0,1) black: bottom half of the first cell
	i := ppu.Width * 4
	img[i], img[i+1], img[i+2] = 0, 0, 0

	var r Renderer
	var out bytes.Buffer
	if err := r.Render(&out, img, ""); err != nil {
		t.Fatal(err)
	}
	want := "\x1b[H\x1b[38;2;255;255;255m\x1b[48;2;0;0;0m" + upperHalf + "\x1b[48;2;255;255;255m" + upperHalf
	if !strings.HasPrefix(out.String(), want) {
		t.Fatalf("first cells = %q", out.String()[:len(want)])
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		in  string
		n   int
		act Action
		key emu.Key
	}{
		{"\x1b[A", 3, ActionKey, emu.KeyUp},
		{"\x1b[B", 3, ActionKey, emu.KeyDown},
		{"\x1b[C", 3, ActionKey, emu.KeyRight},
		{"\x1b[D", 3, ActionKey, emu.KeyLeft},
		{"\x1bOA", 3, ActionKey, emu.KeyUp},
		{"\x1b[5~", 3, ActionNone, 0},
		{"z", 1, ActionKey, emu.KeyA},
		{"x", 1, ActionKey, emu.KeyB},
		{"\r", 1, ActionKey, emu.KeyStart},
		{" ", 1, ActionKey, emu.KeySelect},
		{"q", 1, ActionQuit, 0},
		{"\x03", 1, ActionQuit, 0},
		{"?", 1, ActionNone, 0},
		{"\x1b", 1, ActionNone, 0},
	}
	for _, tt := range tests {
		n, act, key := decode([]byte(tt.in))
		if n != tt.n || act != tt.act || (act == ActionKey && key != tt.key) {
			t.Errorf("decode(%q) = %d,%d,%v want %d,%d,%v", tt.in, n, act, key, tt.n, tt.act, tt.key)
		}
	}
	if n, act, _ := decode(nil); n != 0 || act != ActionNone {
		t.Errorf("decode(nil) = %d,%d", n, act)
	}
}

func TestHolds(t *testing.T) {
	h := newHolds(100 * time.Millisecond)
	t0 := time.Unix(1000, 0)

	if !h.press(emu.KeyA, t0) {
		t.Fatalf("first press not reported")
	}
	if h.press(emu.KeyA, t0.Add(50*time.Millisecond)) {
		t.Fatalf("repeat press reported as new")
	}
	if got := h.expired(t0.Add(120 * time.Millisecond)); len(got) != 0 {
		t.Fatalf("repeat did not extend hold: %v", got)
	}
	got := h.expired(t0.Add(150 * time.Millisecond))
	if len(got) != 1 || got[0] != emu.KeyA {
		t.Fatalf("expired=%v want [a]", got)
	}
	if !h.press(emu.KeyA, t0.Add(200*time.Millisecond)) {
		t.Fatalf("press after release not reported")
	}
}

func idleMachine(t *testing.T) *emu.Shared {
	t.Helper()
	rom := make([]byte, 0x8000)
	rom[0x0100], rom[0x0101] = 0x18, 0xFE
	m := emu.New(emu.DefaultConfig())
	if err := m.LoadCartridge(rom); err != nil {
		t.Fatal(err)
	}
	return emu.NewShared(m)
}

func TestRun_QuitKey(t *testing.T) {
	var out bytes.Buffer
	done := make(chan error, 1)
	go func() {
		done <- Run(context.Background(), idleMachine(t), strings.NewReader("zq"), &out)
	}()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Run did not stop on q")
	}
}

// idleReader behaves like a raw terminal with a read timeout.
type idleReader struct{}

func (idleReader) Read(p []byte) (int, error) {
	time.Sleep(5 * time.Millisecond)
	return 0, nil
}

func TestRun_Cancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	var out bytes.Buffer
	if err := Run(ctx, idleMachine(t), idleReader{}, &out); err != nil {
		t.Fatalf("Run: %v", err)
	}
}
