package ppu

import "testing"

type mockVRAM map[uint16]byte

func (m mockVRAM) Read(addr uint16) byte { return m[addr] }

func TestFIFO(t *testing.T) {
	var q fifo
	if q.Len() != 0 {
		t.Fatal("new fifo not empty")
	}
	if _, ok := q.Pop(); ok {
		t.Fatal("pop from empty should fail")
	}
	for i := 0; i < 16; i++ {
		if !q.Push(byte(i)) {
			t.Fatal("unexpected full")
		}
	}
	if q.Push(0) {
		t.Fatal("should be full")
	}
	for i := 0; i < 16; i++ {
		v, ok := q.Pop()
		if !ok {
			t.Fatal("unexpected empty")
		}
		if v != byte(i)&3 {
			t.Fatalf("got %d want %d", v, byte(i)&3)
		}
	}
}

func expectRow(t *testing.T, q *fifo, lo, hi byte) {
	t.Helper()
	if q.Len() != 8 {
		t.Fatalf("expected 8 pixels in fifo, got %d", q.Len())
	}
	for i := 0; i < 8; i++ {
		b := 7 - byte(i)
		want := ((hi>>b)&1)<<1 | ((lo >> b) & 1)
		if got, _ := q.Pop(); got != want {
			t.Fatalf("px %d got %d want %d", i, got, want)
		}
	}
}

func TestTileFetcherFetchesEightPixels(t *testing.T) {
	mem := mockVRAM{0x9800: 0, 0x8000: 0x55, 0x8001: 0x33}
	var q fifo
	f := newTileFetcher(mem, &q, 0x9800, true)
	f.Seek(0, 0)
	f.Fetch()
	expectRow(t, &q, 0x55, 0x33)
	if f.col != 1 {
		t.Fatalf("fetcher should advance a column, got %d", f.col)
	}
}

func TestTileFetcherSignedAddressing(t *testing.T) {
	// index 0xFF is tile -1, just below 0x9000
	rowAddr := uint16(0x8FF0) + 5*2
	mem := mockVRAM{0x9C00: 0xFF, rowAddr: 0xA5, rowAddr + 1: 0x5A}
	var q fifo
	f := newTileFetcher(mem, &q, 0x9C00, false)
	f.Seek(5, 0)
	f.Fetch()
	expectRow(t, &q, 0xA5, 0x5A)
}

func TestTileFetcherWrapsAtMapEdge(t *testing.T) {
	mem := mockVRAM{0x9800 + 2*32 + 31: 1, 0x9800 + 2*32: 2, 0x8010 + 2: 0xF0, 0x8020 + 2: 0x0F}
	var q fifo
	f := newTileFetcher(mem, &q, 0x9800, true)
	f.Seek(17, 31) // map row 2, fine y 1
	f.Fetch()
	expectRow(t, &q, 0xF0, 0x00)
	f.Fetch()
	expectRow(t, &q, 0x0F, 0x00)
}

func TestRenderBGLineScrollX(t *testing.T) {
	mem := mockVRAM{
		0x9800: 1, 0x9801: 2,
		0x8010: 0xFF, // tile 1: colour 1
		0x8021: 0xFF, // tile 2: colour 2
	}
	line := renderBGLine(mem, 0x9800, true, 3, 0, 0)
	for x := 0; x < 5; x++ {
		if line[x] != 1 {
			t.Fatalf("x=%d got %d want 1", x, line[x])
		}
	}
	for x := 5; x < 13; x++ {
		if line[x] != 2 {
			t.Fatalf("x=%d got %d want 2", x, line[x])
		}
	}
	if line[13] != 0 {
		t.Fatalf("x=13 got %d want 0", line[13])
	}
}

func TestRenderBGLineScrollY(t *testing.T) {
	// SCY=10 on line 0 reads map row 1, fine y 2
	mem := mockVRAM{0x9820: 1, 0x8010 + 4: 0xFF, 0x8010 + 5: 0xFF}
	line := renderBGLine(mem, 0x9800, true, 0, 10, 0)
	if line[0] != 3 || line[7] != 3 || line[8] != 0 {
		t.Fatalf("got %v", line[:9])
	}
}

func TestRenderWindowLine(t *testing.T) {
	mem := mockVRAM{0x9C00: 1, 0x8010: 0xFF}

	var line [Width]byte
	renderWindowLine(&line, mem, 0x9C00, true, 7+100, 0)
	if line[99] != 0 || line[100] != 1 || line[107] != 1 || line[108] != 0 {
		t.Fatalf("window at WX=107 got %v", line[98:110])
	}

	// WX=3 clips the first four window pixels
	line = [Width]byte{}
	renderWindowLine(&line, mem, 0x9C00, true, 3, 0)
	if line[0] != 1 || line[3] != 1 || line[4] != 0 {
		t.Fatalf("clipped window got %v", line[:6])
	}
}
