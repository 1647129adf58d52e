package ppu

// VRAMReader is where the fetcher and the sprite compositor read tile maps
// and tile data from. The live PPU passes itself; tests pass a map.
type VRAMReader interface {
	Read(addr uint16) byte
}

// fifo is a ring buffer of 2-bit color indices.
type fifo struct {
	buf  [16]byte
	head int
	tail int
	size int
}

func (q *fifo) Clear()   { q.head, q.tail, q.size = 0, 0, 0 }
func (q *fifo) Len() int { return q.size }

func (q *fifo) Push(ci byte) bool {
	if q.size == len(q.buf) {
		return false
	}
	q.buf[q.tail] = ci & 0x03
	q.tail = (q.tail + 1) % len(q.buf)
	q.size++
	return true
}

func (q *fifo) Pop() (byte, bool) {
	if q.size == 0 {
		return 0, false
	}
	v := q.buf[q.head]
	q.head = (q.head + 1) % len(q.buf)
	q.size--
	return v, true
}

// tileFetcher walks one row of a 32x32 tile map and pushes eight pixels
// per tile into the FIFO.
type tileFetcher struct {
	mem      VRAMReader
	fifo     *fifo
	mapBase  uint16 // 0x9800 or 0x9C00
	unsigned bool   // 0x8000 addressing; otherwise signed from 0x9000
	mapRow   uint16
	col      uint16
	fineY    byte
}

func newTileFetcher(mem VRAMReader, q *fifo, mapBase uint16, unsigned bool) *tileFetcher {
	return &tileFetcher{mem: mem, fifo: q, mapBase: mapBase, unsigned: unsigned}
}

// Seek positions the fetcher at map pixel row y and tile column col.
func (f *tileFetcher) Seek(y byte, col uint16) {
	f.mapRow = uint16(y>>3) & 31
	f.fineY = y & 7
	f.col = col & 31
}

// Fetch pushes the current tile row and moves to the next column, wrapping
// at the edge of the map.
func (f *tileFetcher) Fetch() {
	tile := f.mem.Read(f.mapBase + f.mapRow*32 + f.col)
	lo, hi := f.tileRow(tile)
	for bit := 7; bit >= 0; bit-- {
		f.fifo.Push((hi>>bit)&1<<1 | (lo>>bit)&1)
	}
	f.col = (f.col + 1) & 31
}

func (f *tileFetcher) tileRow(tile byte) (lo, hi byte) {
	var addr uint16
	if f.unsigned {
		addr = 0x8000 + uint16(tile)*16
	} else {
		addr = uint16(0x9000 + int(int8(tile))*16)
	}
	addr += uint16(f.fineY) * 2
	return f.mem.Read(addr), f.mem.Read(addr + 1)
}
