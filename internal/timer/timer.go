// Package timer implements DIV, TIMA, TMA and TAC (0xFF04–0xFF07).
//
// The divider is a 16-bit counter that advances once per cycle; DIV is its
// upper byte. TIMA is clocked by the falling edge of one divider bit ANDed with
// the enable bit of TAC, which gives the four documented rates.
package timer

import "github.com/FabianRolfMatthiasNoll/GameBoyCore/internal/irq"

const (
	AddrDIV  uint16 = 0xFF04
	AddrTIMA uint16 = 0xFF05
	AddrTMA  uint16 = 0xFF06
	AddrTAC  uint16 = 0xFF07
)

// tacBits maps TAC[1:0] to the divider bit whose falling edge clocks TIMA:
// 00 -> every 1024 cycles, 01 -> 16, 10 -> 64, 11 -> 256.
var tacBits = [4]uint{9, 3, 5, 7}

type Timer struct {
	div  uint16
	tima byte
	tma  byte
	tac  byte

	// set on the cycle TIMA wraps; the reload from TMA happens on the next one
	reloadPending bool

	req irq.Requester
}

func New(req irq.Requester) *Timer {
	return &Timer{req: req}
}

// input is the signal whose falling edge increments TIMA.
func (t *Timer) input() bool {
	if t.tac&0x04 == 0 {
		return false
	}
	return (t.div>>tacBits[t.tac&0x03])&1 == 1
}

// Tick advances the timer by the given number of cycles.
func (t *Timer) Tick(cycles int) {
	for i := 0; i < cycles; i++ {
		t.step()
	}
}

func (t *Timer) step() {
	if t.reloadPending {
		t.reloadPending = false
		t.tima = t.tma
	}
	prev := t.input()
	t.div++
	if prev && !t.input() {
		t.increment()
	}
}

func (t *Timer) increment() {
	t.tima++
	if t.tima == 0 {
		// TIMA reads 0 for one cycle before the reload
		t.reloadPending = true
		if t.req != nil {
			t.req(irq.Timer)
		}
	}
}

// ResetDivider clears the internal divider as a DIV write or STOP does.
func (t *Timer) ResetDivider() {
	prev := t.input()
	t.div = 0
	if prev && !t.reloadPending {
		t.increment()
	}
}

func (t *Timer) Read(addr uint16) byte {
	switch addr {
	case AddrDIV:
		return byte(t.div >> 8)
	case AddrTIMA:
		return t.tima
	case AddrTMA:
		return t.tma
	case AddrTAC:
		return 0xF8 | t.tac
	}
	return 0xFF
}

func (t *Timer) Write(addr uint16, v byte) {
	switch addr {
	case AddrDIV:
		t.ResetDivider()
	case AddrTIMA:
		// a write during the reload cycle wins over TMA
		t.tima = v
		t.reloadPending = false
	case AddrTMA:
		t.tma = v
	case AddrTAC:
		prev := t.input()
		t.tac = v & 0x07
		if prev && !t.input() && !t.reloadPending {
			t.increment()
		}
	}
}

// Divider returns the full 16-bit internal counter.
func (t *Timer) Divider() uint16 { return t.div }

// ReloadPending reports whether TIMA overflowed on the previous cycle.
func (t *Timer) ReloadPending() bool { return t.reloadPending }
