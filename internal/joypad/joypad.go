// Package joypad implements the P1/JOYP register (0xFF00): two active-low
// 4-bit rows selected by bits 4 (directions) and 5 (actions).
package joypad

import "github.com/FabianRolfMatthiasNoll/GameBoyCore/internal/irq"

const Addr uint16 = 0xFF00

// Key is one of the eight console buttons.
type Key uint8

const (
	Right Key = iota
	Left
	Up
	Down
	A
	B
	Select
	Start
)

var keyNames = [...]string{"right", "left", "up", "down", "a", "b", "select", "start"}

func (k Key) String() string {
	if int(k) < len(keyNames) {
		return keyNames[k]
	}
	return "unknown"
}

// row reports whether k is on the direction row and its bit within the row.
func (k Key) row() (direction bool, bit byte) {
	if k <= Down {
		return true, 1 << k
	}
	return false, 1 << (k - A)
}

const (
	selectDirections byte = 1 << 4
	selectActions    byte = 1 << 5
)

type Joypad struct {
	// pressed bits, active high here; inverted on read
	directions byte
	actions    byte
	// bits 4 and 5 as last written
	sel byte

	req irq.Requester
}

func New(req irq.Requester) *Joypad {
	return &Joypad{req: req, sel: selectDirections | selectActions}
}

// Press marks k as held. A newly pressed key on a selected row requests the
// joypad interrupt.
func (j *Joypad) Press(k Key) {
	if k > Start {
		return
	}
	dir, bit := k.row()
	var prev byte
	if dir {
		prev = j.directions
		j.directions |= bit
	} else {
		prev = j.actions
		j.actions |= bit
	}
	if prev&bit != 0 || j.req == nil {
		return
	}
	if (dir && j.sel&selectDirections == 0) || (!dir && j.sel&selectActions == 0) {
		j.req(irq.Joypad)
	}
}

// Release marks k as no longer held.
func (j *Joypad) Release(k Key) {
	if k > Start {
		return
	}
	dir, bit := k.row()
	if dir {
		j.directions &^= bit
	} else {
		j.actions &^= bit
	}
}

func (j *Joypad) Read() byte {
	var held byte
	if j.sel&selectDirections == 0 {
		held |= j.directions
	}
	if j.sel&selectActions == 0 {
		held |= j.actions
	}
	return 0xC0 | j.sel | (^held & 0x0F)
}

func (j *Joypad) Write(v byte) {
	j.sel = v & (selectDirections | selectActions)
}
