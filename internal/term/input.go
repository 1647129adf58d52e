package term

import (
	"sync"
	"time"

	"github.com/FabianRolfMatthiasNoll/GameBoyCore/internal/emu"
)

// Action is what a byte sequence from the keyboard asks for.
type Action int

const (
	ActionNone Action = iota
	ActionKey
	ActionQuit
)

// decode consumes one key from p and reports how many bytes it used.
func decode(p []byte) (n int, act Action, key emu.Key) {
	if len(p) == 0 {
		return 0, ActionNone, 0
	}
	if p[0] == 0x1B && len(p) >= 3 && (p[1] == '[' || p[1] == 'O') {
		switch p[2] {
		case 'A':
			return 3, ActionKey, emu.KeyUp
		case 'B':
			return 3, ActionKey, emu.KeyDown
		case 'C':
			return 3, ActionKey, emu.KeyRight
		case 'D':
			return 3, ActionKey, emu.KeyLeft
		}
		return 3, ActionNone, 0
	}
	switch p[0] {
	case 'q', 'Q', 0x03: // ctrl-c
		return 1, ActionQuit, 0
	case 'w', 'W':
		return 1, ActionKey, emu.KeyUp
	case 's', 'S':
		return 1, ActionKey, emu.KeyDown
	case 'a', 'A':
		return 1, ActionKey, emu.KeyLeft
	case 'd', 'D':
		return 1, ActionKey, emu.KeyRight
	case 'z', 'Z', 'j', 'J':
		return 1, ActionKey, emu.KeyA
	case 'x', 'X', 'k', 'K':
		return 1, ActionKey, emu.KeyB
	case '\r', '\n':
		return 1, ActionKey, emu.KeyStart
	case ' ', 0x7F, 0x08:
		return 1, ActionKey, emu.KeySelect
	}
	return 1, ActionNone, 0
}

// holds releases keys a while after their last press. Terminals only report
// presses, and auto-repeat keeps a held key alive.
type holds struct {
	mu       sync.Mutex
	duration time.Duration
	until    map[emu.Key]time.Time
}

func newHolds(d time.Duration) *holds {
	return &holds{duration: d, until: make(map[emu.Key]time.Time)}
}

// press records k and reports whether it was not already held.
func (h *holds) press(k emu.Key, now time.Time) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, held := h.until[k]
	h.until[k] = now.Add(h.duration)
	return !held
}

// expired removes and returns the keys whose hold ran out.
func (h *holds) expired(now time.Time) []emu.Key {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []emu.Key
	for k, t := range h.until {
		if !now.Before(t) {
			out = append(out, k)
			delete(h.until, k)
		}
	}
	return out
}
