// Package irq models the interrupt enable (IE, 0xFFFF) and interrupt flag
// (IF, 0xFF0F) registers and the fixed priority between the five sources.
package irq

// Source identifies an interrupt line. The value is the bit index in IE/IF.
type Source uint8

const (
	VBlank Source = iota
	LCDStat
	Timer
	Serial
	Joypad
)

// mask covers the five implemented bits of IE and IF.
const mask byte = 0x1F

func (s Source) String() string {
	switch s {
	case VBlank:
		return "vblank"
	case LCDStat:
		return "stat"
	case Timer:
		return "timer"
	case Serial:
		return "serial"
	case Joypad:
		return "joypad"
	}
	return "unknown"
}

// Vector returns the fixed jump address for the source (0x40, 0x48, ... 0x60).
func (s Source) Vector() uint16 { return 0x40 + uint16(s)*8 }

// Requester raises an interrupt request. Components that own a source (PPU,
// timer, joypad, serial) are handed one of these instead of the controller.
type Requester func(s Source)

// Controller holds the enable and request masks.
type Controller struct {
	ie byte
	// only the low 5 bits are kept; the upper three read back as 1
	ifr byte
}

// Request sets the request bit for s.
func (c *Controller) Request(s Source) { c.ifr |= 1 << s }

// Clear drops the request bit for s.
func (c *Controller) Clear(s Source) { c.ifr &^= 1 << s }

// Pending returns the sources that are both requested and enabled.
func (c *Controller) Pending() byte { return c.ie & c.ifr & mask }

// Highest returns the highest priority pending source. ok is false when
// nothing is pending.
func (c *Controller) Highest() (s Source, ok bool) {
	p := c.Pending()
	if p == 0 {
		return 0, false
	}
	for s = VBlank; s <= Joypad; s++ {
		if p&(1<<s) != 0 {
			return s, true
		}
	}
	return 0, false
}

// Acknowledge selects the highest priority pending source and clears its
// request bit, which is what the CPU does when it dispatches.
func (c *Controller) Acknowledge() (Source, bool) {
	s, ok := c.Highest()
	if ok {
		c.Clear(s)
	}
	return s, ok
}

func (c *Controller) ReadIF() byte   { return 0xE0 | c.ifr }
func (c *Controller) WriteIF(v byte) { c.ifr = v & mask }
func (c *Controller) ReadIE() byte   { return c.ie }
func (c *Controller) WriteIE(v byte) { c.ie = v }
