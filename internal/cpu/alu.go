package cpu

func add8(a, b byte, carryIn bool) (byte, Flags) {
	ci := byte(0)
	if carryIn {
		ci = 1
	}
	r := uint16(a) + uint16(b) + uint16(ci)
	res := byte(r)
	return res, Flags{
		Z: res == 0,
		H: a&0x0F+b&0x0F+ci > 0x0F,
		C: r > 0xFF,
	}
}

func sub8(a, b byte, carryIn bool) (byte, Flags) {
	ci := byte(0)
	if carryIn {
		ci = 1
	}
	res := a - b - ci
	return res, Flags{
		Z: res == 0,
		N: true,
		H: int(a&0x0F)-int(b&0x0F)-int(ci) < 0,
		C: int(a)-int(b)-int(ci) < 0,
	}
}

// aluOps is indexed by bits 3-5 of the 0x80-0xBF and 0xC6+8n opcodes.
var aluOps = [8]struct {
	name string
	fn   func(c *CPU, v byte)
}{
	{"ADD", func(c *CPU, v byte) { c.A, c.F = add8(c.A, v, false) }},
	{"ADC", func(c *CPU, v byte) { c.A, c.F = add8(c.A, v, c.F.C) }},
	{"SUB", func(c *CPU, v byte) { c.A, c.F = sub8(c.A, v, false) }},
	{"SBC", func(c *CPU, v byte) { c.A, c.F = sub8(c.A, v, c.F.C) }},
	{"AND", func(c *CPU, v byte) { c.A &= v; c.F = Flags{Z: c.A == 0, H: true} }},
	{"XOR", func(c *CPU, v byte) { c.A ^= v; c.F = Flags{Z: c.A == 0} }},
	{"OR", func(c *CPU, v byte) { c.A |= v; c.F = Flags{Z: c.A == 0} }},
	{"CP", func(c *CPU, v byte) { _, c.F = sub8(c.A, v, false) }},
}

func (c *CPU) inc8(v byte) byte {
	r := v + 1
	c.F = Flags{Z: r == 0, H: v&0x0F == 0x0F, C: c.F.C}
	return r
}

func (c *CPU) dec8(v byte) byte {
	r := v - 1
	c.F = Flags{Z: r == 0, N: true, H: v&0x0F == 0, C: c.F.C}
	return r
}

// addHL keeps Z; half carry comes out of bit 11.
func (c *CPU) addHL(v uint16) {
	hl := c.HL()
	r := uint32(hl) + uint32(v)
	c.F = Flags{Z: c.F.Z, H: hl&0x0FFF+v&0x0FFF > 0x0FFF, C: r > 0xFFFF}
	c.SetHL(uint16(r))
}

// spOffset is SP+e as used by ADD SP,e and LD HL,SP+e. The flags come from
// the unsigned add of the low byte and Z is always clear.
func (c *CPU) spOffset(e byte) uint16 {
	_, f := add8(byte(c.SP), e, false)
	c.F = Flags{H: f.H, C: f.C}
	return c.SP + uint16(int16(int8(e)))
}

func (c *CPU) daa() {
	a := c.A
	carry := c.F.C
	if !c.F.N {
		if carry || a > 0x99 {
			a += 0x60
			carry = true
		}
		if c.F.H || a&0x0F > 0x09 {
			a += 0x06
		}
	} else {
		if carry {
			a -= 0x60
		}
		if c.F.H {
			a -= 0x06
		}
	}
	c.A = a
	c.F = Flags{Z: a == 0, N: c.F.N, C: carry}
}

// shiftOps is indexed by bits 3-5 of CB 0x00-0x3F. Each returns the result
// and the bit shifted out.
var shiftOps = [8]struct {
	name string
	fn   func(v byte, carry bool) (byte, bool)
}{
	{"RLC", func(v byte, _ bool) (byte, bool) { return v<<1 | v>>7, v&0x80 != 0 }},
	{"RRC", func(v byte, _ bool) (byte, bool) { return v>>1 | v<<7, v&0x01 != 0 }},
	{"RL", func(v byte, carry bool) (byte, bool) { return v<<1 | bit(carry), v&0x80 != 0 }},
	{"RR", func(v byte, carry bool) (byte, bool) { return v>>1 | bit(carry)<<7, v&0x01 != 0 }},
	{"SLA", func(v byte, _ bool) (byte, bool) { return v << 1, v&0x80 != 0 }},
	{"SRA", func(v byte, _ bool) (byte, bool) { return v>>1 | v&0x80, v&0x01 != 0 }},
	{"SWAP", func(v byte, _ bool) (byte, bool) { return v<<4 | v>>4, false }},
	{"SRL", func(v byte, _ bool) (byte, bool) { return v >> 1, v&0x01 != 0 }},
}

func bit(b bool) byte {
	if b {
		return 1
	}
	return 0
}
