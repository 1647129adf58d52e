package cpu

import "fmt"

// opcode describes one table entry. exec reports whether it moved PC
// itself; otherwise PC advances by length and the step costs cycles.
// Jumps, calls and returns that are taken cost taken cycles.
type opcode struct {
	name   string
	length uint16
	cycles int
	taken  int
	exec   func(c *CPU) bool
}

var (
	base     [256]*opcode
	prefixed [256]*opcode
)

var (
	regNames  = [8]string{"B", "C", "D", "E", "H", "L", "(HL)", "A"}
	pairNames = [4]string{"BC", "DE", "HL", "SP"}
	condNames = [4]string{"NZ", "Z", "NC", "C"}
)

func def(code byte, name string, length uint16, cycles int, exec func(c *CPU) bool) {
	if base[code] != nil {
		panic(fmt.Sprintf("opcode %#02x defined twice", code))
	}
	base[code] = &opcode{name: name, length: length, cycles: cycles, taken: cycles, exec: exec}
}

// defBranch is for conditional control flow.
func defBranch(code byte, name string, length uint16, cycles, taken int, exec func(c *CPU) bool) {
	def(code, name, length, cycles, exec)
	base[code].taken = taken
}

// regCycles adds the memory access cost when operand i is (HL).
func regCycles(i byte, reg, mem int) int {
	if i == 6 {
		return mem
	}
	return reg
}

func init() {
	def(0x00, "NOP", 1, 4, func(c *CPU) bool { return false })
	def(0x10, "STOP", 2, 4, stop)
	def(0x76, "HALT", 1, 4, halt)
	def(0xF3, "DI", 1, 4, func(c *CPU) bool {
		c.IME = false
		c.eiDelay = 0
		return false
	})
	def(0xFB, "EI", 1, 4, func(c *CPU) bool {
		if !c.IME && c.eiDelay == 0 {
			c.eiDelay = 2
		}
		return false
	})

	initLoads()
	initArithmetic()
	initControl()
	initPrefixed()
}

func initLoads() {
	for d := byte(0); d < 8; d++ {
		for s := byte(0); s < 8; s++ {
			code := 0x40 | d<<3 | s
			if code == 0x76 {
				continue
			}
			cycles := 4
			if d == 6 || s == 6 {
				cycles = 8
			}
			def(code, "LD "+regNames[d]+","+regNames[s], 1, cycles, func(c *CPU) bool {
				c.setReg(d, c.reg(s))
				return false
			})
		}
		def(0x06|d<<3, "LD "+regNames[d]+",d8", 2, regCycles(d, 8, 12), func(c *CPU) bool {
			c.setReg(d, c.d8())
			return false
		})
	}

	for p := byte(0); p < 4; p++ {
		def(0x01|p<<4, "LD "+pairNames[p]+",d16", 3, 12, func(c *CPU) bool {
			c.setPair(p, c.d16(), false)
			return false
		})
	}

	def(0x02, "LD (BC),A", 1, 8, func(c *CPU) bool { c.write8(c.BC(), c.A); return false })
	def(0x12, "LD (DE),A", 1, 8, func(c *CPU) bool { c.write8(c.DE(), c.A); return false })
	def(0x0A, "LD A,(BC)", 1, 8, func(c *CPU) bool { c.A = c.read8(c.BC()); return false })
	def(0x1A, "LD A,(DE)", 1, 8, func(c *CPU) bool { c.A = c.read8(c.DE()); return false })
	def(0x22, "LD (HL+),A", 1, 8, func(c *CPU) bool {
		hl := c.HL()
		c.write8(hl, c.A)
		c.SetHL(hl + 1)
		return false
	})
	def(0x32, "LD (HL-),A", 1, 8, func(c *CPU) bool {
		hl := c.HL()
		c.write8(hl, c.A)
		c.SetHL(hl - 1)
		return false
	})
	def(0x2A, "LD A,(HL+)", 1, 8, func(c *CPU) bool {
		hl := c.HL()
		c.A = c.read8(hl)
		c.SetHL(hl + 1)
		return false
	})
	def(0x3A, "LD A,(HL-)", 1, 8, func(c *CPU) bool {
		hl := c.HL()
		c.A = c.read8(hl)
		c.SetHL(hl - 1)
		return false
	})

	def(0x08, "LD (a16),SP", 3, 20, func(c *CPU) bool { c.write16(c.d16(), c.SP); return false })
	def(0xEA, "LD (a16),A", 3, 16, func(c *CPU) bool { c.write8(c.d16(), c.A); return false })
	def(0xFA, "LD A,(a16)", 3, 16, func(c *CPU) bool { c.A = c.read8(c.d16()); return false })
	def(0xE0, "LDH (a8),A", 2, 12, func(c *CPU) bool { c.write8(0xFF00|uint16(c.d8()), c.A); return false })
	def(0xF0, "LDH A,(a8)", 2, 12, func(c *CPU) bool { c.A = c.read8(0xFF00 | uint16(c.d8())); return false })
	def(0xE2, "LD (C),A", 1, 8, func(c *CPU) bool { c.write8(0xFF00|uint16(c.C), c.A); return false })
	def(0xF2, "LD A,(C)", 1, 8, func(c *CPU) bool { c.A = c.read8(0xFF00 | uint16(c.C)); return false })

	def(0xF9, "LD SP,HL", 1, 8, func(c *CPU) bool { c.SP = c.HL(); return false })
	def(0xF8, "LD HL,SP+r8", 2, 12, func(c *CPU) bool { c.SetHL(c.spOffset(c.d8())); return false })

	for p := byte(0); p < 4; p++ {
		name := pairNames[p]
		if p == 3 {
			name = "AF"
		}
		def(0xC5|p<<4, "PUSH "+name, 1, 16, func(c *CPU) bool { c.push16(c.pair(p, true)); return false })
		def(0xC1|p<<4, "POP "+name, 1, 12, func(c *CPU) bool { c.setPair(p, c.pop16(), true); return false })
	}
}

func initArithmetic() {
	for i := byte(0); i < 8; i++ {
		def(0x04|i<<3, "INC "+regNames[i], 1, regCycles(i, 4, 12), func(c *CPU) bool {
			c.setReg(i, c.inc8(c.reg(i)))
			return false
		})
		def(0x05|i<<3, "DEC "+regNames[i], 1, regCycles(i, 4, 12), func(c *CPU) bool {
			c.setReg(i, c.dec8(c.reg(i)))
			return false
		})

		op := aluOps[i]
		for s := byte(0); s < 8; s++ {
			def(0x80|i<<3|s, op.name+" A,"+regNames[s], 1, regCycles(s, 4, 8), func(c *CPU) bool {
				op.fn(c, c.reg(s))
				return false
			})
		}
		def(0xC6|i<<3, op.name+" A,d8", 2, 8, func(c *CPU) bool {
			op.fn(c, c.d8())
			return false
		})
	}

	for p := byte(0); p < 4; p++ {
		def(0x03|p<<4, "INC "+pairNames[p], 1, 8, func(c *CPU) bool {
			c.setPair(p, c.pair(p, false)+1, false)
			return false
		})
		def(0x0B|p<<4, "DEC "+pairNames[p], 1, 8, func(c *CPU) bool {
			c.setPair(p, c.pair(p, false)-1, false)
			return false
		})
		def(0x09|p<<4, "ADD HL,"+pairNames[p], 1, 8, func(c *CPU) bool {
			c.addHL(c.pair(p, false))
			return false
		})
	}

	def(0xE8, "ADD SP,r8", 2, 16, func(c *CPU) bool { c.SP = c.spOffset(c.d8()); return false })

	// the accumulator rotates always clear Z
	for i, name := range [4]string{"RLCA", "RRCA", "RLA", "RRA"} {
		shift := shiftOps[i].fn
		def(0x07|byte(i)<<3, name, 1, 4, func(c *CPU) bool {
			var carry bool
			c.A, carry = shift(c.A, c.F.C)
			c.F = Flags{C: carry}
			return false
		})
	}

	def(0x27, "DAA", 1, 4, func(c *CPU) bool { c.daa(); return false })
	def(0x2F, "CPL", 1, 4, func(c *CPU) bool {
		c.A = ^c.A
		c.F.N, c.F.H = true, true
		return false
	})
	def(0x37, "SCF", 1, 4, func(c *CPU) bool {
		c.F = Flags{Z: c.F.Z, C: true}
		return false
	})
	def(0x3F, "CCF", 1, 4, func(c *CPU) bool {
		c.F = Flags{Z: c.F.Z, C: !c.F.C}
		return false
	})
}

func initControl() {
	def(0xC3, "JP a16", 3, 16, func(c *CPU) bool { c.PC = c.d16(); return true })
	def(0xE9, "JP HL", 1, 4, func(c *CPU) bool { c.PC = c.HL(); return true })
	def(0x18, "JR r8", 2, 12, func(c *CPU) bool { c.jr(); return true })
	def(0xCD, "CALL a16", 3, 24, func(c *CPU) bool { c.call(c.d16(), 3); return true })
	def(0xC9, "RET", 1, 16, func(c *CPU) bool { c.PC = c.pop16(); return true })
	def(0xD9, "RETI", 1, 16, func(c *CPU) bool {
		c.PC = c.pop16()
		c.IME = true
		c.eiDelay = 0
		return true
	})

	for cc := byte(0); cc < 4; cc++ {
		n := condNames[cc]
		defBranch(0x20|cc<<3, "JR "+n+",r8", 2, 8, 12, func(c *CPU) bool {
			if !c.cond(cc) {
				return false
			}
			c.jr()
			return true
		})
		defBranch(0xC2|cc<<3, "JP "+n+",a16", 3, 12, 16, func(c *CPU) bool {
			if !c.cond(cc) {
				return false
			}
			c.PC = c.d16()
			return true
		})
		defBranch(0xC4|cc<<3, "CALL "+n+",a16", 3, 12, 24, func(c *CPU) bool {
			if !c.cond(cc) {
				return false
			}
			c.call(c.d16(), 3)
			return true
		})
		defBranch(0xC0|cc<<3, "RET "+n, 1, 8, 20, func(c *CPU) bool {
			if !c.cond(cc) {
				return false
			}
			c.PC = c.pop16()
			return true
		})
	}

	for n := byte(0); n < 8; n++ {
		vec := uint16(n) * 8
		def(0xC7|n<<3, fmt.Sprintf("RST %02XH", vec), 1, 16, func(c *CPU) bool {
			c.call(vec, 1)
			return true
		})
	}
}

// initPrefixed fills the 0xCB table. Every entry is two bytes long.
func initPrefixed() {
	for code := 0; code < 256; code++ {
		group, y, r := byte(code>>6), byte(code>>3)&7, byte(code)&7
		op := &opcode{length: 2, cycles: regCycles(r, 8, 16)}
		switch group {
		case 0:
			shift := shiftOps[y]
			op.name = shift.name + " " + regNames[r]
			op.exec = func(c *CPU) bool {
				v, carry := shift.fn(c.reg(r), c.F.C)
				c.setReg(r, v)
				c.F = Flags{Z: v == 0, C: carry}
				return false
			}
		case 1:
			op.name = fmt.Sprintf("BIT %d,%s", y, regNames[r])
			op.cycles = regCycles(r, 8, 12)
			op.exec = func(c *CPU) bool {
				c.F = Flags{Z: c.reg(r)&(1<<y) == 0, H: true, C: c.F.C}
				return false
			}
		case 2:
			op.name = fmt.Sprintf("RES %d,%s", y, regNames[r])
			op.exec = func(c *CPU) bool {
				c.setReg(r, c.reg(r)&^(1<<y))
				return false
			}
		case 3:
			op.name = fmt.Sprintf("SET %d,%s", y, regNames[r])
			op.exec = func(c *CPU) bool {
				c.setReg(r, c.reg(r)|1<<y)
				return false
			}
		}
		op.taken = op.cycles
		prefixed[code] = op
	}
}

// jr jumps relative to the address after the two-byte instruction.
func (c *CPU) jr() {
	c.PC = c.PC + 2 + uint16(int16(int8(c.d8())))
}

// call pushes the address of the next instruction and jumps.
func (c *CPU) call(addr, length uint16) {
	c.push16(c.PC + length)
	c.PC = addr
}

func halt(c *CPU) bool {
	if !c.IME && c.ints.Pending() != 0 {
		// the CPU does not halt; with the bug, PC fails to advance past
		// the next opcode fetch
		c.haltBug = c.cfg.HaltBug
		return false
	}
	c.halted = true
	return false
}

func stop(c *CPU) bool {
	// any write to DIV clears the divider
	c.write8(0xFF04, 0)
	c.stopped = true
	return false
}
