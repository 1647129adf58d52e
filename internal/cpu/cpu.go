// Package cpu is the SM83 instruction interpreter.
package cpu

import (
	"fmt"

	"github.com/FabianRolfMatthiasNoll/GameBoyCore/internal/irq"
)

// Bus is the CPU's view of the address space.
type Bus interface {
	Read(addr uint16) byte
	Write(addr uint16, v byte)
}

// Interrupts is the part of the interrupt controller the CPU drives.
type Interrupts interface {
	Pending() byte
	Acknowledge() (irq.Source, bool)
}

type Config struct {
	// HaltBug reproduces the double fetch after a HALT executed with IME
	// clear while an interrupt is already pending.
	HaltBug bool
}

func DefaultConfig() Config { return Config{HaltBug: true} }

// UnknownOpcodeError is returned for the eleven unused base opcodes. It is
// fatal: the CPU stays locked on that instruction.
type UnknownOpcodeError struct {
	Opcode byte
	PC     uint16
}

func (e *UnknownOpcodeError) Error() string {
	return fmt.Sprintf("unknown opcode %#02x at %#04x", e.Opcode, e.PC)
}

const dispatchCycles = 20

// haltExitCycles is added when a halted CPU wakes straight into dispatch.
const haltExitCycles = 4

type CPU struct {
	Registers

	cfg  Config
	bus  Bus
	ints Interrupts

	halted  bool
	stopped bool
	haltBug bool
	// counts down to the point where a preceding EI takes effect
	eiDelay int
	err     error
}

// New returns a CPU in the post-boot register state.
func New(b Bus, ints Interrupts, cfg Config) *CPU {
	c := &CPU{bus: b, ints: ints, cfg: cfg}
	c.Reset()
	return c
}

func (c *CPU) Reset() {
	c.Registers.Reset()
	c.halted, c.stopped, c.haltBug = false, false, false
	c.eiDelay = 0
	c.err = nil
}

func (c *CPU) Halted() bool  { return c.halted }
func (c *CPU) Stopped() bool { return c.stopped }

// Err is the fatal error that locked the CPU, if any.
func (c *CPU) Err() error { return c.err }

// Step runs one instruction, one interrupt dispatch, or one idle slot while
// halted, and returns the T-cycles it took. The caller advances the rest of
// the machine by that amount.
func (c *CPU) Step() (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	cycles, err := c.step()
	if err != nil {
		c.err = err
		return 0, err
	}
	if c.eiDelay > 0 {
		c.eiDelay--
		if c.eiDelay == 0 {
			c.IME = true
		}
	}
	return cycles, nil
}

func (c *CPU) step() (int, error) {
	if c.stopped {
		if c.bus.Read(0xFF0F)&(1<<irq.Joypad) == 0 {
			return 4, nil
		}
		c.stopped = false
	}
	woke := false
	if c.halted {
		if c.ints.Pending() == 0 {
			return 4, nil
		}
		c.halted = false
		woke = true
	}

	if c.IME {
		if s, ok := c.ints.Acknowledge(); ok {
			c.IME = false
			ret := c.PC
			if c.haltBug {
				// EI; HALT with a request pending: the handler returns to
				// the HALT opcode
				c.haltBug = false
				ret--
			}
			c.push16(ret)
			c.PC = s.Vector()
			if woke {
				return dispatchCycles + haltExitCycles, nil
			}
			return dispatchCycles, nil
		}
	}

	pc := c.PC
	code := c.read8(pc)
	if c.haltBug {
		c.haltBug = false
		c.PC--
	}
	op := base[code]
	if code == 0xCB {
		op = prefixed[c.read8(c.PC+1)]
	}
	if op == nil {
		c.PC = pc
		return 0, &UnknownOpcodeError{Opcode: code, PC: pc}
	}
	if op.exec(c) {
		return op.taken, nil
	}
	c.PC += op.length
	return op.cycles, nil
}

func (c *CPU) read8(addr uint16) byte     { return c.bus.Read(addr) }
func (c *CPU) write8(addr uint16, v byte) { c.bus.Write(addr, v) }

func (c *CPU) read16(addr uint16) uint16 {
	return uint16(c.read8(addr)) | uint16(c.read8(addr+1))<<8
}

func (c *CPU) write16(addr uint16, v uint16) {
	c.write8(addr, byte(v))
	c.write8(addr+1, byte(v>>8))
}

// immediate operands follow the opcode byte
func (c *CPU) d8() byte    { return c.read8(c.PC + 1) }
func (c *CPU) d16() uint16 { return c.read16(c.PC + 1) }

func (c *CPU) push16(v uint16) {
	c.SP -= 2
	c.write16(c.SP, v)
}

func (c *CPU) pop16() uint16 {
	v := c.read16(c.SP)
	c.SP += 2
	return v
}

// reg and setReg use the three-bit operand encoding: B C D E H L (HL) A.
func (c *CPU) reg(i byte) byte {
	switch i {
	case 0:
		return c.B
	case 1:
		return c.C
	case 2:
		return c.D
	case 3:
		return c.E
	case 4:
		return c.H
	case 5:
		return c.L
	case 6:
		return c.read8(c.HL())
	}
	return c.A
}

func (c *CPU) setReg(i, v byte) {
	switch i {
	case 0:
		c.B = v
	case 1:
		c.C = v
	case 2:
		c.D = v
	case 3:
		c.E = v
	case 4:
		c.H = v
	case 5:
		c.L = v
	case 6:
		c.write8(c.HL(), v)
	default:
		c.A = v
	}
}

// pair and setPair use the two-bit encoding BC DE HL SP. With af set the
// fourth slot is AF instead, as for PUSH and POP.
func (c *CPU) pair(i byte, af bool) uint16 {
	switch i {
	case 0:
		return c.BC()
	case 1:
		return c.DE()
	case 2:
		return c.HL()
	}
	if af {
		return c.AF()
	}
	return c.SP
}

func (c *CPU) setPair(i byte, v uint16, af bool) {
	switch i {
	case 0:
		c.SetBC(v)
	case 1:
		c.SetDE(v)
	case 2:
		c.SetHL(v)
	default:
		if af {
			c.SetAF(v)
		} else {
			c.SP = v
		}
	}
}

// cond decodes NZ Z NC C.
func (c *CPU) cond(i byte) bool {
	switch i {
	case 0:
		return !c.F.Z
	case 1:
		return c.F.Z
	case 2:
		return !c.F.C
	}
	return c.F.C
}
