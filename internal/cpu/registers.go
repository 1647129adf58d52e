package cpu

import "fmt"

// Flag names one of the four condition bits held in F.
type Flag uint8

const (
	FlagZ Flag = iota
	FlagN
	FlagH
	FlagC
)

// Flags is the F register. Only bits 4-7 exist, so the packed form always
// has a zero low nibble.
type Flags struct {
	Z, N, H, C bool
}

func (f Flags) Byte() byte {
	var b byte
	if f.Z {
		b |= 0x80
	}
	if f.N {
		b |= 0x40
	}
	if f.H {
		b |= 0x20
	}
	if f.C {
		b |= 0x10
	}
	return b
}

func FlagsFromByte(b byte) Flags {
	return Flags{
		Z: b&0x80 != 0,
		N: b&0x40 != 0,
		H: b&0x20 != 0,
		C: b&0x10 != 0,
	}
}

func (f Flags) String() string {
	s := []byte("----")
	if f.Z {
		s[0] = 'Z'
	}
	if f.N {
		s[1] = 'N'
	}
	if f.H {
		s[2] = 'H'
	}
	if f.C {
		s[3] = 'C'
	}
	return string(s)
}

// Registers is the SM83 register file.
type Registers struct {
	A, B, C, D, E, H, L byte
	F                   Flags

	SP uint16
	PC uint16

	IME bool
}

// Reset loads the state the DMG boot ROM leaves behind.
func (r *Registers) Reset() {
	*r = Registers{
		A: 0x01, F: FlagsFromByte(0xB0),
		B: 0x00, C: 0x13,
		D: 0x00, E: 0xD8,
		H: 0x01, L: 0x4D,
		SP: 0xFFFE,
		PC: 0x0100,
	}
}

func (r *Registers) Flag(f Flag) bool {
	switch f {
	case FlagZ:
		return r.F.Z
	case FlagN:
		return r.F.N
	case FlagH:
		return r.F.H
	case FlagC:
		return r.F.C
	}
	return false
}

func (r *Registers) SetFlag(f Flag, on bool) {
	switch f {
	case FlagZ:
		r.F.Z = on
	case FlagN:
		r.F.N = on
	case FlagH:
		r.F.H = on
	case FlagC:
		r.F.C = on
	}
}

func (r *Registers) AF() uint16 { return uint16(r.A)<<8 | uint16(r.F.Byte()) }
func (r *Registers) BC() uint16 { return uint16(r.B)<<8 | uint16(r.C) }
func (r *Registers) DE() uint16 { return uint16(r.D)<<8 | uint16(r.E) }
func (r *Registers) HL() uint16 { return uint16(r.H)<<8 | uint16(r.L) }

// SetAF drops the low nibble of v.
func (r *Registers) SetAF(v uint16) { r.A, r.F = byte(v>>8), FlagsFromByte(byte(v)) }
func (r *Registers) SetBC(v uint16) { r.B, r.C = byte(v>>8), byte(v) }
func (r *Registers) SetDE(v uint16) { r.D, r.E = byte(v>>8), byte(v) }
func (r *Registers) SetHL(v uint16) { r.H, r.L = byte(v>>8), byte(v) }

// String uses the layout of the widely shared gameboy-doctor logs so traces
// can be diffed against them.
func (r *Registers) String() string {
	return fmt.Sprintf("A:%02X F:%02X B:%02X C:%02X D:%02X E:%02X H:%02X L:%02X SP:%04X PC:%04X",
		r.A, r.F.Byte(), r.B, r.C, r.D, r.E, r.H, r.L, r.SP, r.PC)
}
