// Package emu ties the CPU, bus and cartridge into a console that runs one
// video frame at a time.
package emu

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/FabianRolfMatthiasNoll/GameBoyCore/internal/bus"
	"github.com/FabianRolfMatthiasNoll/GameBoyCore/internal/cart"
	"github.com/FabianRolfMatthiasNoll/GameBoyCore/internal/cpu"
	"github.com/FabianRolfMatthiasNoll/GameBoyCore/internal/joypad"
	"github.com/FabianRolfMatthiasNoll/GameBoyCore/internal/logger"
	"github.com/FabianRolfMatthiasNoll/GameBoyCore/internal/ppu"
)

// ErrNoCartridge is returned by Frame before a cartridge was loaded.
var ErrNoCartridge = errors.New("emu: no cartridge loaded")

type Key = joypad.Key

const (
	KeyRight  = joypad.Right
	KeyLeft   = joypad.Left
	KeyUp     = joypad.Up
	KeyDown   = joypad.Down
	KeyA      = joypad.A
	KeyB      = joypad.B
	KeySelect = joypad.Select
	KeyStart  = joypad.Start
)

// Buttons is a snapshot of every key, for frontends that poll input once per
// frame.
type Buttons struct {
	A, B, Start, Select   bool
	Up, Down, Left, Right bool
}

type Machine struct {
	cfg Config

	// core components
	bus    *bus.Bus
	cpu    *cpu.CPU
	header *cart.Header
	cart   cart.Cartridge

	rom     []byte
	romPath string
	serial  io.Writer
	blank   []byte
	frames  uint64
	err     error
}

func New(cfg Config) *Machine {
	blank := make([]byte, ppu.Width*ppu.Height*4)
	for i := range blank {
		blank[i] = 0xFF
	}
	return &Machine{cfg: cfg, blank: blank}
}

// LoadCartridge builds a fresh bus and CPU around rom and starts execution at
// 0x0100 with the DMG post-boot register state.
func (m *Machine) LoadCartridge(rom []byte) error {
	c, h, err := cart.New(rom)
	if err != nil {
		if h != nil {
			logger.Logf("emu", "rejected %q (%s)", h.Title, h.CartTypeString())
		}
		return fmt.Errorf("emu: load cartridge: %w", err)
	}
	m.cart, m.header, m.rom = c, h, rom
	m.bus = bus.New(c)
	if m.serial != nil {
		m.bus.SetSerialWriter(m.serial)
	}
	m.cpu = cpu.New(m.bus, m.bus.Interrupts(), cpu.Config{HaltBug: m.cfg.HaltBug})
	m.applyDMGPostBootIO()
	m.frames = 0
	m.err = nil
	logger.Logf("emu", "loaded %q %s rom=%dKiB ram=%dB", h.Title, h.CartTypeString(), h.ROMSizeBytes/1024, h.RAMSizeBytes)
	if !cart.HeaderChecksumOK(rom) {
		logger.Logf("emu", "header checksum mismatch (%#02x)", h.HeaderChecksum)
	}
	return nil
}

// LoadROMFromFile replaces the current cartridge with a ROM from disk.
func (m *Machine) LoadROMFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := m.LoadCartridge(data); err != nil {
		return err
	}
	m.romPath = path
	return nil
}

// Reset power cycles the console with the loaded cartridge. Battery RAM is
// carried over.
func (m *Machine) Reset() error {
	if m.rom == nil {
		return ErrNoCartridge
	}
	save, ok := m.SaveBattery()
	if err := m.LoadCartridge(m.rom); err != nil {
		return err
	}
	if ok {
		m.LoadBattery(save)
	}
	return nil
}

// ROMPath returns the currently loaded ROM file path, if any.
func (m *Machine) ROMPath() string { return m.romPath }

// applyDMGPostBootIO sets the IO registers the boot ROM leaves behind, so
// ROMs can start from PC=0x0100 with the LCD on.
func (m *Machine) applyDMGPostBootIO() {
	b := m.bus
	b.Write(0xFF00, 0xCF)
	b.Write(0xFF05, 0x00) // TIMA
	b.Write(0xFF06, 0x00) // TMA
	b.Write(0xFF07, 0x00) // TAC
	b.Write(0xFF0F, 0x01) // IF: VBlank from the boot ROM
	b.Write(ppu.AddrLCDC, 0x91)
	b.Write(ppu.AddrSCY, 0x00)
	b.Write(ppu.AddrSCX, 0x00)
	b.Write(ppu.AddrLYC, 0x00)
	b.Write(ppu.AddrBGP, 0xFC)
	b.Write(ppu.AddrOBP0, 0xFF)
	b.Write(ppu.AddrOBP1, 0xFF)
	b.Write(ppu.AddrWY, 0x00)
	b.Write(ppu.AddrWX, 0x00)
	b.Write(0xFF26, 0xF1) // NR52
	b.Write(0xFF24, 0x77) // NR50
	b.Write(0xFF25, 0xF3) // NR51
	b.Write(0xFF50, 0x01) // boot ROM unmapped
	b.Write(0xFFFF, 0x00)
}

// Frame runs the CPU until the pixel engine publishes the next frame. A fatal
// CPU error is returned with the frame number and every later call returns
// it again.
func (m *Machine) Frame() error {
	if m.cpu == nil {
		return ErrNoCartridge
	}
	if m.err != nil {
		return m.err
	}
	p := m.bus.PPU()
	for !p.FrameReady() {
		if m.cfg.Trace {
			m.trace()
		}
		cycles, err := m.cpu.Step()
		if err != nil {
			m.err = fmt.Errorf("emu: frame %d: %w", m.frames, err)
			logger.Log("emu", m.err.Error())
			return m.err
		}
		m.bus.Tick(cycles + m.bus.TakeStall())
	}
	m.frames++
	return nil
}

func (m *Machine) trace() {
	if m.cpu.Halted() {
		return
	}
	text, _ := cpu.Disassemble(m.bus.Read, m.cpu.PC)
	logger.Logf("cpu", "%04X  %-16s %s", m.cpu.PC, text, m.cpu.Registers.String())
}

// Image is the last completed frame, 160x144 RGBA row major. Before a
// cartridge is loaded it is a white screen.
func (m *Machine) Image() []byte {
	if m.bus == nil {
		return m.blank
	}
	return m.bus.PPU().Framebuffer()
}

// Frames counts frames completed since the cartridge was loaded.
func (m *Machine) Frames() uint64 { return m.frames }

// Err is the fatal error that stopped the machine, if any.
func (m *Machine) Err() error { return m.err }

func (m *Machine) KeyDown(k Key) {
	if m.bus != nil {
		m.bus.Joypad().Press(k)
	}
}

func (m *Machine) KeyUp(k Key) {
	if m.bus != nil {
		m.bus.Joypad().Release(k)
	}
}

// SetButtons presses every key set in b and releases the rest.
func (m *Machine) SetButtons(b Buttons) {
	for k, down := range map[Key]bool{
		KeyRight: b.Right, KeyLeft: b.Left, KeyUp: b.Up, KeyDown: b.Down,
		KeyA: b.A, KeyB: b.B, KeySelect: b.Select, KeyStart: b.Start,
	} {
		if down {
			m.KeyDown(k)
		} else {
			m.KeyUp(k)
		}
	}
}

// Header is the parsed header of the loaded cartridge, or nil.
func (m *Machine) Header() *cart.Header { return m.header }

// CPU exposes the processor for debuggers and test runners.
func (m *Machine) CPU() *cpu.CPU { return m.cpu }

// Bus exposes the address space for debuggers and test runners.
func (m *Machine) Bus() *bus.Bus { return m.bus }

// SetSerialWriter connects an io.Writer to receive bytes written to the
// serial port. It survives cartridge reloads.
func (m *Machine) SetSerialWriter(w io.Writer) {
	m.serial = w
	if m.bus != nil {
		m.bus.SetSerialWriter(w)
	}
}

// SaveBattery returns external cartridge RAM when the cartridge has a
// battery. File IO is left to the caller.
func (m *Machine) SaveBattery() ([]byte, bool) {
	if m.header == nil || !m.header.Battery {
		return nil, false
	}
	bb, ok := m.cart.(cart.BatteryBacked)
	if !ok {
		return nil, false
	}
	data := bb.SaveRAM()
	if len(data) == 0 {
		return nil, false
	}
	return data, true
}

// LoadBattery loads external RAM bytes into the cartridge if supported.
func (m *Machine) LoadBattery(data []byte) bool {
	if m.header == nil || !m.header.Battery {
		return false
	}
	bb, ok := m.cart.(cart.BatteryBacked)
	if !ok {
		return false
	}
	bb.LoadRAM(data)
	return true
}
