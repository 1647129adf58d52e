package emu

// Config contains settings that affect emulation behavior.
type Config struct {
	Trace   bool // log CPU instructions
	HaltBug bool // reproduce the PC stall after HALT with IME=0 and a pending IRQ
}

func DefaultConfig() Config {
	return Config{HaltBug: true}
}
