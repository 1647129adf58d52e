package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/FabianRolfMatthiasNoll/GameBoyCore/internal/cart"
	"github.com/FabianRolfMatthiasNoll/GameBoyCore/internal/emu"
	"github.com/FabianRolfMatthiasNoll/GameBoyCore/internal/logger"
	"github.com/FabianRolfMatthiasNoll/GameBoyCore/internal/statsview"
	"github.com/FabianRolfMatthiasNoll/GameBoyCore/internal/term"
	"github.com/FabianRolfMatthiasNoll/GameBoyCore/internal/ui"
)

// machineFlags are shared by every subcommand that runs a ROM.
type machineFlags struct {
	Trace     bool
	NoHaltBug bool
	SaveRAM   bool
}

func (f *machineFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.Trace, "trace", false, "log every CPU instruction to stderr")
	cmd.Flags().BoolVar(&f.NoHaltBug, "no-halt-bug", false, "do not reproduce the HALT bug")
	cmd.Flags().BoolVar(&f.SaveRAM, "save", true, "persist battery RAM to ROM.sav on exit and load on start")
}

// load builds a machine around the ROM at path and loads its .sav if asked.
// It returns the .sav path, empty when saving is off.
func (f *machineFlags) load(path string) (*emu.Machine, string, error) {
	cfg := emu.DefaultConfig()
	cfg.Trace = f.Trace
	cfg.HaltBug = !f.NoHaltBug
	if f.Trace {
		logger.SetEcho(os.Stderr)
	}

	m := emu.New(cfg)
	if err := m.LoadROMFromFile(path); err != nil {
		return nil, "", err
	}
	h := m.Header()
	log.Printf("ROM: %q type=%s banks=%d ram=%dB", h.Title, h.CartTypeString(), h.ROMBanks, h.RAMSizeBytes)

	if !f.SaveRAM {
		return m, "", nil
	}
	sav := savPath(path)
	if data, err := os.ReadFile(sav); err == nil {
		if m.LoadBattery(data) {
			log.Printf("loaded save RAM: %s (%d bytes)", sav, len(data))
		}
	}
	return m, sav, nil
}

// savPath puts the save next to the ROM with a .sav extension.
func savPath(rom string) string {
	for _, ext := range []string{".gb", ".GB", ".bin"} {
		if strings.HasSuffix(rom, ext) {
			return strings.TrimSuffix(rom, ext) + ".sav"
		}
	}
	return rom + ".sav"
}

func writeSave(m *emu.Machine, path string) {
	if path == "" {
		return
	}
	data, ok := m.SaveBattery()
	if !ok {
		return
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		log.Printf("write %s: %v", path, err)
		return
	}
	log.Printf("wrote %s", path)
}

func runCmd() *cobra.Command {
	var mf machineFlags
	var cfg ui.Config
	var stats bool
	var statsAddr string

	cmd := &cobra.Command{
		Use:   "run ROM",
		Short: "Play a ROM in a window",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, sav, err := mf.load(args[0])
			if err != nil {
				return err
			}
			if stats {
				statsview.Launch(os.Stderr, statsAddr)
			}
			cfg.SavePath = sav
			// the window writes battery RAM itself when it closes
			return ui.NewApp(cfg, m).Run()
		},
	}
	mf.register(cmd)
	cmd.Flags().IntVar(&cfg.Scale, "scale", 3, "window scale")
	cmd.Flags().StringVar(&cfg.Title, "title", "gbemu", "window title")
	cmd.Flags().StringVar(&cfg.ScreenshotDir, "shots", ".", "directory for F12 screenshots")
	cmd.Flags().BoolVar(&stats, "statsview", false, "serve runtime charts while running")
	cmd.Flags().StringVar(&statsAddr, "statsview-addr", statsview.DefaultAddress, "address for --statsview")
	return cmd
}

func termCmd() *cobra.Command {
	var mf machineFlags

	cmd := &cobra.Command{
		Use:   "term ROM",
		Short: "Play a ROM in the terminal (q quits)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, sav, err := mf.load(args[0])
			if err != nil {
				return err
			}
			t, err := term.Open(os.Stdin, os.Stdout)
			if err != nil {
				return err
			}
			if err := t.RawMode(); err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			err = term.Run(ctx, emu.NewShared(m), t, t)
			if cerr := t.CanonicalMode(); cerr != nil && err == nil {
				err = cerr
			}
			writeSave(m, sav)
			return err
		},
	}
	mf.register(cmd)
	return cmd
}

func headlessCmd() *cobra.Command {
	var mf machineFlags
	var frames int
	var pngOut, expect string

	cmd := &cobra.Command{
		Use:   "headless ROM",
		Short: "Run frames without a display and report the framebuffer CRC32",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, sav, err := mf.load(args[0])
			if err != nil {
				return err
			}
			defer writeSave(m, sav)
			return runHeadless(m, frames, pngOut, expect)
		},
	}
	mf.register(cmd)
	cmd.Flags().IntVar(&frames, "frames", 300, "frames to run")
	cmd.Flags().StringVar(&pngOut, "outpng", "", "write last framebuffer to PNG at path")
	cmd.Flags().StringVar(&expect, "expect", "", "assert framebuffer CRC32 (hex)")
	return cmd
}

func headerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "header ROM",
		Short: "Print the decoded cartridge header",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rom, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			h, err := cart.ParseHeader(rom)
			if err != nil {
				return err
			}
			printHeader(cmd.OutOrStdout(), h, cart.HeaderChecksumOK(rom))
			return nil
		},
	}
}

func main() {
	log.SetFlags(0)
	rootCmd := &cobra.Command{
		Use:           "gbemu",
		Short:         "Game Boy (DMG) emulator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(runCmd(), termCmd(), headlessCmd(), headerCmd())
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "gbemu:", err)
		os.Exit(1)
	}
}
