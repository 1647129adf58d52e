package ui

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/FabianRolfMatthiasNoll/GameBoyCore/internal/emu"
	"github.com/FabianRolfMatthiasNoll/GameBoyCore/internal/ppu"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

var keymap = map[ebiten.Key]emu.Key{
	ebiten.KeyArrowRight: emu.KeyRight,
	ebiten.KeyArrowLeft:  emu.KeyLeft,
	ebiten.KeyArrowUp:    emu.KeyUp,
	ebiten.KeyArrowDown:  emu.KeyDown,
	ebiten.KeyZ:          emu.KeyA,
	ebiten.KeyX:          emu.KeyB,
	ebiten.KeyEnter:      emu.KeyStart,
	ebiten.KeyShiftRight: emu.KeySelect,
}

var menuItems = []string{
	"Save battery RAM",
	"Reset",
	"Screenshot",
	"Quit",
	"Close",
}

// errQuit ends RunGame without reporting an error.
var errQuit = errors.New("quit")

type App struct {
	cfg    Config
	m      *emu.Machine
	tex    *ebiten.Image
	shade  *ebiten.Image
	paused bool
	fast   bool
	status string

	showMenu bool
	menuIdx  int
}

func NewApp(cfg Config, m *emu.Machine) *App {
	cfg.Defaults()
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(ppu.Width*cfg.Scale, ppu.Height*cfg.Scale)
	return &App{cfg: cfg, m: m}
}

// Run blocks until the window closes, then writes battery RAM.
func (a *App) Run() error {
	err := ebiten.RunGame(a)
	if errors.Is(err, errQuit) {
		err = nil
	}
	if serr := a.saveBattery(); serr != nil {
		log.Printf("save battery: %v", serr)
	}
	return err
}

func (a *App) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		a.showMenu = !a.showMenu
	}
	if a.showMenu {
		return a.updateMenu()
	}

	for k, key := range keymap {
		if ebiten.IsKeyPressed(k) {
			a.m.KeyDown(key)
		} else {
			a.m.KeyUp(key)
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		a.paused = !a.paused
	}
	// Fast-forward (Tab): while held, run multiple frames per Ebiten update
	a.fast = ebiten.IsKeyPressed(ebiten.KeyTab)

	if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
		a.screenshot()
	}

	// Frame-step when paused (N)
	if a.paused && inpututil.IsKeyJustPressed(ebiten.KeyN) {
		return a.frames(1)
	}
	if a.paused {
		return nil
	}
	if a.fast {
		return a.frames(5)
	}
	return a.frames(1)
}

// frames runs n frames. A machine error pauses emulation and is shown on
// screen rather than closing the window.
func (a *App) frames(n int) error {
	if a.m.Err() != nil {
		return nil
	}
	for i := 0; i < n; i++ {
		if err := a.m.Frame(); err != nil {
			log.Printf("emulation stopped: %v", err)
			a.status = err.Error()
			a.paused = true
			return nil
		}
	}
	return nil
}

func (a *App) updateMenu() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) && a.menuIdx > 0 {
		a.menuIdx--
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) && a.menuIdx < len(menuItems)-1 {
		a.menuIdx++
	}
	if !inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		return nil
	}
	switch a.menuIdx {
	case 0:
		if err := a.saveBattery(); err != nil {
			a.status = err.Error()
		} else {
			a.status = "saved"
		}
	case 1:
		if err := a.m.Reset(); err != nil {
			a.status = err.Error()
		} else {
			a.status, a.paused = "", false
		}
	case 2:
		a.screenshot()
	case 3:
		return errQuit
	}
	a.showMenu = false
	return nil
}

func (a *App) Draw(screen *ebiten.Image) {
	if a.tex == nil {
		a.tex = ebiten.NewImage(ppu.Width, ppu.Height)
	}
	a.tex.WritePixels(a.m.Image())
	screen.DrawImage(a.tex, nil)

	if a.showMenu {
		if a.shade == nil {
			a.shade = ebiten.NewImage(ppu.Width, ppu.Height)
			a.shade.Fill(color.RGBA{0, 0, 0, 160})
		}
		screen.DrawImage(a.shade, nil)
		ebitenutil.DebugPrintAt(screen, "Menu:", 4, 4)
		for i, s := range menuItems {
			prefix := "  "
			if i == a.menuIdx {
				prefix = "> "
			}
			ebitenutil.DebugPrintAt(screen, prefix+s, 4, 18+i*14)
		}
	}
	if a.status != "" {
		ebitenutil.DebugPrintAt(screen, a.status, 2, ppu.Height-16)
	}
}

func (a *App) Layout(outW, outH int) (int, int) { return ppu.Width, ppu.Height }

func (a *App) saveBattery() error {
	if a.cfg.SavePath == "" {
		return nil
	}
	data, ok := a.m.SaveBattery()
	if !ok {
		return nil
	}
	return os.WriteFile(a.cfg.SavePath, data, 0o644)
}

func (a *App) screenshot() {
	name, err := saveScreenshot(a.cfg.ScreenshotDir, a.m.Image(), time.Now())
	if err != nil {
		a.status = err.Error()
		return
	}
	a.status = filepath.Base(name)
}

// saveScreenshot writes fb as a timestamped PNG in dir and returns its path.
func saveScreenshot(dir string, fb []byte, now time.Time) (string, error) {
	img := &image.RGBA{
		Pix:    make([]byte, len(fb)),
		Stride: 4 * ppu.Width,
		Rect:   image.Rect(0, 0, ppu.Width, ppu.Height),
	}
	copy(img.Pix, fb)
	name := filepath.Join(dir, fmt.Sprintf("screenshot_%s.png", now.Format("20060102_150405")))
	f, err := os.Create(name)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return name, png.Encode(f, img)
}
