// Package term runs a console in a text terminal: raw keyboard input and a
// 24-bit colour half-block rendering of the screen.
package term

import (
	"fmt"
	"golang.org/x/sys/unix"
	"os"

	"github.com/pkg/term/termios"
)

// Terminal holds the input and output files and the attributes needed to
// switch the input between canonical and raw mode.
type Terminal struct {
	input  *os.File
	output *os.File

	canAttr unix.Termios
	rawAttr unix.Termios
}

func Open(input, output *os.File) (*Terminal, error) {
	if input == nil || output == nil {
		return nil, fmt.Errorf("term: input and output files are required")
	}
	t := &Terminal{input: input, output: output}
	if err := termios.Tcgetattr(t.input.Fd(), &t.canAttr); err != nil {
		return nil, fmt.Errorf("term: %s is not a terminal: %w", input.Name(), err)
	}
	t.rawAttr = t.canAttr
	termios.Cfmakeraw(&t.rawAttr)
	// reads return after 100ms with nothing so the input loop can see
	// cancellation
	t.rawAttr.Cc[unix.VMIN] = 0
	t.rawAttr.Cc[unix.VTIME] = 1
	return t, nil
}

// RawMode puts the terminal into raw mode and hides the cursor.
func (t *Terminal) RawMode() error {
	if err := termios.Tcsetattr(t.input.Fd(), termios.TCIFLUSH, &t.rawAttr); err != nil {
		return err
	}
	_, err := t.output.WriteString("\x1b[?25l\x1b[2J")
	return err
}

// CanonicalMode restores the attributes found by Open and shows the cursor.
func (t *Terminal) CanonicalMode() error {
	_, _ = t.output.WriteString("\x1b[0m\x1b[?25h\r\n")
	return termios.Tcsetattr(t.input.Fd(), termios.TCIFLUSH, &t.canAttr)
}

func (t *Terminal) Read(p []byte) (int, error)  { return t.input.Read(p) }
func (t *Terminal) Write(p []byte) (int, error) { return t.output.Write(p) }
