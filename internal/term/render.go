package term

import (
	"bytes"
	"io"
	"strconv"

	"github.com/FabianRolfMatthiasNoll/GameBoyCore/internal/ppu"
)

// upperHalf is drawn with the top pixel as foreground and the bottom pixel
// as background, so one text row shows two screen lines.
const upperHalf = "▀"

// Renderer turns RGBA frames into ANSI escape sequences.
type Renderer struct {
	buf bytes.Buffer
}

type rgb struct{ r, g, b byte }

func pixel(img []byte, x, y int) rgb {
	i := (y*ppu.Width + x) * 4
	return rgb{img[i], img[i+1], img[i+2]}
}

func (r *Renderer) colour(code string, c rgb) {
	r.buf.WriteString("\x1b[")
	r.buf.WriteString(code)
	r.buf.WriteString(";2;")
	r.buf.WriteString(strconv.Itoa(int(c.r)))
	r.buf.WriteByte(';')
	r.buf.WriteString(strconv.Itoa(int(c.g)))
	r.buf.WriteByte(';')
	r.buf.WriteString(strconv.Itoa(int(c.b)))
	r.buf.WriteByte('m')
}

// Render draws a 160x144 RGBA frame from the top left corner of w, followed
// by an optional status line.
func (r *Renderer) Render(w io.Writer, img []byte, status string) error {
	r.buf.Reset()
	r.buf.WriteString("\x1b[H")
	for y := 0; y < ppu.Height; y += 2 {
		var fg, bg rgb
		first := true
		for x := 0; x < ppu.Width; x++ {
			top, bottom := pixel(img, x, y), pixel(img, x, y+1)
			// colours only change when they differ from the previous cell
			if first || top != fg {
				r.colour("38", top)
				fg = top
			}
			if first || bottom != bg {
				r.colour("48", bottom)
				bg = bottom
			}
			first = false
			r.buf.WriteString(upperHalf)
		}
		r.buf.WriteString("\x1b[0m\r\n")
	}
	r.buf.WriteString("\x1b[2K")
	r.buf.WriteString(status)
	_, err := w.Write(r.buf.Bytes())
	return err
}
