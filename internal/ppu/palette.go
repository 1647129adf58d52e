package ppu

// shades are the four DMG grey levels, lightest first.
var shades = [4]byte{0xFF, 0xC0, 0x60, 0x00}

// shade maps a color index through a BGP/OBP style palette register.
func shade(palette, ci byte) byte {
	return shades[(palette>>(ci*2))&0x03]
}

func setPixel(row []byte, x int, s byte) {
	i := x * 4
	row[i], row[i+1], row[i+2], row[i+3] = s, s, s, 0xFF
}
