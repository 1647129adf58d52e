package cpu

import (
	"fmt"
	"strings"
)

// Disassemble decodes the instruction at pc. Unused opcodes come back as a
// DB directive of length 1.
func Disassemble(read func(addr uint16) byte, pc uint16) (string, uint16) {
	code := read(pc)
	if code == 0xCB {
		return prefixed[read(pc+1)].name, 2
	}
	op := base[code]
	if op == nil {
		return fmt.Sprintf("DB $%02X", code), 1
	}

	text := op.name
	switch {
	case strings.Contains(text, "d16"), strings.Contains(text, "a16"):
		v := uint16(read(pc+1)) | uint16(read(pc+2))<<8
		text = strings.NewReplacer("d16", fmt.Sprintf("$%04X", v), "a16", fmt.Sprintf("$%04X", v)).Replace(text)
	case strings.Contains(text, "SP+r8"):
		text = strings.Replace(text, "r8", fmt.Sprintf("%d", int8(read(pc+1))), 1)
	case strings.Contains(text, "r8"):
		if strings.HasPrefix(text, "JR") {
			target := pc + 2 + uint16(int16(int8(read(pc+1))))
			text = strings.Replace(text, "r8", fmt.Sprintf("$%04X", target), 1)
		} else {
			text = strings.Replace(text, "r8", fmt.Sprintf("%d", int8(read(pc+1))), 1)
		}
	case strings.Contains(text, "a8"):
		text = strings.Replace(text, "a8", fmt.Sprintf("$FF%02X", read(pc+1)), 1)
	case strings.Contains(text, "d8"):
		text = strings.Replace(text, "d8", fmt.Sprintf("$%02X", read(pc+1)), 1)
	}
	return text, op.length
}
