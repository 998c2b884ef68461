package cpu

import (
	"fmt"
)

// Disassemble renders the instruction at addr in assembler syntax, and
// returns its size in bytes.
func Disassemble(mem *Memory, addr uint16) (text string, size int) {
	code := Code(mem.Read(addr))
	kind, mode, reg := code.Decode()
	size = code.Size()

	switch {
	case code.Halt():
		text = "hlt"
	case kind.Operand() && mode == MODE_REGISTER:
		src := CodeReg(mem.Read(addr+1) & 0x7)
		text = fmt.Sprintf("%v %v %v", kind, reg, src)
	case kind.Operand():
		text = fmt.Sprintf("%v %v [0x%04x]", kind, reg, mem.ReadWord(addr+1))
	case kind == KIND_STO, kind == KIND_JFS:
		text = fmt.Sprintf("%v %v 0x%04x", kind, reg, mem.ReadWord(addr+1))
	case kind == KIND_JMP, kind == KIND_JSR:
		text = fmt.Sprintf("%v 0x%04x", kind, mem.ReadWord(addr+1))
	case kind == KIND_CLF, kind == KIND_PSH, kind == KIND_POP:
		text = fmt.Sprintf("%v %v", kind, reg)
	default:
		text = kind.String()
	}

	return
}
