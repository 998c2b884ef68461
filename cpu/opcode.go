package cpu

import (
	"fmt"
)

// CodeKind is the instruction kind held in the upper nibble of an opcode.
type CodeKind int

//go:generate go tool stringer -linecomment -type=CodeKind
const (
	KIND_ADD = CodeKind(0)  // add
	KIND_SUB = CodeKind(1)  // sub
	KIND_AND = CodeKind(2)  // and
	KIND_OR  = CodeKind(3)  // or
	KIND_NOR = CodeKind(4)  // nor
	KIND_CLF = CodeKind(5)  // clf
	KIND_CMP = CodeKind(6)  // cmp
	KIND_PSH = CodeKind(7)  // psh
	KIND_POP = CodeKind(8)  // pop
	KIND_MOV = CodeKind(9)  // mov
	KIND_STO = CodeKind(10) // sto
	KIND_JMP = CodeKind(11) // jmp
	KIND_JFS = CodeKind(12) // jfs
	KIND_JSR = CodeKind(13) // jsr
	KIND_RTS = CodeKind(14) // rts
	KIND_NOP = CodeKind(15) // nop
)

// CodeMode is the addressing mode bit.
type CodeMode int

//go:generate go tool stringer -linecomment -type=CodeMode
const (
	MODE_ABSOLUTE = CodeMode(0) // abs
	MODE_REGISTER = CodeMode(1) // reg
)

// CodeReg is a register select, used both in the opcode and as a
// register-mode operand byte.
type CodeReg int

//go:generate go tool stringer -linecomment -type=CodeReg
const (
	REG_IDX  = CodeReg(0) // idx
	REG_IDY  = CodeReg(1) // idy
	REG_IDZ  = CodeReg(2) // idz
	REG_FGZ  = CodeReg(3) // fgz
	REG_FGE  = CodeReg(4) // fge
	REG_FGC  = CodeReg(5) // fgc
	REG_FGV  = CodeReg(6) // fgv
	REG_NONE = CodeReg(7) // -
)

// Flag returns true if the register select names a status flag.
func (reg CodeReg) Flag() bool {
	return reg >= REG_FGZ && reg <= REG_FGV
}

// Code is a single opcode byte: [kind:4][mode:1][reg:3].
type Code uint8

// CODE_HALT is the dedicated halt encoding (nop, register mode, register 7).
const CODE_HALT = Code(0xff)

// MakeCode assembles an opcode byte.
func MakeCode(kind CodeKind, mode CodeMode, reg CodeReg) Code {
	return Code((uint8(kind&0xf) << 4) | (uint8(mode&1) << 3) | uint8(reg&7))
}

// Kind returns the instruction kind.
func (code Code) Kind() CodeKind {
	return CodeKind((code >> 4) & 0xf)
}

// Mode returns the addressing mode.
func (code Code) Mode() CodeMode {
	return CodeMode((code >> 3) & 0x1)
}

// Reg returns the register select.
func (code Code) Reg() CodeReg {
	return CodeReg((code >> 0) & 0x7)
}

// Decode splits the opcode into its kind, mode, and register fields.
func (code Code) Decode() (kind CodeKind, mode CodeMode, reg CodeReg) {
	return code.Kind(), code.Mode(), code.Reg()
}

// Halt returns true for the halt encoding.
func (code Code) Halt() bool {
	return code == CODE_HALT
}

// Operand returns true if the kind takes a mode-dependent operand.
func (kind CodeKind) Operand() bool {
	switch kind {
	case KIND_ADD, KIND_SUB, KIND_AND, KIND_OR, KIND_NOR, KIND_CMP, KIND_MOV:
		return true
	}
	return false
}

// Address returns true if the kind always takes a 16-bit address.
func (kind CodeKind) Address() bool {
	switch kind {
	case KIND_STO, KIND_JMP, KIND_JFS, KIND_JSR:
		return true
	}
	return false
}

// Size returns the number of bytes the instruction occupies, including
// the opcode itself.
func (code Code) Size() int {
	kind, mode, _ := code.Decode()

	switch {
	case kind.Operand() && mode == MODE_REGISTER:
		return 2
	case kind.Operand():
		return 3
	case kind.Address():
		return 3
	}

	return 1
}

// Mnemonic returns the upper case instruction name.
func (code Code) Mnemonic() string {
	if code.Halt() {
		return "HLT"
	}

	switch code.Kind() {
	case KIND_ADD:
		return "ADD"
	case KIND_SUB:
		return "SUB"
	case KIND_AND:
		return "AND"
	case KIND_OR:
		return "OR"
	case KIND_NOR:
		return "NOR"
	case KIND_CLF:
		return "CLF"
	case KIND_CMP:
		return "CMP"
	case KIND_PSH:
		return "PSH"
	case KIND_POP:
		return "POP"
	case KIND_MOV:
		return "MOV"
	case KIND_STO:
		return "STO"
	case KIND_JMP:
		return "JMP"
	case KIND_JFS:
		return "JFS"
	case KIND_JSR:
		return "JSR"
	case KIND_RTS:
		return "RTS"
	}

	return "NOP"
}

// String returns the decoded fields, as kind.mode.reg.
func (code Code) String() string {
	if code.Halt() {
		return "hlt"
	}

	kind, mode, reg := code.Decode()
	return fmt.Sprintf("%v.%v.%v", kind.String(), mode.String(), reg.String())
}
