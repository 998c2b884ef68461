package cpu

import (
	"errors"

	"github.com/ezrec/k88/translate"
)

var f = translate.From

var (
	// Cpu errors
	ErrHalted        = errors.New(f("cpu halted"))
	ErrOpcodeInvalid = errors.New(f("opcode invalid"))

	// Assembler errors
	ErrEquateSyntax       = errors.New(f(".equ syntax"))
	ErrEquateDuplicate    = errors.New(f(".equ duplicated"))
	ErrLabelDuplicate     = errors.New(f("label duplicated"))
	ErrMacroSyntax        = errors.New(f(".macro syntax"))
	ErrMacroNesting       = errors.New(f(".macro in .macro prohibited"))
	ErrMacroDuplicate     = errors.New(f(".macro duplicated"))
	ErrMacroLonely        = errors.New(f(".macro without .endm"))
	ErrMacroLonelyEndm    = errors.New(f(".endm without .macro"))
	ErrOpcodeExtraArgs    = errors.New(f("excessive arguments"))
	ErrOpcodeValueMissing = errors.New(f("value missing"))
	ErrRegisterInvalid    = errors.New(f("register invalid"))
	ErrFlagInvalid        = errors.New(f("flag invalid"))
	ErrAddressInvalid     = errors.New(f("address invalid"))
	ErrAddressOverflow    = errors.New(f("address overflow"))
	ErrByteInvalid        = errors.New(f("byte out of range"))
	ErrInstructionInvalid = errors.New(f("instruction invalid"))
)

type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

// ErrOpcode is the fault raised when a fetched opcode has no dispatch entry.
type ErrOpcode struct {
	Pc   uint16 // Address of the faulting opcode.
	Code Code   // Faulting opcode.
}

func (eo ErrOpcode) Error() string {
	return f("bad opcode 0x%02x (%v) at 0x%04x", uint8(eo.Code), eo.Code.String(), eo.Pc)
}

func (eo ErrOpcode) Is(err error) (ok bool) {
	if err == ErrOpcodeInvalid {
		return true
	}
	_, ok = err.(ErrOpcode)
	return
}

type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrParseCharacter string

func (err ErrParseCharacter) Error() string {
	return f("'%v' is not a character", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}

type ErrMacro struct {
	Macro string
	Line  int
	Err   error
}

func (err ErrMacro) Error() string {
	return f("macro %v line %v %v", err.Macro, err.Line, err.Err.Error())
}

func (err ErrMacro) Unwrap() error {
	return err.Err
}
