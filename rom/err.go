package rom

import (
	"errors"

	"github.com/ezrec/k88/translate"
)

var f = translate.From

var (
	// Image errors
	ErrRomTooLarge    = errors.New(f("image larger than memory"))
	ErrRomOverflow    = errors.New(f("image wraps past 0xffff"))
	ErrHexAddress     = errors.New(f("hex address invalid"))
	ErrHexByte        = errors.New(f("hex byte invalid"))
	ErrHexMissingData = errors.New(f("hex line has no data"))
)

// ErrHex locates a syntax error in a hex image.
type ErrHex struct {
	LineNo int
	Line   string
	Err    error
}

func (err *ErrHex) Error() string {
	return f("hex line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err *ErrHex) Unwrap() error {
	return err.Err
}
