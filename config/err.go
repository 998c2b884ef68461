package config

import (
	"errors"

	"github.com/ezrec/k88/translate"
)

var f = translate.From

var (
	ErrConfigKey = errors.New(f("unknown configuration key"))
)

// ErrConfigKind names an instruction kind that does not exist.
type ErrConfigKind string

func (err ErrConfigKind) Error() string {
	return f("unknown instruction kind '%v'", string(err))
}
