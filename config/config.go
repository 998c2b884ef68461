// Package config describes a K88 machine variant, read from a TOML file.
//
//	reset_vector  = 0xfff0
//	stack_page    = 0xff
//	stack_pointer = 0x00
//	max_ticks     = 100000
//	verbose       = false
//	disable       = ["jsr", "rts"]
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/ezrec/k88/cpu"
)

// Config holds the machine parameters not fixed by the instruction set.
type Config struct {
	ResetVector  uint16   `toml:"reset_vector"`  // Pc after reset.
	StackPage    uint8    `toml:"stack_page"`    // Page holding the stack.
	StackPointer uint8    `toml:"stack_pointer"` // Sp after reset.
	MaxTicks     int      `toml:"max_ticks"`     // Tick limit for a run; 0 is unlimited.
	Verbose      bool     `toml:"verbose"`       // Trace every instruction.
	Disable      []string `toml:"disable"`       // Instruction kinds left out of the core.
}

// Default returns the standard K88.
func Default() *Config {
	return &Config{
		ResetVector:  cpu.RESET_VECTOR,
		StackPage:    cpu.STACK_PAGE,
		StackPointer: cpu.STACK_RESET,
	}
}

// Parse reads a TOML machine description. Keys not given keep their
// default values; unknown keys are an error.
func Parse(r io.Reader) (cfg *Config, err error) {
	cfg = Default()

	md, err := toml.NewDecoder(r).Decode(cfg)
	if err != nil {
		cfg = nil
		return
	}

	if undecoded := md.Undecoded(); len(undecoded) != 0 {
		keys := make([]string, len(undecoded))
		for n, key := range undecoded {
			keys[n] = key.String()
		}
		cfg = nil
		err = fmt.Errorf("%w: %v", ErrConfigKey, strings.Join(keys, ", "))
		return
	}

	_, err = cfg.Kinds()
	if err != nil {
		cfg = nil
		return
	}

	return
}

// Load reads a TOML machine description from a file.
func Load(path string) (cfg *Config, err error) {
	inf, err := os.Open(path)
	if err != nil {
		return
	}
	defer inf.Close()

	cfg, err = Parse(inf)
	if err != nil {
		err = fmt.Errorf("%v: %w", path, err)
	}
	return
}

// Kinds resolves the disabled instruction names.
func (cfg *Config) Kinds() (kinds []cpu.CodeKind, err error) {
	var errs []error

	for _, name := range cfg.Disable {
		kind, ok := kindOf(name)
		if !ok {
			errs = append(errs, ErrConfigKind(name))
			continue
		}
		kinds = append(kinds, kind)
	}

	err = errors.Join(errs...)
	return
}

func kindOf(name string) (kind cpu.CodeKind, ok bool) {
	name = strings.ToLower(name)
	for n := range 16 {
		kind = cpu.CodeKind(n)
		if kind.String() == name {
			ok = true
			return
		}
	}
	return
}

// Apply configures a CPU. The CPU should be reset afterwards for the reset
// vector and stack pointer to take effect.
func (cfg *Config) Apply(c *cpu.Cpu) (err error) {
	kinds, err := cfg.Kinds()
	if err != nil {
		return
	}

	c.ResetVector = cfg.ResetVector
	c.StackPage = cfg.StackPage
	c.StackReset = cfg.StackPointer
	c.Verbose = cfg.Verbose
	c.Enable()
	c.Disable(kinds...)

	return
}
