// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"fmt"
	"iter"
	"log"
	"maps"

	"github.com/ezrec/k88/config"
	"github.com/ezrec/k88/cpu"
	"github.com/ezrec/k88/internal"
	"github.com/ezrec/k88/rom"
)

var _emulator_defines = map[string]string{
	"LEGACY_RESET_VECTOR": fmt.Sprintf("%#x", cpu.LEGACY_RESET_VECTOR),
	"STACK_RESET":         fmt.Sprintf("%#x", cpu.STACK_RESET),
}

// Emulator state. CPU + memory image + assembled program.
type Emulator struct {
	Verbose  bool         // If set, enables verbose logging.
	*cpu.Cpu              // Reference to the CPU simulation.
	Program  *cpu.Program // Reference to the currently running program listing.
	Rom      *rom.Rom     // Image loaded before the program.
	Config   *config.Config
}

// NewEmulator creates a new emulator for the standard machine.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{
		Cpu:     cpu.NewCpu(),
		Program: &cpu.Program{},
		Rom:     &rom.Rom{},
		Config:  config.Default(),
	}

	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.IterSeq2Concat(maps.All(_emulator_defines),
		emu.Cpu.Defines(),
		maps.All(map[string]string{
			"RESET_VECTOR": fmt.Sprintf("%#x", emu.Config.ResetVector),
			"STACK_PAGE":   fmt.Sprintf("%#x", emu.Config.StackPage),
		}),
	)
}

// Reset clears memory, loads the image and then the program, and resets the
// CPU with the configured machine parameters.
func (emu *Emulator) Reset() (err error) {
	if emu.Verbose {
		log.Printf("emulator: reset")
	}

	err = emu.Config.Apply(emu.Cpu)
	if err != nil {
		return
	}
	emu.Cpu.Verbose = emu.Verbose || emu.Config.Verbose

	emu.Cpu.Memory.Reset()
	emu.Rom.Load(emu.Cpu.Memory)
	emu.Program.Load(emu.Cpu.Memory)

	emu.Cpu.Reset()

	return
}

// LineNo returns the current line number for the executing opcode.
func (emu *Emulator) LineNo() int {
	dbg := emu.Program.Debug(emu.Cpu.Pc)
	if dbg.Opcode == nil {
		return 0
	}

	return dbg.Opcode.LineNo
}

// Code returns the opcode at Pc.
func (emu *Emulator) Code() cpu.Code {
	return cpu.Code(emu.Cpu.Memory.Read(emu.Cpu.Pc))
}

// Tick performs a single instruction. done is set once the CPU has halted.
func (emu *Emulator) Tick() (done bool, err error) {
	if emu.Cpu.Halt {
		done = true
		return
	}

	pc := emu.Cpu.Pc
	lineno := emu.LineNo()
	defer func() {
		if err != nil {
			err = &ErrRuntime{Address: pc, LineNo: lineno, Err: err}
		}
	}()

	if emu.Config.MaxTicks > 0 && emu.Cpu.Ticks >= emu.Config.MaxTicks {
		err = ErrTickLimit
		return
	}

	err = emu.Cpu.Tick()
	done = emu.Cpu.Halt

	return
}

// Run ticks until the CPU halts, faults, or reaches the tick limit.
func (emu *Emulator) Run() (err error) {
	for done := false; !done; {
		done, err = emu.Tick()
		if err != nil {
			return
		}
	}

	return
}
