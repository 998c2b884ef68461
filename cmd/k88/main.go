// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"github.com/k0kubun/pp/v3"
	"golang.org/x/term"

	"github.com/ezrec/k88/config"
	"github.com/ezrec/k88/cpu"
	"github.com/ezrec/k88/emulator"
	"github.com/ezrec/k88/rom"
	"github.com/ezrec/k88/translate"
)

// machineState is the final state shown by -dump.
type machineState struct {
	Pc    uint16
	Sp    uint8
	Idx   uint8
	Idy   uint8
	Idz   uint8
	Z     bool
	E     bool
	C     bool
	V     bool
	Halt  bool
	Fault error
	Ticks int
}

func stateOf(c *cpu.Cpu) machineState {
	return machineState{
		Pc:    c.Pc,
		Sp:    c.Sp,
		Idx:   c.Register[cpu.REG_IDX],
		Idy:   c.Register[cpu.REG_IDY],
		Idz:   c.Register[cpu.REG_IDZ],
		Z:     c.Z,
		E:     c.E,
		C:     c.C,
		V:     c.V,
		Halt:  c.Halt,
		Fault: c.Fault,
		Ticks: c.Ticks,
	}
}

func openInput(path string) (inf io.ReadCloser) {
	if path == "-" {
		return io.NopCloser(os.Stdin)
	}

	inf, err := os.Open(path)
	if err != nil {
		log.Fatalf("%v: %v", path, err)
	}

	return
}

func main() {
	var compile string
	var hexImage string
	var binImage string
	var origin string
	var save string
	var machine string
	var ticks int
	var lang string
	var verbose bool
	var dump bool

	flag.StringVar(&compile, "c", "", ".k88 file to assemble")
	flag.StringVar(&hexImage, "i", "", "Hex image to load")
	flag.StringVar(&binImage, "b", "", "Binary image to load")
	flag.StringVar(&origin, "org", "0x8000", "Load address of the binary image")
	flag.StringVar(&save, "s", "", "Save the hex image, do not execute")
	flag.StringVar(&machine, "config", "", "Machine description (TOML)")
	flag.IntVar(&ticks, "n", 0, "Tick limit; 0 uses the machine description")
	flag.StringVar(&lang, "lang", "", "Language for runtime and syntax messages")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")
	flag.BoolVar(&dump, "dump", false, "Dump the final machine state")

	flag.Parse()

	if flag.NArg() != 0 {
		log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
	}

	if len(lang) != 0 {
		err := translate.Use(lang)
		if err != nil {
			log.Fatalf("-lang %v: %v", lang, err)
		}
	}

	emu := emulator.NewEmulator()
	emu.Verbose = verbose

	if len(machine) != 0 {
		cfg, err := config.Load(machine)
		if err != nil {
			log.Fatal(err)
		}
		emu.Config = cfg
	}
	if ticks > 0 {
		emu.Config.MaxTicks = ticks
	}

	if len(hexImage) != 0 {
		inf := openInput(hexImage)
		err := emu.Rom.ReadHex(inf)
		inf.Close()
		if err != nil {
			log.Fatalf("%v: %v", hexImage, err)
		}
	}

	if len(binImage) != 0 {
		addr, err := strconv.ParseUint(origin, 0, 16)
		if err != nil {
			log.Fatalf("-org %v: %v", origin, err)
		}
		inf := openInput(binImage)
		err = emu.Rom.ReadBinary(inf, uint16(addr))
		inf.Close()
		if err != nil {
			log.Fatalf("%v: %v", binImage, err)
		}
	}

	// Assemble a new program.
	if len(compile) != 0 {
		inf := openInput(compile)
		defer inf.Close()

		asm := &cpu.Assembler{Verbose: verbose}
		for key, value := range emu.Defines() {
			asm.Predefine(key, value)
		}

		prog, err := asm.Parse(inf)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
		emu.Program = prog
	}

	if len(save) != 0 {
		image := &rom.Rom{}
		image.Segments = append(image.Segments, emu.Rom.Segments...)
		image.Segments = append(image.Segments, rom.FromProgram(emu.Program).Segments...)

		ouf := io.WriteCloser(os.Stdout)
		if save != "-" {
			var err error
			ouf, err = os.Create(save)
			if err != nil {
				log.Fatalf("%v: %v", save, err)
			}
		}
		err := image.WriteHex(ouf)
		if err == nil {
			err = ouf.Close()
		}
		if err != nil {
			log.Fatalf("%v: %v", save, err)
		}
		return
	}

	err := emu.Reset()
	if err != nil {
		log.Fatal(err)
	}

	runErr := emu.Run()

	if dump {
		printer := pp.New()
		printer.SetColoringEnabled(term.IsTerminal(int(os.Stdout.Fd())))
		printer.Println(stateOf(emu.Cpu))
	} else {
		fmt.Print(emu.Cpu.String())
	}

	if runErr != nil {
		log.Fatal(runErr)
	}
}
