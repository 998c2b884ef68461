// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package rom holds K88 memory images, as raw binaries or as hex listings.
package rom

import (
	"bufio"
	"fmt"
	"io"
	"iter"
	"strconv"
	"strings"

	"github.com/ezrec/k88/cpu"
	"github.com/ezrec/k88/internal"
)

// HEX_WIDTH is the number of bytes per line written by WriteHex.
const HEX_WIDTH = 16

// Segment is a run of bytes starting at Origin.
type Segment struct {
	Origin uint16
	Data   []byte
}

// Bytes iterates the segment's bytes with their addresses.
func (seg *Segment) Bytes() iter.Seq2[uint16, uint8] {
	return func(yield func(addr uint16, value uint8) bool) {
		for n, value := range seg.Data {
			if !yield(seg.Origin+uint16(n), value) {
				return
			}
		}
	}
}

// End returns the address following the segment, which may exceed 0xffff.
func (seg *Segment) End() int {
	return int(seg.Origin) + len(seg.Data)
}

// Rom is a memory image built from one or more segments. Later segments
// overwrite earlier ones where they overlap.
type Rom struct {
	Segments []Segment
}

// FromProgram converts an assembled program into an image, one segment per
// contiguous run of bytes.
func FromProgram(prog *cpu.Program) (rom *Rom) {
	rom = &Rom{}
	for addr, value := range prog.Bytes() {
		rom.append(addr, value)
	}
	return
}

// append adds a byte, extending the last segment if it is contiguous.
func (rom *Rom) append(addr uint16, value uint8) {
	if n := len(rom.Segments); n > 0 {
		seg := &rom.Segments[n-1]
		if seg.End() == int(addr) {
			seg.Data = append(seg.Data, value)
			return
		}
	}

	rom.Segments = append(rom.Segments, Segment{Origin: addr, Data: []byte{value}})
}

// Bytes iterates every byte of the image with its address.
func (rom *Rom) Bytes() iter.Seq2[uint16, uint8] {
	seqs := make([]iter.Seq2[uint16, uint8], len(rom.Segments))
	for n := range rom.Segments {
		seqs[n] = rom.Segments[n].Bytes()
	}
	return internal.IterSeq2Concat(seqs...)
}

// Size is the total number of bytes in the image.
func (rom *Rom) Size() (size int) {
	for _, seg := range rom.Segments {
		size += len(seg.Data)
	}
	return
}

// Load copies the image into memory.
func (rom *Rom) Load(mem *cpu.Memory) {
	for _, seg := range rom.Segments {
		mem.Load(seg.Origin, seg.Data)
	}
}

// ReadBinary appends the raw contents of r as a segment at origin.
func (rom *Rom) ReadBinary(r io.Reader, origin uint16) (err error) {
	data, err := io.ReadAll(io.LimitReader(r, cpu.MEMORY_SIZE+1))
	if err != nil {
		return
	}

	if len(data) > cpu.MEMORY_SIZE {
		err = ErrRomTooLarge
		return
	}

	if int(origin)+len(data) > cpu.MEMORY_SIZE {
		err = ErrRomOverflow
		return
	}

	if len(data) > 0 {
		rom.Segments = append(rom.Segments, Segment{Origin: origin, Data: data})
	}

	return
}

// ReadHex appends a hex listing. Each line is an address, a colon, and
// bytes in hex: `8000: 91 00 81`. Text after ';' is ignored.
func (rom *Rom) ReadHex(r io.Reader) (err error) {
	scanner := bufio.NewScanner(r)

	var line string
	var lineno int

	defer func() {
		if err != nil {
			err = &ErrHex{LineNo: lineno, Line: line, Err: err}
		}
	}()

	for scanner.Scan() {
		lineno++
		line = strings.TrimSpace(strings.Split(scanner.Text(), ";")[0])
		if len(line) == 0 {
			continue
		}

		where, what, ok := strings.Cut(line, ":")
		if !ok {
			err = ErrHexAddress
			return
		}

		var addr uint64
		addr, err = strconv.ParseUint(strings.TrimSpace(where), 16, 16)
		if err != nil {
			err = ErrHexAddress
			return
		}

		words := strings.Fields(what)
		if len(words) == 0 {
			err = ErrHexMissingData
			return
		}

		if int(addr)+len(words) > cpu.MEMORY_SIZE {
			err = ErrRomOverflow
			return
		}

		for n, word := range words {
			var value uint64
			value, err = strconv.ParseUint(word, 16, 8)
			if err != nil {
				err = ErrHexByte
				return
			}
			rom.append(uint16(addr)+uint16(n), uint8(value))
		}
	}

	line = ""
	err = scanner.Err()

	return
}

// WriteHex writes the image as a hex listing readable by ReadHex.
func (rom *Rom) WriteHex(w io.Writer) (err error) {
	for _, seg := range rom.Segments {
		for start := 0; start < len(seg.Data); start += HEX_WIDTH {
			chunk := seg.Data[start:min(start+HEX_WIDTH, len(seg.Data))]

			var text strings.Builder
			fmt.Fprintf(&text, "%04X:", seg.Origin+uint16(start))
			for _, value := range chunk {
				fmt.Fprintf(&text, " %02X", value)
			}
			text.WriteString("\n")

			_, err = io.WriteString(w, text.String())
			if err != nil {
				return
			}
		}
	}

	return
}
