package cpu

import (
	"iter"
)

// Link is a label whose address is patched into an opcode's bytes once
// all labels are known.
type Link struct {
	Label  string // Label to resolve.
	Offset int    // Offset of the little-endian address in Bytes.
}

// Opcode represents a line of assembled code with its source location and
// generated bytes.
type Opcode struct {
	LineNo  int      // Source line.
	Address int      // Address of the first byte.
	Words   []string // Source words, after substitution.
	Bytes   []byte   // Generated bytes.
	Links   []Link   // Labels to resolve into Bytes.
}

// Program is an assembled program.
type Program struct {
	Opcodes []Opcode
}

type Debug struct {
	*Opcode
	Index int
}

// Debug finds the opcode covering an address.
func (prog *Program) Debug(addr uint16) (dbg Debug) {
	for n, op := range prog.Opcodes {
		offset := int(addr) - op.Address
		if offset >= 0 && offset < len(op.Bytes) {
			dbg = Debug{
				Opcode: &prog.Opcodes[n],
				Index:  offset,
			}
			break
		}
	}

	return
}

// Bytes iterates the program's bytes with their addresses.
func (prog *Program) Bytes() iter.Seq2[uint16, uint8] {
	return func(yield func(addr uint16, value uint8) bool) {
		for _, op := range prog.Opcodes {
			addr := uint16(op.Address)
			for n, value := range op.Bytes {
				if !yield(addr+uint16(n), value) {
					return
				}
			}
		}
	}
}

// Size is the total number of bytes generated.
func (prog *Program) Size() (size int) {
	for _, op := range prog.Opcodes {
		size += len(op.Bytes)
	}
	return
}

// Load copies the program into memory.
func (prog *Program) Load(mem *Memory) {
	for addr, value := range prog.Bytes() {
		mem.Write(addr, value)
	}
}
