package cpu

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// fuzzState is a flat view of the architectural state, with register
// selects 3..6 holding the flags as 0 or 1.
type fuzzState struct {
	reg [8]uint8
	pc  uint16
	sp  uint8
}

func (fs *fuzzState) read(reg CodeReg) uint8 {
	if reg == REG_NONE {
		return 0
	}
	return fs.reg[reg]
}

func (fs *fuzzState) write(reg CodeReg, value uint8) {
	switch {
	case reg == REG_NONE:
	case reg.Flag():
		fs.reg[reg] = value & 1
	default:
		fs.reg[reg] = value
	}
}

func (fs *fuzzState) set(reg CodeReg) {
	fs.reg[reg] = 1
}

func stateOf(cpu *Cpu) (fs fuzzState) {
	for reg := REG_IDX; reg <= REG_FGV; reg++ {
		fs.reg[reg] = cpu.ReadRegister(reg)
	}
	fs.pc = cpu.Pc
	fs.sp = cpu.Sp
	return
}

func FuzzCpu(f *testing.F) {
	for code := range 256 {
		f.Add(uint8(code), uint8(0x01), uint8(0x90), uint8(0x00))
		f.Add(uint8(code), uint8(0xfe), uint8(0x00), uint8(0x0f))
	}

	f.Fuzz(func(t *testing.T, opcode uint8, b1 uint8, b2 uint8, flags uint8) {
		assert := assert.New(t)

		const base = 0x4000

		cpu := NewCpu()
		cpu.Pc = base
		cpu.Sp = 0x80
		cpu.Register = [3]uint8{0x50, 0x81, 0x01}
		cpu.Z = flags&1 != 0
		cpu.E = flags&2 != 0
		cpu.C = flags&4 != 0
		cpu.V = flags&8 != 0
		cpu.Memory.Load(base, []uint8{opcode, b1, b2})
		cpu.Memory.Load(0xff80, []uint8{0x10, 0x20})

		addr := (uint16(b2) << 8) | uint16(b1)
		code := Code(opcode)
		kind, mode, reg := code.Decode()

		pre := stateOf(cpu)
		premem := *cpu.Memory

		expect := pre
		expect.pc = base + uint16(code.Size())

		operand := func() (value uint8) {
			if mode == MODE_REGISTER {
				return pre.read(CodeReg(b1 & 7))
			}
			return premem[addr]
		}

		// Expected memory side effect, if any.
		var storeAt []uint16
		var storeVal []uint8

		switch {
		case code.Halt():
		case kind == KIND_ADD:
			in, value := pre.read(reg), operand()
			out := in + value
			if out == 0 {
				expect.set(REG_FGZ)
			}
			if in&0x80 != 0 && out&0x80 == 0 {
				expect.set(REG_FGC)
				expect.set(REG_FGV)
			}
			expect.write(reg, out)
		case kind == KIND_SUB:
			in, value := pre.read(reg), operand()
			out := in - value
			if out == 0 {
				expect.set(REG_FGZ)
			}
			if out > in {
				expect.set(REG_FGV)
			}
			expect.write(reg, out)
		case kind == KIND_AND:
			expect.write(reg, pre.read(reg)&operand())
		case kind == KIND_OR:
			expect.write(reg, pre.read(reg)|operand())
		case kind == KIND_NOR:
			expect.write(reg, ^(pre.read(reg) | operand()))
		case kind == KIND_CLF:
			if reg.Flag() {
				expect.reg[reg] = 0
			}
		case kind == KIND_CMP:
			in, value := pre.read(reg), operand()
			expect.reg[REG_FGZ], expect.reg[REG_FGE], expect.reg[REG_FGC] = 0, 0, 0
			switch {
			case value > in:
				expect.set(REG_FGZ)
			case value == in:
				expect.set(REG_FGE)
			default:
				expect.set(REG_FGC)
			}
		case kind == KIND_PSH:
			expect.sp = 0x7f
			storeAt = append(storeAt, 0xff7f)
			storeVal = append(storeVal, pre.read(reg))
		case kind == KIND_POP:
			expect.sp = 0x81
			expect.write(reg, 0x10)
		case kind == KIND_MOV:
			expect.write(reg, operand())
		case kind == KIND_STO:
			storeAt = append(storeAt, addr)
			storeVal = append(storeVal, pre.read(reg))
		case kind == KIND_JMP:
			expect.pc = addr
		case kind == KIND_JFS:
			if pre.read(reg) == 1 {
				expect.pc = addr
			}
		case kind == KIND_JSR:
			expect.pc = addr
			expect.sp = 0x7e
			storeAt = append(storeAt, 0xff7f, 0xff7e)
			storeVal = append(storeVal, uint8((base+2)>>8), uint8((base+2)&0xff))
		case kind == KIND_RTS:
			expect.pc = 0x2010 + 1
			expect.sp = 0x82
		case kind == KIND_NOP:
		}

		err := cpu.Tick()
		assert.NoError(err)

		here := fmt.Sprintf("0x%02x (%v) operand 0x%02x 0x%02x flags %04b\n%v", opcode, code, b1, b2, flags, cpu.String())

		assert.Equal(code.Halt(), cpu.Halt, here)
		assert.Equal(expect, stateOf(cpu), here)
		assert.Equal(1, cpu.Ticks, here)

		for n, at := range storeAt {
			premem[at] = storeVal[n]
		}
		assert.True(premem == *cpu.Memory, here)
	})
}
