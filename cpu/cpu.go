package cpu

import (
	"fmt"
	"iter"
	"log"
	"maps"
)

const (
	RESET_VECTOR        = 0xfff0 // Address of the first instruction executed.
	LEGACY_RESET_VECTOR = 0xffec // Reset vector of the earlier LD/JZ/JE/JC design.
)

var _cpu_defines = map[string]string{
	"RESET_VECTOR":        fmt.Sprintf("0x%x", RESET_VECTOR),
	"LEGACY_RESET_VECTOR": fmt.Sprintf("0x%x", LEGACY_RESET_VECTOR),
	"STACK_PAGE":          fmt.Sprintf("0x%x", STACK_PAGE),
	"MEMORY_SIZE":         fmt.Sprintf("0x%x", MEMORY_SIZE),
}

// executor applies one decoded instruction. On entry cpu.Pc addresses the
// opcode; on exit it addresses the last byte the instruction consumed.
type executor func(cpu *Cpu, code Code)

// _dispatch is indexed by instruction kind.
var _dispatch = [16]executor{
	KIND_ADD: (*Cpu).execAlu,
	KIND_SUB: (*Cpu).execAlu,
	KIND_AND: (*Cpu).execAlu,
	KIND_OR:  (*Cpu).execAlu,
	KIND_NOR: (*Cpu).execAlu,
	KIND_CLF: (*Cpu).execClf,
	KIND_CMP: (*Cpu).execCmp,
	KIND_PSH: (*Cpu).execPsh,
	KIND_POP: (*Cpu).execPop,
	KIND_MOV: (*Cpu).execMov,
	KIND_STO: (*Cpu).execSto,
	KIND_JMP: (*Cpu).execJmp,
	KIND_JFS: (*Cpu).execJfs,
	KIND_JSR: (*Cpu).execJsr,
	KIND_RTS: (*Cpu).execRts,
	KIND_NOP: (*Cpu).execNop,
}

// Cpu is the simulation context for a single K88 processor.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	Memory *Memory // Address space, shared by code, data, and stack.

	Pc       uint16   // Program counter.
	Sp       uint8    // Stack pointer, an offset into StackPage.
	Ir       Code     // Last fetched opcode.
	Register [3]uint8 // IDX, IDY, IDZ.

	Z bool // Zero flag.
	E bool // Equal flag.
	C bool // Carry flag.
	V bool // Overflow flag.

	Halt  bool  // Set by the halt instruction, or an invalid opcode.
	Fault error // Set alongside Halt by an invalid opcode.

	ResetVector uint16 // Pc after Reset.
	StackPage   uint8  // Page holding the stack.
	StackReset  uint8  // Sp after Reset.

	Ticks int // Instructions executed since Reset.

	disabled uint16 // Bitmask of kinds removed from the dispatch table.
}

// NewCpu creates a new CPU with its own zeroed memory.
func NewCpu() (cpu *Cpu) {
	cpu = &Cpu{
		Memory:      &Memory{},
		ResetVector: RESET_VECTOR,
		StackPage:   STACK_PAGE,
		StackReset:  STACK_RESET,
	}

	cpu.Reset()

	return
}

// Defines for the cpu
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	return maps.All(_cpu_defines)
}

// Reset the CPU state.
// - Clears the registers, flags, and halt state.
// - Zeros the tick counter.
// - Sets Pc to the reset vector and Sp to its reset value.
//
// Memory is left untouched; it belongs to whoever loaded the program.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	clear(cpu.Register[:])
	cpu.Z, cpu.E, cpu.C, cpu.V = false, false, false, false
	cpu.Halt = false
	cpu.Fault = nil
	cpu.Ir = 0
	cpu.Ticks = 0

	cpu.Pc = cpu.ResetVector
	cpu.Sp = cpu.StackReset
}

// Disable removes instruction kinds from the dispatch table. Fetching a
// disabled kind is an invalid opcode fault.
func (cpu *Cpu) Disable(kinds ...CodeKind) {
	for _, kind := range kinds {
		cpu.disabled |= 1 << (kind & 0xf)
	}
}

// Enable restores instruction kinds to the dispatch table, or all of them
// if none are given.
func (cpu *Cpu) Enable(kinds ...CodeKind) {
	if len(kinds) == 0 {
		cpu.disabled = 0
		return
	}
	for _, kind := range kinds {
		cpu.disabled &^= 1 << (kind & 0xf)
	}
}

// Enabled returns true if the kind has a dispatch entry.
func (cpu *Cpu) Enabled(kind CodeKind) bool {
	kind &= 0xf
	return _dispatch[kind] != nil && (cpu.disabled&(1<<kind)) == 0
}

// ReadRegister returns the value of a register select. Flags read as 0 or 1,
// and the reserved select reads as 0.
func (cpu *Cpu) ReadRegister(reg CodeReg) (value uint8) {
	var flag bool

	switch reg {
	case REG_IDX, REG_IDY, REG_IDZ:
		return cpu.Register[reg]
	case REG_FGZ:
		flag = cpu.Z
	case REG_FGE:
		flag = cpu.E
	case REG_FGC:
		flag = cpu.C
	case REG_FGV:
		flag = cpu.V
	default:
		return 0
	}

	if flag {
		value = 1
	}
	return
}

// WriteRegister sets a register select. Flags take bit 0 of the value, and
// writes to the reserved select are dropped.
func (cpu *Cpu) WriteRegister(reg CodeReg, value uint8) {
	flag := (value & 1) != 0

	switch reg {
	case REG_IDX, REG_IDY, REG_IDZ:
		cpu.Register[reg] = value
	case REG_FGZ:
		cpu.Z = flag
	case REG_FGE:
		cpu.E = flag
	case REG_FGC:
		cpu.C = flag
	case REG_FGV:
		cpu.V = flag
	}
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	regs := []string{
		"pc", "sp", "ir",
		"idx", "idy", "idz",
		"flags", "halt",
	}
	bit := func(flag bool) int {
		if flag {
			return 1
		}
		return 0
	}
	for _, reg := range regs {
		var strval string
		switch reg {
		case "pc":
			strval = fmt.Sprintf("%04X", cpu.Pc)
		case "sp":
			strval = fmt.Sprintf("%02X (%04X)", cpu.Sp, cpu.StackAddress())
		case "ir":
			strval = fmt.Sprintf("%02X %v", uint8(cpu.Ir), cpu.Ir.Mnemonic())
		case "idx", "idy", "idz":
			val := cpu.Register[reg[2]-'x']
			strval = fmt.Sprintf("%02X", val)
		case "flags":
			strval = fmt.Sprintf("Z=%d E=%d C=%d V=%d", bit(cpu.Z), bit(cpu.E), bit(cpu.C), bit(cpu.V))
		case "halt":
			strval = "false"
			if cpu.Halt {
				strval = "true"
			}
		}
		text += fmt.Sprintf("% 5s: %v\n", reg, strval)
	}

	return
}

// Trace returns a single line of state for the instruction at Pc.
func (cpu *Cpu) Trace() string {
	bit := func(flag bool) int {
		if flag {
			return 1
		}
		return 0
	}
	ins, _ := Disassemble(cpu.Memory, cpu.Pc)
	return fmt.Sprintf("PC: %04X | SP: %02X | IR: %02X   INS: %-18s REGISTERS: IDX=%02X  IDY=%02X  IDZ=%02X   FLAGS: Z=%d  E=%d  C=%d  V=%d",
		cpu.Pc, cpu.Sp, cpu.Memory.Read(cpu.Pc), ins,
		cpu.Register[REG_IDX], cpu.Register[REG_IDY], cpu.Register[REG_IDZ],
		bit(cpu.Z), bit(cpu.E), bit(cpu.C), bit(cpu.V))
}

// Fetch reads the opcode at Pc into the instruction register.
func (cpu *Cpu) Fetch() Code {
	cpu.Ir = Code(cpu.Memory.Read(cpu.Pc))
	return cpu.Ir
}

// Tick executes a single fetch, decode, execute, advance cycle.
func (cpu *Cpu) Tick() (err error) {
	if cpu.Halt {
		err = ErrHalted
		return
	}

	if cpu.Verbose {
		log.Printf("%v", cpu.Trace())
	}

	code := cpu.Fetch()

	err = cpu.Execute(code)

	cpu.Pc++
	cpu.Ticks++

	return
}

// Run ticks until the CPU halts. A program that never halts never returns.
// The only error is an invalid opcode fault.
func (cpu *Cpu) Run() (err error) {
	for !cpu.Halt {
		err = cpu.Tick()
		if err != nil {
			return
		}
	}

	return
}

// Execute executes a single decoded instruction, with Pc addressing its
// opcode. The caller advances Pc afterwards.
func (cpu *Cpu) Execute(code Code) (err error) {
	kind := code.Kind()
	if !cpu.Enabled(kind) {
		err = ErrOpcode{Pc: cpu.Pc, Code: code}
		cpu.Halt = true
		cpu.Fault = err
		if cpu.Verbose {
			log.Printf("cpu: %v", err)
		}
		return
	}

	_dispatch[kind](cpu, code)

	if cpu.Verbose && cpu.Halt {
		log.Printf("cpu: halted at 0x%04x", cpu.Pc)
	}

	return
}

// next advances Pc and reads the byte there.
func (cpu *Cpu) next() uint8 {
	cpu.Pc++
	return cpu.Memory.Read(cpu.Pc)
}

// nextAddress reads a little-endian address following Pc.
func (cpu *Cpu) nextAddress() uint16 {
	lo := cpu.next()
	hi := cpu.next()
	return (uint16(hi) << 8) | uint16(lo)
}

// getValue resolves the operand for an addressing mode: a register id byte
// in register mode, or the contents of an absolute address.
func (cpu *Cpu) getValue(mode CodeMode) (value uint8) {
	if mode == MODE_REGISTER {
		return cpu.ReadRegister(CodeReg(cpu.next() & 0x7))
	}

	return cpu.Memory.Read(cpu.nextAddress())
}

// jump to target; the advance step lands Pc on it.
func (cpu *Cpu) jump(target uint16) {
	cpu.Pc = target - 1
}

// doAlu performs the requested ALU action, updates the flags it owns, and
// returns the output value.
//
// The carry and overflow tests are this processor's own, not two's
// complement: ADD sets C and V when bit 7 of the input is set and bit 7 of
// the output is clear; SUB sets V when the wrapped output exceeds the input.
// Flags are only ever set here, never cleared.
func (cpu *Cpu) doAlu(kind CodeKind, input uint8, value uint8) (output uint8) {
	switch kind {
	case KIND_ADD:
		output = input + value
		if output == 0 {
			cpu.Z = true
		}
		if (input&0x80) != 0 && (output&0x80) == 0 {
			cpu.C = true
			cpu.V = true
		}
	case KIND_SUB:
		output = input - value
		if output == 0 {
			cpu.Z = true
		}
		if output > input {
			cpu.V = true
		}
	case KIND_AND:
		output = input & value
	case KIND_OR:
		output = input | value
	case KIND_NOR:
		output = ^(input | value)
	}

	return
}

func (cpu *Cpu) execAlu(code Code) {
	kind, mode, reg := code.Decode()
	value := cpu.getValue(mode)
	input := cpu.ReadRegister(reg)
	cpu.WriteRegister(reg, cpu.doAlu(kind, input, value))
}

func (cpu *Cpu) execClf(code Code) {
	switch code.Reg() {
	case REG_FGZ:
		cpu.Z = false
	case REG_FGE:
		cpu.E = false
	case REG_FGC:
		cpu.C = false
	case REG_FGV:
		cpu.V = false
	}
}

// execCmp compares the operand against the register. Exactly one of Z, E, C
// is left set; V is untouched.
func (cpu *Cpu) execCmp(code Code) {
	_, mode, reg := code.Decode()
	value := cpu.getValue(mode)
	input := cpu.ReadRegister(reg)

	switch {
	case value > input:
		cpu.Z, cpu.E, cpu.C = true, false, false
	case value == input:
		cpu.Z, cpu.E, cpu.C = false, true, false
	default:
		cpu.Z, cpu.E, cpu.C = false, false, true
	}
}

func (cpu *Cpu) execPsh(code Code) {
	cpu.Push(cpu.ReadRegister(code.Reg()))
}

func (cpu *Cpu) execPop(code Code) {
	cpu.WriteRegister(code.Reg(), cpu.Pop())
}

func (cpu *Cpu) execMov(code Code) {
	_, mode, reg := code.Decode()
	cpu.WriteRegister(reg, cpu.getValue(mode))
}

func (cpu *Cpu) execSto(code Code) {
	addr := cpu.nextAddress()
	cpu.Memory.Write(addr, cpu.ReadRegister(code.Reg()))
}

func (cpu *Cpu) execJmp(code Code) {
	cpu.jump(cpu.nextAddress())
}

func (cpu *Cpu) execJfs(code Code) {
	if cpu.ReadRegister(code.Reg()) == 1 {
		cpu.jump(cpu.nextAddress())
		return
	}

	// Skip the target.
	cpu.Pc += 2
}

// execJsr pushes the address of its own last byte, high byte first, so that
// RTS plus the advance step resumes after the call.
func (cpu *Cpu) execJsr(code Code) {
	ret := cpu.Pc + 2
	cpu.Push(uint8(ret >> 8))
	cpu.Push(uint8(ret & 0xff))
	cpu.jump(cpu.nextAddress())
}

func (cpu *Cpu) execRts(code Code) {
	lo := cpu.Pop()
	hi := cpu.Pop()
	cpu.Pc = (uint16(hi) << 8) | uint16(lo)
}

func (cpu *Cpu) execNop(code Code) {
	if code.Halt() {
		cpu.Halt = true
	}
}
