package cpu

const (
	STACK_PAGE  = 0xff // Default page holding the stack.
	STACK_RESET = 0x00 // Default stack pointer; the first push lands at 0xFF.
)

// StackAddress returns the memory address the stack pointer refers to.
func (cpu *Cpu) StackAddress() uint16 {
	return (uint16(cpu.StackPage) << 8) | uint16(cpu.Sp)
}

// Push decrements SP, then writes value at the new top of stack.
func (cpu *Cpu) Push(value uint8) {
	cpu.Sp--
	cpu.Memory.Write(cpu.StackAddress(), value)
}

// Pop reads the top of stack, then increments SP.
func (cpu *Cpu) Pop() (value uint8) {
	value = cpu.Peek()
	cpu.Sp++
	return
}

// Peek reads the top of stack without moving SP.
func (cpu *Cpu) Peek() (value uint8) {
	return cpu.Memory.Read(cpu.StackAddress())
}

// StackDepth is the number of bytes pushed since the stack was reset.
// The stack wraps within its page, so the depth is modulo 256.
func (cpu *Cpu) StackDepth() int {
	return int(cpu.StackReset - cpu.Sp)
}
