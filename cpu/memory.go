package cpu

const (
	MEMORY_SIZE = 0x10000 // Size of the address space.
)

// Memory is the flat address space shared by code, data, and the stack.
// All address arithmetic wraps at the 16-bit boundary.
type Memory [MEMORY_SIZE]uint8

// Read a byte.
func (mem *Memory) Read(addr uint16) uint8 {
	return mem[addr]
}

// Write a byte.
func (mem *Memory) Write(addr uint16, value uint8) {
	mem[addr] = value
}

// ReadWord reads a little-endian word, low byte first.
func (mem *Memory) ReadWord(addr uint16) uint16 {
	lo := mem[addr]
	hi := mem[addr+1]
	return (uint16(hi) << 8) | uint16(lo)
}

// WriteWord writes a little-endian word, low byte first.
func (mem *Memory) WriteWord(addr uint16, value uint16) {
	mem[addr] = uint8(value & 0xff)
	mem[addr+1] = uint8(value >> 8)
}

// Load copies data into memory starting at addr, wrapping past 0xFFFF.
func (mem *Memory) Load(addr uint16, data []byte) {
	for n, value := range data {
		mem[addr+uint16(n)] = value
	}
}

// Reset zeros all of memory.
func (mem *Memory) Reset() {
	clear(mem[:])
}
