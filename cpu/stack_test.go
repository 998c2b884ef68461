package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStack_Push(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu()
	assert.Equal(0, cpu.StackDepth())

	cpu.Push(0x12)
	assert.Equal(uint8(0xff), cpu.Sp)
	assert.Equal(uint8(0x12), cpu.Memory.Read(0xffff))
	assert.Equal(1, cpu.StackDepth())

	cpu.Push(0x34)
	assert.Equal(uint16(0xfffe), cpu.StackAddress())
	assert.Equal(2, cpu.StackDepth())
}

func TestStack_Pop(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu()
	cpu.Push(0x12)
	cpu.Push(0x34)

	assert.Equal(uint8(0x34), cpu.Pop())
	assert.Equal(1, cpu.StackDepth())
	assert.Equal(uint8(0x12), cpu.Pop())
	assert.Equal(uint8(STACK_RESET), cpu.Sp)
	assert.Equal(0, cpu.StackDepth())
}

func TestStack_Pop_Empty(t *testing.T) {
	assert := assert.New(t)

	// Popping an empty stack wraps within the page.
	cpu := NewCpu()
	cpu.Memory.Write(0xff00, 0x33)
	assert.Equal(uint8(0x33), cpu.Pop())
	assert.Equal(uint8(0x01), cpu.Sp)
	assert.Equal(255, cpu.StackDepth())
}

func TestStack_Peek(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu()
	cpu.Push(0x12)
	cpu.Push(0x34)

	assert.Equal(uint8(0x34), cpu.Peek())
	assert.Equal(2, cpu.StackDepth())
}

func TestStack_Page(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu()
	cpu.StackPage = 0x01
	cpu.StackReset = 0x80
	cpu.Reset()

	cpu.Push(0x44)
	assert.Equal(uint8(0x44), cpu.Memory.Read(0x017f))
	assert.Equal(uint8(0x00), cpu.Memory.Read(0xff7f))
	assert.Equal(1, cpu.StackDepth())
	assert.Equal(uint8(0x44), cpu.Pop())
	assert.Equal(uint8(0x80), cpu.Sp)
}
