// Package cpu implements the processor and assembler for the K88 system.
//
// The K88 is an 8-bit processor with a 16-bit program counter (PC), an 8-bit
// stack pointer (SP) into a single page of memory, three 8-bit general-purpose
// registers (IDX, IDY, IDZ), and four sticky status flags (Z, E, C, V). Code,
// data and stack share one flat 64KB memory.
//
// Every opcode is a single byte split into a 4-bit instruction kind, a 1-bit
// addressing mode, and a 3-bit register select. Register-mode operands are a
// single register id byte; absolute-mode operands are a little-endian 16-bit
// address whose memory contents are the operand.
//
// The assembler provides a small assembly language for the K88 instruction
// set, supporting macros, labels, equates, and compile-time expression
// evaluation.
package cpu
