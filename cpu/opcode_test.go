package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCode_Decode(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		code Code
		kind CodeKind
		mode CodeMode
		reg  CodeReg
		size int
		text string
	}){
		{0b1001_0_001, KIND_MOV, MODE_ABSOLUTE, REG_IDY, 3, "mov.abs.idy"},
		{0b1001_1_010, KIND_MOV, MODE_REGISTER, REG_IDZ, 2, "mov.reg.idz"},
		{0b0000_1_010, KIND_ADD, MODE_REGISTER, REG_IDZ, 2, "add.reg.idz"},
		{0b0110_0_101, KIND_CMP, MODE_ABSOLUTE, REG_FGC, 3, "cmp.abs.fgc"},
		{0b1100_0_011, KIND_JFS, MODE_ABSOLUTE, REG_FGZ, 3, "jfs.abs.fgz"},
		{0b1011_0_000, KIND_JMP, MODE_ABSOLUTE, REG_IDX, 3, "jmp.abs.idx"},
		{0b1011_1_000, KIND_JMP, MODE_REGISTER, REG_IDX, 3, "jmp.reg.idx"},
		{0b1101_0_000, KIND_JSR, MODE_ABSOLUTE, REG_IDX, 3, "jsr.abs.idx"},
		{0b1110_0_000, KIND_RTS, MODE_ABSOLUTE, REG_IDX, 1, "rts.abs.idx"},
		{0b0101_0_110, KIND_CLF, MODE_ABSOLUTE, REG_FGV, 1, "clf.abs.fgv"},
		{0b0111_0_000, KIND_PSH, MODE_ABSOLUTE, REG_IDX, 1, "psh.abs.idx"},
		{0b1000_1_001, KIND_POP, MODE_REGISTER, REG_IDY, 1, "pop.reg.idy"},
		{0b1010_0_010, KIND_STO, MODE_ABSOLUTE, REG_IDZ, 3, "sto.abs.idz"},
		{0b1111_0_000, KIND_NOP, MODE_ABSOLUTE, REG_IDX, 1, "nop.abs.idx"},
		{0b1111_1_111, KIND_NOP, MODE_REGISTER, REG_NONE, 1, "hlt"},
	}

	for _, entry := range table {
		kind, mode, reg := entry.code.Decode()
		assert.Equal(entry.kind, kind, entry.text)
		assert.Equal(entry.mode, mode, entry.text)
		assert.Equal(entry.reg, reg, entry.text)
		assert.Equal(entry.size, entry.code.Size(), entry.text)
		assert.Equal(entry.text, entry.code.String())
		assert.Equal(entry.code, MakeCode(kind, mode, reg), entry.text)
	}
}

func TestCode_DecodeTotal(t *testing.T) {
	assert := assert.New(t)

	for n := range 256 {
		code := Code(n)
		kind, mode, reg := code.Decode()
		assert.Equal(CodeKind(n>>4), kind)
		assert.Equal(CodeMode((n>>3)&1), mode)
		assert.Equal(CodeReg(n&7), reg)
		assert.Equal(code, MakeCode(kind, mode, reg))
	}
}

func TestCode_Mnemonic(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("HLT", CODE_HALT.Mnemonic())
	assert.Equal("NOP", MakeCode(KIND_NOP, MODE_REGISTER, REG_IDZ).Mnemonic())
	assert.Equal("JSR", MakeCode(KIND_JSR, MODE_ABSOLUTE, REG_IDX).Mnemonic())
	assert.Equal("OR", MakeCode(KIND_OR, MODE_REGISTER, REG_IDY).Mnemonic())
}

func TestCodeReg_Flag(t *testing.T) {
	assert := assert.New(t)

	assert.False(REG_IDX.Flag())
	assert.False(REG_IDZ.Flag())
	assert.True(REG_FGZ.Flag())
	assert.True(REG_FGV.Flag())
	assert.False(REG_NONE.Flag())
}
