package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/k88/cpu"
)

func TestDefault(t *testing.T) {
	assert := assert.New(t)

	cfg := Default()
	assert.Equal(uint16(0xfff0), cfg.ResetVector)
	assert.Equal(uint8(0xff), cfg.StackPage)
	assert.Equal(uint8(0x00), cfg.StackPointer)
	assert.Equal(0, cfg.MaxTicks)
	assert.False(cfg.Verbose)
	assert.Empty(cfg.Disable)
}

func TestParse(t *testing.T) {
	assert := assert.New(t)

	text := `
# A legacy core, without subroutines.
reset_vector = 0xffec
stack_page = 0x01
max_ticks = 500
verbose = true
disable = ["jsr", "RTS"]
`

	cfg, err := Parse(strings.NewReader(text))
	if !assert.NoError(err) {
		return
	}

	assert.Equal(uint16(cpu.LEGACY_RESET_VECTOR), cfg.ResetVector)
	assert.Equal(uint8(0x01), cfg.StackPage)
	assert.Equal(uint8(cpu.STACK_RESET), cfg.StackPointer)
	assert.Equal(500, cfg.MaxTicks)
	assert.True(cfg.Verbose)

	kinds, err := cfg.Kinds()
	assert.NoError(err)
	assert.Equal([]cpu.CodeKind{cpu.KIND_JSR, cpu.KIND_RTS}, kinds)
}

func TestParseErr(t *testing.T) {
	assert := assert.New(t)

	cfg, err := Parse(strings.NewReader("reset_vektor = 1\n"))
	assert.ErrorIs(err, ErrConfigKey)
	assert.ErrorContains(err, "reset_vektor")
	assert.Nil(cfg)

	cfg, err = Parse(strings.NewReader("disable = [\"jsr\", \"jump\", \"hop\"]\n"))
	assert.ErrorIs(err, ErrConfigKind("jump"))
	assert.ErrorIs(err, ErrConfigKind("hop"))
	assert.Nil(cfg)

	// Out of range for the field.
	_, err = Parse(strings.NewReader("stack_page = 0x100\n"))
	assert.Error(err)

	_, err = Parse(strings.NewReader("reset_vector = \"high\"\n"))
	assert.Error(err)

	_, err = Parse(strings.NewReader("reset_vector = \n"))
	assert.Error(err)
}

func TestLoad(t *testing.T) {
	assert := assert.New(t)

	path := filepath.Join(t.TempDir(), "machine.toml")
	assert.NoError(os.WriteFile(path, []byte("stack_pointer = 0x80\n"), 0o644))

	cfg, err := Load(path)
	assert.NoError(err)
	assert.Equal(uint8(0x80), cfg.StackPointer)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.True(errors.Is(err, os.ErrNotExist))

	assert.NoError(os.WriteFile(path, []byte("bogus = 1\n"), 0o644))
	_, err = Load(path)
	assert.ErrorIs(err, ErrConfigKey)
	assert.ErrorContains(err, path)
}

func TestApply(t *testing.T) {
	assert := assert.New(t)

	c := cpu.NewCpu()
	c.Disable(cpu.KIND_MOV)

	cfg := Default()
	cfg.ResetVector = 0x1000
	cfg.StackPage = 0x02
	cfg.StackPointer = 0x40
	cfg.Disable = []string{"sto"}

	assert.NoError(cfg.Apply(c))
	c.Reset()

	assert.Equal(uint16(0x1000), c.Pc)
	assert.Equal(uint16(0x0240), c.StackAddress())
	assert.False(c.Enabled(cpu.KIND_STO))
	assert.True(c.Enabled(cpu.KIND_MOV))

	cfg.Disable = []string{"xyzzy"}
	err := cfg.Apply(c)
	assert.ErrorIs(err, ErrConfigKind("xyzzy"))
	assert.False(c.Enabled(cpu.KIND_STO))
}
