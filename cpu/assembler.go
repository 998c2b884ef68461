// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Macro represents a macro definition in the assembly language.
type Macro struct {
	LineNo int      // Line number of the macro definition.
	Args   []string // Arguments for the macro.
	Lines  []string // Lines of macro text to expand.
}

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO":       "0",
	"RESET_VECTOR": fmt.Sprintf("%#x", RESET_VECTOR),
	"STACK_PAGE":   fmt.Sprintf("%#x", STACK_PAGE),
	"HALT":         fmt.Sprintf("%#x", uint8(CODE_HALT)),
}

// Assembler is a single pass macro assembler for the K88 system.
type Assembler struct {
	Verbose bool     // If set, verbosely logs the assembler actions.
	Opcode  []Opcode // List of generated opcodes.

	predefine map[string]string   // Predefines
	Label     map[string]int      // Map of labels to addresses.
	Equate    map[string]string   // Map of equates.
	Macro     map[string](*Macro) // Map of macros.

	address    int // Address of the next generated byte.
	expansions int // Macro expansion counter, for @ local labels.
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// regMap is a map of register names to register selects.
var regMap = map[string]CodeReg{
	"idx": REG_IDX,
	"idy": REG_IDY,
	"idz": REG_IDZ,
	"fgz": REG_FGZ,
	"fge": REG_FGE,
	"fgc": REG_FGC,
	"fgv": REG_FGV,
}

// operandMap maps the mnemonics that take a register or [address] operand.
var operandMap = map[string]CodeKind{
	"add": KIND_ADD,
	"sub": KIND_SUB,
	"and": KIND_AND,
	"or":  KIND_OR,
	"nor": KIND_NOR,
	"cmp": KIND_CMP,
	"mov": KIND_MOV,
}

var reIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.]*$`)

// valueOf returns the value of a simple word.
func (asm *Assembler) valueOf(word string) (value int, err error) {
	if word[0] == '\'' {
		// Character quotes should have been expanded into
		// values in parseLine()
		err = ErrParseCharacter(word[1 : len(word)-1])
		return
	}
	v64, err := strconv.ParseInt(word, 0, 32)
	if err != nil {
		err = ErrParseNumber(word)
		return
	}

	value = int(v64)

	return
}

// byteOf returns a byte value, signed or unsigned.
func (asm *Assembler) byteOf(word string) (value uint8, err error) {
	v, err := asm.valueOf(word)
	if err != nil {
		return
	}

	if v < -0x80 || v > 0xff {
		err = ErrByteInvalid
		return
	}

	value = uint8(v)
	return
}

// registerOf returns the register select for a register name.
func (asm *Assembler) registerOf(word string) (reg CodeReg, err error) {
	reg, ok := regMap[strings.ToLower(word)]
	if !ok {
		err = ErrRegisterInvalid
	}
	return
}

// addressOf resolves an address, optionally in [brackets]. Labels not yet
// defined are returned for linking.
func (asm *Assembler) addressOf(word string) (addr uint16, label string, err error) {
	if strings.HasPrefix(word, "[") && strings.HasSuffix(word, "]") {
		word = word[1 : len(word)-1]
	}

	if len(word) == 0 {
		err = ErrAddressInvalid
		return
	}

	equate, ok := asm.Equate[word]
	if ok {
		word = equate
	}

	here, ok := asm.Label[word]
	if ok {
		addr = uint16(here)
		return
	}

	value, err := asm.valueOf(word)
	if err != nil {
		if reIdentifier.MatchString(word) {
			// Link it later.
			label = word
			err = nil
		}
		return
	}

	if value < 0 || value >= MEMORY_SIZE {
		err = ErrAddressInvalid
		return
	}

	addr = uint16(value)
	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value int, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		var v int
		v, err = asm.valueOf(str)
		if err != nil {
			// Ignore non-integer equates. They may be registers
			// or something else.
			continue
		}
		pred[key] = starlark.MakeInt(v)
	}
	err = nil
	for key, addr := range asm.Label {
		pred[key] = starlark.MakeInt(addr)
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int64, ok := st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value = int(st_int64)
	return
}

// parseLine parses a single line as an opcode.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	// Set line number.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	// Do 'x' evaluations
	re := regexp.MustCompile(`'\\?[^']'`)
	line = re.ReplaceAllStringFunc(line, func(word string) string {
		str := word[1 : len(word)-1]
		if str[0] == '\\' {
			str = str[1:]
			switch str {
			case "\\":
				str = "\\"
			case "n":
				str = "\n"
			case "r":
				str = "\r"
			case "0":
				str = "\000"
			default:
				return word
			}
		} else if len(str) != 1 {
			return word
		}
		return fmt.Sprintf("%v", str[0])
	})

	// Do $() evaluations
	re = regexp.MustCompile(`\$\([^\$]*\)`)
	line = re.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%#x", value)
	})
	if err != nil {
		return
	}

	words = slices.DeleteFunc(strings.Split(line, " "), func(a string) bool { return len(a) == 0 })

	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE
	if words[0] == ".equ" {
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		words = words[:0]
		return
	}

	for n, word := range words {
		// Check for equate next
		equate, ok := asm.Equate[word]
		if ok {
			words[n] = equate
		}
	}

	for strings.HasSuffix(words[0], ":") {
		label := words[0][:len(words[0])-1]
		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}

		if asm.Label == nil {
			asm.Label = make(map[string]int, 16)
		}
		asm.Label[label] = asm.address
		words = words[1:]
		if len(words) == 0 {
			return
		}
	}

	// .macro processing
	macro, ok := asm.Macro[words[0]]
	if ok {
		name := words[0]

		args := words[1:]
		if len(args) != len(macro.Args) {
			err = ErrMacroSyntax
			return
		}
		// Turn args into equs
		old_equate := maps.Clone(asm.Equate)
		for n, arg := range macro.Args {
			asm.Equate[arg] = words[1+n]
		}
		defer func() { asm.Equate = old_equate }()

		asm.expansions++
		local := fmt.Sprintf("%v_%v_", name, asm.expansions)

		for n, line := range macro.Lines {
			lineno := macro.LineNo + n

			line = strings.ReplaceAll(line, "@", local)
			words, err = asm.parseLine(line, lineno)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
				return
			}

			err = asm.parseWords(words, macro.LineNo+n)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
				return
			}
		}

		words = nil
		return
	}

	return
}

// Parse parses an input stream into a Program containing opcodes.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {

	scanner := bufio.NewScanner(input)

	var line string
	var lineno int
	var macro *Macro

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	clear(asm.Label)
	asm.Opcode = asm.Opcode[:0]
	asm.address = 0
	asm.expansions = 0
	if asm.Macro == nil {
		asm.Macro = make(map[string](*Macro))
	}
	clear(asm.Macro)
	asm.Equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, text)
		}

		text_comment := strings.Split(text, ";")
		line = strings.TrimSpace(strings.ReplaceAll(text_comment[0], "\t", " "))
		all_words := strings.Split(line, " ")

		var words []string
		for _, single := range all_words {
			if len(single) > 0 {
				words = append(words, single)
			}
		}

		// .macro NAME arg...
		if len(words) > 0 && words[0] == ".macro" {
			if macro != nil {
				err = ErrMacroNesting
				return
			}
			if len(words) < 2 {
				err = ErrMacroSyntax
				return
			}
			_, ok := asm.Macro[words[1]]
			if ok {
				err = ErrMacroDuplicate
				return
			}
			macro = &Macro{
				LineNo: lineno + 1,
			}
			if len(words) > 2 {
				macro.Args = words[2:]
			}
			asm.Macro[words[1]] = macro
			continue
		}

		if len(words) > 0 && words[0] == ".endm" {
			if macro == nil {
				err = ErrMacroLonelyEndm
				return
			}
			macro = nil
			continue
		}

		if macro != nil {
			macro.Lines = append(macro.Lines, line)
			continue
		}

		words, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}

		err = asm.parseWords(words, lineno)
		if err != nil {
			return
		}
	}

	if macro != nil {
		err = ErrMacroLonely
		return
	}

	// Final linking of labels.
	for n := range asm.Opcode {
		op := &asm.Opcode[n]

		for _, link := range op.Links {
			addr, ok := asm.Label[link.Label]
			if !ok {
				lineno = op.LineNo
				line = strings.Join(op.Words, " ")
				err = ErrLabelMissing(link.Label)
				return
			}
			if link.Offset+2 > len(op.Bytes) {
				log.Fatalf("Unable to link label '%s' to line %d: %v", link.Label, op.LineNo, op.Words)
			}
			op.Bytes[link.Offset+0] = uint8(addr & 0xff)
			op.Bytes[link.Offset+1] = uint8((addr >> 8) & 0xff)
		}
	}

	prog = &Program{
		Opcodes: slices.Clone(asm.Opcode),
	}

	return
}

// parseWords evaluates the words in a line of assembly text.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	var codes []byte
	var links []Link

	// no-op
	if len(words) == 0 {
		return
	}

	initial_words := words
	address := asm.address

	defer func() {
		if err != nil || len(codes) == 0 {
			return
		}
		if address+len(codes) > MEMORY_SIZE {
			err = ErrAddressOverflow
			return
		}
		opcode := Opcode{LineNo: lineno, Address: address, Words: initial_words, Bytes: codes, Links: links}
		asm.Opcode = append(asm.Opcode, opcode)
		asm.address += len(codes)
	}()

	op := strings.ToLower(words[0])
	args := words[1:]

	// want checks the argument count.
	want := func(count int) error {
		switch {
		case len(args) < count:
			return ErrOpcodeValueMissing
		case len(args) > count:
			return ErrOpcodeExtraArgs
		}
		return nil
	}

	// addressBytes appends a little-endian address, noting any label to link.
	addressBytes := func(word string) (err error) {
		addr, lbl, err := asm.addressOf(word)
		if err != nil {
			return
		}
		if len(lbl) != 0 {
			links = append(links, Link{Label: lbl, Offset: len(codes)})
		}
		codes = append(codes, uint8(addr&0xff), uint8(addr>>8))
		return
	}

	if kind, ok := operandMap[op]; ok {
		err = want(2)
		if err != nil {
			return
		}
		var reg CodeReg
		reg, err = asm.registerOf(args[0])
		if err != nil {
			return
		}
		src, is_reg := regMap[strings.ToLower(args[1])]
		switch {
		case is_reg:
			codes = append(codes, uint8(MakeCode(kind, MODE_REGISTER, reg)), uint8(src))
		case strings.HasPrefix(args[1], "["):
			codes = append(codes, uint8(MakeCode(kind, MODE_ABSOLUTE, reg)))
			err = addressBytes(args[1])
		default:
			err = ErrAddressInvalid
		}
		return
	}

	switch op {
	case ".org":
		err = want(1)
		if err != nil {
			return
		}
		var value int
		value, err = asm.valueOf(args[0])
		if err != nil {
			return
		}
		if value < 0 || value >= MEMORY_SIZE {
			err = ErrAddressInvalid
			return
		}
		asm.address = value
	case ".byte":
		if len(args) == 0 {
			err = ErrOpcodeValueMissing
			return
		}
		for _, arg := range args {
			var value uint8
			value, err = asm.byteOf(arg)
			if err != nil {
				return
			}
			codes = append(codes, value)
		}
	case ".word":
		if len(args) == 0 {
			err = ErrOpcodeValueMissing
			return
		}
		for _, arg := range args {
			err = addressBytes(arg)
			if err != nil {
				return
			}
		}
	case "clf":
		err = want(1)
		if err != nil {
			return
		}
		var reg CodeReg
		reg, err = asm.registerOf(args[0])
		if err != nil {
			return
		}
		if !reg.Flag() {
			err = ErrFlagInvalid
			return
		}
		codes = append(codes, uint8(MakeCode(KIND_CLF, MODE_ABSOLUTE, reg)))
	case "psh", "pop":
		err = want(1)
		if err != nil {
			return
		}
		var reg CodeReg
		reg, err = asm.registerOf(args[0])
		if err != nil {
			return
		}
		kind := KIND_PSH
		if op == "pop" {
			kind = KIND_POP
		}
		codes = append(codes, uint8(MakeCode(kind, MODE_ABSOLUTE, reg)))
	case "sto", "jfs":
		err = want(2)
		if err != nil {
			return
		}
		var reg CodeReg
		reg, err = asm.registerOf(args[0])
		if err != nil {
			return
		}
		kind := KIND_STO
		if op == "jfs" {
			kind = KIND_JFS
		}
		codes = append(codes, uint8(MakeCode(kind, MODE_ABSOLUTE, reg)))
		err = addressBytes(args[1])
	case "jmp", "jsr":
		err = want(1)
		if err != nil {
			return
		}
		kind := KIND_JMP
		if op == "jsr" {
			kind = KIND_JSR
		}
		codes = append(codes, uint8(MakeCode(kind, MODE_ABSOLUTE, REG_IDX)))
		err = addressBytes(args[0])
	case "rts":
		err = want(0)
		if err != nil {
			return
		}
		codes = append(codes, uint8(MakeCode(KIND_RTS, MODE_ABSOLUTE, REG_IDX)))
	case "nop":
		err = want(0)
		if err != nil {
			return
		}
		codes = append(codes, uint8(MakeCode(KIND_NOP, MODE_ABSOLUTE, REG_IDX)))
	case "hlt":
		err = want(0)
		if err != nil {
			return
		}
		codes = append(codes, uint8(CODE_HALT))
	default:
		err = ErrInstructionInvalid
		return
	}

	return
}
