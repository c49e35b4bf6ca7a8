// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"fmt"
	"io"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
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
var sysEquate = func() (equ map[string]string) {
	equ = maps.Clone(_cpu_defines)
	equ["LINENO"] = "0"
	return
}()

// Assembler is a two pass macro assembler for the sim68k instruction set.
// Labels are resolved after all lines are parsed.
type Assembler struct {
	Verbose bool     // If set, verbosely logs the assembler actions.
	Opcode  []Opcode // List of generated opcodes.

	predefine map[string]string   // Predefines
	Label     map[string]int      // Map of labels to memory addresses.
	Equate    map[string]string   // Map of equates.
	Macro     map[string](*Macro) // Map of macros.

	addr int // Address of the next opcode.
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// resolve follows equates until a non-equate word is found.
func (asm *Assembler) resolve(word string) string {
	for range 16 {
		equate, ok := asm.Equate[word]
		if !ok {
			break
		}
		word = equate
	}
	return word
}

// number returns the value of a simple word. '$' and '%' prefixes are
// hexadecimal and binary, otherwise Go integer syntax applies.
func (asm *Assembler) number(word string) (value int64, err error) {
	word = asm.resolve(word)
	if len(word) == 0 {
		err = ErrParseNumber(word)
		return
	}

	invert := false
	if word[0] == '~' {
		invert = true
		word = asm.resolve(word[1:])
	}
	if len(word) > 0 && word[0] == '\'' {
		// Character quotes should have been expanded into
		// values in parseLine()
		err = ErrParseCharacter(strings.Trim(word, "'"))
		return
	}

	text := word
	negative := strings.HasPrefix(text, "-")
	if negative {
		text = text[1:]
	}
	base := 0
	switch {
	case strings.HasPrefix(text, "$"):
		base = 16
		text = text[1:]
	case strings.HasPrefix(text, "%"):
		base = 2
		text = text[1:]
	}
	if negative {
		text = "-" + text
	}

	value, err = strconv.ParseInt(text, base, 64)
	if err != nil || value > 0xffffffff || value < -0x80000000 {
		err = ErrParseNumber(word)
		return
	}

	if invert {
		value = int64(^uint32(value))
	}

	return
}

// valueOf returns the value of a simple word, as a 32-bit quantity.
func (asm *Assembler) valueOf(word string) (value uint32, err error) {
	v64, err := asm.number(word)
	if err != nil {
		return
	}

	value = uint32(v64)
	return
}

// inRange checks that a value fits in bits, signed or unsigned.
func inRange(value int64, bits uint) bool {
	return value >= -(1<<(bits-1)) && value < (1<<bits)
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value uint32, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		var value64 int64
		value64, err = asm.number(str)
		if err != nil {
			// Ignore non-integer equates. They may be registers
			// or something else.
			continue
		}
		pred[key] = starlark.MakeInt64(value64)
	}
	for key, addr := range asm.Label {
		pred[key] = starlark.MakeInt(addr)
	}
	err = nil

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
	value = uint32(st_int64)
	return
}

var (
	reCharacter = regexp.MustCompile(`'\\?[^']'`)
	reParen     = regexp.MustCompile(`\$\([^\$]*\)`)
	reLabel     = regexp.MustCompile(`^[A-Za-z_.@][A-Za-z0-9_.@]*$`)
)

// parseLine parses a single line into words, expanding macros.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	// Set line number.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	// Do 'x' evaluations
	line = reCharacter.ReplaceAllStringFunc(line, func(word string) string {
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
			case "t":
				str = "\t"
			case "e":
				str = "\033"
			default:
				return word
			}
		} else if len(str) != 1 {
			return word
		}
		return fmt.Sprintf("%v", str[0])
	})

	// Do $() evaluations
	line = reParen.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%#v", value)
	})
	if err != nil {
		return
	}

	words = strings.Fields(line)
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
		asm.Label[label] = asm.addr
		words = words[1:]
		if len(words) == 0 {
			return
		}
	}

	// .macro processing
	macro, ok := asm.Macro[words[0]]
	if ok {
		name := words[0]

		args := operands(words[1:])
		if len(args) != len(macro.Args) {
			err = ErrMacroSyntax
			return
		}
		// Turn args into equs
		old_equate := maps.Clone(asm.Equate)
		for n, arg := range macro.Args {
			asm.Equate[arg] = args[n]
		}
		defer func() { asm.Equate = old_equate }()

		for n, line := range macro.Lines {
			lineno := macro.LineNo + n

			line = strings.ReplaceAll(line, "@", fmt.Sprintf("%v_%v_", name, lineno))
			words, err = asm.parseLine(line, lineno)
			if err != nil {
				err = ErrMacro{Macro: name, Line: lineno, Err: err}
				err = ErrSyntax{LineNo: lineno, Line: line, Err: err}
				return
			}

			err = asm.parseWords(words, lineno)
			if err != nil {
				err = ErrMacro{Macro: name, Line: lineno, Err: err}
				err = ErrSyntax{LineNo: lineno, Line: line, Err: err}
				return
			}
		}

		words = nil
		return
	}

	return
}

// operands splits the words after a mnemonic into comma separated
// operands.
func operands(words []string) (args []string) {
	text := strings.Join(words, "")
	if len(text) == 0 {
		return
	}
	args = strings.Split(text, ",")
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
			err = ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	clear(asm.Label)
	asm.Opcode = asm.Opcode[:0]
	asm.addr = 0
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
			logrus.Debugf("%v: %v", lineno, text)
		}

		text_comment := strings.Split(text, ";")
		line = strings.TrimSpace(text_comment[0])
		words := strings.Fields(line)

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
				Args:   operands(words[2:]),
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

	err = scanner.Err()
	if err != nil {
		return
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
			op.Codes[0].Extension[link.Index] = uint16(addr)
		}
	}

	prog = &Program{
		Opcodes: slices.Clone(asm.Opcode),
	}

	return
}

// mnemonicMap maps mnemonics to operation identifiers.
var mnemonicMap = func() (mm map[string]OpId) {
	mm = map[string]OpId{
		"MOV":  OP_MOVE,
		"MOVQ": OP_MOVEQ,
		"MOVA": OP_MOVEA,
	}
	for id := OP_ADD; id <= OP_HLT; id++ {
		mm[id.String()] = id
	}
	return
}()

// sizeMap maps size suffixes to data sizes.
var sizeMap = map[string]DataSize{
	"B": SIZE_BYTE,
	"W": SIZE_WORD,
	"L": SIZE_LONG,
}

// registerOf returns the register number of a register name.
func (asm *Assembler) registerOf(word string, prefix byte) (reg uint8, ok bool) {
	word = strings.ToUpper(asm.resolve(word))
	if len(word) != 2 || word[0] != prefix {
		return
	}
	switch word[1] {
	case '0':
		reg, ok = 0, true
	case '1':
		reg, ok = 1, true
	}
	return
}

// parseOperand parses a single operand. Absolute operands that are
// not numbers are returned as a label to link.
func (asm *Assembler) parseOperand(word string) (opd Operand, label string, err error) {
	word = asm.resolve(word)

	if reg, ok := asm.registerOf(word, 'D'); ok {
		opd = Operand{Mode: MODE_DATA_REGISTER, Reg: reg}
		return
	}
	if reg, ok := asm.registerOf(word, 'A'); ok {
		opd = Operand{Mode: MODE_ADDRESS_REGISTER, Reg: reg}
		return
	}

	var inner string
	var mode AddressMode
	switch {
	case strings.HasPrefix(word, "-(") && strings.HasSuffix(word, ")"):
		inner = word[2 : len(word)-1]
		mode = MODE_PREDEC
	case strings.HasPrefix(word, "(") && strings.HasSuffix(word, ")+"):
		inner = word[1 : len(word)-2]
		mode = MODE_POSTINC
	case strings.HasPrefix(word, "(") && strings.HasSuffix(word, ")"):
		inner = word[1 : len(word)-1]
		mode = MODE_INDIRECT
	}
	if len(inner) > 0 {
		reg, ok := asm.registerOf(inner, 'A')
		if !ok {
			err = ErrOperandInvalid
			return
		}
		opd = Operand{Mode: mode, Reg: reg}
		return
	}

	if strings.HasPrefix(word, "#") {
		err = ErrOperandInvalid
		return
	}

	opd.Mode = MODE_ABSOLUTE
	value, err := asm.number(word)
	if err == nil {
		if !inRange(value, 16) {
			err = ErrImmediateRange
			return
		}
		opd.Addr = uint16(value)
		return
	}

	if reLabel.MatchString(word) {
		err = nil
		label = word
		return
	}

	return
}

// parseImmediate parses a '#n' shift count or quick immediate.
func (asm *Assembler) parseImmediate(word string) (data uint8, err error) {
	word = asm.resolve(word)
	if !strings.HasPrefix(word, "#") {
		err = ErrOperandInvalid
		return
	}

	value, err := asm.number(word[1:])
	if err != nil {
		return
	}
	if value < 0 || value > 15 {
		err = ErrImmediateRange
		return
	}

	data = uint8(value)
	return
}

// parseData emits .byte, .word and .long data.
func (asm *Assembler) parseData(size DataSize, args []string) (data []byte, err error) {
	if len(args) == 0 {
		err = ErrOpcodeValueMissing
		return
	}

	for _, arg := range args {
		var value int64
		value, err = asm.number(arg)
		if err != nil {
			return
		}
		if !inRange(value, size.Bits()) {
			err = ErrImmediateRange
			return
		}
		for n := int(size.Bytes()) - 1; n >= 0; n-- {
			data = append(data, byte(value>>(8*n)))
		}
	}

	return
}

// parseWords evaluates the words in a line of assembly text.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	var codes []Code
	var data []byte
	var links []Link

	// no-op
	if len(words) == 0 {
		return
	}

	initial_words := words

	defer func() {
		if err != nil {
			return
		}
		op := Opcode{LineNo: lineno, Addr: asm.addr, Words: initial_words, Codes: codes, Data: data, Links: links}
		size := op.Size()
		if size == 0 {
			return
		}
		if asm.addr+size > MEMORY_SIZE {
			err = ErrImageTooLarge
			return
		}
		asm.Opcode = append(asm.Opcode, op)
		asm.addr += size
	}()

	args := operands(words[1:])

	switch strings.ToLower(words[0]) {
	case ".org":
		if len(args) != 1 {
			err = ErrOpcodeValueMissing
			return
		}
		var addr int64
		addr, err = asm.number(args[0])
		if err != nil {
			return
		}
		if addr < int64(asm.addr) {
			err = ErrOrgBackwards
			return
		}
		if addr > MEMORY_SIZE {
			err = ErrImageTooLarge
			return
		}
		asm.addr = int(addr)
		return
	case ".byte":
		data, err = asm.parseData(SIZE_BYTE, args)
		return
	case ".word":
		data, err = asm.parseData(SIZE_WORD, args)
		return
	case ".long":
		data, err = asm.parseData(SIZE_LONG, args)
		return
	}

	if strings.HasPrefix(words[0], ".") {
		err = ErrDirectiveInvalid
		return
	}

	mnemonic, suffix, has_suffix := strings.Cut(strings.ToUpper(words[0]), ".")
	id, ok := mnemonicMap[mnemonic]
	if !ok {
		err = ErrOpcodeInvalid
		return
	}

	size := SIZE_WORD
	if has_suffix {
		size, ok = sizeMap[suffix]
		if !ok {
			err = ErrSizeInvalid
			return
		}
	}

	want := 2
	switch {
	case IsStatus(id):
		want = 0
	case IsSingle(id):
		want = 1
	}
	if len(args) < want {
		err = ErrOpcodeValueMissing
		return
	}
	if len(args) > want {
		err = ErrOpcodeExtraArgs
		return
	}

	var opds []Operand
	for n, arg := range args {
		if n == 0 && !IsFormatF1(id) {
			continue
		}
		var opd Operand
		var label string
		opd, label, err = asm.parseOperand(arg)
		if err != nil {
			return
		}
		if len(label) > 0 {
			links = append(links, Link{Label: label, Index: len(links)})
		} else if opd.Mode == MODE_ABSOLUTE {
			// Keep link indexes aligned with the extension words.
			links = append(links, Link{Index: len(links)})
		}
		opds = append(opds, opd)
	}
	links = slices.DeleteFunc(links, func(link Link) bool { return len(link.Label) == 0 })

	var code Code
	switch {
	case IsStatus(id):
		code = MakeCodeStatus(id)
	case !IsFormatF1(id):
		var imm uint8
		imm, err = asm.parseImmediate(args[0])
		if err != nil {
			return
		}
		code = MakeCodeF2(id, size, imm, opds[0])
	case want == 1:
		code = MakeCodeSingle(id, size, opds[0])
	default:
		code = MakeCodeF1(id, size, opds[0], opds[1])
	}

	codes = append(codes, code)

	return
}
