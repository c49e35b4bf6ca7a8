package cpu

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssembler(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	prog, err := asm.Parse(strings.NewReader(""))
	assert.NoError(err)
	assert.Equal(0, len(prog.Opcodes))

	assert.Equal("0", asm.Equate["LINENO"])
	assert.Equal(fmt.Sprintf("0x%x", MEMORY_SIZE), asm.Equate["MEMORY_SIZE"])
	assert.Equal(fmt.Sprintf("0x%x", MEMORY_LAST), asm.Equate["MEMORY_LAST"])
	assert.Equal("2", asm.Equate["SIZE_WORD"])
}

const countdown = `
; count down from COUNT
        .equ COUNT 3
start:  MOVEQ.W #COUNT,D0
loop:   SUBQ.W  #1, D0      ; next
        DSP.W   D0
        BEQ     done
        BRA     loop
done:   HLT
`

func TestAssembler_Program(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	prog, err := asm.Parse(strings.NewReader(countdown))
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
	}

	assert.Equal(map[string]int{"start": 0, "loop": 2, "done": 14}, asm.Label)
	assert.Equal(image(
		Code{Word: 0xca30},
		Code{Word: 0x1a10},
		Code{Word: 0xea00},
		Code{Word: 0xa260, Extension: []uint16{0x000e}},
		Code{Word: 0x9260, Extension: []uint16{0x0002}},
		Code{Word: 0xf800},
	), prog.Binary())

	dbg := prog.Debug(8)
	if assert.NotNil(dbg.Opcode) {
		assert.Equal(7, dbg.LineNo)
		assert.Equal(2, dbg.Index)
		assert.Equal([]string{"BEQ", "done"}, dbg.Words)
	}

	cpu, rom := newTestCpu()
	_, err = cpu.Load(prog.Binary())
	assert.NoError(err)
	assert.NoError(cpu.Run())
	assert.Equal("[D0] = $2 (word)\n[D0] = $1 (word)\n[D0] = $0 (word)\n", rom.Output.String())
}

func TestAssembler_Operands(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		line string
		code Code
	}){
		{"add.b d0,d1", MakeCodeF1(OP_ADD, SIZE_BYTE, d0, d1)},
		{"SUB.L (A0)+,-(A1)", MakeCodeF1(OP_SUB, SIZE_LONG, pa0, ma1)},
		{"CLR (A0)", MakeCodeSingle(OP_CLR, SIZE_WORD, ia0)},
		{"MOV.W $1F,A1", MakeCodeF1(OP_MOVE, SIZE_WORD, abs(0x1f), a1)},
		{"MOVA 0x123,A1", MakeCodeF1(OP_MOVEA, SIZE_WORD, abs(0x123), a1)},
		{"MOVQ.L #%1010,D1", MakeCodeF2(OP_MOVEQ, SIZE_LONG, 10, d1)},
		{"ROR.B #$F,D0", MakeCodeF2(OP_ROR, SIZE_BYTE, 15, d0)},
		{"TST.L -1", MakeCodeSingle(OP_TST, SIZE_LONG, abs(0xffff))},
		{"DSR", MakeCodeStatus(OP_DSR)},
		{"MOVEQ.B #$(2*7),D0", MakeCodeF2(OP_MOVEQ, SIZE_BYTE, 14, d0)},
		{"MOVE.B MEMORY_LAST,D0", MakeCodeF1(OP_MOVE, SIZE_BYTE, abs(0x1000), d0)},
	}

	for _, entry := range table {
		asm := &Assembler{}
		prog, err := asm.Parse(strings.NewReader(entry.line))
		assert.NoError(err, entry.line)
		if err != nil {
			continue
		}
		if assert.Equal(1, len(prog.Opcodes), entry.line) {
			assert.Equal([]Code{entry.code}, prog.Opcodes[0].Codes, entry.line)
		}
	}
}

func TestAssembler_Directives(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	asm.Predefine("BASE", "$20")

	program := []string{
		".equ PTR A0",
		".equ WIDTH $(BASE+2)",
		"    MOVEA BASE,PTR",
		"    MOVE.B (PTR)+,D0",
		"    HLT",
		"    .org BASE",
		"data: .byte 'A', '\\n', -1",
		"    .word $BEEF",
		"    .long WIDTH",
	}

	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
	}

	assert.Equal(0x20, asm.Label["data"])
	assert.Equal("0x22", asm.Equate["WIDTH"])

	bin := prog.Binary()
	assert.Equal(image(
		MakeCodeF1(OP_MOVEA, SIZE_WORD, abs(0x20), a0),
		MakeCodeF1(OP_MOVE, SIZE_BYTE, pa0, d0),
		MakeCodeStatus(OP_HLT),
	), bin[:8])
	assert.Equal([]byte{'A', '\n', 0xff, 0xbe, 0xef, 0x00, 0x00, 0x00, 0x22}, bin[0x20:])
}

func TestAssembler_Macro(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	program := []string{
		".macro SHOW reg, size",
		"    MOVEQ.L #size,reg",
		"    DSP.L reg",
		".endm",
		"    SHOW D1, 7",
		"    SHOW D0, 9",
		"    HLT",
	}

	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
	}

	assert.Equal(image(
		MakeCodeF2(OP_MOVEQ, SIZE_LONG, 7, d1),
		MakeCodeSingle(OP_DSP, SIZE_LONG, d1),
		MakeCodeF2(OP_MOVEQ, SIZE_LONG, 9, d0),
		MakeCodeSingle(OP_DSP, SIZE_LONG, d0),
		MakeCodeStatus(OP_HLT),
	), prog.Binary())

	// Macro arguments do not leak.
	_, ok := asm.Equate["reg"]
	assert.False(ok)
}

func TestAssembler_Errors(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		program string
		lineno  int
		err     error
	}){
		{"JMP D0", 1, ErrOpcodeInvalid},
		{"MOVE.X D0,D1", 1, ErrSizeInvalid},
		{"ADD.W D0", 1, ErrOpcodeValueMissing},
		{"NEG.W D0,D1", 1, ErrOpcodeExtraArgs},
		{"HLT D0", 1, ErrOpcodeExtraArgs},
		{"ADDQ.W #16,D0", 1, ErrImmediateRange},
		{"ADDQ.W 1,D0", 1, ErrOperandInvalid},
		{"MOVE.W #1,D0", 1, ErrOperandInvalid},
		{"CLR.W (D0)", 1, ErrOperandInvalid},
		{"CLR.W $10000", 1, ErrImmediateRange},
		{".byte 256", 1, ErrImmediateRange},
		{".word", 1, ErrOpcodeValueMissing},
		{".foo 1", 1, ErrDirectiveInvalid},
		{"HLT\n.org 0", 2, ErrOrgBackwards},
		{".org $1002", 1, ErrImageTooLarge},
		{".equ A 1\n.equ A 2", 2, ErrEquateDuplicate},
		{".equ A", 1, ErrEquateSyntax},
		{"x: HLT\nx: HLT", 2, ErrLabelDuplicate},
		{"HLT\n\nBRA nowhere", 3, ErrLabelMissing("nowhere")},
		{".macro M\n.macro N", 2, ErrMacroNesting},
		{".endm", 1, ErrMacroLonelyEndm},
		{".macro M\nHLT", 2, ErrMacroLonely},
		{".macro M a\n.endm\nM", 3, ErrMacroSyntax},
		{"MOVEQ.W #$(1/0),D0", 1, nil},
	}

	for _, entry := range table {
		asm := &Assembler{}
		_, err := asm.Parse(strings.NewReader(entry.program))
		assert.Error(err, entry.program)

		var syntax ErrSyntax
		if assert.ErrorAs(err, &syntax, entry.program) {
			assert.Equal(entry.lineno, syntax.LineNo, entry.program)
		}
		if entry.err != nil {
			assert.ErrorIs(err, entry.err, entry.program)
		}
	}
}
