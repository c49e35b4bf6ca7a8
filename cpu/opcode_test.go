package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var (
	d0  = Operand{Mode: MODE_DATA_REGISTER, Reg: 0}
	d1  = Operand{Mode: MODE_DATA_REGISTER, Reg: 1}
	a0  = Operand{Mode: MODE_ADDRESS_REGISTER, Reg: 0}
	a1  = Operand{Mode: MODE_ADDRESS_REGISTER, Reg: 1}
	ia0 = Operand{Mode: MODE_INDIRECT, Reg: 0}
	pa0 = Operand{Mode: MODE_POSTINC, Reg: 0}
	ma1 = Operand{Mode: MODE_PREDEC, Reg: 1}
)

func abs(addr uint16) Operand {
	return Operand{Mode: MODE_ABSOLUTE, Addr: addr}
}

func TestCode_Encode(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		code  Code
		words []uint16
		text  string
	}){
		{MakeCodeF2(OP_ADDQ, SIZE_BYTE, 3, d0), []uint16{0x0830}, "ADDQ.B #3,D0"},
		{MakeCodeStatus(OP_HLT), []uint16{0xf800}, "HLT"},
		{MakeCodeStatus(OP_DSR), []uint16{0xf000}, "DSR"},
		{MakeCodeF1(OP_ADD, SIZE_WORD, d0, abs(0x0100)), []uint16{0x0306, 0x0100}, "ADD.W D0,$0100"},
		{MakeCodeF1(OP_MOVE, SIZE_LONG, abs(0x0010), abs(0x0020)), []uint16{0xc566, 0x0010, 0x0020}, "MOVE.L $0010,$0020"},
		{MakeCodeF1(OP_SUB, SIZE_BYTE, pa0, ma1), []uint16{0x11cf}, "SUB.B (A0)+,-(A1)"},
		{MakeCodeSingle(OP_BRA, SIZE_WORD, abs(0x0040)), []uint16{0x9260, 0x0040}, "BRA.W $0040"},
		{MakeCodeSingle(OP_CLR, SIZE_LONG, ia0), []uint16{0x3c80}, "CLR.L (A0)"},
		{MakeCodeF2(OP_LSL, SIZE_WORD, 15, a1), []uint16{0x62f3}, "LSL.W #15,A1"},
	}

	for _, entry := range table {
		var data []byte
		for _, word := range entry.words {
			data = append(data, byte(word>>8), byte(word))
		}

		assert.Equal(entry.words[0], entry.code.Word, entry.text)
		assert.Equal(entry.words[1:], append([]uint16{}, entry.code.Extension...), entry.text)
		assert.Equal(data, entry.code.Bytes(), entry.text)
		assert.Equal(entry.text, entry.code.String())
		assert.Equal(len(entry.words)-1, Code{Word: entry.code.Word}.ExtensionNeed(), entry.text)
	}
}

func TestCode_Decode(t *testing.T) {
	assert := assert.New(t)

	inst, err := Code{Word: 0x0306, Extension: []uint16{0x0100}}.Decode()
	assert.NoError(err)
	assert.Equal(Instruction{
		Id:    OP_ADD,
		Size:  SIZE_WORD,
		Count: 2,
		Op1:   d0,
		Op2:   abs(0x0100),
	}, inst)

	inst, err = Code{Word: 0x0830}.Decode()
	assert.NoError(err)
	assert.Equal(Instruction{
		Id:    OP_ADDQ,
		Size:  SIZE_BYTE,
		Count: 1,
		Op2:   d0,
		Data:  3,
	}, inst)

	// Status instructions ignore their operand fields.
	inst, err = Code{Word: 0xf800 | 0x00ff}.Decode()
	assert.NoError(err)
	assert.Equal(OP_HLT, inst.Id)
	assert.Equal(d0, inst.Op1)
	assert.Equal(d0, inst.Op2)
	assert.Equal(0, Code{Word: 0xf8ff}.ExtensionNeed())

	_, err = Code{Word: 0x0600}.Decode()
	assert.ErrorIs(err, ErrInvalidDataSize)
	assert.Equal("DC.W $0600", Code{Word: 0x0600}.String())
}

func TestCode_Fields(t *testing.T) {
	assert := assert.New(t)

	code := Code{Word: 0b11010_10_1_110_1_011_0}
	assert.Equal(OP_EXG, code.OpId())
	assert.Equal(SIZE_LONG, code.SizeCode())
	assert.Equal(2, code.Operands())
	assert.Equal(MODE_POSTINC, code.Mode1())
	assert.Equal(uint8(1), code.Reg1())
	assert.Equal(uint8(0xd), code.Data())
	assert.Equal(MODE_ABSOLUTE, code.Mode2())
	assert.Equal(uint8(0), code.Reg2())
}

func TestEnums(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("word", SIZE_WORD.String())
	assert.Equal("(An)+", MODE_POSTINC.String())
	assert.Equal("MOVEA", OP_MOVEA.String())

	assert.Equal(uint16(4), SIZE_LONG.Bytes())
	assert.Equal(uint(16), SIZE_WORD.Bits())
	assert.Equal(uint32(0x80), SIZE_BYTE.SignBit())
	assert.Equal(uint32(0xffffffff), SIZE_LONG.Mask())
	assert.False(DataSize(3).Valid())

	assert.True(MODE_UNUSED_2.Reserved())
	assert.True(MODE_UNUSED_5.Reserved())
	assert.False(MODE_ABSOLUTE.Reserved())

	for id := OP_ADD; id <= OP_HLT; id++ {
		switch id {
		case OP_ADDQ, OP_SUBQ, OP_LSL, OP_LSR, OP_ROL, OP_ROR, OP_MOVEQ:
			assert.False(IsFormatF1(id), id.String())
		default:
			assert.True(IsFormatF1(id), id.String())
		}

		switch id {
		case OP_NEG, OP_CLR, OP_NOT, OP_TST,
			OP_BRA, OP_BVS, OP_BEQ, OP_BCS, OP_BGE, OP_BLE,
			OP_INP, OP_DSP:
			assert.True(IsSingle(id), id.String())
		default:
			assert.False(IsSingle(id), id.String())
		}

		assert.Equal(id == OP_DSR || id == OP_HLT, IsStatus(id), id.String())
	}
}
