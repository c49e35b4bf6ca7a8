package cpu

import (
	"fmt"
	"strings"
)

// DataSize is the operand width of an instruction.
type DataSize int

//go:generate go tool stringer -linecomment -type=DataSize
const (
	SIZE_BYTE = DataSize(0) // byte
	SIZE_WORD = DataSize(1) // word
	SIZE_LONG = DataSize(2) // long
)

// Bytes returns the width in bytes.
func (ds DataSize) Bytes() uint16 {
	return 1 << ds
}

// Bits returns the width in bits.
func (ds DataSize) Bits() uint {
	return 8 << ds
}

// Mask returns a mask of the bits covered by the width.
func (ds DataSize) Mask() uint32 {
	switch ds {
	case SIZE_BYTE:
		return 0xff
	case SIZE_WORD:
		return 0xffff
	}
	return 0xffffffff
}

// SignBit returns the most significant bit of the width.
func (ds DataSize) SignBit() uint32 {
	return 1 << (ds.Bits() - 1)
}

// Valid returns true for byte, word and long.
func (ds DataSize) Valid() bool {
	return ds >= SIZE_BYTE && ds <= SIZE_LONG
}

// AddressMode is the addressing mode of an operand.
type AddressMode int

//go:generate go tool stringer -linecomment -type=AddressMode
const (
	MODE_DATA_REGISTER    = AddressMode(0) // Dn
	MODE_ADDRESS_REGISTER = AddressMode(1) // An
	MODE_UNUSED_2         = AddressMode(2) // unused2
	MODE_ABSOLUTE         = AddressMode(3) // abs
	MODE_INDIRECT         = AddressMode(4) // (An)
	MODE_UNUSED_5         = AddressMode(5) // unused5
	MODE_POSTINC          = AddressMode(6) // (An)+
	MODE_PREDEC           = AddressMode(7) // -(An)
)

// Reserved returns true for the two mode codes with no defined behaviour.
func (mode AddressMode) Reserved() bool {
	return mode == MODE_UNUSED_2 || mode == MODE_UNUSED_5
}

// Register returns true for the register direct modes.
func (mode AddressMode) Register() bool {
	return mode == MODE_DATA_REGISTER || mode == MODE_ADDRESS_REGISTER
}

// OpId is the 5-bit operation identifier of an instruction.
type OpId int

//go:generate go tool stringer -linecomment -type=OpId
const (
	OP_ADD   = OpId(0)  // ADD
	OP_ADDQ  = OpId(1)  // ADDQ
	OP_SUB   = OpId(2)  // SUB
	OP_SUBQ  = OpId(3)  // SUBQ
	OP_MULS  = OpId(4)  // MULS
	OP_DIVS  = OpId(5)  // DIVS
	OP_NEG   = OpId(6)  // NEG
	OP_CLR   = OpId(7)  // CLR
	OP_NOT   = OpId(8)  // NOT
	OP_AND   = OpId(9)  // AND
	OP_OR    = OpId(10) // OR
	OP_EOR   = OpId(11) // EOR
	OP_LSL   = OpId(12) // LSL
	OP_LSR   = OpId(13) // LSR
	OP_ROL   = OpId(14) // ROL
	OP_ROR   = OpId(15) // ROR
	OP_CMP   = OpId(16) // CMP
	OP_TST   = OpId(17) // TST
	OP_BRA   = OpId(18) // BRA
	OP_BVS   = OpId(19) // BVS
	OP_BEQ   = OpId(20) // BEQ
	OP_BCS   = OpId(21) // BCS
	OP_BGE   = OpId(22) // BGE
	OP_BLE   = OpId(23) // BLE
	OP_MOVE  = OpId(24) // MOVE
	OP_MOVEQ = OpId(25) // MOVEQ
	OP_EXG   = OpId(26) // EXG
	OP_MOVEA = OpId(27) // MOVEA
	OP_INP   = OpId(28) // INP
	OP_DSP   = OpId(29) // DSP
	OP_DSR   = OpId(30) // DSR
	OP_HLT   = OpId(31) // HLT
)

// IsFormatF1 returns true if the instruction carries two mode/register
// fields, false if it carries a 4-bit immediate instead (format F2).
func IsFormatF1(id OpId) bool {
	switch id {
	case OP_ADDQ, OP_SUBQ, OP_LSL, OP_LSR, OP_ROL, OP_ROR, OP_MOVEQ:
		return false
	}
	return true
}

// IsStatus returns true for the operand-less status instructions.
func IsStatus(id OpId) bool {
	return id == OP_DSR || id == OP_HLT
}

// IsSingle returns true for F1 instructions taking a single operand.
func IsSingle(id OpId) bool {
	switch id {
	case OP_NEG, OP_CLR, OP_NOT, OP_TST,
		OP_BRA, OP_BVS, OP_BEQ, OP_BCS, OP_BGE, OP_BLE,
		OP_INP, OP_DSP:
		return true
	}
	return false
}

// Operand is a decoded operand location.
type Operand struct {
	Mode AddressMode // Addressing mode.
	Reg  uint8       // Register number, 0 or 1.
	Addr uint16      // Operand address, for MODE_ABSOLUTE.
}

// String returns the assembly language representation of the operand.
func (opd Operand) String() string {
	switch opd.Mode {
	case MODE_DATA_REGISTER:
		return fmt.Sprintf("D%d", opd.Reg)
	case MODE_ADDRESS_REGISTER:
		return fmt.Sprintf("A%d", opd.Reg)
	case MODE_ABSOLUTE:
		return fmt.Sprintf("$%04X", opd.Addr)
	case MODE_INDIRECT:
		return fmt.Sprintf("(A%d)", opd.Reg)
	case MODE_POSTINC:
		return fmt.Sprintf("(A%d)+", opd.Reg)
	case MODE_PREDEC:
		return fmt.Sprintf("-(A%d)", opd.Reg)
	}
	return fmt.Sprintf("%v.%d", opd.Mode, opd.Reg)
}

// Instruction is a fully decoded instruction word.
type Instruction struct {
	Id    OpId     // Operation.
	Size  DataSize // Active operand size.
	Count int      // Number of operands, 1 or 2.
	Op1   Operand  // First operand (F1 only).
	Op2   Operand  // Second operand.
	Data  uint8    // 4-bit immediate (F2 only).
}

// Code is a single instruction word with its extension words.
type Code struct {
	Word      uint16
	Extension []uint16
}

// OpId returns the operation identifier, bits 15-11.
func (code Code) OpId() OpId {
	return OpId((code.Word >> 11) & 0x1f)
}

// SizeCode returns the raw data size field, bits 10-9.
func (code Code) SizeCode() DataSize {
	return DataSize((code.Word >> 9) & 0x3)
}

// Operands returns the encoded operand count, bit 8 plus one.
func (code Code) Operands() int {
	return int((code.Word>>8)&0x1) + 1
}

// Mode1 returns the first addressing mode, bits 7-5.
func (code Code) Mode1() AddressMode {
	return AddressMode((code.Word >> 5) & 0x7)
}

// Reg1 returns the first register number, bit 4.
func (code Code) Reg1() uint8 {
	return uint8((code.Word >> 4) & 0x1)
}

// Data returns the F2 immediate, bits 7-4.
func (code Code) Data() uint8 {
	return uint8((code.Word >> 4) & 0xf)
}

// Mode2 returns the second addressing mode, bits 3-1.
func (code Code) Mode2() AddressMode {
	return AddressMode((code.Word >> 1) & 0x7)
}

// Reg2 returns the second register number, bit 0.
func (code Code) Reg2() uint8 {
	return uint8(code.Word & 0x1)
}

// Decode splits the instruction word into its fields. Operand addresses
// are filled from the extension words, if present.
func (code Code) Decode() (inst Instruction, err error) {
	inst.Id = code.OpId()
	inst.Size = code.SizeCode()
	inst.Count = code.Operands()

	if !inst.Size.Valid() {
		err = ErrInvalidDataSize
		return
	}

	if inst.Count == 0 {
		err = ErrInvalidOperandCount
		return
	}

	inst.Op2.Mode = code.Mode2()
	inst.Op2.Reg = code.Reg2()

	switch {
	case IsStatus(inst.Id):
		inst.Op1 = Operand{Mode: MODE_DATA_REGISTER}
		inst.Op2 = Operand{Mode: MODE_DATA_REGISTER}
	case IsFormatF1(inst.Id):
		inst.Op1.Mode = code.Mode1()
		inst.Op1.Reg = code.Reg1()
	default:
		inst.Data = code.Data()
	}

	ext := code.Extension
	if IsFormatF1(inst.Id) && inst.Op1.Mode == MODE_ABSOLUTE && len(ext) > 0 {
		inst.Op1.Addr = ext[0]
		ext = ext[1:]
	}
	if inst.Op2.Mode == MODE_ABSOLUTE && len(ext) > 0 {
		inst.Op2.Addr = ext[0]
	}

	return
}

// ExtensionNeed returns the number of operand address words that follow
// the instruction word.
func (code Code) ExtensionNeed() (need int) {
	id := code.OpId()
	if IsStatus(id) {
		return
	}
	if IsFormatF1(id) && code.Mode1() == MODE_ABSOLUTE {
		need++
	}
	if code.Mode2() == MODE_ABSOLUTE {
		need++
	}
	return
}

// MakeCodeF1 creates a two operand format F1 instruction.
func MakeCodeF1(id OpId, size DataSize, op1, op2 Operand) Code {
	code := Code{Word: (uint16(id&0x1f) << 11) | (uint16(size&0x3) << 9) | (1 << 8) |
		(uint16(op1.Mode&0x7) << 5) | (uint16(op1.Reg&0x1) << 4) |
		(uint16(op2.Mode&0x7) << 1) | uint16(op2.Reg&0x1)}
	if op1.Mode == MODE_ABSOLUTE {
		code.Extension = append(code.Extension, op1.Addr)
	}
	if op2.Mode == MODE_ABSOLUTE {
		code.Extension = append(code.Extension, op2.Addr)
	}
	return code
}

// MakeCodeSingle creates a one operand format F1 instruction.
func MakeCodeSingle(id OpId, size DataSize, op1 Operand) Code {
	code := Code{Word: (uint16(id&0x1f) << 11) | (uint16(size&0x3) << 9) |
		(uint16(op1.Mode&0x7) << 5) | (uint16(op1.Reg&0x1) << 4)}
	if op1.Mode == MODE_ABSOLUTE {
		code.Extension = append(code.Extension, op1.Addr)
	}
	return code
}

// MakeCodeF2 creates a format F2 instruction with a 4-bit immediate.
func MakeCodeF2(id OpId, size DataSize, data uint8, op2 Operand) Code {
	code := Code{Word: (uint16(id&0x1f) << 11) | (uint16(size&0x3) << 9) |
		(uint16(data&0xf) << 4) |
		(uint16(op2.Mode&0x7) << 1) | uint16(op2.Reg&0x1)}
	if op2.Mode == MODE_ABSOLUTE {
		code.Extension = append(code.Extension, op2.Addr)
	}
	return code
}

// MakeCodeStatus creates a DSR or HLT instruction.
func MakeCodeStatus(id OpId) Code {
	return Code{Word: uint16(id&0x1f) << 11}
}

// Bytes returns the big-endian memory image of the instruction.
func (code Code) Bytes() (data []byte) {
	data = append(data, byte(code.Word>>8), byte(code.Word))
	for _, ext := range code.Extension {
		data = append(data, byte(ext>>8), byte(ext))
	}
	return
}

// String returns the assembly language representation of this instruction.
func (code Code) String() string {
	inst, err := code.Decode()
	if err != nil {
		return fmt.Sprintf("DC.W $%04X", code.Word)
	}

	var args []string
	switch {
	case IsStatus(inst.Id):
		return inst.Id.String()
	case !IsFormatF1(inst.Id):
		args = append(args, fmt.Sprintf("#%d", inst.Data), inst.Op2.String())
	case inst.Count == 1:
		args = append(args, inst.Op1.String())
	default:
		args = append(args, inst.Op1.String(), inst.Op2.String())
	}

	return fmt.Sprintf("%v.%c %v", inst.Id, strings.ToUpper(inst.Size.String())[0], strings.Join(args, ","))
}
