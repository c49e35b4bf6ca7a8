package cpu

import (
	"errors"
	"strconv"
	"strings"
)

// setZN sets Zero and Negative from value truncated to size.
func (cpu *Cpu) setZN(value uint32, size DataSize) {
	value &= size.Mask()
	cpu.Z = value == 0
	cpu.N = (value & size.SignBit()) != 0
}

// signBits returns the most significant bits of source, destination and
// result at the given size.
func signBits(size DataSize, src, dst, res uint32) (sm, dm, rm bool) {
	msb := size.SignBit()
	sm = (src & msb) != 0
	dm = (dst & msb) != 0
	rm = (res & msb) != 0
	return
}

// setAddVC derives Overflow and Carry for an addition.
func (cpu *Cpu) setAddVC(sm, dm, rm bool) {
	cpu.V = (sm && dm && !rm) || (!sm && !dm && rm)
	cpu.C = (sm && dm) || (!rm && dm) || (sm && !rm)
}

// setSubVC derives Overflow and Carry for a subtraction (dst - src).
func (cpu *Cpu) setSubVC(sm, dm, rm bool) {
	cpu.V = (!sm && dm && !rm) || (sm && !dm && rm)
	cpu.C = (sm && !dm) || (rm && !dm) || (sm && rm)
}

// fillOperands loads TMPS and TMPD for a two operand instruction. Format
// F2 instructions take the source from the immediate field.
func (cpu *Cpu) fillOperands(tmps, tmpd *TempReg, inst Instruction) (err error) {
	if !IsFormatF1(inst.Id) {
		err = tmpd.Fill(cpu, inst.Size, inst.Op2)
		if err != nil {
			return
		}
		err = tmps.FillData(inst.Size, inst.Data)
		return
	}

	err = tmps.Fill(cpu, inst.Size, inst.Op1)
	if err != nil {
		return
	}
	err = tmpd.Fill(cpu, inst.Size, inst.Op2)
	return
}

// branch checks the operand of a branch, and takes it if cond is true.
func (cpu *Cpu) branch(inst Instruction, cond bool) (err error) {
	if inst.Op1.Mode != MODE_ABSOLUTE {
		err = ErrInvalidAddressingMode
		return
	}
	if inst.Size != SIZE_WORD {
		err = ErrInvalidDataSize
		return
	}

	if cond {
		cpu.PC = inst.Op1.Addr
	}
	return
}

// location returns the display name of an operand's location. For
// memory modes it must be called after the operand was filled.
func (cpu *Cpu) location(size DataSize, opd Operand) string {
	switch opd.Mode {
	case MODE_DATA_REGISTER:
		return f("D%v", opd.Reg)
	case MODE_ADDRESS_REGISTER:
		return f("A%v", opd.Reg)
	case MODE_ABSOLUTE:
		return f("$%04X", opd.Addr)
	case MODE_INDIRECT, MODE_PREDEC:
		return f("$%04X", cpu.A[opd.Reg])
	case MODE_POSTINC:
		return f("$%04X", cpu.A[opd.Reg]-size.Bytes())
	}
	return opd.Mode.String()
}

// ParseValue parses console input: hexadecimal if prefixed by '$',
// otherwise decimal. Negative values are two's complement.
func ParseValue(token string) (value uint32, err error) {
	radix := 10
	text := token
	if strings.HasPrefix(text, "$") {
		radix = 16
		text = text[1:]
	}

	v64, err := strconv.ParseInt(text, radix, 64)
	if err != nil {
		err = errors.Join(ErrInvalidInput, ErrParseNumber(token))
		return
	}

	value = uint32(v64)
	return
}

// input runs the INP instruction prompt.
func (cpu *Cpu) input(inst Instruction) (value uint32, err error) {
	console, err := cpu.Console()
	if err != nil {
		return
	}

	// The operand is not filled before the prompt.
	opd := inst.Op1
	if opd.Mode == MODE_POSTINC {
		opd.Mode = MODE_INDIRECT
	}

	prompt := f("Enter a value (%v) for %v: ", inst.Size.String(), cpu.location(inst.Size, opd))
	token, err := console.Receive(prompt)
	if err != nil {
		err = errors.Join(ErrInvalidInput, err)
		return
	}

	cpu.Log.Infof("input = %v", token)

	value, err = ParseValue(token)
	return
}

// display runs the DSP instruction.
func (cpu *Cpu) display(inst Instruction, tmps *TempReg) (err error) {
	console, err := cpu.Console()
	if err != nil {
		return
	}

	err = tmps.Fill(cpu, inst.Size, inst.Op1)
	if err != nil {
		return
	}

	loc := cpu.location(inst.Size, inst.Op1)
	err = console.Send(f("[%v] = $%X (%v)\n", loc, tmps.Value&inst.Size.Mask(), inst.Size.String()))
	return
}

// displayStatus runs the DSR instruction.
func (cpu *Cpu) displayStatus() (err error) {
	console, err := cpu.Console()
	if err != nil {
		return
	}

	err = console.Send(f("Status Bits: H:%v N:%v Z:%v V:%v C:%v\n", cpu.H, cpu.N, cpu.Z, cpu.V, cpu.C))
	return
}

// Execute executes a single decoded instruction. A failed precondition
// aborts the instruction, halts the CPU and is returned.
func (cpu *Cpu) Execute(inst Instruction) (err error) {
	defer func() {
		if err != nil {
			cpu.H = true
		}
	}()

	tmps := TempReg{Name: "Source"}
	tmpd := TempReg{Name: "Dest"}
	tmpr := TempReg{Name: "Result"}

	size := inst.Size
	op1 := inst.Op1
	op2 := inst.Op2

	if !size.Valid() {
		err = ErrInvalidDataSize
		return
	}

	switch inst.Id {
	case OP_ADD, OP_ADDQ:
		err = cpu.fillOperands(&tmps, &tmpd, inst)
		if err != nil {
			return
		}
		tmpr.Value = tmps.Value + tmpd.Value
		cpu.setZN(tmpr.Value, size)
		cpu.setAddVC(signBits(size, tmps.Value, tmpd.Value, tmpr.Value))
		err = tmpr.Store(cpu, size, op2)
	case OP_SUB, OP_SUBQ:
		err = cpu.fillOperands(&tmps, &tmpd, inst)
		if err != nil {
			return
		}
		tmpr.Value = tmpd.Value - tmps.Value
		cpu.setZN(tmpr.Value, size)
		cpu.setSubVC(signBits(size, tmps.Value, tmpd.Value, tmpr.Value))
		err = tmpr.Store(cpu, size, op2)
	case OP_MULS:
		if size != SIZE_WORD {
			err = ErrInvalidDataSize
			return
		}
		err = cpu.fillOperands(&tmps, &tmpd, inst)
		if err != nil {
			return
		}
		tmpr.Value = uint32(int32(int16(tmps.Value)) * int32(int16(tmpd.Value)))
		cpu.setZN(tmpr.Value, size)
		cpu.V = false
		cpu.C = false
		err = tmpr.Store(cpu, SIZE_LONG, op2)
	case OP_DIVS:
		if size != SIZE_LONG {
			err = ErrInvalidDataSize
			return
		}
		err = tmps.Fill(cpu, SIZE_WORD, op1)
		if err != nil {
			return
		}
		if tmps.Value == 0 {
			err = ErrDivisionByZero
			return
		}
		err = tmpd.Fill(cpu, size, op2)
		if err != nil {
			return
		}
		divisor := int32(int16(tmps.Value))
		dividend := int32(tmpd.Value)
		quotient := dividend / divisor
		remainder := dividend % divisor
		cpu.V = quotient < -32768 || quotient > 32767
		tmpr.Value = SetWord(tmpr.Value, LEAST, uint32(quotient))
		tmpr.Value = SetWord(tmpr.Value, MOST, uint32(remainder))
		cpu.setZN(tmpr.Value, size)
		cpu.C = false
		err = tmpr.Store(cpu, size, op2)
	case OP_NEG:
		err = tmpd.Fill(cpu, size, op1)
		if err != nil {
			return
		}
		tmpr.Value = -tmpd.Value
		cpu.setZN(tmpr.Value, size)
		_, dm, rm := signBits(size, tmps.Value, tmpd.Value, tmpr.Value)
		cpu.V = dm && rm
		cpu.C = dm || rm
		err = tmpr.Store(cpu, size, op1)
	case OP_CLR:
		tmpd.Value = 0
		cpu.setZN(tmpd.Value, size)
		cpu.V = false
		cpu.C = false
		err = tmpd.Store(cpu, size, op1)
	case OP_NOT:
		err = tmpd.Fill(cpu, size, op1)
		if err != nil {
			return
		}
		tmpr.Value = ^tmpd.Value
		cpu.setZN(tmpr.Value, size)
		cpu.V = false
		cpu.C = false
		err = tmpr.Store(cpu, size, op1)
	case OP_AND, OP_OR, OP_EOR:
		err = cpu.fillOperands(&tmps, &tmpd, inst)
		if err != nil {
			return
		}
		switch inst.Id {
		case OP_AND:
			tmpr.Value = tmpd.Value & tmps.Value
		case OP_OR:
			tmpr.Value = tmpd.Value | tmps.Value
		case OP_EOR:
			tmpr.Value = tmpd.Value ^ tmps.Value
		}
		cpu.setZN(tmpr.Value, size)
		cpu.V = false
		cpu.C = false
		err = tmpr.Store(cpu, size, op2)
	case OP_LSL, OP_LSR, OP_ROL, OP_ROR:
		err = tmpd.Fill(cpu, size, op2)
		if err != nil {
			return
		}
		tmpr.Value, cpu.C = shift(inst.Id, size, tmpd.Value, uint(inst.Data))
		cpu.setZN(tmpr.Value, size)
		cpu.V = false
		err = tmpr.Store(cpu, size, op2)
	case OP_CMP:
		err = cpu.fillOperands(&tmps, &tmpd, inst)
		if err != nil {
			return
		}
		tmpr.Value = tmpd.Value - tmps.Value
		cpu.setZN(tmpr.Value, size)
		cpu.setSubVC(signBits(size, tmps.Value, tmpd.Value, tmpr.Value))
	case OP_TST:
		err = tmpd.Fill(cpu, size, op1)
		if err != nil {
			return
		}
		cpu.setZN(tmpd.Value, size)
		cpu.V = false
		cpu.C = false
	case OP_BRA:
		err = cpu.branch(inst, true)
	case OP_BVS:
		err = cpu.branch(inst, cpu.V)
	case OP_BEQ:
		err = cpu.branch(inst, cpu.Z)
	case OP_BCS:
		err = cpu.branch(inst, cpu.C)
	case OP_BGE:
		err = cpu.branch(inst, cpu.N == cpu.V)
	case OP_BLE:
		err = cpu.branch(inst, cpu.N != cpu.V)
	case OP_MOVE:
		err = tmps.Fill(cpu, size, op1)
		if err != nil {
			return
		}
		err = tmps.Store(cpu, size, op2)
	case OP_MOVEQ:
		err = tmpd.Fill(cpu, size, op2)
		if err != nil {
			return
		}
		err = tmpd.FillData(size, inst.Data)
		if err != nil {
			return
		}
		cpu.setZN(tmpd.Value, size)
		cpu.V = false
		cpu.C = false
		err = tmpd.Store(cpu, size, op2)
	case OP_EXG:
		if !op1.Mode.Register() || !op2.Mode.Register() {
			err = ErrInvalidAddressingMode
			return
		}
		err = tmps.Fill(cpu, size, op1)
		if err != nil {
			return
		}
		err = tmpd.Fill(cpu, size, op2)
		if err != nil {
			return
		}
		err = tmps.Store(cpu, size, op2)
		if err != nil {
			return
		}
		err = tmpd.Store(cpu, size, op1)
		cpu.V = false
		cpu.C = false
	case OP_MOVEA:
		if op1.Mode != MODE_ABSOLUTE || op2.Mode != MODE_ADDRESS_REGISTER {
			err = ErrInvalidAddressingMode
			return
		}
		if size != SIZE_WORD {
			err = ErrInvalidDataSize
			return
		}
		cpu.A[op2.Reg] = uint16(GetWord(uint32(op1.Addr), LEAST))
	case OP_INP:
		tmpd.Value, err = cpu.input(inst)
		if err != nil {
			return
		}
		cpu.setZN(tmpd.Value, size)
		cpu.C = false
		cpu.V = false
		err = tmpd.Store(cpu, size, op1)
	case OP_DSP:
		err = cpu.display(inst, &tmps)
	case OP_DSR:
		err = cpu.displayStatus()
	case OP_HLT:
		cpu.H = true
	default:
		err = ErrInvalidOpcode
	}

	return
}

// shift computes LSL, LSR, ROL and ROR of value at size. The carry is the
// last bit shifted or rotated out, false for a zero count.
func shift(id OpId, size DataSize, value uint32, count uint) (result uint32, carry bool) {
	width := size.Bits()
	mask := size.Mask()
	value &= mask

	switch id {
	case OP_LSL:
		result = (value << count) & mask
		carry = count > 0 && count <= width && ((value>>(width-count))&1) != 0
	case OP_LSR:
		result = value >> count
		carry = count > 0 && ((value>>(count-1))&1) != 0
	case OP_ROL:
		count %= width
		result = value
		if count > 0 {
			result = ((value << count) | (value >> (width - count))) & mask
			carry = (result & 1) != 0
		}
	case OP_ROR:
		count %= width
		result = value
		if count > 0 {
			result = ((value >> count) | (value << (width - count))) & mask
			carry = (result & size.SignBit()) != 0
		}
	}

	return
}
