package cpu

import (
	"fmt"
)

// TempReg is a scratch register holding an operand or result for the
// duration of a single instruction.
type TempReg struct {
	Name  string // Source, Dest or Result
	Value uint32
}

func (tr *TempReg) String() string {
	return fmt.Sprintf("%v: $%08X", tr.Name, tr.Value)
}

// FillData loads the 4-bit immediate of a format F2 instruction.
func (tr *TempReg) FillData(size DataSize, data uint8) (err error) {
	switch size {
	case SIZE_BYTE:
		tr.Value, err = SetByte(tr.Value, 0, data)
	case SIZE_WORD:
		tr.Value = SetWord(tr.Value, LEAST, uint32(data))
	case SIZE_LONG:
		tr.Value = uint32(data)
	default:
		err = ErrInvalidDataSize
	}
	return
}

// Fill loads the operand's value into the scratch register, applying the
// side effects of the addressing mode.
func (tr *TempReg) Fill(cpu *Cpu, size DataSize, opd Operand) (err error) {
	defer func() {
		if err != nil {
			cpu.H = true
		}
	}()

	switch opd.Mode {
	case MODE_DATA_REGISTER:
		// Unused high bits are cleared, never sign filled.
		tr.Value = cpu.D[opd.Reg] & size.Mask()
	case MODE_ADDRESS_REGISTER:
		tr.Value = uint32(cpu.A[opd.Reg])
	case MODE_ABSOLUTE:
		cpu.MAR = opd.Addr
		err = cpu.access(size, READ)
		if err != nil {
			return
		}
		tr.Value = cpu.MDR
	case MODE_INDIRECT:
		cpu.MAR = cpu.A[opd.Reg]
		err = cpu.access(size, READ)
		if err != nil {
			return
		}
		tr.Value = cpu.MDR
	case MODE_POSTINC:
		cpu.MAR = cpu.A[opd.Reg]
		err = cpu.access(size, READ)
		if err != nil {
			return
		}
		tr.Value = cpu.MDR
		cpu.A[opd.Reg] += size.Bytes()
	case MODE_PREDEC:
		cpu.A[opd.Reg] -= size.Bytes()
		cpu.MAR = cpu.A[opd.Reg]
		err = cpu.access(size, READ)
		if err != nil {
			return
		}
		tr.Value = cpu.MDR
	default:
		err = ErrInvalidAddressingMode
		return
	}

	if cpu.Verbose {
		cpu.Log.Tracef("fill %v %v.%v: %v", opd, size, opd.Mode, tr)
	}

	return
}

// Store writes the scratch register to the operand. Address registers
// are never adjusted: post-increment writes at A[n] minus the size,
// matching a prior Fill of the same operand.
func (tr *TempReg) Store(cpu *Cpu, size DataSize, opd Operand) (err error) {
	defer func() {
		if err != nil {
			cpu.H = true
		}
	}()

	switch opd.Mode {
	case MODE_DATA_REGISTER:
		reg := &cpu.D[opd.Reg]
		switch size {
		case SIZE_BYTE:
			*reg, err = SetBits(*reg, 0, 7, tr.Value)
		case SIZE_WORD:
			*reg = SetWord(*reg, LEAST, GetWord(tr.Value, LEAST))
		case SIZE_LONG:
			*reg = tr.Value
		default:
			err = ErrInvalidDataSize
		}
	case MODE_ADDRESS_REGISTER:
		cpu.A[opd.Reg] = uint16(GetWord(tr.Value, LEAST))
	case MODE_ABSOLUTE:
		cpu.MAR = opd.Addr
		cpu.MDR = tr.Value
		err = cpu.access(size, WRITE)
	case MODE_INDIRECT, MODE_PREDEC:
		cpu.MAR = cpu.A[opd.Reg]
		cpu.MDR = tr.Value
		err = cpu.access(size, WRITE)
	case MODE_POSTINC:
		cpu.MAR = cpu.A[opd.Reg] - size.Bytes()
		cpu.MDR = tr.Value
		err = cpu.access(size, WRITE)
	default:
		err = ErrInvalidAddressingMode
	}
	if err != nil {
		return
	}

	if cpu.Verbose {
		cpu.Log.Tracef("store %v %v.%v: %v", opd, size, opd.Mode, tr)
	}

	return
}
