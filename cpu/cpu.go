package cpu

import (
	"errors"
	"fmt"
	"iter"
	"maps"

	"github.com/sirupsen/logrus"

	"github.com/ezrec/sim68k/io"
)

// Channel is the console used by INP, DSP and DSR.
type Channel io.Channel

var _cpu_defines = map[string]string{
	"MEMORY_SIZE": fmt.Sprintf("0x%x", MEMORY_SIZE),
	"MEMORY_LAST": fmt.Sprintf("0x%x", MEMORY_LAST),
	"SIZE_BYTE":   fmt.Sprintf("%d", SIZE_BYTE.Bytes()),
	"SIZE_WORD":   fmt.Sprintf("%d", SIZE_WORD.Bytes()),
	"SIZE_LONG":   fmt.Sprintf("%d", SIZE_LONG.Bytes()),
}

// Cpu is the simulation context of the processor: memory, register file
// and status flags.
type Cpu struct {
	Verbose bool           // Set to enable per-instruction tracing.
	Log     *logrus.Logger // Diagnostics sink.

	Memory Memory // Program and data store.

	PC  uint16    // Program counter.
	D   [2]uint32 // Data registers.
	A   [2]uint16 // Address registers.
	MAR uint16    // Memory address register.
	MDR uint32    // Memory data register.

	C bool // Carry
	V bool // Overflow
	Z bool // Zero
	N bool // Negative
	H bool // Halt

	Ticks int // Instructions executed since reset.

	console Channel
}

// NewCpu creates a new CPU logging to the standard logrus logger.
func NewCpu() (cpu *Cpu) {
	cpu = &Cpu{
		Log: logrus.StandardLogger(),
	}

	return
}

// Defines for the cpu
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	return maps.All(_cpu_defines)
}

// SetConsole attaches the console channel.
func (cpu *Cpu) SetConsole(console Channel) {
	cpu.console = console
}

// Console returns the attached console channel.
func (cpu *Cpu) Console() (console Channel, err error) {
	if cpu.console == nil {
		err = ErrNoConsole
		return
	}

	console = cpu.console
	return
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	regs := []string{
		"pc",
		"d0", "d1", "a0", "a1",
		"mar", "mdr",
		"flags",
	}
	for _, reg := range regs {
		var strval string
		switch reg {
		case "pc":
			strval = fmt.Sprintf("%04X", cpu.PC)
		case "d0", "d1":
			val := cpu.D[reg[1]-'0']
			strval = fmt.Sprintf("%04X_%04X", val>>16, val&0xffff)
		case "a0", "a1":
			strval = fmt.Sprintf("%04X", cpu.A[reg[1]-'0'])
		case "mar":
			strval = fmt.Sprintf("%04X", cpu.MAR)
		case "mdr":
			strval = fmt.Sprintf("%04X_%04X", cpu.MDR>>16, cpu.MDR&0xffff)
		case "flags":
			strval = cpu.Flags()
		}
		text += fmt.Sprintf("% 5s: %v\n", reg, strval)
	}

	return
}

// Flags returns the status flags as a compact string, upper case if set.
func (cpu *Cpu) Flags() string {
	flags := []byte("hnzvc")
	for n, set := range []bool{cpu.H, cpu.N, cpu.Z, cpu.V, cpu.C} {
		if set {
			flags[n] -= 'a' - 'A'
		}
	}
	return string(flags)
}

// Reset the CPU state.
// - Clears memory, registers and flags.
// - Sets PC to 0.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		cpu.Log.Debugf("cpu: reset")
	}

	cpu.Memory.Reset()
	cpu.PC = 0
	clear(cpu.D[:])
	clear(cpu.A[:])
	cpu.MAR = 0
	cpu.MDR = 0
	cpu.C, cpu.V, cpu.Z, cpu.N, cpu.H = false, false, false, false, false
	cpu.Ticks = 0

	if cpu.console != nil {
		cpu.console.Rewind()
	}
}

// Load deposits a program image into memory starting at address 0.
func (cpu *Cpu) Load(image []byte) (count int, err error) {
	if len(image) > MEMORY_SIZE {
		err = ErrImageTooLarge
		return
	}

	for n, data := range image {
		err = cpu.Memory.Load(uint16(n), data)
		if err != nil {
			return
		}
		count++
	}

	cpu.Log.Infof("cpu: loaded %d bytes", count)

	return
}

// halt sets the Halt flag and reports the fault.
func (cpu *Cpu) halt(code Code, err error) {
	cpu.H = true
	cpu.Log.WithFields(logrus.Fields{
		"pc":     fmt.Sprintf("$%04X", cpu.PC),
		"opcode": fmt.Sprintf("$%04X", code.Word),
	}).Error(err)
}

// FetchCode fetches the instruction word at PC.
func (cpu *Cpu) FetchCode() (code Code, err error) {
	cpu.MAR = cpu.PC
	cpu.PC += 2
	err = cpu.access(SIZE_WORD, READ)
	if err != nil {
		return
	}

	code = Code{Word: uint16(GetWord(cpu.MDR, LEAST))}
	return
}

// fetchOperands reads the operand address words that follow the
// instruction word.
func (cpu *Cpu) fetchOperands(code *Code, inst *Instruction) (err error) {
	if IsFormatF1(inst.Id) && inst.Op1.Mode == MODE_ABSOLUTE {
		cpu.MAR = cpu.PC
		err = cpu.access(SIZE_WORD, READ)
		if err != nil {
			return
		}
		inst.Op1.Addr = uint16(GetWord(cpu.MDR, LEAST))
		code.Extension = append(code.Extension, inst.Op1.Addr)
		cpu.PC += 2
	}

	if inst.Op2.Mode == MODE_ABSOLUTE {
		cpu.MAR = cpu.PC
		err = cpu.access(SIZE_WORD, READ)
		if err != nil {
			return
		}
		inst.Op2.Addr = uint16(GetWord(cpu.MDR, LEAST))
		code.Extension = append(code.Extension, inst.Op2.Addr)
		cpu.PC += 2
	}

	if inst.Count == 2 && !IsFormatF1(inst.Id) {
		err = ErrInvalidOperandCount
		return
	}

	return
}

// decode decodes the instruction word, warning about reserved modes.
func (cpu *Cpu) decode(code Code) (inst Instruction, err error) {
	inst, err = code.Decode()
	if err != nil {
		return
	}

	if IsFormatF1(inst.Id) && inst.Op1.Mode.Reserved() {
		cpu.Log.Warnf("unused address mode %v at $%04X", inst.Op1.Mode, cpu.PC-2)
	}
	if inst.Op2.Mode.Reserved() {
		cpu.Log.Warnf("unused address mode %v at $%04X", inst.Op2.Mode, cpu.PC-2)
	}

	return
}

// Tick executes a single fetch, decode, fetch operands, execute cycle.
func (cpu *Cpu) Tick() (err error) {
	if cpu.H {
		err = ErrHalted
		return
	}

	var code Code
	defer func() {
		if err != nil {
			cpu.halt(code, err)
			err = errors.Join(ErrOpcode(code), err)
		}
	}()

	code, err = cpu.FetchCode()
	if err != nil {
		return
	}

	inst, err := cpu.decode(code)
	if err != nil {
		return
	}

	err = cpu.fetchOperands(&code, &inst)
	if err != nil {
		return
	}

	if cpu.Verbose {
		cpu.Log.Debugf("%04x: %v", cpu.PC-uint16(2+2*len(code.Extension)), code)
	}

	err = cpu.Execute(inst)
	if err != nil {
		return
	}

	cpu.Ticks++

	if cpu.Verbose {
		cpu.Log.Tracef("\n%v", cpu.String())
	}

	return
}

// Run ticks until the CPU halts. A fault is returned after halting.
func (cpu *Cpu) Run() (err error) {
	for !cpu.H {
		err = cpu.Tick()
		if err != nil {
			return
		}
	}

	return
}
