package cpu

import (
	"errors"

	"github.com/ezrec/sim68k/translate"
)

var f = translate.From

var (
	// Cpu errors
	ErrHalted                = errors.New(f("halted"))
	ErrInvalidDataSize       = errors.New(f("invalid data size"))
	ErrInvalidAddressingMode = errors.New(f("invalid addressing mode"))
	ErrInvalidOperandCount   = errors.New(f("invalid operand count"))
	ErrInvalidBitRange       = errors.New(f("invalid bit range"))
	ErrInvalidAddress        = errors.New(f("invalid address"))
	ErrDivisionByZero        = errors.New(f("division by zero"))
	ErrInvalidOpcode         = errors.New(f("invalid opcode"))
	ErrInvalidInput          = errors.New(f("invalid input"))
	ErrNoConsole             = errors.New(f("no console"))

	// Image loader errors
	ErrImageTooLarge = errors.New(f("image too large"))

	// Assembler errors
	ErrEquateSyntax       = errors.New(f(".equ syntax"))
	ErrEquateDuplicate    = errors.New(f(".equ duplicated"))
	ErrLabelDuplicate     = errors.New(f("label duplicated"))
	ErrOrgBackwards       = errors.New(f(".org moves backwards"))
	ErrOpcodeExtraArgs    = errors.New(f("excessive arguments"))
	ErrOpcodeValueMissing = errors.New(f("value missing"))
	ErrOpcodeInvalid      = errors.New(f("opcode invalid"))
	ErrSizeInvalid        = errors.New(f("size suffix invalid"))
	ErrOperandInvalid     = errors.New(f("operand invalid"))
	ErrImmediateRange     = errors.New(f("immediate out of range"))
	ErrDirectiveInvalid   = errors.New(f("directive invalid"))
	ErrMacroNesting       = errors.New(f(".macro nesting not permitted"))
	ErrMacroDuplicate     = errors.New(f(".macro duplicated"))
	ErrMacroLonely        = errors.New(f(".macro missing .endm"))
	ErrMacroLonelyEndm    = errors.New(f(".endm without .macro"))
	ErrMacroSyntax        = errors.New(f(".macro argument count mismatch"))
)

// ErrOpcode reports the instruction that faulted.
type ErrOpcode Code

func (eo ErrOpcode) Error() string {
	return f("bad opcode 0x%04x %v", uint16(eo.Word), Code(eo).String())
}

func (eo ErrOpcode) Is(err error) (ok bool) {
	_, ok = err.(ErrOpcode)
	return
}

// ErrAddress reports a memory access outside of the memory array.
type ErrAddress struct {
	Addr uint16
	Size DataSize
}

func (err ErrAddress) Error() string {
	return f("%v access at $%04X", err.Size.String(), err.Addr)
}

func (err ErrAddress) Unwrap() error {
	return ErrInvalidAddress
}

type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrParseByte string

func (err ErrParseByte) Error() string {
	return f("'%v' is not a hex byte", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}

type ErrParseCharacter string

func (err ErrParseCharacter) Error() string {
	return f("'%v' is not a character", string(err))
}

// ErrMacro reports a failure inside a macro expansion.
type ErrMacro struct {
	Macro string
	Line  int
	Err   error
}

func (err ErrMacro) Error() string {
	return f("macro %v, line %d: %v", err.Macro, err.Line, err.Err)
}

func (err ErrMacro) Unwrap() error {
	return err.Err
}
