package cpu

import (
	"bufio"
	"fmt"
	"io"
	"iter"
	"slices"
	"strconv"
	"strings"
)

// Link is an operand address to resolve from a label.
type Link struct {
	Label string // Label to resolve.
	Index int    // Index into the extension words of the code.
}

// Opcode represents a line of source with its memory location and the
// instructions or data generated for it.
type Opcode struct {
	LineNo int      // Source line number.
	Addr   int      // Memory address of the first byte.
	Words  []string // Source words.
	Codes  []Code   // Instructions.
	Data   []byte   // Raw data bytes, after any instructions.
	Links  []Link   // Label references to resolve.
}

// Bytes returns the memory image of the opcode.
func (op *Opcode) Bytes() (data []byte) {
	for _, code := range op.Codes {
		data = append(data, code.Bytes()...)
	}
	data = append(data, op.Data...)
	return
}

// Size returns the number of bytes occupied by the opcode.
func (op *Opcode) Size() (size int) {
	for _, code := range op.Codes {
		size += 2 * (1 + len(code.Extension))
	}
	size += len(op.Data)
	return
}

// Program is an assembled or loaded program listing.
type Program struct {
	Opcodes []Opcode
}

// Debug locates the source of an address.
type Debug struct {
	*Opcode
	Index int // Byte offset into the opcode.
}

// Debug returns the opcode containing the address. The Opcode is nil
// if no opcode covers it.
func (prog *Program) Debug(addr uint16) (dbg Debug) {
	for n, op := range prog.Opcodes {
		if int(addr) >= op.Addr && int(addr) < op.Addr+op.Size() {
			dbg = Debug{
				Opcode: &prog.Opcodes[n],
				Index:  int(addr) - op.Addr,
			}
			break
		}
	}

	return
}

// Binary returns the memory image of the program, starting at address
// zero. Gaps between opcodes are zero filled.
func (prog *Program) Binary() (image []byte) {
	for _, op := range prog.Opcodes {
		data := op.Bytes()
		if len(data) == 0 {
			continue
		}
		end := op.Addr + len(data)
		if end > len(image) {
			image = append(image, make([]byte, end-len(image))...)
		}
		copy(image[op.Addr:], data)
	}

	return
}

// Codes returns an iterator over the instructions of the program, by
// address.
func (prog *Program) Codes() iter.Seq2[uint16, Code] {
	return func(yield func(addr uint16, code Code) bool) {
		for _, op := range prog.Opcodes {
			addr := uint16(op.Addr)
			for _, code := range op.Codes {
				if !yield(addr, code) {
					return
				}
				addr += uint16(2 * (1 + len(code.Extension)))
			}
		}
	}
}

// WriteImage writes the program as a .68b text image: one line per
// opcode, with its source as a comment.
func (prog *Program) WriteImage(w io.Writer) (err error) {
	bw := bufio.NewWriter(w)

	ops := slices.Clone(prog.Opcodes)
	slices.SortStableFunc(ops, func(a, b Opcode) int {
		return a.Addr - b.Addr
	})

	addr := 0
	for _, op := range ops {
		data := op.Bytes()
		if len(data) == 0 {
			continue
		}

		var hex []string
		for ; addr < op.Addr; addr++ {
			hex = append(hex, "$00")
		}
		if len(hex) > 0 {
			_, err = fmt.Fprintln(bw, strings.Join(hex, " "))
			if err != nil {
				return
			}
			hex = hex[:0]
		}

		for _, b := range data {
			hex = append(hex, fmt.Sprintf("$%02X", b))
		}
		addr = op.Addr + len(data)

		words := slices.DeleteFunc(slices.Clone(op.Words), func(word string) bool {
			return word == "/"
		})
		if len(words) > 0 {
			hex = append(hex, "/", fmt.Sprintf("%04X:", op.Addr))
			hex = append(hex, words...)
			hex = append(hex, "/")
		}

		_, err = fmt.Fprintln(bw, strings.Join(hex, " "))
		if err != nil {
			return
		}
	}

	err = bw.Flush()
	return
}

// parseByte parses a '$HH' image token. Only the first two hex digits
// are significant.
func parseByte(token string) (data byte, err error) {
	if len(token) < 3 {
		err = ErrParseByte(token)
		return
	}

	v64, err := strconv.ParseUint(token[1:3], 16, 8)
	if err != nil {
		err = ErrParseByte(token)
		return
	}

	data = byte(v64)
	return
}

// ParseImage reads a .68b program image. The image is whitespace
// separated tokens: '$HH' loads one byte at the next address, a bare '/'
// opens or closes a comment, and all other tokens are ignored. A comment
// left open runs to the end of the image.
//
// Each line with bytes becomes one opcode, whose words are the comment
// words of that line.
func ParseImage(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)

	var line string
	var lineno int

	defer func() {
		if err != nil {
			err = ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	prog = &Program{}

	comment := false
	addr := 0
	for scanner.Scan() {
		line = scanner.Text()
		lineno++

		op := Opcode{LineNo: lineno, Addr: addr}
		for _, token := range strings.Fields(line) {
			if token == "/" {
				comment = !comment
				continue
			}
			if comment {
				op.Words = append(op.Words, token)
				continue
			}
			if !strings.HasPrefix(token, "$") {
				continue
			}

			var data byte
			data, err = parseByte(token)
			if err != nil {
				return
			}
			if addr >= MEMORY_SIZE {
				err = ErrImageTooLarge
				return
			}
			op.Data = append(op.Data, data)
			addr++
		}

		if len(op.Data) > 0 {
			prog.Opcodes = append(prog.Opcodes, op)
		}
	}

	err = scanner.Err()
	return
}
