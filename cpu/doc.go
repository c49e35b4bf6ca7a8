// Package cpu implements the processor and assembler for the sim68k system.
//
// The CPU is a subset of the Motorola 68000: two 32-bit data registers
// (D0, D1), two 16-bit address registers (A0, A1), a program counter, the
// memory address and data registers (MAR, MDR) and the C, V, Z, N and H
// status flags, over a byte addressable memory of $1001 bytes.
//
// Instructions are a 16-bit word followed by one address word for each
// absolute operand. The assembler provides a 68000 flavoured assembly
// language for the instruction set, supporting macros, labels, equates,
// and compile-time expression evaluation.
package cpu
