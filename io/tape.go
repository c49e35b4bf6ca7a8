package io

import (
	"bufio"
	"io"
)

// Tape provides sequential console I/O over a byte stream.
// Input is split into whitespace separated tokens.
type Tape struct {
	Input  io.Reader
	Output io.Writer
	Prompt bool // Show prompts on Output before reading.

	scanner *bufio.Scanner
	scanned io.Reader // Input the scanner reads from.
}

var _ Channel = (*Tape)(nil)

// Rewind is not possible on a tape.
func (tc *Tape) Rewind() {
}

// Receive returns the next token of the input stream.
// The end of the input is reported as io.EOF.
func (tc *Tape) Receive(prompt string) (token string, err error) {
	if tc.Prompt && tc.Output != nil {
		_, err = io.WriteString(tc.Output, prompt)
		if err != nil {
			return
		}
	}

	if tc.Input == nil {
		err = io.EOF
		return
	}

	if tc.scanner == nil || tc.scanned != tc.Input {
		tc.scanner = bufio.NewScanner(tc.Input)
		tc.scanner.Split(bufio.ScanWords)
		tc.scanned = tc.Input
	}

	if !tc.scanner.Scan() {
		err = tc.scanner.Err()
		if err == nil {
			err = io.EOF
		}
		return
	}

	token = tc.scanner.Text()
	return
}

// Send writes the text to the output stream.
func (tc *Tape) Send(text string) (err error) {
	if tc.Output == nil {
		err = ErrChannelFull
		return
	}

	_, err = io.WriteString(tc.Output, text)
	return
}
