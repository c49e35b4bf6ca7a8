// Package io provides console channels for the sim68k emulator.
// The console carries the INP, DSP and DSR traffic of a running program:
// whitespace separated input tokens in, formatted text out.
package io

// Channel is the console of the simulated machine.
type Channel interface {
	// Rewind resets the channel to its initial state.
	Rewind()
	// Receive returns the next input token, after showing the prompt.
	Receive(prompt string) (token string, err error)
	// Send writes text to the channel.
	Send(text string) error
}
