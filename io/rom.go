package io

import (
	"strings"
)

// Rom is a scripted console: a fixed list of input tokens, with all
// prompts and output captured for inspection.
type Rom struct {
	Tokens []string

	Prompts []string
	Output  strings.Builder

	index int
}

var _ Channel = (*Rom)(nil)

// Rewind restarts the script and discards captured output.
func (rc *Rom) Rewind() {
	rc.index = 0
	rc.Prompts = nil
	rc.Output.Reset()
}

// Receive returns the next scripted token.
func (rc *Rom) Receive(prompt string) (token string, err error) {
	rc.Prompts = append(rc.Prompts, prompt)

	if rc.index >= len(rc.Tokens) {
		err = ErrChannelEmpty
		return
	}

	token = rc.Tokens[rc.index]
	rc.index++
	return
}

// Send captures the text.
func (rc *Rom) Send(text string) (err error) {
	rc.Output.WriteString(text)
	return
}
