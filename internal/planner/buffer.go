package planner

import "strings"

// Buffer accumulates streamed fragments into the running plan text.
type Buffer struct {
	live      strings.Builder
	final     string
	finalized bool
}

// Append adds a fragment and returns the running text.
func (b *Buffer) Append(fragment string) string {
	if b.finalized {
		b.final = ""
		b.finalized = false
	}
	b.live.WriteString(fragment)
	return b.live.String()
}

func (b *Buffer) Live() string {
	return b.live.String()
}

// Finalize freezes the running text as the result and clears the live text.
func (b *Buffer) Finalize() string {
	b.final = b.live.String()
	b.finalized = true
	b.live.Reset()
	return b.final
}

// Final is the last finalized result, empty before Finalize.
func (b *Buffer) Final() string {
	return b.final
}

// Discard drops the running text, a failed stream leaves no result behind.
func (b *Buffer) Discard() {
	b.live.Reset()
	b.final = ""
	b.finalized = false
}
