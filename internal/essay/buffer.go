// Package essay implements the final-exam essay stage: the capture buffer
// with typed and dictated input, the dictation session state machine, and the
// submission dispatcher that hands the essay to the human reviewer.
package essay

import (
	"strings"
	"sync"
)

// MinWords is the submission threshold. canSubmit flips at exactly this count.
const MinWords = 100

// CountWords counts whitespace-delimited non-empty tokens.
func CountWords(s string) int { return len(strings.Fields(s)) }

// Buffer holds the essay text for one essay instance. Typed edits replace
// the whole buffer; finalized dictation segments append. Writes are applied
// in arrival order, so a typed edit and a dictated segment landing together
// both survive.
type Buffer struct {
	mu   sync.Mutex
	text string
}

func NewBuffer() *Buffer { return &Buffer{} }

// SetTyped replaces the buffer with the editor's current content.
func (b *Buffer) SetTyped(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.text = text
}

// AppendDictated appends one finalized transcript segment. Interim recognizer
// results never reach this method; the session discards them.
func (b *Buffer) AppendDictated(segment string) {
	if segment == "" {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.text != "" && !strings.HasSuffix(b.text, " ") {
		b.text += " "
	}
	b.text += segment
}

func (b *Buffer) Text() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.text
}

func (b *Buffer) WordCount() int { return CountWords(b.Text()) }

func (b *Buffer) CanSubmit() bool { return b.WordCount() >= MinWords }
