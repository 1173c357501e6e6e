package essay

import (
	"strings"
	"testing"
)

func words(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = "word"
	}
	return strings.Join(parts, " ")
}

func TestCountWords(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"   ", 0},
		{"one", 1},
		{"one two three", 3},
		{"  padded   out\n\twith   whitespace  ", 4},
	}
	for _, tc := range cases {
		if got := CountWords(tc.in); got != tc.want {
			t.Errorf("CountWords(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestBuffer_SubmitThreshold(t *testing.T) {
	b := NewBuffer()

	b.SetTyped(words(99))
	if b.CanSubmit() {
		t.Error("99 words must not be submittable")
	}
	b.SetTyped(words(100))
	if !b.CanSubmit() {
		t.Error("exactly 100 words must be submittable")
	}
	b.SetTyped(words(101))
	if !b.CanSubmit() {
		t.Error("101 words must be submittable")
	}
}

func TestBuffer_TypedReplacesDictatedAppends(t *testing.T) {
	b := NewBuffer()

	b.SetTyped("first draft")
	b.AppendDictated("spoken words")
	if got := b.Text(); got != "first draft spoken words" {
		t.Errorf("text = %q", got)
	}

	// Typed edits replace the whole buffer, dictated text included.
	b.SetTyped("clean slate")
	if got := b.Text(); got != "clean slate" {
		t.Errorf("text after typed edit = %q", got)
	}
}

func TestBuffer_AppendDictatedSpacing(t *testing.T) {
	b := NewBuffer()

	b.AppendDictated("hello")
	b.AppendDictated("world")
	if got := b.Text(); got != "hello world" {
		t.Errorf("text = %q", got)
	}

	b.AppendDictated("")
	if got := b.Text(); got != "hello world" {
		t.Errorf("empty segment changed text: %q", got)
	}
}

func TestBuffer_DictationCountsTowardThreshold(t *testing.T) {
	b := NewBuffer()
	b.SetTyped(words(60))
	b.AppendDictated(words(40))
	if n := b.WordCount(); n != 100 {
		t.Fatalf("word count = %d, want 100", n)
	}
	if !b.CanSubmit() {
		t.Error("mixed typed and dictated text at 100 words must be submittable")
	}
}
