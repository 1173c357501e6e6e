package grading

import (
	"testing"

	"github.com/sfgm-boston/bibleschool-lms/internal/quiz"
)

func TestChecker_MultipleChoice(t *testing.T) {
	c := NewChecker()
	q := quiz.Question{Type: quiz.TypeMultipleChoice, CorrectAnswer: "Moses"}

	cases := []struct {
		answer string
		want   bool
	}{
		{"Moses", true},
		{"moses", true},
		{"  MOSES  ", true},
		{"Aaron", false},
		{"Mose", false}, // no fuzz for option picks
		{"", false},
	}
	for _, tc := range cases {
		if got := c.Correct(q, tc.answer); got != tc.want {
			t.Errorf("Correct(%q) = %v, want %v", tc.answer, got, tc.want)
		}
	}
}

func TestChecker_TrueFalse(t *testing.T) {
	c := NewChecker()
	q := quiz.Question{Type: quiz.TypeTrueFalse, CorrectAnswer: "true"}

	if !c.Correct(q, "True") {
		t.Error("case-insensitive match expected")
	}
	if c.Correct(q, "false") {
		t.Error("wrong answer accepted")
	}
}

func TestChecker_YesNoWithText(t *testing.T) {
	c := NewChecker()
	q := quiz.Question{Type: quiz.TypeYesNoText, CorrectAnswer: "yes"}

	cases := []struct {
		answer string
		want   bool
	}{
		{"yes|Because the text says so.", true},
		{"Yes | trailing space around the choice", true},
		{"yes", true}, // remark is optional
		{"no|I disagree.", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := c.Correct(q, tc.answer); got != tc.want {
			t.Errorf("Correct(%q) = %v, want %v", tc.answer, got, tc.want)
		}
	}

	// Only the choice half is graded; the remark never flips the result.
	if !c.Correct(q, "yes|no no no") {
		t.Error("remark text must not be graded")
	}
}

func TestChecker_FillBlank(t *testing.T) {
	c := NewChecker()
	q := quiz.Question{Type: quiz.TypeFillBlank, CorrectAnswer: "Bethlehem"}

	cases := []struct {
		answer string
		want   bool
	}{
		{"Bethlehem", true},
		{"bethlehem", true},
		{"Bethlehem.", true},  // trailing punctuation stripped
		{"Bethlehm", true},    // one edit away
		{"Bethlehemmm", false}, // two edits away
		{"Nazareth", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := c.Correct(q, tc.answer); got != tc.want {
			t.Errorf("Correct(%q) = %v, want %v", tc.answer, got, tc.want)
		}
	}
}

func TestChecker_FillBlankStrict(t *testing.T) {
	c := NewChecker(WithMaxEditDistance(0))
	q := quiz.Question{Type: quiz.TypeFillBlank, CorrectAnswer: "Bethlehem"}

	if !c.Correct(q, "bethlehem") {
		t.Error("exact match must still pass with fuzz disabled")
	}
	if c.Correct(q, "Bethlehm") {
		t.Error("typo accepted with fuzz disabled")
	}
}

func TestChecker_UnknownTypeNeverCorrect(t *testing.T) {
	c := NewChecker()
	q := quiz.Question{Type: quiz.TypeEssay, CorrectAnswer: "anything"}
	if c.Correct(q, "anything") {
		t.Error("essay questions must not be auto-graded")
	}
}

func TestFoldAnswer(t *testing.T) {
	cases := []struct{ in, want string }{
		{"  The  Word  ", "the word"},
		{"Word.", "word"},
		{"don't", "dont"},
		{"", ""},
		{"...", ""},
	}
	for _, tc := range cases {
		if got := foldAnswer(tc.in); got != tc.want {
			t.Errorf("foldAnswer(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestEditDistance(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"a", "", 1},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"word", "word", 0},
		{"word", "ward", 1},
	}
	for _, tc := range cases {
		if got := editDistance(tc.a, tc.b); got != tc.want {
			t.Errorf("editDistance(%q, %q) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}
