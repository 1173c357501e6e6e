package grading

import (
	"strings"
	"unicode"

	"github.com/sfgm-boston/bibleschool-lms/internal/quiz"
)

// Checker decides whether a submitted answer is correct for a question.
// Objective questions only; essays are reviewed by a human and never pass
// through here.
type Checker interface {
	Correct(q quiz.Question, answer string) bool
}

// Strategy checks a single question type.
type Strategy interface {
	Correct(q quiz.Question, answer string) bool
}

type defaultChecker struct {
	strategies map[string]Strategy
}

func (c *defaultChecker) Correct(q quiz.Question, answer string) bool {
	s, ok := c.strategies[q.Type]
	if !ok {
		return false
	}
	return s.Correct(q, answer)
}

type Option func(*config)

type config struct {
	MaxEditDistance int // fill_blank fuzziness
}

func WithMaxEditDistance(n int) Option { return func(c *config) { c.MaxEditDistance = n } }

// NewChecker installs the built-in strategies.
func NewChecker(opts ...Option) Checker {
	cfg := &config{MaxEditDistance: 1}
	for _, o := range opts {
		o(cfg)
	}
	return &defaultChecker{
		strategies: map[string]Strategy{
			quiz.TypeMultipleChoice: exactStrategy{},
			quiz.TypeTrueFalse:      exactStrategy{},
			quiz.TypeYesNoText:      yesNoTextStrategy{},
			quiz.TypeFillBlank:      fillBlankStrategy{maxEdit: cfg.MaxEditDistance},
		},
	}
}

// exactStrategy: the selected option must equal the key, modulo surrounding
// whitespace and case.
type exactStrategy struct{}

func (exactStrategy) Correct(q quiz.Question, answer string) bool {
	return strings.EqualFold(strings.TrimSpace(answer), strings.TrimSpace(q.CorrectAnswer))
}

// yesNoTextStrategy: the answer arrives as "yes|<free text>". Only the yes/no
// half is graded; the text half is read by the instructor, never scored.
type yesNoTextStrategy struct{}

func (yesNoTextStrategy) Correct(q quiz.Question, answer string) bool {
	choice, _, _ := strings.Cut(answer, "|")
	return strings.EqualFold(strings.TrimSpace(choice), strings.TrimSpace(q.CorrectAnswer))
}

// fillBlankStrategy: free-typed answers match after folding, with a small
// edit-distance allowance for typos.
type fillBlankStrategy struct{ maxEdit int }

func (s fillBlankStrategy) Correct(q quiz.Question, answer string) bool {
	na := foldAnswer(answer)
	nk := foldAnswer(q.CorrectAnswer)
	if na == "" || nk == "" {
		return false
	}
	if na == nk {
		return true
	}
	return s.maxEdit > 0 && editDistance(na, nk) <= s.maxEdit
}

// foldAnswer lowercases, drops punctuation and collapses runs of whitespace,
// so "The Word." and "the  word" compare equal.
func foldAnswer(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	pendingSpace := false
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsSpace(r):
			pendingSpace = b.Len() > 0
		case unicode.IsPunct(r):
			// dropped, not turned into a space: "don't" folds to "dont"
		default:
			if pendingSpace {
				b.WriteByte(' ')
				pendingSpace = false
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}

// editDistance is Levenshtein with unit costs, two rolling rows.
func editDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(rb) > len(ra) {
		ra, rb = rb, ra
	}
	if len(rb) == 0 {
		return len(ra)
	}
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}
