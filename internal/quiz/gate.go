package quiz

import "math"

// Stage is what the learner does next after an attempt is scored.
type Stage string

const (
	StageCertificate   Stage = "certificate"    // non-final-exam pass
	StageEssayRequired Stage = "essay_required" // final exam pass
	StageRetry         Stage = "retry"          // fail, may reattempt
	StageNone          Stage = "none"           // fail on a final exam
)

// Outcome is the result of evaluating a scored attempt against its quiz.
type Outcome struct {
	Score     int   `json:"score"`
	Passed    bool  `json:"passed"`
	NextStage Stage `json:"next_stage"`
}

// Evaluate is the single place the "final exam requires an essay" rule lives.
// correct/total are the objective-question counts; total must be > 0 (the
// attempt engine rejects quizzes without objective questions before scoring).
func Evaluate(correct, total int, qz Quiz) Outcome {
	score := int(math.Round(100 * float64(correct) / float64(total)))
	passed := score >= qz.PassingScore

	var next Stage
	switch {
	case passed && qz.IsFinalExam:
		next = StageEssayRequired
	case passed:
		next = StageCertificate
	case qz.IsFinalExam:
		next = StageNone
	default:
		next = StageRetry
	}
	return Outcome{Score: score, Passed: passed, NextStage: next}
}
