package quiz

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// AnswerChecker is satisfied by grading.Checker; declared here so the engine
// does not import the grading package.
type AnswerChecker interface {
	Correct(q Question, answer string) bool
}

// Recorder receives workflow events for the audit log. May be nil.
type Recorder interface {
	Record(ctx context.Context, typ, key string, data any) error
}

// Engine walks a learner through a quiz's objective questions and produces
// one immutable Attempt per finish call.
type Engine struct {
	store   Store
	checker AnswerChecker
	audit   Recorder
	log     *logrus.Logger
	now     func() time.Time
}

func NewEngine(store Store, checker AnswerChecker, audit Recorder, log *logrus.Logger) *Engine {
	if log == nil {
		log = logrus.New()
	}
	return &Engine{store: store, checker: checker, audit: audit, log: log, now: time.Now}
}

// Finish validates the answer set, scores it, persists the attempt and
// returns it together with the gate outcome. Nothing is written on a
// validation failure.
func (e *Engine) Finish(ctx context.Context, quizID, studentID string, answers map[string]string) (Attempt, Outcome, error) {
	qz, err := e.store.GetQuiz(ctx, quizID)
	if err != nil {
		return Attempt{}, Outcome{}, err
	}
	if !qz.IsPublished {
		return Attempt{}, Outcome{}, ErrInvalidQuizState
	}
	objective := qz.ObjectiveQuestions()
	if len(objective) == 0 {
		return Attempt{}, Outcome{}, ErrInvalidQuizState
	}

	// A final exam is closed once its essay is in.
	if qz.IsFinalExam {
		if _, err := e.store.GetSubmission(ctx, quizID, studentID); err == nil {
			return Attempt{}, Outcome{}, ErrAlreadySubmitted
		} else if !errors.Is(err, ErrNotFound) {
			return Attempt{}, Outcome{}, err
		}
	}

	correct := 0
	recorded := make(map[string]string, len(objective))
	for _, q := range objective {
		ans, ok := answers[q.ID]
		if !ok || ans == "" {
			return Attempt{}, Outcome{}, ErrUnansweredQuestion
		}
		recorded[q.ID] = ans
		if e.checker.Correct(q, ans) {
			correct++
		}
	}

	outcome := Evaluate(correct, len(objective), qz)

	prior, err := e.store.CountAttempts(ctx, quizID, studentID)
	if err != nil {
		return Attempt{}, Outcome{}, err
	}

	a := Attempt{
		ID:            uuid.NewString(),
		QuizID:        quizID,
		StudentID:     studentID,
		Answers:       recorded,
		Score:         outcome.Score,
		Passed:        outcome.Passed,
		AttemptNumber: prior + 1,
		SubmittedAt:   e.now().Unix(),
	}
	if err := e.store.PutAttempt(ctx, a); err != nil {
		return Attempt{}, Outcome{}, err
	}

	if e.audit != nil {
		if err := e.audit.Record(ctx, "attempt.submitted", a.ID, a); err != nil {
			e.log.WithError(err).Warn("audit record failed")
		}
	}
	e.log.WithFields(logrus.Fields{
		"quiz_id":    quizID,
		"student_id": studentID,
		"score":      a.Score,
		"passed":     a.Passed,
		"next_stage": outcome.NextStage,
		"attempt":    a.AttemptNumber,
	}).Info("attempt finished")

	return a, outcome, nil
}
