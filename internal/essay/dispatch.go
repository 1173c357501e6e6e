package essay

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/sfgm-boston/bibleschool-lms/internal/notify"
	"github.com/sfgm-boston/bibleschool-lms/internal/quiz"
)

type SubmitRequest struct {
	QuizID      string `json:"quiz_id"`
	QuestionID  string `json:"question_id"`
	StudentID   string `json:"student_id"`
	StudentName string `json:"student_name,omitempty"`
	EssayText   string `json:"essay_text"`
	WordCount   int    `json:"word_count"` // client hint; recounted server-side
}

type SubmitResult struct {
	Submission quiz.EssaySubmission `json:"submission"`
	Message    string               `json:"message"`
}

// Recorder receives workflow events for the audit log. May be nil.
type Recorder interface {
	Record(ctx context.Context, typ, key string, data any) error
}

// Dispatcher packages a finished essay into an EssaySubmission, persists it
// exactly once and hands it to the reviewer channel. It never retries: a
// failed call is terminal for that attempt and the learner re-invokes
// submission explicitly.
type Dispatcher struct {
	store    quiz.Store
	notifier notify.Notifier
	audit    Recorder
	reviewer string // fixed reviewer address
	log      *logrus.Logger
	now      func() time.Time
}

func NewDispatcher(store quiz.Store, notifier notify.Notifier, audit Recorder, reviewerEmail string, log *logrus.Logger) *Dispatcher {
	if log == nil {
		log = logrus.New()
	}
	return &Dispatcher{store: store, notifier: notifier, audit: audit, reviewer: reviewerEmail, log: log, now: time.Now}
}

// Submit enforces, in order: word count, quiz shape, the passing-attempt
// gate, and at-most-once. The submission row is the only write; it either
// lands whole or not at all. The reviewer email afterwards is best-effort:
// a send failure is logged and the submission stands, the reviewer can be
// re-notified administratively.
func (d *Dispatcher) Submit(ctx context.Context, req SubmitRequest) (SubmitResult, error) {
	words := CountWords(req.EssayText)
	if words < MinWords {
		return SubmitResult{}, quiz.ErrEssayTooShort
	}

	qz, err := d.store.GetQuiz(ctx, req.QuizID)
	if err != nil {
		return SubmitResult{}, err
	}
	essayQ, ok := qz.EssayQuestion()
	if !qz.IsPublished || !qz.IsFinalExam || !ok {
		return SubmitResult{}, quiz.ErrInvalidQuizState
	}
	if req.QuestionID != "" && req.QuestionID != essayQ.ID {
		return SubmitResult{}, quiz.ErrInvalidQuizState
	}

	if err := d.gatePassed(ctx, req.QuizID, req.StudentID); err != nil {
		return SubmitResult{}, err
	}

	if _, err := d.store.GetSubmission(ctx, req.QuizID, req.StudentID); err == nil {
		return SubmitResult{}, quiz.ErrAlreadySubmitted
	} else if !errors.Is(err, quiz.ErrNotFound) {
		return SubmitResult{}, err
	}

	sub := quiz.EssaySubmission{
		ID:            uuid.NewString(),
		QuizID:        req.QuizID,
		QuestionID:    essayQ.ID,
		StudentID:     req.StudentID,
		EssayText:     req.EssayText,
		WordCount:     words,
		ReviewerEmail: d.reviewer,
		Status:        quiz.SubmissionStatusSubmitted,
		SubmittedAt:   d.now().Unix(),
	}
	if err := d.store.PutSubmission(ctx, sub); err != nil {
		// The unique index is the backstop for a concurrent double submit.
		return SubmitResult{}, err
	}

	if d.audit != nil {
		if err := d.audit.Record(ctx, "essay.submitted", sub.ID, sub); err != nil {
			d.log.WithError(err).Warn("audit record failed")
		}
	}

	notice := notify.EssayNotice{
		StudentID:   req.StudentID,
		StudentName: req.StudentName,
		CourseTitle: qz.Title,
		Question:    essayQ.Prompt,
		EssayText:   req.EssayText,
		WordCount:   words,
		SubmittedAt: d.now().Format(time.RFC1123),
	}
	if err := d.notifier.SendEssay(ctx, d.reviewer, notice); err != nil {
		d.log.WithError(err).WithFields(logrus.Fields{
			"student_id": req.StudentID,
			"quiz_id":    req.QuizID,
		}).Error("reviewer notice failed")
	}

	d.log.WithFields(logrus.Fields{
		"student_id": req.StudentID,
		"quiz_id":    req.QuizID,
		"word_count": words,
	}).Info("essay submitted for review")

	return SubmitResult{
		Submission: sub,
		Message:    "Essay submitted. Your certificate will be released after review.",
	}, nil
}

// gatePassed requires a passing attempt on this quiz for this student.
func (d *Dispatcher) gatePassed(ctx context.Context, quizID, studentID string) error {
	attempts, err := d.store.ListAttempts(ctx, quiz.AttemptListOpts{QuizID: quizID, StudentID: studentID})
	if err != nil {
		return err
	}
	for _, a := range attempts {
		if a.Passed {
			return nil
		}
	}
	return quiz.ErrGateNotSatisfied
}
