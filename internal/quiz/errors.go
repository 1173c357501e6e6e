package quiz

import "errors"

var (
	// ErrNotFound covers quizzes, attempts, submissions and certificates.
	ErrNotFound = errors.New("not found")

	// ErrInvalidQuizState: unpublished quiz, or no objective questions.
	ErrInvalidQuizState = errors.New("invalid quiz state")

	// ErrUnansweredQuestion: an objective question has no selected answer.
	ErrUnansweredQuestion = errors.New("unanswered question")

	// ErrEssayTooShort: essay below the minimum word count.
	ErrEssayTooShort = errors.New("essay below minimum word count")

	// ErrGateNotSatisfied: essay stage entered without a passing final-exam
	// attempt, or approval without a submitted essay.
	ErrGateNotSatisfied = errors.New("gate not satisfied")

	// ErrAlreadySubmitted: a second essay submission for the same student and
	// quiz, or a new attempt on a final exam whose essay stage is closed.
	ErrAlreadySubmitted = errors.New("essay already submitted")

	// ErrCertificateExists: a certificate already exists for the student and
	// course pair. Issuance treats this as success (idempotent re-delivery).
	ErrCertificateExists = errors.New("certificate already exists")
)
