package quiz

import (
	"context"
	"sort"
	"sync"
)

type AttemptListOpts struct {
	QuizID    string
	StudentID string
	Limit     int
	Offset    int
}

// Store persists the workflow's records. Attempts, submissions and
// certificates are write-once: there are no update methods for them other
// than MarkSubmissionReviewed.
type Store interface {
	PutQuiz(ctx context.Context, qz Quiz) error
	// GetQuiz returns the quiz with answer keys intact; handlers strip them
	// before serving students.
	GetQuiz(ctx context.Context, id string) (Quiz, error)
	ListQuizzesByCourse(ctx context.Context, courseID string) ([]Quiz, error)

	PutAttempt(ctx context.Context, a Attempt) error
	GetAttempt(ctx context.Context, id string) (Attempt, error)
	ListAttempts(ctx context.Context, opts AttemptListOpts) ([]Attempt, error)
	// CountAttempts is used to derive the next attempt_number.
	CountAttempts(ctx context.Context, quizID, studentID string) (int, error)

	PutSubmission(ctx context.Context, s EssaySubmission) error
	GetSubmission(ctx context.Context, quizID, studentID string) (EssaySubmission, error)
	MarkSubmissionReviewed(ctx context.Context, id, reviewerID string, reviewedAt int64) error

	PutCertificate(ctx context.Context, c Certificate) error
	GetCertificate(ctx context.Context, id string) (Certificate, error)
	GetCertificateByCourse(ctx context.Context, studentID, courseID string) (Certificate, error)
	ListCertificates(ctx context.Context, studentID string) ([]Certificate, error)
}

type memoryStore struct {
	mu      sync.RWMutex
	quizzes map[string]Quiz
	// keyed by attempt ID
	attempts map[string]Attempt
	// keyed by quizID|studentID, enforcing the at-most-once invariant
	submissions map[string]EssaySubmission
	// keyed by certificate ID; certsByPair indexes studentID|courseID
	certs       map[string]Certificate
	certsByPair map[string]string
}

// NewInMemoryStore is used by tests and offline demos.
func NewInMemoryStore() Store {
	return &memoryStore{
		quizzes:     map[string]Quiz{},
		attempts:    map[string]Attempt{},
		submissions: map[string]EssaySubmission{},
		certs:       map[string]Certificate{},
		certsByPair: map[string]string{},
	}
}

func pairKey(a, b string) string { return a + "|" + b }

func (m *memoryStore) PutQuiz(_ context.Context, qz Quiz) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quizzes[qz.ID] = qz
	return nil
}

func (m *memoryStore) GetQuiz(_ context.Context, id string) (Quiz, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	qz, ok := m.quizzes[id]
	if !ok {
		return Quiz{}, ErrNotFound
	}
	// Copy so callers that redact answer keys don't mutate the stored quiz.
	qz.Questions = append([]Question(nil), qz.Questions...)
	qz.SortQuestions()
	return qz, nil
}

func (m *memoryStore) ListQuizzesByCourse(_ context.Context, courseID string) ([]Quiz, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Quiz{}
	for _, qz := range m.quizzes {
		if qz.CourseID == courseID {
			qz.Questions = append([]Question(nil), qz.Questions...)
			out = append(out, qz)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memoryStore) PutAttempt(_ context.Context, a Attempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts[a.ID] = a
	return nil
}

func (m *memoryStore) GetAttempt(_ context.Context, id string) (Attempt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.attempts[id]
	if !ok {
		return Attempt{}, ErrNotFound
	}
	return a, nil
}

func (m *memoryStore) ListAttempts(_ context.Context, opts AttemptListOpts) ([]Attempt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Attempt{}
	for _, a := range m.attempts {
		if opts.QuizID != "" && a.QuizID != opts.QuizID {
			continue
		}
		if opts.StudentID != "" && a.StudentID != opts.StudentID {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt > out[j].SubmittedAt })
	if opts.Offset > 0 {
		if opts.Offset >= len(out) {
			return []Attempt{}, nil
		}
		out = out[opts.Offset:]
	}
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

func (m *memoryStore) CountAttempts(_ context.Context, quizID, studentID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, a := range m.attempts {
		if a.QuizID == quizID && a.StudentID == studentID {
			n++
		}
	}
	return n, nil
}

func (m *memoryStore) PutSubmission(_ context.Context, s EssaySubmission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := pairKey(s.QuizID, s.StudentID)
	if _, exists := m.submissions[k]; exists {
		return ErrAlreadySubmitted
	}
	m.submissions[k] = s
	return nil
}

func (m *memoryStore) GetSubmission(_ context.Context, quizID, studentID string) (EssaySubmission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.submissions[pairKey(quizID, studentID)]
	if !ok {
		return EssaySubmission{}, ErrNotFound
	}
	return s, nil
}

func (m *memoryStore) MarkSubmissionReviewed(_ context.Context, id, reviewerID string, reviewedAt int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, s := range m.submissions {
		if s.ID == id {
			s.Status = SubmissionStatusReviewed
			s.ReviewerID = reviewerID
			s.ReviewedAt = reviewedAt
			m.submissions[k] = s
			return nil
		}
	}
	return ErrNotFound
}

func (m *memoryStore) PutCertificate(_ context.Context, c Certificate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := pairKey(c.StudentID, c.CourseID)
	if _, exists := m.certsByPair[k]; exists {
		return ErrCertificateExists
	}
	m.certs[c.ID] = c
	m.certsByPair[k] = c.ID
	return nil
}

func (m *memoryStore) GetCertificate(_ context.Context, id string) (Certificate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.certs[id]
	if !ok {
		return Certificate{}, ErrNotFound
	}
	return c, nil
}

func (m *memoryStore) GetCertificateByCourse(_ context.Context, studentID, courseID string) (Certificate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.certsByPair[pairKey(studentID, courseID)]
	if !ok {
		return Certificate{}, ErrNotFound
	}
	return m.certs[id], nil
}

func (m *memoryStore) ListCertificates(_ context.Context, studentID string) ([]Certificate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Certificate{}
	for _, c := range m.certs {
		if studentID == "" || c.StudentID == studentID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].IssuedAt > out[j].IssuedAt })
	return out, nil
}
