package cert

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"

	"github.com/sfgm-boston/bibleschool-lms/internal/quiz"
)

type memBlobs struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func newMemBlobs() *memBlobs { return &memBlobs{blobs: map[string][]byte{}} }

func (m *memBlobs) Put(key string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[key] = data
	return key, nil
}

func (m *memBlobs) Get(key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.blobs[key]
	if !ok {
		return nil, errors.New("not found")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func seedApprovedCourse(t *testing.T, store quiz.Store) {
	t.Helper()
	ctx := context.Background()
	err := store.PutQuiz(ctx, quiz.Quiz{
		ID: "final-1", CourseID: "course-1", Title: "Foundations of Faith",
		PassingScore: 70, IsFinalExam: true, IsPublished: true,
		Questions: []quiz.Question{
			{ID: "q1", Type: quiz.TypeMultipleChoice, CorrectAnswer: "a"},
			{ID: "q-essay", Type: quiz.TypeEssay, Prompt: "Reflect."},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	err = store.PutSubmission(ctx, quiz.EssaySubmission{
		ID: "sub-1", QuizID: "final-1", QuestionID: "q-essay", StudentID: "student-7742",
		EssayText: "the essay", WordCount: 120, Status: quiz.SubmissionStatusSubmitted, SubmittedAt: 10,
	})
	if err != nil {
		t.Fatal(err)
	}
}

func newTestIssuer(t *testing.T) (*Issuer, quiz.Store, *memBlobs) {
	t.Helper()
	store := quiz.NewInMemoryStore()
	seedApprovedCourse(t, store)
	blobs := newMemBlobs()
	log, _ := test.NewNullLogger()
	iss := NewIssuer(store, blobs, nil, nil, "", log)
	iss.now = func() time.Time { return time.Unix(1700000000, 0) }
	return iss, store, blobs
}

func approval() Approval {
	return Approval{
		StudentID:   "student-7742",
		StudentName: "Jordan Rivers",
		CourseID:    "course-1",
		ReviewerID:  "reviewer-1",
	}
}

func TestApprove_IssuesCertificate(t *testing.T) {
	iss, store, blobs := newTestIssuer(t)

	c, err := iss.Approve(context.Background(), approval())
	if err != nil {
		t.Fatal(err)
	}
	if c.Number != "CERT-1700000000000-7742" {
		t.Errorf("number = %q", c.Number)
	}
	if c.InstructorName != "Pastor Rocky" {
		t.Errorf("instructor = %q", c.InstructorName)
	}
	if c.CourseTitle != "Foundations of Faith" {
		t.Errorf("course title = %q", c.CourseTitle)
	}

	// The submission was closed out as reviewed.
	sub, err := store.GetSubmission(context.Background(), "final-1", "student-7742")
	if err != nil {
		t.Fatal(err)
	}
	if sub.Status != quiz.SubmissionStatusReviewed || sub.ReviewerID != "reviewer-1" {
		t.Errorf("submission after approval = %+v", sub)
	}

	// The document was rendered.
	rc, err := blobs.Get(DocumentKey(c))
	if err != nil {
		t.Fatal("certificate document missing")
	}
	defer rc.Close()
	doc, _ := io.ReadAll(rc)
	for _, want := range []string{"Jordan Rivers", "Foundations of Faith", c.Number, "Pastor Rocky"} {
		if !strings.Contains(string(doc), want) {
			t.Errorf("document missing %q", want)
		}
	}
}

func TestApprove_Idempotent(t *testing.T) {
	iss, _, _ := newTestIssuer(t)

	first, err := iss.Approve(context.Background(), approval())
	if err != nil {
		t.Fatal(err)
	}

	// A re-delivered signal, even with a different clock, changes nothing.
	iss.now = func() time.Time { return time.Unix(1800000000, 0) }
	second, err := iss.Approve(context.Background(), approval())
	if err != nil {
		t.Fatal(err)
	}
	if second.ID != first.ID || second.Number != first.Number {
		t.Errorf("re-delivery minted a new certificate: %+v vs %+v", first, second)
	}
}

func TestApprove_NoSubmission(t *testing.T) {
	store := quiz.NewInMemoryStore()
	_ = store.PutQuiz(context.Background(), quiz.Quiz{
		ID: "final-1", CourseID: "course-1", Title: "Foundations of Faith",
		IsFinalExam: true, IsPublished: true,
	})
	log, _ := test.NewNullLogger()
	iss := NewIssuer(store, newMemBlobs(), nil, nil, "", log)

	if _, err := iss.Approve(context.Background(), approval()); !errors.Is(err, quiz.ErrGateNotSatisfied) {
		t.Fatalf("err = %v, want ErrGateNotSatisfied", err)
	}
}

func TestApprove_WrongCourse(t *testing.T) {
	iss, _, _ := newTestIssuer(t)

	ap := approval()
	ap.CourseID = "course-2"
	if _, err := iss.Approve(context.Background(), ap); !errors.Is(err, quiz.ErrGateNotSatisfied) {
		t.Fatalf("err = %v, want ErrGateNotSatisfied", err)
	}
}

func TestApprove_PinnedQuiz(t *testing.T) {
	iss, _, _ := newTestIssuer(t)

	ap := approval()
	ap.QuizID = "final-1"
	if _, err := iss.Approve(context.Background(), ap); err != nil {
		t.Fatal(err)
	}
}

type fakeDirectory struct {
	names map[string]string
	err   error
}

func (f *fakeDirectory) DisplayName(_ context.Context, studentID string) (string, error) {
	return f.names[studentID], f.err
}

func TestApprove_NameFallsBackToDirectory(t *testing.T) {
	store := quiz.NewInMemoryStore()
	seedApprovedCourse(t, store)
	blobs := newMemBlobs()
	log, _ := test.NewNullLogger()
	dir := &fakeDirectory{names: map[string]string{"student-7742": "Jordan Rivers"}}
	iss := NewIssuer(store, blobs, nil, dir, "", log)

	ap := approval()
	ap.StudentName = ""
	c, err := iss.Approve(context.Background(), ap)
	if err != nil {
		t.Fatal(err)
	}
	if c.StudentName != "Jordan Rivers" {
		t.Errorf("student name = %q, want directory name", c.StudentName)
	}

	rc, err := blobs.Get(DocumentKey(c))
	if err != nil {
		t.Fatal("certificate document missing")
	}
	defer rc.Close()
	doc, _ := io.ReadAll(rc)
	if !strings.Contains(string(doc), "Jordan Rivers") {
		t.Error("document missing the resolved name")
	}
}

func TestApprove_PayloadNameWinsOverDirectory(t *testing.T) {
	store := quiz.NewInMemoryStore()
	seedApprovedCourse(t, store)
	log, _ := test.NewNullLogger()
	dir := &fakeDirectory{names: map[string]string{"student-7742": "Directory Name"}}
	iss := NewIssuer(store, nil, nil, dir, "", log)

	c, err := iss.Approve(context.Background(), approval())
	if err != nil {
		t.Fatal(err)
	}
	if c.StudentName != "Jordan Rivers" {
		t.Errorf("student name = %q, payload name must win", c.StudentName)
	}
}

func TestApprove_DirectoryFailureIsNonFatal(t *testing.T) {
	store := quiz.NewInMemoryStore()
	seedApprovedCourse(t, store)
	log, _ := test.NewNullLogger()
	dir := &fakeDirectory{err: errors.New("db down")}
	iss := NewIssuer(store, nil, nil, dir, "", log)

	ap := approval()
	ap.StudentName = ""
	c, err := iss.Approve(context.Background(), ap)
	if err != nil {
		t.Fatalf("issuance must survive a name lookup failure: %v", err)
	}
	if c.StudentName != "" {
		t.Errorf("student name = %q, want empty on lookup failure", c.StudentName)
	}
}

func TestCertNumber_ShortStudentID(t *testing.T) {
	n := certNumber(time.Unix(1700000000, 0), "ab")
	if n != "CERT-1700000000000-ab" {
		t.Errorf("number = %q", n)
	}
}

func TestApprove_CustomInstructor(t *testing.T) {
	store := quiz.NewInMemoryStore()
	seedApprovedCourse(t, store)
	log, _ := test.NewNullLogger()
	iss := NewIssuer(store, nil, nil, nil, "Rev. Jane Doe", log)

	c, err := iss.Approve(context.Background(), approval())
	if err != nil {
		t.Fatal(err)
	}
	if c.InstructorName != "Rev. Jane Doe" {
		t.Errorf("instructor = %q", c.InstructorName)
	}
}
