// Package cert materializes certificates when the external "essay approved"
// signal arrives. Approval itself happens outside the system: the reviewer
// reads the essay in their inbox and acts; this package only reacts.
package cert

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/sfgm-boston/bibleschool-lms/internal/quiz"
	"github.com/sfgm-boston/bibleschool-lms/internal/storage"
)

const defaultInstructor = "Pastor Rocky"

// Approval is the external signal, keyed by (student, course).
type Approval struct {
	StudentID   string `json:"student_id"`
	StudentName string `json:"student_name,omitempty"`
	CourseID    string `json:"course_id"`
	// QuizID optionally pins the final exam whose essay was approved; when
	// empty the issuer finds the course's final exam itself.
	QuizID     string `json:"quiz_id,omitempty"`
	ReviewerID string `json:"reviewer_id,omitempty"`
}

// Recorder receives workflow events for the audit log. May be nil.
type Recorder interface {
	Record(ctx context.Context, typ, key string, data any) error
}

// NameDirectory resolves a student's display name when the approval payload
// omits it. May be nil.
type NameDirectory interface {
	DisplayName(ctx context.Context, studentID string) (string, error)
}

// SQLDirectory reads display names from the users table.
type SQLDirectory struct{ DB *sql.DB }

func (d *SQLDirectory) DisplayName(ctx context.Context, studentID string) (string, error) {
	var name string
	err := d.DB.QueryRowContext(ctx, `SELECT name FROM users WHERE id=$1`, studentID).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return name, err
}

type Issuer struct {
	store      quiz.Store
	blobs      storage.BlobStore
	audit      Recorder
	names      NameDirectory
	instructor string
	log        *logrus.Logger
	now        func() time.Time
}

func NewIssuer(store quiz.Store, blobs storage.BlobStore, audit Recorder, names NameDirectory, instructor string, log *logrus.Logger) *Issuer {
	if instructor == "" {
		instructor = defaultInstructor
	}
	if log == nil {
		log = logrus.New()
	}
	return &Issuer{store: store, blobs: blobs, audit: audit, names: names, instructor: instructor, log: log, now: time.Now}
}

// Approve consumes one approval signal. Idempotent: a re-delivered signal for
// a pair that already holds a certificate returns the existing one untouched.
func (i *Issuer) Approve(ctx context.Context, ap Approval) (quiz.Certificate, error) {
	if existing, err := i.store.GetCertificateByCourse(ctx, ap.StudentID, ap.CourseID); err == nil {
		return existing, nil
	} else if !errors.Is(err, quiz.ErrNotFound) {
		return quiz.Certificate{}, err
	}

	sub, qz, err := i.findSubmission(ctx, ap)
	if err != nil {
		return quiz.Certificate{}, err
	}

	now := i.now()
	if sub.Status != quiz.SubmissionStatusReviewed {
		if err := i.store.MarkSubmissionReviewed(ctx, sub.ID, ap.ReviewerID, now.Unix()); err != nil {
			return quiz.Certificate{}, err
		}
	}

	name := ap.StudentName
	if name == "" && i.names != nil {
		n, err := i.names.DisplayName(ctx, ap.StudentID)
		if err != nil {
			i.log.WithError(err).WithField("student_id", ap.StudentID).Warn("name lookup failed")
		} else {
			name = n
		}
	}

	c := quiz.Certificate{
		ID:             uuid.NewString(),
		Number:         certNumber(now, ap.StudentID),
		StudentID:      ap.StudentID,
		StudentName:    name,
		CourseID:       ap.CourseID,
		CourseTitle:    qz.Title,
		InstructorName: i.instructor,
		IssuedAt:       now.Unix(),
	}
	if err := i.store.PutCertificate(ctx, c); err != nil {
		if errors.Is(err, quiz.ErrCertificateExists) {
			// Lost a race with a duplicate delivery; the other one won.
			return i.store.GetCertificateByCourse(ctx, ap.StudentID, ap.CourseID)
		}
		return quiz.Certificate{}, err
	}

	if i.blobs != nil {
		if err := i.renderDocument(c); err != nil {
			i.log.WithError(err).WithField("certificate", c.Number).Warn("certificate document render failed")
		}
	}
	if i.audit != nil {
		if err := i.audit.Record(ctx, "certificate.issued", c.ID, c); err != nil {
			i.log.WithError(err).Warn("audit record failed")
		}
	}
	i.log.WithFields(logrus.Fields{
		"student_id": ap.StudentID,
		"course_id":  ap.CourseID,
		"number":     c.Number,
	}).Info("certificate issued")
	return c, nil
}

// findSubmission locates the approved essay: the course's final exam must
// hold a submission from this student, otherwise the gate is not satisfied.
func (i *Issuer) findSubmission(ctx context.Context, ap Approval) (quiz.EssaySubmission, quiz.Quiz, error) {
	var finals []quiz.Quiz
	if ap.QuizID != "" {
		qz, err := i.store.GetQuiz(ctx, ap.QuizID)
		if err != nil {
			return quiz.EssaySubmission{}, quiz.Quiz{}, err
		}
		finals = []quiz.Quiz{qz}
	} else {
		all, err := i.store.ListQuizzesByCourse(ctx, ap.CourseID)
		if err != nil {
			return quiz.EssaySubmission{}, quiz.Quiz{}, err
		}
		for _, qz := range all {
			if qz.IsFinalExam {
				finals = append(finals, qz)
			}
		}
	}
	for _, qz := range finals {
		if !qz.IsFinalExam || qz.CourseID != ap.CourseID {
			continue
		}
		sub, err := i.store.GetSubmission(ctx, qz.ID, ap.StudentID)
		if err == nil {
			return sub, qz, nil
		}
		if !errors.Is(err, quiz.ErrNotFound) {
			return quiz.EssaySubmission{}, quiz.Quiz{}, err
		}
	}
	return quiz.EssaySubmission{}, quiz.Quiz{}, quiz.ErrGateNotSatisfied
}

// certNumber matches the legacy format: CERT-<unix ms>-<last 4 of student id>.
func certNumber(now time.Time, studentID string) string {
	tail := studentID
	if len(tail) > 4 {
		tail = tail[len(tail)-4:]
	}
	return fmt.Sprintf("CERT-%d-%s", now.UnixMilli(), tail)
}

// DocumentKey is where the rendered certificate lives in the blob store.
func DocumentKey(c quiz.Certificate) string {
	return fmt.Sprintf("certificates/%s/%s.txt", c.StudentID, c.Number)
}

func (i *Issuer) renderDocument(c quiz.Certificate) error {
	var b strings.Builder
	b.WriteString("CERTIFICATE OF COMPLETION\n\n")
	fmt.Fprintf(&b, "This certifies that %s\n", c.StudentName)
	fmt.Fprintf(&b, "has successfully completed the course\n\n    %s\n\n", c.CourseTitle)
	fmt.Fprintf(&b, "Certificate No: %s\n", c.Number)
	fmt.Fprintf(&b, "Issued: %s\n", time.Unix(c.IssuedAt, 0).UTC().Format("January 2, 2006"))
	fmt.Fprintf(&b, "Instructor of Record: %s\n", c.InstructorName)
	_, err := i.blobs.Put(DocumentKey(c), strings.NewReader(b.String()))
	return err
}
