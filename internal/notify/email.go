// Package notify delivers essay submissions to the human reviewer's inbox.
// The review itself happens entirely out-of-band; this is a one-way channel.
package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/sirupsen/logrus"
)

// EssayNotice is what the reviewer sees.
type EssayNotice struct {
	StudentID   string
	StudentName string
	CourseTitle string
	Question    string
	EssayText   string
	WordCount   int
	SubmittedAt string
}

// Notifier sends one notice to one reviewer address. Implementations must not
// retry: the at-most-once submission semantics upstream depend on it.
type Notifier interface {
	SendEssay(ctx context.Context, reviewerEmail string, n EssayNotice) error
}

// SMTPNotifier sends through a plain SMTP relay. One fixed message shape,
// one recipient.
type SMTPNotifier struct {
	Addr string // host:port
	From string
	Auth smtp.Auth // optional
}

func (s *SMTPNotifier) SendEssay(_ context.Context, reviewerEmail string, n EssayNotice) error {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", s.From)
	fmt.Fprintf(&b, "To: %s\r\n", reviewerEmail)
	fmt.Fprintf(&b, "Subject: Final Exam Essay - %s - %s\r\n", n.CourseTitle, n.StudentName)
	b.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	fmt.Fprintf(&b, "Student: %s (%s)\r\n", n.StudentName, n.StudentID)
	fmt.Fprintf(&b, "Course: %s\r\n", n.CourseTitle)
	fmt.Fprintf(&b, "Submitted: %s\r\n", n.SubmittedAt)
	fmt.Fprintf(&b, "Word count: %d\r\n\r\n", n.WordCount)
	fmt.Fprintf(&b, "Essay question:\r\n%s\r\n\r\n", n.Question)
	fmt.Fprintf(&b, "Student response:\r\n%s\r\n", n.EssayText)
	return smtp.SendMail(s.Addr, s.Auth, s.From, []string{reviewerEmail}, []byte(b.String()))
}

// LogNotifier stands in when no SMTP relay is configured (offline mode).
type LogNotifier struct{ Log *logrus.Logger }

func (l *LogNotifier) SendEssay(_ context.Context, reviewerEmail string, n EssayNotice) error {
	log := l.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	log.WithFields(logrus.Fields{
		"reviewer":   reviewerEmail,
		"student_id": n.StudentID,
		"course":     n.CourseTitle,
		"word_count": n.WordCount,
	}).Info("essay notice (no SMTP relay configured)")
	return nil
}
