package quiz

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
)

// SQLStore works against both sqlite (modernc) and postgres (pgx stdlib);
// both accept $1-style placeholders.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) PutQuiz(ctx context.Context, qz Quiz) error {
	qj, err := json.Marshal(qz.Questions)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO quizzes (id,course_id,title,passing_score,is_final_exam,is_published,questions_json,created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (id) DO UPDATE SET course_id=EXCLUDED.course_id, title=EXCLUDED.title,
		  passing_score=EXCLUDED.passing_score, is_final_exam=EXCLUDED.is_final_exam,
		  is_published=EXCLUDED.is_published, questions_json=EXCLUDED.questions_json`,
		qz.ID, qz.CourseID, qz.Title, qz.PassingScore, qz.IsFinalExam, qz.IsPublished, string(qj), qz.CreatedAt)
	return err
}

func (s *SQLStore) GetQuiz(ctx context.Context, id string) (Quiz, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,course_id,title,passing_score,is_final_exam,is_published,questions_json,created_at
		FROM quizzes WHERE id=$1`, id)
	return scanQuiz(row)
}

func (s *SQLStore) ListQuizzesByCourse(ctx context.Context, courseID string) ([]Quiz, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id,course_id,title,passing_score,is_final_exam,is_published,questions_json,created_at
		FROM quizzes WHERE course_id=$1 ORDER BY id`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Quiz{}
	for rows.Next() {
		qz, err := scanQuiz(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, qz)
	}
	return out, rows.Err()
}

type rowScanner interface{ Scan(dest ...any) error }

func scanQuiz(row rowScanner) (Quiz, error) {
	var qz Quiz
	var qjson string
	if err := row.Scan(&qz.ID, &qz.CourseID, &qz.Title, &qz.PassingScore, &qz.IsFinalExam, &qz.IsPublished, &qjson, &qz.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Quiz{}, ErrNotFound
		}
		return Quiz{}, err
	}
	if err := json.Unmarshal([]byte(qjson), &qz.Questions); err != nil {
		return Quiz{}, err
	}
	qz.SortQuestions()
	return qz, nil
}

func (s *SQLStore) PutAttempt(ctx context.Context, a Attempt) error {
	aj, err := json.Marshal(a.Answers)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO attempts (id,quiz_id,student_id,answers_json,score,passed,attempt_number,submitted_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		a.ID, a.QuizID, a.StudentID, string(aj), a.Score, a.Passed, a.AttemptNumber, a.SubmittedAt)
	return err
}

func (s *SQLStore) GetAttempt(ctx context.Context, id string) (Attempt, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,quiz_id,student_id,answers_json,score,passed,attempt_number,submitted_at
		FROM attempts WHERE id=$1`, id)
	return scanAttempt(row)
}

func scanAttempt(row rowScanner) (Attempt, error) {
	var a Attempt
	var ajson string
	if err := row.Scan(&a.ID, &a.QuizID, &a.StudentID, &ajson, &a.Score, &a.Passed, &a.AttemptNumber, &a.SubmittedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Attempt{}, ErrNotFound
		}
		return Attempt{}, err
	}
	if err := json.Unmarshal([]byte(ajson), &a.Answers); err != nil {
		a.Answers = map[string]string{}
	}
	return a, nil
}

func (s *SQLStore) ListAttempts(ctx context.Context, opts AttemptListOpts) ([]Attempt, error) {
	where := []string{}
	args := []any{}
	if opts.QuizID != "" {
		args = append(args, opts.QuizID)
		where = append(where, "quiz_id=$"+strconv.Itoa(len(args)))
	}
	if opts.StudentID != "" {
		args = append(args, opts.StudentID)
		where = append(where, "student_id=$"+strconv.Itoa(len(args)))
	}
	q := `SELECT id,quiz_id,student_id,answers_json,score,passed,attempt_number,submitted_at FROM attempts`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY submitted_at DESC"
	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		q += " LIMIT $" + strconv.Itoa(len(args))
	}
	if opts.Offset > 0 {
		args = append(args, opts.Offset)
		q += " OFFSET $" + strconv.Itoa(len(args))
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Attempt{}
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *SQLStore) CountAttempts(ctx context.Context, quizID, studentID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM attempts WHERE quiz_id=$1 AND student_id=$2`,
		quizID, studentID).Scan(&n)
	return n, err
}

func (s *SQLStore) PutSubmission(ctx context.Context, sub EssaySubmission) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO essay_submissions
		(id,quiz_id,question_id,student_id,essay_text,word_count,reviewer_email,status,submitted_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		sub.ID, sub.QuizID, sub.QuestionID, sub.StudentID, sub.EssayText, sub.WordCount,
		sub.ReviewerEmail, sub.Status, sub.SubmittedAt)
	if err != nil && isUniqueViolation(err) {
		return ErrAlreadySubmitted
	}
	return err
}

func (s *SQLStore) GetSubmission(ctx context.Context, quizID, studentID string) (EssaySubmission, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,quiz_id,question_id,student_id,essay_text,word_count,reviewer_email,status,submitted_at,
		COALESCE(reviewed_at,0), COALESCE(reviewer_id,'')
		FROM essay_submissions WHERE quiz_id=$1 AND student_id=$2`, quizID, studentID)
	var sub EssaySubmission
	if err := row.Scan(&sub.ID, &sub.QuizID, &sub.QuestionID, &sub.StudentID, &sub.EssayText, &sub.WordCount,
		&sub.ReviewerEmail, &sub.Status, &sub.SubmittedAt, &sub.ReviewedAt, &sub.ReviewerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return EssaySubmission{}, ErrNotFound
		}
		return EssaySubmission{}, err
	}
	return sub, nil
}

func (s *SQLStore) MarkSubmissionReviewed(ctx context.Context, id, reviewerID string, reviewedAt int64) error {
	res, err := s.db.ExecContext(ctx, `UPDATE essay_submissions SET status=$1, reviewer_id=$2, reviewed_at=$3 WHERE id=$4`,
		SubmissionStatusReviewed, reviewerID, reviewedAt, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) PutCertificate(ctx context.Context, c Certificate) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO certificates
		(id,number,student_id,student_name,course_id,course_title,instructor_name,issued_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		c.ID, c.Number, c.StudentID, c.StudentName, c.CourseID, c.CourseTitle, c.InstructorName, c.IssuedAt)
	if err != nil && isUniqueViolation(err) {
		return ErrCertificateExists
	}
	return err
}

func (s *SQLStore) GetCertificate(ctx context.Context, id string) (Certificate, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,number,student_id,student_name,course_id,course_title,instructor_name,issued_at
		FROM certificates WHERE id=$1`, id)
	return scanCertificate(row)
}

func (s *SQLStore) GetCertificateByCourse(ctx context.Context, studentID, courseID string) (Certificate, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,number,student_id,student_name,course_id,course_title,instructor_name,issued_at
		FROM certificates WHERE student_id=$1 AND course_id=$2`, studentID, courseID)
	return scanCertificate(row)
}

func scanCertificate(row rowScanner) (Certificate, error) {
	var c Certificate
	if err := row.Scan(&c.ID, &c.Number, &c.StudentID, &c.StudentName, &c.CourseID, &c.CourseTitle, &c.InstructorName, &c.IssuedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Certificate{}, ErrNotFound
		}
		return Certificate{}, err
	}
	return c, nil
}

func (s *SQLStore) ListCertificates(ctx context.Context, studentID string) ([]Certificate, error) {
	var rows *sql.Rows
	var err error
	if studentID == "" {
		rows, err = s.db.QueryContext(ctx, `SELECT id,number,student_id,student_name,course_id,course_title,instructor_name,issued_at
			FROM certificates ORDER BY issued_at DESC`)
	} else {
		rows, err = s.db.QueryContext(ctx, `SELECT id,number,student_id,student_name,course_id,course_title,instructor_name,issued_at
			FROM certificates WHERE student_id=$1 ORDER BY issued_at DESC`, studentID)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Certificate{}
	for rows.Next() {
		c, err := scanCertificate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || // sqlite
		strings.Contains(msg, "duplicate key") // postgres
}

