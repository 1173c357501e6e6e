package quiz

import "sort"

// Question types. All but essay are objective (auto-graded, counted in the
// attempt score); essay is reviewed by a human. yes_no_with_text answers carry
// a free-text remark after the choice ("yes|because ..."); only the choice is
// graded.
const (
	TypeMultipleChoice = "multiple_choice"
	TypeTrueFalse      = "true_false"
	TypeYesNoText      = "yes_no_with_text"
	TypeFillBlank      = "fill_blank"
	TypeEssay          = "essay"
)

type Question struct {
	ID            string   `json:"id"`
	QuizID        string   `json:"quiz_id,omitempty"`
	Type          string   `json:"type"`
	Prompt        string   `json:"prompt"`
	Options       []string `json:"options,omitempty"`        // multiple_choice only
	CorrectAnswer string   `json:"correct_answer,omitempty"` // stripped when served to students
	OrderIndex    int      `json:"order_index"`
}

// Objective reports whether the question counts toward the attempt score.
func (q Question) Objective() bool {
	switch q.Type {
	case TypeMultipleChoice, TypeTrueFalse, TypeYesNoText, TypeFillBlank:
		return true
	}
	return false
}

type Quiz struct {
	ID           string     `json:"id"`
	CourseID     string     `json:"course_id"`
	Title        string     `json:"title"`
	PassingScore int        `json:"passing_score"` // percent, 0-100
	IsFinalExam  bool       `json:"is_final_exam"`
	IsPublished  bool       `json:"is_published"`
	Questions    []Question `json:"questions,omitempty"`
	CreatedAt    int64      `json:"created_at,omitempty"`
}

// SortQuestions orders by order_index, ties broken by id.
func (qz *Quiz) SortQuestions() {
	sort.SliceStable(qz.Questions, func(i, j int) bool {
		a, b := qz.Questions[i], qz.Questions[j]
		if a.OrderIndex != b.OrderIndex {
			return a.OrderIndex < b.OrderIndex
		}
		return a.ID < b.ID
	})
}

// ObjectiveQuestions returns the auto-graded questions in display order.
func (qz *Quiz) ObjectiveQuestions() []Question {
	qz.SortQuestions()
	out := make([]Question, 0, len(qz.Questions))
	for _, q := range qz.Questions {
		if q.Objective() {
			out = append(out, q)
		}
	}
	return out
}

// EssayQuestion returns the quiz's single essay question, if any.
func (qz *Quiz) EssayQuestion() (Question, bool) {
	for _, q := range qz.Questions {
		if q.Type == TypeEssay {
			return q, true
		}
	}
	return Question{}, false
}

// Attempt is one completed pass through a quiz's objective questions.
// Immutable once written; retakes create a new Attempt.
type Attempt struct {
	ID            string            `json:"id"`
	QuizID        string            `json:"quiz_id"`
	StudentID     string            `json:"student_id"`
	Answers       map[string]string `json:"answers"` // questionID -> submitted answer
	Score         int               `json:"score"`   // 0-100
	Passed        bool              `json:"passed"`
	AttemptNumber int               `json:"attempt_number"`
	SubmittedAt   int64             `json:"submitted_at"`
}

// EssaySubmission is the reflective essay for a final exam. At most one
// exists per (student, quiz); once created the exam is closed for retakes.
type EssaySubmission struct {
	ID            string `json:"id"`
	QuizID        string `json:"quiz_id"`
	QuestionID    string `json:"question_id"`
	StudentID     string `json:"student_id"`
	EssayText     string `json:"essay_text"`
	WordCount     int    `json:"word_count"`
	ReviewerEmail string `json:"reviewer_email"`
	Status        string `json:"status"` // submitted|reviewed
	SubmittedAt   int64  `json:"submitted_at"`
	ReviewedAt    int64  `json:"reviewed_at,omitempty"`
	ReviewerID    string `json:"reviewer_id,omitempty"`
}

const (
	SubmissionStatusSubmitted = "submitted"
	SubmissionStatusReviewed  = "reviewed"
)

type Certificate struct {
	ID             string `json:"id"`
	Number         string `json:"number"`
	StudentID      string `json:"student_id"`
	StudentName    string `json:"student_name"`
	CourseID       string `json:"course_id"`
	CourseTitle    string `json:"course_title"`
	InstructorName string `json:"instructor_name"`
	IssuedAt       int64  `json:"issued_at"`
}
