package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	authmw "github.com/sfgm-boston/bibleschool-lms/internal/auth/middleware"
	"github.com/sfgm-boston/bibleschool-lms/internal/quiz"
	"github.com/sfgm-boston/bibleschool-lms/internal/rbac"
)

type finishAttemptReq struct {
	QuizID  string            `json:"quiz_id"`
	Answers map[string]string `json:"answers"`
}

type finishAttemptResp struct {
	Attempt quiz.Attempt `json:"attempt"`
	Outcome quiz.Outcome `json:"outcome"`
}

// FinishAttemptHandler closes out the objective portion of a quiz: one call,
// one immutable attempt. The caller's subject is the student; instructors
// cannot take quizzes on a student's behalf.
func FinishAttemptHandler(engine *quiz.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req finishAttemptReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		if req.QuizID == "" {
			http.Error(w, "quiz_id required", 400)
			return
		}
		studentID := authmw.SubjectFromContext(r.Context())
		if studentID == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		a, outcome, err := engine.Finish(r.Context(), req.QuizID, studentID, req.Answers)
		if err != nil {
			writeErr(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(finishAttemptResp{Attempt: a, Outcome: outcome})
	}
}

func GetAttemptHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := store.GetAttempt(r.Context(), chi.URLParam(r, "attemptID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		role := rbac.RoleFromContext(r.Context())
		sub := authmw.SubjectFromContext(r.Context())
		if role != "instructor" && role != "admin" && a.StudentID != sub {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		_ = json.NewEncoder(w).Encode(a)
	}
}

// GET /attempts?quiz_id=...&student_id=...&limit=50&offset=0
// Students only ever see their own attempts; the student_id filter is forced
// to their subject.
func ListAttemptsHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		role := rbac.RoleFromContext(r.Context())
		sub := authmw.SubjectFromContext(r.Context())
		if role == "" {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		quizID := strings.TrimSpace(r.URL.Query().Get("quiz_id"))
		studentID := strings.TrimSpace(r.URL.Query().Get("student_id"))
		if role != "instructor" && role != "admin" {
			studentID = sub
		}

		list, err := store.ListAttempts(r.Context(), quiz.AttemptListOpts{
			QuizID:    quizID,
			StudentID: studentID,
			Limit:     parseIntDefault(r.URL.Query().Get("limit"), 50),
			Offset:    parseIntDefault(r.URL.Query().Get("offset"), 0),
		})
		if err != nil {
			writeErr(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(list)
	}
}
