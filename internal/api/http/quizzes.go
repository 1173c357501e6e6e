package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sfgm-boston/bibleschool-lms/internal/quiz"
	"github.com/sfgm-boston/bibleschool-lms/internal/rbac"
)

// UploadQuizHandler lets the external authoring tool publish quiz content.
func UploadQuizHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var qz quiz.Quiz
		if err := json.NewDecoder(r.Body).Decode(&qz); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		if qz.ID == "" || qz.CourseID == "" {
			http.Error(w, "id and course_id required", 400)
			return
		}
		if qz.PassingScore < 0 || qz.PassingScore > 100 {
			http.Error(w, "passing_score must be 0-100", 400)
			return
		}
		if err := store.PutQuiz(r.Context(), qz); err != nil {
			writeErr(w, err)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{"id": qz.ID})
	}
}

func GetQuizHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		qz, err := store.GetQuiz(r.Context(), chi.URLParam(r, "quizID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		role := rbac.RoleFromContext(r.Context())
		if role != "instructor" && role != "admin" {
			stripAnswerKeys(&qz)
		}
		_ = json.NewEncoder(w).Encode(qz)
	}
}

func ListCourseQuizzesHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := store.ListQuizzesByCourse(r.Context(), chi.URLParam(r, "courseID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		role := rbac.RoleFromContext(r.Context())
		if role != "instructor" && role != "admin" {
			for i := range list {
				stripAnswerKeys(&list[i])
			}
		}
		_ = json.NewEncoder(w).Encode(list)
	}
}

func stripAnswerKeys(qz *quiz.Quiz) {
	for i := range qz.Questions {
		qz.Questions[i].CorrectAnswer = ""
	}
}
