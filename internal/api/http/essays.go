package http

import (
	"encoding/json"
	"net/http"

	authmw "github.com/sfgm-boston/bibleschool-lms/internal/auth/middleware"
	"github.com/sfgm-boston/bibleschool-lms/internal/essay"
)

// GET /essays/capture-settings
// The front end reads these before starting dictation.
func CaptureSettingsHandler(lang string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"dictation_lang": lang,
			"min_words":      essay.MinWords,
		})
	}
}

// POST /essays/submit
// The client sends its word count as a hint but the dispatcher recounts;
// client-side validation is an optimization, not the authority.
func SubmitEssayHandler(d *essay.Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req essay.SubmitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		if req.QuizID == "" || req.EssayText == "" {
			http.Error(w, "quiz_id and essay_text required", 400)
			return
		}
		req.StudentID = authmw.SubjectFromContext(r.Context())
		if req.StudentID == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if req.StudentName == "" {
			req.StudentName = authmw.NameFromContext(r.Context())
		}
		res, err := d.Submit(r.Context(), req)
		if err != nil {
			writeErr(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(res)
	}
}
