package http

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	authmw "github.com/sfgm-boston/bibleschool-lms/internal/auth/middleware"
	"github.com/sfgm-boston/bibleschool-lms/internal/cert"
	"github.com/sfgm-boston/bibleschool-lms/internal/quiz"
	"github.com/sfgm-boston/bibleschool-lms/internal/rbac"
	"github.com/sfgm-boston/bibleschool-lms/internal/storage"
)

// POST /certificates/approve is the external "essay approved" signal, relayed
// by the reviewer or an admin acting on their decision. Idempotent: repeats
// return the already-issued certificate.
func ApproveCertificateHandler(issuer *cert.Issuer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var ap cert.Approval
		if err := json.NewDecoder(r.Body).Decode(&ap); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		if ap.StudentID == "" || ap.CourseID == "" {
			http.Error(w, "student_id and course_id required", 400)
			return
		}
		if ap.ReviewerID == "" {
			ap.ReviewerID = authmw.SubjectFromContext(r.Context())
		}
		c, err := issuer.Approve(r.Context(), ap)
		if err != nil {
			writeErr(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(c)
	}
}

// GET /certificates?student_id=...; students see their own only.
func ListCertificatesHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		role := rbac.RoleFromContext(r.Context())
		sub := authmw.SubjectFromContext(r.Context())
		studentID := strings.TrimSpace(r.URL.Query().Get("student_id"))
		if role != "instructor" && role != "admin" {
			studentID = sub
		}
		list, err := store.ListCertificates(r.Context(), studentID)
		if err != nil {
			writeErr(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(list)
	}
}

// GET /certificates/{certID}/document serves the rendered document.
func CertificateDocumentHandler(store quiz.Store, blobs storage.BlobStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := store.GetCertificate(r.Context(), chi.URLParam(r, "certID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		role := rbac.RoleFromContext(r.Context())
		sub := authmw.SubjectFromContext(r.Context())
		if role != "instructor" && role != "admin" && c.StudentID != sub {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		rc, err := blobs.Get(cert.DocumentKey(c))
		if err != nil {
			http.Error(w, "document not found", http.StatusNotFound)
			return
		}
		defer rc.Close()
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.Copy(w, rc)
	}
}
