package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/sfgm-boston/bibleschool-lms/internal/quiz"
)

// writeErr maps workflow errors to HTTP statuses. Validation problems are
// 400, invariant violations 409, everything unexpected 500.
func writeErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, quiz.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, quiz.ErrInvalidQuizState),
		errors.Is(err, quiz.ErrUnansweredQuestion),
		errors.Is(err, quiz.ErrEssayTooShort):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, quiz.ErrAlreadySubmitted),
		errors.Is(err, quiz.ErrGateNotSatisfied),
		errors.Is(err, quiz.ErrCertificateExists):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
