package main

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	api "github.com/sfgm-boston/bibleschool-lms/internal/api/http"
	"github.com/sfgm-boston/bibleschool-lms/internal/audit"
	authmw "github.com/sfgm-boston/bibleschool-lms/internal/auth/middleware"
	"github.com/sfgm-boston/bibleschool-lms/internal/cert"
	"github.com/sfgm-boston/bibleschool-lms/internal/config"
	"github.com/sfgm-boston/bibleschool-lms/internal/db"
	"github.com/sfgm-boston/bibleschool-lms/internal/essay"
	"github.com/sfgm-boston/bibleschool-lms/internal/grading"
	"github.com/sfgm-boston/bibleschool-lms/internal/notify"
	"github.com/sfgm-boston/bibleschool-lms/internal/quiz"
	"github.com/sfgm-boston/bibleschool-lms/internal/rbac"
	"github.com/sfgm-boston/bibleschool-lms/internal/storage"
)

func main() {
	cfg := config.FromEnv()
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	store := quiz.NewSQLStore(dbh)
	eventLog := audit.NewEventLog(dbh)

	bs, err := storage.NewFSStore(cfg.BlobBasePath)
	if err != nil {
		log.Fatalf("blob store: %v", err)
	}

	var notifier notify.Notifier
	if cfg.SMTPAddr != "" {
		notifier = &notify.SMTPNotifier{Addr: cfg.SMTPAddr, From: cfg.SMTPFrom}
	} else {
		notifier = &notify.LogNotifier{Log: log}
	}

	engine := quiz.NewEngine(store, grading.NewChecker(), eventLog, log)
	dispatcher := essay.NewDispatcher(store, notifier, eventLog, cfg.ReviewerEmail, log)
	issuer := cert.NewIssuer(store, bs, eventLog, &cert.SQLDirectory{DB: dbh}, cfg.InstructorName, log)

	authSvc := authmw.NewAuthService(cfg.AuthHMACSecret)

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/login", authmw.LoginHandler(authSvc, dbh))

	// Protected API (JWT -> role in context -> RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(authmw.JWTMiddleware(authSvc))
		pr.Use(authmw.AttachRoleFromDB(dbh, cfg.Mode == config.ModeOffline))

		pr.With(rbac.Require("quiz:create")).
			Post("/quizzes", api.UploadQuizHandler(store))
		pr.With(rbac.Require("quiz:view")).
			Get("/quizzes/{quizID}", api.GetQuizHandler(store))
		pr.With(rbac.Require("quiz:view")).
			Get("/courses/{courseID}/quizzes", api.ListCourseQuizzesHandler(store))

		// Student flow: finish objective portion, then (final exams) the essay
		pr.With(rbac.Require("attempt:create")).
			Post("/attempts", api.FinishAttemptHandler(engine))
		pr.With(rbac.RequireAny("attempt:view-own", "attempt:view-all")).
			Get("/attempts", api.ListAttemptsHandler(store))
		pr.With(rbac.RequireAny("attempt:view-own", "attempt:view-all")).
			Get("/attempts/{attemptID}", api.GetAttemptHandler(store))

		pr.With(rbac.Require("essay:submit")).
			Get("/essays/capture-settings", api.CaptureSettingsHandler(cfg.DictationLang))
		pr.With(rbac.Require("essay:submit")).
			Post("/essays/submit", api.SubmitEssayHandler(dispatcher))

		// Out-of-band review loop lands here
		pr.With(rbac.Require("certificate:approve")).
			Post("/certificates/approve", api.ApproveCertificateHandler(issuer))
		pr.With(rbac.RequireAny("certificate:view-own", "certificate:view-all")).
			Get("/certificates", api.ListCertificatesHandler(store))
		pr.With(rbac.RequireAny("certificate:view-own", "certificate:view-all")).
			Get("/certificates/{certID}/document", api.CertificateDocumentHandler(store, bs))

		pr.With(rbac.Require("user:change_password")).
			Post("/users/change-password", api.ChangePasswordHandler(dbh))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.WithFields(logrus.Fields{
		"addr": cfg.HTTPAddr,
		"mode": cfg.Mode,
		"db":   cfg.DBDriver,
	}).Info("listening")
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
