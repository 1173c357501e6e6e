package config

import (
	"os"
	"strings"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type Config struct {
	Mode     Mode
	HTTPAddr string

	DBDriver string
	DBDSN    string

	BlobBasePath string // rendered certificate documents

	AuthHMACSecret string

	// ReviewerEmail is the fixed destination for final-exam essays. Review
	// and approval happen out-of-band from this address.
	ReviewerEmail  string
	InstructorName string

	// SMTPAddr empty => essays are logged instead of mailed (offline mode).
	SMTPAddr string
	SMTPFrom string

	DictationLang string

	CORSOrigins []string
}

func FromEnv() Config {
	mode := Mode(os.Getenv("MODE"))
	if mode == "" {
		mode = ModeOffline
	}
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	return Config{
		Mode:           mode,
		HTTPAddr:       addr,
		DBDriver:       envOr("DB_DRIVER", "sqlite"),
		DBDSN:          envOr("DB_DSN", ""),
		BlobBasePath:   envOr("BLOB_BASE_PATH", "./data"),
		AuthHMACSecret: envOr("AUTH_HMAC_SECRET", "supersecret-dev-key"),
		ReviewerEmail:  envOr("REVIEWER_EMAIL", "pastor_rocky@sfgmboston.com"),
		InstructorName: envOr("INSTRUCTOR_NAME", "Pastor Rocky"),
		SMTPAddr:       os.Getenv("SMTP_ADDR"),
		SMTPFrom:       envOr("SMTP_FROM", "no-reply@sfgmboston.com"),
		DictationLang:  envOr("DICTATION_LANG", "en-US"),
		CORSOrigins:    csvOr("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173"),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
