package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ProjectID                    string
	Port                         string
	AllowedOrigins               []string
	StorageBucket                string
	SignedURLServiceAccountEmail string

	SessionCookieName string
	SessionTTL        time.Duration
	CookieSecure      bool

	// Upper bound of concurrent per-gym reads in one scoped fetch.
	ScopeFetchConcurrency int
}

func Load() Config {
	// .env is optional (local development only)
	_ = godotenv.Load()

	// FIREBASE_PROJECT_ID or GOOGLE_CLOUD_PROJECT
	projectID := getenv("FIREBASE_PROJECT_ID", "")
	if projectID == "" {
		projectID = getenv("GOOGLE_CLOUD_PROJECT", "")
	}

	port := getenv("PORT", "8080")
	origins := getenv("ALLOWED_ORIGINS", "http://localhost:3000")
	storageBucket := getenv("FIREBASE_STORAGE_BUCKET", "")
	if storageBucket == "" && projectID != "" {
		storageBucket = projectID + ".appspot.com"
	}
	signedURLServiceAccountEmail := getenv("SIGNED_URL_SERVICE_ACCOUNT_EMAIL", "")

	allowed := []string{}
	for _, o := range strings.Split(origins, ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			allowed = append(allowed, o)
		}
	}

	return Config{
		ProjectID:                    projectID,
		Port:                         port,
		AllowedOrigins:               allowed,
		StorageBucket:                storageBucket,
		SignedURLServiceAccountEmail: signedURLServiceAccountEmail,
		SessionCookieName:            getenv("SESSION_COOKIE_NAME", "session"),
		SessionTTL:                   time.Duration(getint("SESSION_TTL_HOURS", 120)) * time.Hour,
		CookieSecure:                 getenv("COOKIE_SECURE", "false") == "true",
		ScopeFetchConcurrency:        getint("SCOPE_FETCH_CONCURRENCY", 8),
	}
}

// APIURL is the backend base URL used by the dashboard client.
func APIURL() string {
	_ = godotenv.Load()
	return strings.TrimRight(getenv("GYM_API_URL", "http://localhost:5000"), "/")
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getint(key string, def int) int {
	v, err := strconv.Atoi(getenv(key, ""))
	if err != nil || v <= 0 {
		return def
	}
	return v
}
