package config

import (
	"os"
	"strconv"
	"time"
)

// Config carries every runtime setting the service needs. It is built once in
// main and handed to constructors; no component reads the environment after
// startup.
type Config struct {
	Env  string
	Port string

	GeminiAPIKey  string
	GeminiBaseURL string

	// Cache rows and application data (users, documents) live in separate
	// stores. Each defaults to a local sqlite file; a postgres URL takes
	// precedence when set.
	CacheDBPath string
	CacheDBURL  string
	AppDBPath   string
	AppDBURL    string

	UploadDir      string
	MaxUploadBytes int64

	JWTSecret     string
	CookieDomain  string
	CookieSecure  bool
	IsDevelopment bool

	RequestTimeout time.Duration
	CacheTTL       time.Duration
}

func Load() *Config {
	domain := os.Getenv("COOKIE_DOMAIN")

	// If no domain is set, we're in development
	isDev := domain == ""
	if isDev {
		domain = "localhost"
	}

	return &Config{
		Env:            getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		GeminiAPIKey:   os.Getenv("GEMINI_API_KEY"),
		GeminiBaseURL:  getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
		CacheDBPath:    getEnv("CACHE_DB_PATH", "cache.db"),
		CacheDBURL:     os.Getenv("CACHE_DB_URL"),
		AppDBPath:      getEnv("APP_DB_PATH", "app.db"),
		AppDBURL:       os.Getenv("APP_DB_URL"),
		UploadDir:      getEnv("UPLOAD_DIR", "uploads"),
		MaxUploadBytes: getEnvInt64("MAX_UPLOAD_BYTES", 16*1024*1024),
		JWTSecret:      os.Getenv("JWT_SECRET_KEY"),
		CookieDomain:   domain,
		CookieSecure:   !isDev,
		IsDevelopment:  isDev,
		RequestTimeout: getEnvSeconds("GEMINI_TIMEOUT_SECONDS", 60*time.Second),
		CacheTTL:       getEnvSeconds("CACHE_TTL_SECONDS", 3600*time.Second),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil && parsed > 0 {
			return parsed
		}
	}
	return fallback
}

func getEnvSeconds(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			return time.Duration(parsed) * time.Second
		}
	}
	return fallback
}
