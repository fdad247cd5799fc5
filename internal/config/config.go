package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the API server settings, read from the environment.
type Config struct {
	Port               string
	DatabaseURL        string
	GinMode            string
	CORSAllowedOrigins []string

	GeminiAPIKey string
	GeminiModel  string

	GmailCredentialsFile string
	GmailTokenFile       string
	NotifyFrom           string
	NotifyTimeout        time.Duration
}

const defaultDSN = "host=localhost user=postgres password=password dbname=hiring port=5432 sslmode=disable"

// Load reads .env (if present) and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	} else if err != nil {
		log.Println("No .env file found, using process environment")
	}
	return FromEnv()
}

// FromEnv builds a Config from environment variables, applying defaults.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:                 getenv("PORT", "8080"),
		DatabaseURL:          getenv("DATABASE_URL", defaultDSN),
		GinMode:              os.Getenv("GIN_MODE"),
		CORSAllowedOrigins:   splitList(getenv("CORS_ALLOWED_ORIGINS", "*")),
		GeminiAPIKey:         os.Getenv("GEMINI_API_KEY"),
		GeminiModel:          getenv("GEMINI_MODEL", "gemini-2.5-flash"),
		GmailCredentialsFile: getenv("GMAIL_CREDENTIALS_FILE", "credential.json"),
		GmailTokenFile:       getenv("GMAIL_TOKEN_FILE", "token.json"),
		NotifyFrom:           os.Getenv("NOTIFY_FROM"),
	}

	timeout, err := time.ParseDuration(getenv("NOTIFY_TIMEOUT", "15s"))
	if err != nil {
		return nil, fmt.Errorf("NOTIFY_TIMEOUT: %w", err)
	}
	cfg.NotifyTimeout = timeout
	return cfg, nil
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
