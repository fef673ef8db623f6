// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort string
	Env        string

	// Local store file
	LocalDBPath string

	// CORS
	AllowedOrigins string

	// Optional bearer token guarding /api
	AppToken string

	// Gemini
	GeminiModel       string
	GeminiRefineModel string

	// Remote store: create tables on connect instead of running the setup SQL
	RemoteAutoMigrate bool

	// SMTP
	SMTPUser     string
	SMTPPass     string
	SMTPFrom     string
	SMTPHost     string
	SMTPPort     int
	SMTPFromName string

	// Export bucket (S3, R2, MinIO)
	ExportBucket          string
	ExportEndpoint        string
	ExportRegion          string
	ExportAccessKeyID     string
	ExportSecretAccessKey string
	ExportPublicURL       string
}

// Load reads the environment, and a .env file outside production.
func Load() (*Config, error) {
	env := getEnv("ENV", "development")
	if env != "production" {
		_ = godotenv.Load() // optional .env for local
	}

	smtpPort, err := getInt("SMTP_PORT", 587)
	if err != nil {
		return nil, err
	}
	autoMigrate, err := getBool("REMOTE_AUTO_MIGRATE", false)
	if err != nil {
		return nil, err
	}

	return &Config{
		ServerPort: getEnv("PORT", "8085"),
		Env:        env,

		LocalDBPath: getEnv("LOCAL_DB_PATH", "standup-local.db"),

		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173"),

		AppToken: strings.TrimSpace(os.Getenv("APP_TOKEN")),

		GeminiModel:       os.Getenv("GEMINI_MODEL"),
		GeminiRefineModel: os.Getenv("GEMINI_REFINE_MODEL"),

		RemoteAutoMigrate: autoMigrate,

		SMTPUser:     os.Getenv("SMTP_USER"),
		SMTPPass:     os.Getenv("SMTP_PASS"),
		SMTPFrom:     os.Getenv("SMTP_FROM"),
		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     smtpPort,
		SMTPFromName: getEnv("SMTP_FROM_NAME", "Standup"),

		ExportBucket:          os.Getenv("EXPORT_S3_BUCKET"),
		ExportEndpoint:        os.Getenv("EXPORT_S3_ENDPOINT"),
		ExportRegion:          getEnv("EXPORT_S3_REGION", "auto"),
		ExportAccessKeyID:     os.Getenv("EXPORT_S3_ACCESS_KEY_ID"),
		ExportSecretAccessKey: os.Getenv("EXPORT_S3_SECRET_ACCESS_KEY"),
		ExportPublicURL:       os.Getenv("EXPORT_S3_PUBLIC_URL"),
	}, nil
}

// SMTPEnabled reports whether standups can be shared by email.
func (c *Config) SMTPEnabled() bool {
	return c.SMTPHost != "" && c.SMTPFrom != ""
}

// ExportBucketEnabled reports whether exports can be uploaded.
func (c *Config) ExportBucketEnabled() bool {
	return c.ExportBucket != ""
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("config: invalid %s %q: %w", key, value, err)
	}
	return n, nil
}

func getBool(key string, fallback bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("config: invalid %s %q: %w", key, value, err)
	}
	return b, nil
}
