package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Auth
	JerryAPIKey string

	// Pathstore connection. Persistence is disabled when the URL is empty.
	PathstoreURL    string
	PathstoreAPIKey string

	// Upload limits
	MaxUploadBytes int64

	// Document sessions
	MaxDocuments int
	DocumentTTL  time.Duration

	// PDF
	PDFFallbackPdftotext bool
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		JerryAPIKey: os.Getenv("JERRY_API_KEY"),

		PathstoreURL:    os.Getenv("PATHSTORE_URL"),
		PathstoreAPIKey: os.Getenv("PATHSTORE_API_KEY"),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		MaxDocuments: envInt("MAX_DOCUMENTS", 100),
		DocumentTTL:  envDuration("DOCUMENT_TTL", 1*time.Hour),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
	}

	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.MaxDocuments <= 0 {
		cfg.MaxDocuments = 100
	}
	if cfg.DocumentTTL <= 0 {
		cfg.DocumentTTL = 1 * time.Hour
	}

	return cfg
}

// PathstoreEnabled reports whether highlight persistence is configured.
func (c Config) PathstoreEnabled() bool {
	return c.PathstoreURL != ""
}

func (c Config) Validate() error {
	if c.JerryAPIKey == "" {
		return fmt.Errorf("JERRY_API_KEY is required")
	}
	if c.PathstoreEnabled() && c.PathstoreAPIKey == "" {
		return fmt.Errorf("PATHSTORE_API_KEY is required when PATHSTORE_URL is set")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
