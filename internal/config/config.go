// Package config builds the process-wide configuration from environment
// variables. The resulting struct is constructed once at startup and passed
// by reference into the components that need it; nothing else in the project
// reads the environment.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Replicate (image generation).
	ReplicateAPIToken string
	ReplicateBaseURL  string
	ReplicateModel    string

	// Cloudflare R2 (object storage). Storage is optional infrastructure:
	// when the credential triple is incomplete the gateway runs unconfigured
	// and the pipeline falls back to local-only results.
	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicURL       string

	// Server.
	AppURL string
	Port   string

	LogLevel string

	HTTPTimeout time.Duration
	TempDir     string
	SweepMaxAge time.Duration
}

func Load() (Config, error) {
	cfg := Config{
		ReplicateAPIToken: strings.TrimSpace(os.Getenv("REPLICATE_API_TOKEN")),
		ReplicateBaseURL:  getEnv("REPLICATE_BASE_URL", "https://api.replicate.com"),
		ReplicateModel:    getEnv("REPLICATE_MODEL", "bytedance/seedream-4.5"),

		R2AccountID:       strings.TrimSpace(os.Getenv("R2_ACCOUNT_ID")),
		R2AccessKeyID:     strings.TrimSpace(os.Getenv("R2_ACCESS_KEY_ID")),
		R2SecretAccessKey: strings.TrimSpace(os.Getenv("R2_SECRET_ACCESS_KEY")),
		R2BucketName:      getEnv("R2_BUCKET_NAME", "greeting-cards"),
		R2PublicURL:       strings.TrimRight(getEnv("R2_PUBLIC_URL", ""), "/"),

		AppURL:   strings.TrimRight(getEnv("APP_URL", "http://localhost:7860"), "/"),
		Port:     getEnv("PORT", "7860"),
		LogLevel: strings.ToLower(getEnv("LOG_LEVEL", "info")),

		HTTPTimeout: time.Duration(getEnvInt("HTTP_TIMEOUT_SECONDS", 180)) * time.Second,
		TempDir:     getEnv("CARD_TEMP_DIR", os.TempDir()),
		SweepMaxAge: time.Duration(getEnvInt("TEMP_SWEEP_MAX_AGE_HOURS", 24)) * time.Hour,
	}

	if cfg.ReplicateAPIToken == "" {
		return Config{}, errors.New("REPLICATE_API_TOKEN is required")
	}

	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = 180 * time.Second
	}
	if cfg.SweepMaxAge <= 0 {
		cfg.SweepMaxAge = 24 * time.Hour
	}

	return cfg, nil
}

// StorageConfigured reports whether the R2 credential triple is complete.
func (c Config) StorageConfigured() bool {
	return c.R2AccountID != "" && c.R2AccessKeyID != "" && c.R2SecretAccessKey != ""
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
