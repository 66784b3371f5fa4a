// pkg/config/settings.go
package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Settings is the process-level runtime configuration, loaded from the
// environment. Per-job pipeline behavior lives in Pipeline instead.
type Settings struct {
	// Logging
	LogLevel  string
	LogFormat string

	// Job execution
	MaxConcurrentJobs int
	JobRetention      time.Duration

	// External classifier collaborator
	ClassifierEndpoint   string
	ClassifierAPIKey     string
	ClassifierDeployment string
	ClassifierTimeout    time.Duration
	ClassifierRetries    int

	// Optional audit database
	AuditDSN string
}

// LoadSettings loads runtime settings from the environment, reading a
// .env file first when one is present
func LoadSettings() (*Settings, error) {
	// Missing .env is fine; real environments set variables directly
	_ = godotenv.Load()

	s := &Settings{
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		LogFormat:            getEnv("LOG_FORMAT", "json"),
		MaxConcurrentJobs:    getEnvAsInt("MAX_CONCURRENT_JOBS", 4),
		JobRetention:         time.Duration(getEnvAsInt("JOB_RETENTION_MINUTES", 60)) * time.Minute,
		ClassifierEndpoint:   getEnv("CLASSIFIER_ENDPOINT", ""),
		ClassifierAPIKey:     getEnv("CLASSIFIER_API_KEY", ""),
		ClassifierDeployment: getEnv("CLASSIFIER_DEPLOYMENT", ""),
		ClassifierTimeout:    time.Duration(getEnvAsInt("CLASSIFIER_TIMEOUT_MS", 10000)) * time.Millisecond,
		ClassifierRetries:    getEnvAsInt("CLASSIFIER_RETRIES", 1),
		AuditDSN:             getEnv("AUDIT_DATABASE_URL", ""),
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate ensures all required settings are present and sane
func (s *Settings) Validate() error {
	if s.MaxConcurrentJobs <= 0 {
		return errors.New("max concurrent jobs must be positive")
	}
	if s.JobRetention <= 0 {
		return errors.New("job retention must be positive")
	}
	if s.ClassifierRetries < 0 {
		return errors.New("classifier retries cannot be negative")
	}
	if s.ClassifierEndpoint != "" && s.ClassifierAPIKey == "" {
		return errors.New("classifier endpoint is set but the API key is missing")
	}
	return nil
}

// ClassifierConfigured reports whether the external classifier can be built
func (s *Settings) ClassifierConfigured() bool {
	return s.ClassifierEndpoint != "" && s.ClassifierAPIKey != "" && s.ClassifierDeployment != ""
}

// Helper functions for environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
