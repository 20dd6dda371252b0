package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	APIBaseURL  string
	HTTPTimeout time.Duration
	SessionFile string

	SearchDebounce    time.Duration
	RequestsPerSecond float64
	MetricsAddr       string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		APIBaseURL:  getEnv("API_BASE_URL", "http://localhost:5000"),
		HTTPTimeout: time.Duration(getEnvInt("HTTP_TIMEOUT_SECONDS", 30)) * time.Second,
		SessionFile: getEnv("SESSION_FILE", defaultSessionFile()),

		SearchDebounce:    time.Duration(getEnvInt("SEARCH_DEBOUNCE_MS", 400)) * time.Millisecond,
		RequestsPerSecond: getEnvFloat("REQUESTS_PER_SECOND", 10),
		MetricsAddr:       getEnv("METRICS_ADDR", ""),
	}

	return cfg, nil
}

func defaultSessionFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".solomanager-session.json"
	}
	return home + "/.solomanager-session.json"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
