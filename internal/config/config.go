package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"fjacquet/fintrack/internal/logging"
)

// LoadEnv loads a .env file from the working directory or its parent, if
// one exists. It returns the file that was loaded, or "".
func LoadEnv() (string, error) {
	for _, candidate := range []string{".env", filepath.Join("..", ".env")} {
		if _, err := os.Stat(candidate); err != nil {
			continue
		}
		if err := godotenv.Load(candidate); err != nil {
			return "", err
		}
		return candidate, nil
	}
	return "", nil
}

// LoggerFromEnv builds the bootstrap logger used before configuration is
// loaded, honouring LOG_LEVEL and LOG_FORMAT.
func LoggerFromEnv() logging.Logger {
	return logging.NewLogrusAdapter(GetEnv("LOG_LEVEL", "info"), GetEnv("LOG_FORMAT", "text"))
}

// NewLogger builds the application logger from configuration.
func NewLogger(cfg *Config) logging.Logger {
	return logging.NewLogrusAdapter(cfg.Log.Level, cfg.Log.Format)
}

// GetEnv retrieves an environment variable with a fallback value if not set
func GetEnv(key, fallback string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	return value
}
