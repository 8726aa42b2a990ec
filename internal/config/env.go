package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// GetEnvString returns the value of the environment variable key, or
// defaultValue when it is unset.
func GetEnvString(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}

// GetEnvInt returns the environment variable key parsed as an integer.
// Unset or malformed values yield defaultValue so a typo in the environment
// never stops startup.
func GetEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

// GetEnvDuration returns the environment variable key parsed as a duration.
// Values with a unit suffix ("90s", "15m") go through time.ParseDuration;
// bare numbers are taken as seconds. Unset or malformed values yield
// defaultValue.
func GetEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if strings.ContainsAny(value, "smh") {
		d, err := time.ParseDuration(value)
		if err != nil {
			return defaultValue
		}
		return d
	}

	secs, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return time.Duration(secs) * time.Second
}

// GetEnvLogLevel returns the environment variable key parsed as a zerolog
// level name. Unset or unknown names yield defaultValue.
func GetEnvLogLevel(key string, defaultValue zerolog.Level) zerolog.Level {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	level, err := zerolog.ParseLevel(value)
	if err != nil {
		return defaultValue
	}
	return level
}
