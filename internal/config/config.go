package config

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Config holds all configuration for the application
type Config struct {
	// File paths
	SeedPath string
	DBPath   string

	// Server settings
	ServerHost string
	ServerPort int
	APIKey     string

	// Processing settings
	WorkerCount     int
	Interval        time.Duration
	PublishDelay    time.Duration
	FetchTimeout    time.Duration
	ResolveTimeout  time.Duration
	PublishTimeout  time.Duration
	MaxItemsPerFeed int
	UserAgent       string

	// Log settings
	LogLevel zerolog.Level
}

// DefaultConfig returns the compiled-in defaults with environment overrides
// applied. Timeouts and the user agent are env-only; everything else is also
// exposed as a subcommand flag.
func DefaultConfig() *Config {
	logLevel, _ := zerolog.ParseLevel(DefaultLogLevel)

	return &Config{
		SeedPath:        DefaultSeedPath,
		DBPath:          DefaultDBPath,
		ServerHost:      DefaultServerHost,
		ServerPort:      DefaultServerPort,
		APIKey:          GetEnvString("AUTOPOSTER_API_KEY", ""),
		WorkerCount:     DefaultWorkerCount,
		Interval:        time.Duration(DefaultInterval) * time.Minute,
		PublishDelay:    time.Duration(DefaultPublishDelaySec) * time.Second,
		FetchTimeout:    GetEnvDuration("AUTOPOSTER_FETCH_TIMEOUT", time.Duration(DefaultFetchTimeoutSec)*time.Second),
		ResolveTimeout:  GetEnvDuration("AUTOPOSTER_RESOLVE_TIMEOUT", time.Duration(DefaultResolveTimeoutSec)*time.Second),
		PublishTimeout:  GetEnvDuration("AUTOPOSTER_PUBLISH_TIMEOUT", time.Duration(DefaultPublishTimeoutSec)*time.Second),
		MaxItemsPerFeed: GetEnvInt("AUTOPOSTER_MAX_ITEMS", DefaultMaxItemsPerFeed),
		UserAgent:       GetEnvString("AUTOPOSTER_USER_AGENT", DefaultUserAgent),
		LogLevel:        GetEnvLogLevel("AUTOPOSTER_LOG_LEVEL", logLevel),
	}
}

// ListenAddr returns the formatted listen address for the HTTP server.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}
