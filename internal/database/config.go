package database

import "time"

const (
	defaultMaxIdleConns    = 8
	defaultMaxOpenConns    = 8
	defaultConnMaxLifetime = time.Hour
)

// Config controls how the SQLite file backing tenants, feeds and the
// posted-links ledger is opened.
type Config struct {
	DBPath string

	// Pool and pragma tuning; zero values fall back to the defaults above.
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	CacheSizeKB     int
	BusyTimeoutMS   int

	// ReadOnly is set by the API server, which must never write alongside
	// a running pipeline.
	ReadOnly bool
}

// NewConfig returns settings tuned for the pipeline's access pattern: short
// bursts of ledger writes from a handful of workers against one file.
func NewConfig(dbPath string) *Config {
	return &Config{
		DBPath:          dbPath,
		ConnMaxLifetime: defaultConnMaxLifetime,
		CacheSizeKB:     -64000, // negative means KB of page cache
		BusyTimeoutMS:   5000,
	}
}
