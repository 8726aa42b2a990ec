package models

import (
	"database/sql"
	"time"
)

// Feed formats understood by the fetcher.
const (
	FeedFormatRSS  = "rss"
	FeedFormatJSON = "json"
)

// Feed represents a row in the 'feeds' table. Each feed belongs to exactly
// one tenant and is read-only to the pipeline.
type Feed struct {
	ID            int64          `db:"id"`
	TenantID      int64          `db:"tenant_id"`
	URL           string         `db:"url"`
	Format        string         `db:"format"`
	Category      sql.NullString `db:"category"`
	Status        string         `db:"status"`
	FailuresCount int            `db:"failures_count"`
	LastError     sql.NullString `db:"last_error"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
	DeletedAt     sql.NullTime   `db:"deleted_at"`
}

// NewFeed creates a new Feed with default values
func NewFeed() *Feed {
	now := time.Now()
	return &Feed{
		Format:    FeedFormatRSS,
		Status:    "active",
		CreatedAt: now,
		UpdatedAt: now,
	}
}
