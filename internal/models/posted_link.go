package models

import "time"

// PostedLink represents a row in the 'posted_links' table: one successfully
// published item. The (tenant_id, url) pair is unique so the same URL shared
// by two tenants never suppresses either tenant's post.
type PostedLink struct {
	ID          int64     `db:"id" json:"id"`
	TenantID    int64     `db:"tenant_id" json:"tenant_id"`
	URL         string    `db:"url" json:"url"`
	ProcessedAt time.Time `db:"processed_at" json:"processed_at"`
}
