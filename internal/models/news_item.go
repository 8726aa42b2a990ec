package models

import "time"

// NewsItem is the canonical representation of one feed entry, independent of
// the source format. It lives for a single pipeline pass; only its SourceLink
// survives, via the posted_links ledger.
type NewsItem struct {
	SourceLink  string
	Title       string
	Summary     string
	ImageURL    string
	Category    string
	PublishedAt time.Time
}
