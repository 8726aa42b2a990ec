// Package fetch retrieves tenant feeds over HTTP and normalizes RSS and JSON
// payloads into canonical NewsItems. One malformed entry never aborts its
// feed; a failed feed never aborts its siblings (the caller decides that).
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog/log"

	"brandpost/autoposter/internal/models"
)

const maxBodyBytes = 10 << 20 // 10MB cap on feed payloads

// Fetcher downloads and normalizes feeds.
type Fetcher struct {
	client    *http.Client
	parser    *gofeed.Parser
	userAgent string
	maxItems  int
}

// NewFetcher creates a Fetcher with the given request timeout.
func NewFetcher(timeout time.Duration, userAgent string, maxItems int) *Fetcher {
	return &Fetcher{
		client:    &http.Client{Timeout: timeout},
		parser:    gofeed.NewParser(),
		userAgent: userAgent,
		maxItems:  maxItems,
	}
}

// Fetch downloads the feed and returns its items in feed-native order.
// Entries missing a required field (link, title, summary, image) are dropped
// individually and logged at debug level.
func (f *Fetcher) Fetch(ctx context.Context, feed models.Feed) ([]models.NewsItem, error) {
	data, err := f.download(ctx, feed.URL)
	if err != nil {
		return nil, err
	}

	var items []models.NewsItem
	switch feed.Format {
	case models.FeedFormatJSON:
		items, err = ParseJSON(data, feed.Category.String)
	case models.FeedFormatRSS:
		items, err = f.parseRSS(data, feed.Category.String)
	default:
		return nil, fmt.Errorf("unsupported feed format %q", feed.Format)
	}
	if err != nil {
		return nil, err
	}

	if f.maxItems > 0 && len(items) > f.maxItems {
		items = items[:f.maxItems]
	}

	log.Debug().
		Str("url", feed.URL).
		Str("format", feed.Format).
		Int("items", len(items)).
		Msg("Feed fetched")

	return items, nil
}

func (f *Fetcher) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid feed URL %s: %w", url, err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed %s returned HTTP %d", url, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read feed body %s: %w", url, err)
	}
	return data, nil
}
