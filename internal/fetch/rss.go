package fetch

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog/log"

	"brandpost/autoposter/internal/models"
)

// parseRSS normalizes an RSS/Atom payload. Feed-native item order is kept;
// the orchestrator reverses to oldest-first before rendering.
func (f *Fetcher) parseRSS(data []byte, category string) ([]models.NewsItem, error) {
	feed, err := f.parser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	items := make([]models.NewsItem, 0, len(feed.Items))
	for _, entry := range feed.Items {
		item := models.NewsItem{
			SourceLink: entry.Link,
			Title:      strings.TrimSpace(entry.Title),
			Summary:    summaryText(entry),
			ImageURL:   resolveItemImage(entry),
			Category:   category,
		}
		if entry.PublishedParsed != nil {
			item.PublishedAt = *entry.PublishedParsed
		}

		if err := checkItem(item); err != nil {
			log.Debug().Err(err).Msg("Skipping feed entry")
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

// resolveItemImage finds the item's image, checking in order: a media:content
// extension, an enclosure with an image type, then the first inline <img> in
// the item's HTML body. First match wins; empty means the item has no image.
func resolveItemImage(entry *gofeed.Item) string {
	if media, ok := entry.Extensions["media"]; ok {
		for _, content := range media["content"] {
			if url := content.Attrs["url"]; url != "" {
				return url
			}
		}
		for _, thumb := range media["thumbnail"] {
			if url := thumb.Attrs["url"]; url != "" {
				return url
			}
		}
	}

	for _, enc := range entry.Enclosures {
		if enc != nil && enc.URL != "" && strings.HasPrefix(enc.Type, "image/") {
			return enc.URL
		}
	}

	if src := firstInlineImage(entry.Content); src != "" {
		return src
	}
	return firstInlineImage(entry.Description)
}

// firstInlineImage returns the src of the first <img> in an HTML fragment.
func firstInlineImage(html string) string {
	if !strings.Contains(html, "<img") {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	src, _ := doc.Find("img").First().Attr("src")
	return src
}

// summaryText prefers the description, falling back to the full content, and
// strips any HTML markup so captions stay plain text.
func summaryText(entry *gofeed.Item) string {
	raw := entry.Description
	if raw == "" {
		raw = entry.Content
	}
	return stripHTML(raw)
}

func stripHTML(s string) string {
	if !strings.Contains(s, "<") {
		return strings.TrimSpace(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(doc.Text())
}
